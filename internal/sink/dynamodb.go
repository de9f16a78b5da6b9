package sink

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// putItemAPI is the subset of *dynamodb.Client the sink needs.
type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoDB puts one item per record. The table is expected to use "epoch"
// (N) as its partition key.
type DynamoDB struct {
	client    putItemAPI
	tableName string
}

// NewDynamoDB loads the default AWS credential chain for region.
func NewDynamoDB(ctx context.Context, region, tableName string) (*DynamoDB, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &DynamoDB{client: dynamodb.NewFromConfig(cfg), tableName: tableName}, nil
}

func (s *DynamoDB) Name() string {
	return "dynamodb"
}

func (s *DynamoDB) Write(ctx context.Context, rec tracker.PositionRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save record to DynamoDB: %w", err)
	}
	return nil
}
