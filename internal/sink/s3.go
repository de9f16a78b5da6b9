package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// objectStore is the subset of *minio.Client the sink needs.
type objectStore interface {
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// S3Options configures the S3-compatible sink.
type S3Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Encoding  Encoding
}

// S3 stores one object per record in an S3-compatible bucket (MinIO, AWS).
type S3 struct {
	client   objectStore
	bucket   string
	encoding Encoding
	logger   *log.Logger

	mu          sync.Mutex
	bucketReady bool
}

// NewS3 initializes the MinIO client. It does not contact the server.
func NewS3(opts S3Options, logger *log.Logger) (*S3, error) {
	if opts.Endpoint == "" || opts.AccessKey == "" || opts.SecretKey == "" || opts.Bucket == "" {
		return nil, fmt.Errorf("missing one or more required settings: MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY, MINIO_BUCKET")
	}

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	if logger == nil {
		logger = log.Default()
	}

	return &S3{client: client, bucket: opts.Bucket, encoding: opts.Encoding, logger: logger}, nil
}

func (s *S3) Name() string {
	return "s3"
}

// ObjectKey returns positions/YYYY/MM/DD/<epoch><ext> for rec.
func (s *S3) ObjectKey(rec tracker.PositionRecord) string {
	t := rec.Time()
	return fmt.Sprintf("positions/%04d/%02d/%02d/%d%s", t.Year(), int(t.Month()), t.Day(), rec.Epoch, s.encoding.Extension())
}

func (s *S3) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bucketReady {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("error checking bucket existence: %w", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket %s: %w", s.bucket, err)
		}
		s.logger.Printf("INFO: created bucket %s", s.bucket)
	}
	s.bucketReady = true
	return nil
}

func (s *S3) Write(ctx context.Context, rec tracker.PositionRecord) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}

	data, err := s.encoding.Encode(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	key := s.ObjectKey(rec)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: s.encoding.ContentType()})
	if err != nil {
		return fmt.Errorf("failed to store object in S3: %w", err)
	}
	return nil
}
