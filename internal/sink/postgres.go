package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS %s (
		"timestamp" BIGINT NOT NULL,
		latitude    TEXT NOT NULL,
		longitude   TEXT NOT NULL,
		address     TEXT,
		run_id      TEXT,
		source      TEXT
	)
`

const postgresInsert = `INSERT INTO %s ("timestamp", latitude, longitude, address, run_id, source) VALUES ($1, $2, $3, $4, $5, $6)`

// pgConn is the subset of *pgx.Conn the sink needs.
type pgConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Close(ctx context.Context) error
}

// Postgres inserts each record as a row of the iss_tracker table.
type Postgres struct {
	dsn     string
	table   string
	connect func(ctx context.Context, dsn string) (pgConn, error)
}

func NewPostgres(dsn string) *Postgres {
	return &Postgres{
		dsn:   dsn,
		table: tracker.MeasurementName,
		connect: func(ctx context.Context, dsn string) (pgConn, error) {
			return pgx.Connect(ctx, dsn)
		},
	}
}

func (s *Postgres) Name() string {
	return "postgres"
}

func (s *Postgres) Write(ctx context.Context, rec tracker.PositionRecord) error {
	conn, err := s.connect(ctx, s.dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer conn.Close(context.WithoutCancel(ctx))

	if _, err := conn.Exec(ctx, fmt.Sprintf(postgresSchema, s.table)); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	_, err = conn.Exec(ctx, fmt.Sprintf(postgresInsert, s.table),
		rec.Epoch, rec.Latitude, rec.Longitude, rec.Address, rec.RunID, rec.Source)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}
