package sink

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	"github.com/marcboeker/go-duckdb"

	"github.com/i474232898/iss-tracker/internal/tracker"
)

// duckDBSchema stores the raw epoch as the designated time column.
const duckDBSchema = `
	CREATE TABLE IF NOT EXISTS %s (
		"timestamp" BIGINT NOT NULL,
		latitude    VARCHAR NOT NULL,
		longitude   VARCHAR NOT NULL,
		address     VARCHAR,
		run_id      VARCHAR,
		source      VARCHAR
	)
`

// DuckDB appends records to a local DuckDB file, one row per record in the
// iss_tracker measurement table.
type DuckDB struct {
	path  string
	table string
}

func NewDuckDB(path string) *DuckDB {
	return &DuckDB{path: path, table: tracker.MeasurementName}
}

func (s *DuckDB) Name() string {
	return "duckdb"
}

func (s *DuckDB) open(ctx context.Context) (*sql.DB, error) {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create duckdb directory: %w", err)
		}
	}

	connector, err := duckdb.NewConnector(s.path, func(execer driver.ExecerContext) error {
		_, err := execer.ExecContext(ctx, "PRAGMA threads=1", nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create DuckDB connector: %w", err)
	}

	db := sql.OpenDB(connector)
	if _, err := db.ExecContext(ctx, fmt.Sprintf(duckDBSchema, s.table)); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return db, nil
}

// Write opens the database, appends rec through the Appender API and
// flushes before closing everything again.
func (s *DuckDB) Write(ctx context.Context, rec tracker.PositionRecord) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection: %w", err)
	}
	defer conn.Close()

	err = conn.Raw(func(driverConn interface{}) error {
		dConn, ok := driverConn.(*duckdb.Conn)
		if !ok {
			return fmt.Errorf("failed to cast to duckdb.Conn")
		}

		appender, err := duckdb.NewAppenderFromConn(dConn, "", s.table)
		if err != nil {
			return fmt.Errorf("failed to create appender: %w", err)
		}

		if err := appender.AppendRow(rec.Epoch, rec.Latitude, rec.Longitude, rec.Address, rec.RunID, rec.Source); err != nil {
			_ = appender.Close()
			return fmt.Errorf("failed to append row: %w", err)
		}
		if err := appender.Flush(); err != nil {
			_ = appender.Close()
			return fmt.Errorf("failed to flush appender: %w", err)
		}
		return appender.Close()
	})
	if err != nil {
		return fmt.Errorf("appender error: %w", err)
	}
	return nil
}
