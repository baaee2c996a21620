// Package archive is an optional store for final extracted records, backing
// the XLSX export. Submissions themselves (image bytes, message refs) are
// never persisted; only the six extracted fields and the group key are.
//
// The DSN selects the backend: a postgres:// URL uses pgx, anything else is
// treated as a SQLite file path.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/Prishashn/Hrextractor/internal/common"
	"github.com/Prishashn/Hrextractor/internal/entity"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profile_records (
	id               TEXT PRIMARY KEY,
	group_key        TEXT NOT NULL,
	name             TEXT NOT NULL,
	profession       TEXT NOT NULL,
	current_company  TEXT NOT NULL,
	current_location TEXT NOT NULL,
	email            TEXT NOT NULL,
	phone            TEXT NOT NULL,
	created_at       TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_profile_records_created_at ON profile_records (created_at);
`

// Record is one archived extraction result.
type Record struct {
	ID        string
	GroupKey  string
	Fields    entity.ProfileFields
	CreatedAt time.Time
}

type Store struct {
	db       *sql.DB
	postgres bool
	logger   *slog.Logger
}

func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	driver := "sqlite"
	postgres := false
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		driver = "pgx"
		postgres = true
	} else if dir := filepath.Dir(dsn); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive (%s): %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping archive: %w", err)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}

	logger.Info("archive.open", "driver", driver)
	return &Store{db: db, postgres: postgres, logger: logger}, nil
}

// SaveRecord implements pipeline.RecordSink.
func (s *Store) SaveRecord(ctx context.Context, groupKey string, f entity.ProfileFields) error {
	q := `INSERT INTO profile_records
		(id, group_key, name, profession, current_company, current_location, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if s.postgres {
		q = `INSERT INTO profile_records
		(id, group_key, name, profession, current_company, current_location, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	}

	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx, q,
		id, groupKey,
		f.Name, f.Profession, f.CurrentCompany, f.CurrentLocation, f.Email, f.Phone,
		time.Now().UTC(),
	)
	if err != nil {
		return common.WrapError(err, "insert record")
	}

	s.logger.Debug("archive.record_saved", "id", id, "group_key", groupKey)
	return nil
}

// ListRecords returns archived records, newest first. limit <= 0 means all.
func (s *Store) ListRecords(ctx context.Context, limit int) ([]Record, error) {
	q := `SELECT id, group_key, name, profession, current_company, current_location, email, phone, created_at
		FROM profile_records ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		if s.postgres {
			q += " LIMIT $1"
		} else {
			q += " LIMIT ?"
		}
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, common.WrapError(err, "query records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(
			&r.ID, &r.GroupKey,
			&r.Fields.Name, &r.Fields.Profession, &r.Fields.CurrentCompany,
			&r.Fields.CurrentLocation, &r.Fields.Email, &r.Fields.Phone,
			&r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
