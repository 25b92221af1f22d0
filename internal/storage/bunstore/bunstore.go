// Package bunstore implements the certificate record store on SQLite via
// the bun ORM. The table holds at most one row per recipient identity.
package bunstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	certify "github.com/apontes/go-certify"
)

// Compile-time interface check
var _ certify.RecordStore = (*Store)(nil)

// certificateRow is the bun model for the users_certificate table.
type certificateRow struct {
	bun.BaseModel `bun:"table:users_certificate,alias:c"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"name,notnull"`
	Grade     string    `bun:"grade,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// Store is a bun-backed RecordStore.
type Store struct {
	db *bun.DB
}

// Open opens (or creates) the SQLite database at dsn and prepares the
// certificate table. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, dsn string) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("bunstore: open %q: %w", dsn, err)
	}

	s := New(bun.NewDB(sqldb, sqlitedialect.New()))
	if err := s.Init(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing bun DB. Callers own schema setup via Init.
func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// Init creates the certificate table if it does not exist.
func (s *Store) Init(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*certificateRow)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: create table: %w", err)
	}
	return nil
}

// FindByID looks up a certificate record by recipient identity.
func (s *Store) FindByID(ctx context.Context, id string) (certify.Record, error) {
	row := new(certificateRow)
	err := s.db.NewSelect().
		Model(row).
		Where("c.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return certify.Record{}, fmt.Errorf("%w: %q", certify.ErrRecordNotFound, id)
	}
	if err != nil {
		return certify.Record{}, fmt.Errorf("bunstore: find %q: %w", id, err)
	}

	return certify.Record{
		ID:        row.ID,
		Name:      row.Name,
		Grade:     row.Grade,
		CreatedAt: row.CreatedAt,
	}, nil
}

// Put inserts or overwrites the record for the identity.
func (s *Store) Put(ctx context.Context, rec certify.Record) error {
	row := &certificateRow{
		ID:        rec.ID,
		Name:      rec.Name,
		Grade:     rec.Grade,
		CreatedAt: rec.CreatedAt,
	}

	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("grade = EXCLUDED.grade").
		Set("created_at = EXCLUDED.created_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("bunstore: put %q: %w", rec.ID, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
