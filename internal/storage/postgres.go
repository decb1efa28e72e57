package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/File-Sharing-BondBridg/signed-url-tools/internal/models"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresStorage keeps records in the signed_urls table. The position
// column preserves insertion order.
type PostgresStorage struct {
	db  *sql.DB
	log *zap.Logger
}

// NewPostgresStorage uses an already opened database. The table is
// expected to exist.
func NewPostgresStorage(db *sql.DB, log *zap.Logger) *PostgresStorage {
	return &PostgresStorage{db: db, log: log}
}

// ConnectPostgres opens the database and makes sure the table exists.
func ConnectPostgres(ctx context.Context, connectionString string, log *zap.Logger) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := NewPostgresStorage(db, log)
	if err := p.createTables(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Debug("connected to PostgreSQL")
	return p, nil
}

func (p *PostgresStorage) createTables(ctx context.Context) error {
	query := `
    CREATE TABLE IF NOT EXISTS signed_urls (
        key TEXT PRIMARY KEY,
        position INTEGER NOT NULL,
        url TEXT NOT NULL,
        created_at VARCHAR(64) NOT NULL,
        expiration VARCHAR(64) NOT NULL,
        history JSONB NOT NULL DEFAULT '[]'
    );

    CREATE INDEX IF NOT EXISTS idx_signed_urls_position ON signed_urls(position);
    `
	_, err := p.db.ExecContext(ctx, query)
	return err
}

func (p *PostgresStorage) Close() error {
	return p.db.Close()
}

func (p *PostgresStorage) Load(ctx context.Context) (*models.Records, error) {
	query := `
    SELECT key, url, created_at, expiration, history
    FROM signed_urls ORDER BY position
    `
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := models.NewRecords()
	for rows.Next() {
		var (
			key     string
			rec     models.Record
			history []byte
		)
		if err := rows.Scan(&key, &rec.URL, &rec.CreatedAt, &rec.Expiration, &history); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		if err := json.Unmarshal(history, &rec.History); err != nil {
			return nil, fmt.Errorf("record %s: invalid history: %w", key, err)
		}
		records.Set(key, rec)
	}
	return records, rows.Err()
}

func (p *PostgresStorage) Save(ctx context.Context, records *models.Records) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM signed_urls`); err != nil {
		return fmt.Errorf("failed to clear records: %w", err)
	}

	insert := `
    INSERT INTO signed_urls (key, position, url, created_at, expiration, history)
    VALUES ($1, $2, $3, $4, $5, $6)
    `
	for i, key := range records.Keys() {
		rec, _ := records.Get(key)
		history, err := json.Marshal(rec.History)
		if err != nil {
			return fmt.Errorf("record %s: %w", key, err)
		}
		if _, err := tx.ExecContext(ctx, insert, key, i, rec.URL, rec.CreatedAt, rec.Expiration, string(history)); err != nil {
			return fmt.Errorf("failed to insert record %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	p.log.Debug("records saved", zap.Int("count", records.Len()))
	return nil
}
