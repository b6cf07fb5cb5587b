package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
)

// PostgresProvider 把文档保存在单张 documents 表中
type PostgresProvider struct {
	cfg    *config.Config
	dbpool *sql.DB
}

func NewPostgresProvider(cfg *config.Config, dbpool *sql.DB) (*PostgresProvider, error) {
	p := &PostgresProvider{
		cfg:    cfg,
		dbpool: dbpool,
	}

	query := `
		CREATE TABLE IF NOT EXISTS documents (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`

	ctx, cancel := p.operationContext()
	defer cancel()

	if _, err := p.dbpool.ExecContext(ctx, query); err != nil {
		return nil, err
	}

	return p, nil
}

func (p *PostgresProvider) operationContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), time.Duration(p.cfg.Storage.OperationTimeout)*time.Second)
}

func (p *PostgresProvider) Get(key string) (string, error) {
	query := `
		SELECT value FROM documents WHERE key = $1
	`

	ctx, cancel := p.operationContext()
	defer cancel()

	var value string
	if err := p.dbpool.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrKeyNotFound
		}
		return "", err
	}

	return value, nil
}

func (p *PostgresProvider) Set(key string, value string) error {
	query := `
		INSERT INTO documents (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value
	`

	ctx, cancel := p.operationContext()
	defer cancel()

	_, err := p.dbpool.ExecContext(ctx, query, key, value)
	return err
}

func (p *PostgresProvider) Remove(key string) error {
	query := `
		DELETE FROM documents WHERE key = $1
	`

	ctx, cancel := p.operationContext()
	defer cancel()

	_, err := p.dbpool.ExecContext(ctx, query, key)
	return err
}
