package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"brandflowAPI/internal/payment"
)

const schema = `
CREATE TABLE IF NOT EXISTS payment_decisions (
    id          UUID PRIMARY KEY,
    uid         TEXT NOT NULL,
    email       TEXT NOT NULL,
    plan        TEXT NOT NULL,
    price       INTEGER NOT NULL,
    utr         TEXT NOT NULL,
    decision    TEXT NOT NULL,
    decided_by  TEXT NOT NULL,
    expiry_date BIGINT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS payment_decisions_created_at_idx ON payment_decisions (created_at DESC);
`

// Connect opens a pool sized for an audit table that sees a handful of
// writes per day.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	poolConfig.MaxConns = 5
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

type Postgres struct {
	db *pgxpool.Pool
}

func NewPostgres(db *pgxpool.Pool) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create ledger schema: %w", err)
	}
	return nil
}

func (p *Postgres) Record(ctx context.Context, e Entry) error {
	if e.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return err
		}
		e.ID = id
	}

	query := `
    INSERT INTO payment_decisions (id, uid, email, plan, price, utr, decision, decided_by, expiry_date)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `
	_, err := p.db.Exec(ctx, query,
		e.ID,
		e.UID,
		e.Email,
		e.Plan,
		e.Price,
		e.UTR,
		string(e.Decision),
		e.DecidedBy,
		e.ExpiryDate,
	)
	if err != nil {
		return fmt.Errorf("insert payment decision: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
    SELECT id, uid, email, plan, price, utr, decision, decided_by, expiry_date, created_at
    FROM payment_decisions
    ORDER BY created_at DESC
    LIMIT $1
    `
	rows, err := p.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var decision string
		err := rows.Scan(
			&e.ID,
			&e.UID,
			&e.Email,
			&e.Plan,
			&e.Price,
			&e.UTR,
			&decision,
			&e.DecidedBy,
			&e.ExpiryDate,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		e.Decision = payment.Decision(decision)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
