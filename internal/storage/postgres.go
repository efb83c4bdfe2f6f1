package storage

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/lib/pq"

	"mintwatch/internal/domain"
)

const schema = `
	CREATE TABLE IF NOT EXISTS phase_transitions (
		id          TEXT PRIMARY KEY,
		launch      TEXT NOT NULL,
		from_phase  TEXT NOT NULL,
		to_phase    TEXT NOT NULL,
		occurred_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS phase_transitions_launch_idx
		ON phase_transitions (launch, occurred_at DESC);
`

type Postgres struct {
	db *sql.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func (p *Postgres) Close() error {
	return p.db.Close()
}

func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

// Save is idempotent on ID so redelivered queue messages are harmless.
func (p *Postgres) Save(ctx context.Context, t domain.Transition) error {
	query := `
		INSERT INTO phase_transitions (id, launch, from_phase, to_phase, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := p.db.ExecContext(ctx, query,
		t.ID,
		t.Launch,
		t.From.String(),
		t.To.String(),
		t.At,
	)

	return err
}

func (p *Postgres) FindByID(ctx context.Context, id string) (*domain.Transition, error) {
	query := `
		SELECT id, launch, from_phase, to_phase, occurred_at
		FROM phase_transitions WHERE id = $1
	`

	t, err := scanTransition(p.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (p *Postgres) FindAll(ctx context.Context, limit, offset int) ([]domain.Transition, error) {
	query := `
		SELECT id, launch, from_phase, to_phase, occurred_at
		FROM phase_transitions ORDER BY occurred_at DESC LIMIT $1 OFFSET $2
	`

	rows, err := p.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

func (p *Postgres) FindByLaunch(ctx context.Context, launch string, limit int) ([]domain.Transition, error) {
	query := `
		SELECT id, launch, from_phase, to_phase, occurred_at
		FROM phase_transitions WHERE launch = $1 ORDER BY occurred_at DESC LIMIT $2
	`

	rows, err := p.db.QueryContext(ctx, query, launch, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransition(s scanner) (*domain.Transition, error) {
	var (
		t        domain.Transition
		from, to string
	)
	if err := s.Scan(&t.ID, &t.Launch, &from, &to, &t.At); err != nil {
		return nil, err
	}

	var err error
	if t.From, err = domain.ParsePhase(from); err != nil {
		return nil, err
	}
	if t.To, err = domain.ParsePhase(to); err != nil {
		return nil, err
	}
	return &t, nil
}

func collect(rows *sql.Rows) ([]domain.Transition, error) {
	defer rows.Close()

	var transitions []domain.Transition
	for rows.Next() {
		t, err := scanTransition(rows)
		if err != nil {
			return nil, err
		}
		transitions = append(transitions, *t)
	}

	return transitions, rows.Err()
}
