package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hoangpro267200/omen/domain"
)

// Durable is a Repository backed by Postgres via pgx. Save uses an upsert
// keyed by signal_id, which is deterministic, so retries after a partial
// failure are always safe.
type Durable struct {
	db *pgxpool.Pool
}

// NewDurable wraps an already-connected pgxpool.Pool. Schema management is
// out of scope for the Engine (see SPEC_FULL.md); the caller owns migrations.
func NewDurable(db *pgxpool.Pool) *Durable {
	return &Durable{db: db}
}

// Save upserts signal keyed by signal_id.
func (d *Durable) Save(ctx context.Context, signal domain.Signal) error {
	payload, err := json.Marshal(signal)
	if err != nil {
		return err
	}

	_, err = d.db.Exec(ctx, `
		INSERT INTO signals (signal_id, input_event_hash, generated_at, emitted_at, payload)
		VALUES ($1, $2, $3, $4, $5::jsonb)
		ON CONFLICT (signal_id) DO UPDATE SET
			emitted_at = EXCLUDED.emitted_at,
			payload    = EXCLUDED.payload
	`, signal.SignalID, signal.InputEventHash, signal.GeneratedAt, signal.EmittedAt, payload)
	return err
}

// FindByID loads the signal with the given signal_id.
func (d *Durable) FindByID(ctx context.Context, signalID string) (domain.Signal, bool, error) {
	row := d.db.QueryRow(ctx, `SELECT payload FROM signals WHERE signal_id = $1`, signalID)
	return scanSignal(row)
}

// FindByHash loads the signal previously saved for inputEventHash, if any.
func (d *Durable) FindByHash(ctx context.Context, inputEventHash string) (domain.Signal, bool, error) {
	row := d.db.QueryRow(ctx, `
		SELECT payload FROM signals WHERE input_event_hash = $1
		ORDER BY generated_at DESC LIMIT 1
	`, inputEventHash)
	return scanSignal(row)
}

// FindRecent loads up to limit signals ordered newest first, optionally
// filtered to generated_at >= *since.
func (d *Durable) FindRecent(ctx context.Context, limit int, since *time.Time) ([]domain.Signal, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows pgx.Rows
	var err error
	if since != nil {
		rows, err = d.db.Query(ctx, `
			SELECT payload FROM signals
			WHERE generated_at >= $1
			ORDER BY generated_at DESC
			LIMIT $2
		`, *since, limit)
	} else {
		rows, err = d.db.Query(ctx, `
			SELECT payload FROM signals
			ORDER BY generated_at DESC
			LIMIT $1
		`, limit)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var signal domain.Signal
		if err := json.Unmarshal(payload, &signal); err != nil {
			return nil, err
		}
		signals = append(signals, signal)
	}
	return signals, rows.Err()
}

type scannable interface {
	Scan(dest ...interface{}) error
}

func scanSignal(row scannable) (domain.Signal, bool, error) {
	var payload []byte
	if err := row.Scan(&payload); err != nil {
		if err == pgx.ErrNoRows {
			return domain.Signal{}, false, nil
		}
		return domain.Signal{}, false, err
	}
	var signal domain.Signal
	if err := json.Unmarshal(payload, &signal); err != nil {
		return domain.Signal{}, false, err
	}
	return signal, true, nil
}
