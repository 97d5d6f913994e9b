// internal/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jason-s-yu/trix/internal/models"
)

// PostgresArchive stores round records through a pgx pool.
type PostgresArchive struct {
	DB *pgxpool.Pool
}

// ConnectPostgres creates the pool, pings it and applies the schema.
func ConnectPostgres(ctx context.Context, connStr string) (*PostgresArchive, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse pgx config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create pgx pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	schema, err := loadSchema(DialectPostgres)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply postgres schema: %w", err)
	}
	return &PostgresArchive{DB: pool}, nil
}

func (a *PostgresArchive) SaveRounds(ctx context.Context, recs []models.RoundRecord) error {
	q := `
		INSERT INTO round_log (session_id, action_index, kind, transaction_id, contract_type, scores, tx_timestamp, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (session_id, action_index) DO NOTHING
	`
	err := pgx.BeginTxFunc(ctx, a.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, rec := range recs {
			scores, err := scoresJSON(rec.Transaction)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, q,
				rec.SessionID, rec.ActionIndex, string(rec.Kind),
				rec.Transaction.ID, rec.Transaction.ContractType, scores,
				rec.Transaction.Timestamp, rec.Timestamp,
			); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx insert round records: %w", err)
	}
	return nil
}

func (a *PostgresArchive) ListRounds(ctx context.Context, sessionID uuid.UUID) ([]models.RoundRecord, error) {
	q := `
		SELECT session_id, action_index, kind, transaction_id, contract_type, scores, tx_timestamp, recorded_at
		FROM round_log
		WHERE session_id = $1
		ORDER BY action_index
	`
	rows, err := a.DB.Query(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RoundRecord
	for rows.Next() {
		var rec models.RoundRecord
		var kind string
		var scores []byte
		if err := rows.Scan(
			&rec.SessionID, &rec.ActionIndex, &kind,
			&rec.Transaction.ID, &rec.Transaction.ContractType, &scores,
			&rec.Transaction.Timestamp, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		rec.Kind = models.RoundRecordKind(kind)
		if rec.Transaction.Scores, err = parseScores(scores); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *PostgresArchive) Close() {
	a.DB.Close()
}
