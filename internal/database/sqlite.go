// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteArchive stores round records in a local SQLite file.
type SQLiteArchive struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database file at path and applies the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLiteArchive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	schema, err := loadSchema(DialectSQLite)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

func (a *SQLiteArchive) SaveRounds(ctx context.Context, recs []models.RoundRecord) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin sqlite tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO round_log (session_id, action_index, kind, transaction_id, contract_type, scores, tx_timestamp, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (session_id, action_index) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("prepare round insert: %w", err)
	}
	defer stmt.Close()

	for _, rec := range recs {
		scores, err := scoresJSON(rec.Transaction)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx,
			rec.SessionID.String(), rec.ActionIndex, string(rec.Kind),
			rec.Transaction.ID, rec.Transaction.ContractType, string(scores),
			rec.Transaction.Timestamp, rec.Timestamp,
		); err != nil {
			return fmt.Errorf("insert round record: %w", err)
		}
	}
	return tx.Commit()
}

func (a *SQLiteArchive) ListRounds(ctx context.Context, sessionID uuid.UUID) ([]models.RoundRecord, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT session_id, action_index, kind, transaction_id, contract_type, scores, tx_timestamp, recorded_at
		FROM round_log
		WHERE session_id = ?
		ORDER BY action_index
	`, sessionID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.RoundRecord
	for rows.Next() {
		var rec models.RoundRecord
		var sid, kind, scores string
		if err := rows.Scan(
			&sid, &rec.ActionIndex, &kind,
			&rec.Transaction.ID, &rec.Transaction.ContractType, &scores,
			&rec.Transaction.Timestamp, &rec.Timestamp,
		); err != nil {
			return nil, err
		}
		if rec.SessionID, err = uuid.Parse(sid); err != nil {
			return nil, fmt.Errorf("bad session_id column: %w", err)
		}
		rec.Kind = models.RoundRecordKind(kind)
		if rec.Transaction.Scores, err = parseScores([]byte(scores)); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *SQLiteArchive) Close() {
	_ = a.db.Close()
}
