// internal/database/archive.go
package database

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/models"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// Archive is the write-mostly store behind the historian. Sessions are never
// restored from it; it only keeps an audit trail of ledger changes, read back
// by `historian -dump`.
type Archive interface {
	// SaveRounds stores a batch atomically. Records already stored are skipped.
	SaveRounds(ctx context.Context, recs []models.RoundRecord) error
	// ListRounds returns a session's records ordered by action index.
	ListRounds(ctx context.Context, sessionID uuid.UUID) ([]models.RoundRecord, error)
	Close()
}

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// OpenArchive opens the archive for the configured dialect and applies its schema.
func OpenArchive(ctx context.Context, dialect, sqlitePath, postgresDSN string) (Archive, error) {
	switch dialect {
	case DialectSQLite:
		return OpenSQLite(ctx, sqlitePath)
	case DialectPostgres:
		if postgresDSN == "" {
			return nil, fmt.Errorf("ARCHIVE_DIALECT=postgres requires DATABASE_URL or PG_HOST")
		}
		return ConnectPostgres(ctx, postgresDSN)
	default:
		return nil, fmt.Errorf("unsupported archive dialect %q", dialect)
	}
}

func loadSchema(dialect string) (string, error) {
	b, err := schemaFS.ReadFile("schema/" + dialect + ".sql")
	if err != nil {
		return "", fmt.Errorf("read %s schema: %w", dialect, err)
	}
	return string(b), nil
}

// scoresJSON is the stored form of a transaction's deltas.
func scoresJSON(tx models.Transaction) ([]byte, error) {
	scores := tx.Scores
	if scores == nil {
		scores = map[models.PlayerID]int{}
	}
	return json.Marshal(scores)
}

func parseScores(data []byte) (map[models.PlayerID]int, error) {
	scores := map[models.PlayerID]int{}
	if len(data) == 0 {
		return scores, nil
	}
	if err := json.Unmarshal(data, &scores); err != nil {
		return nil, fmt.Errorf("bad scores column: %w", err)
	}
	return scores, nil
}
