// internal/historian/dump.go
package historian

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/database"
)

// Dump writes a session's archived records to w as JSON lines, oldest first.
// It returns the number of records written.
func Dump(ctx context.Context, archive database.Archive, sessionID uuid.UUID, w io.Writer) (int, error) {
	recs, err := archive.ListRounds(ctx, sessionID)
	if err != nil {
		return 0, fmt.Errorf("list rounds for %s: %w", sessionID, err)
	}
	enc := json.NewEncoder(w)
	for i, rec := range recs {
		if err := enc.Encode(rec); err != nil {
			return i, err
		}
	}
	return len(recs), nil
}
