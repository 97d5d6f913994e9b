// internal/historian/dump_test.go
package historian

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jason-s-yu/trix/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpWritesJSONLines(t *testing.T) {
	sid := uuid.New()
	archive := &fakeArchive{}
	require.NoError(t, archive.SaveRounds(context.Background(), []models.RoundRecord{
		{SessionID: sid, ActionIndex: 1, Kind: models.RecordRoundAdded},
		{SessionID: uuid.New(), ActionIndex: 1, Kind: models.RecordRoundAdded},
		{SessionID: sid, ActionIndex: 2, Kind: models.RecordRoundUndone},
	}))

	var buf bytes.Buffer
	n, err := Dump(context.Background(), archive, sid, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var last models.RoundRecord
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &last))
	assert.Equal(t, models.RecordRoundUndone, last.Kind)
	assert.Equal(t, sid, last.SessionID)
}

func TestDumpUnknownSessionWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	n, err := Dump(context.Background(), &fakeArchive{}, uuid.New(), &buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, buf.String())
}
