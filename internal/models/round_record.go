// internal/models/round_record.go
package models

import "github.com/google/uuid"

// RoundRecordKind names what happened to a session's ledger.
type RoundRecordKind string

const (
	RecordRoundAdded      RoundRecordKind = "round_added"
	RecordRoundUndone     RoundRecordKind = "round_undone"
	RecordSessionImported RoundRecordKind = "session_imported"
)

// RoundRecord holds the minimal info needed by the historian to archive one
// ledger change. ActionIndex increases by one per record within a session.
type RoundRecord struct {
	SessionID   uuid.UUID       `json:"session_id"`
	ActionIndex int             `json:"action_index"`
	Kind        RoundRecordKind `json:"kind"`
	Transaction Transaction     `json:"transaction"`
	Timestamp   int64           `json:"timestamp"`
}
