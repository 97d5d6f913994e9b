// internal/models/session.go
package models

// Session is the serializable aggregate shared between devices: the four
// seats plus the ordered round history.
type Session struct {
	Players []Player      `json:"players"`
	History []Transaction `json:"history"`
}
