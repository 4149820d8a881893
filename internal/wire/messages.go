// Package wire defines the WebSocket protocol of the live preview. A client
// sends raw step rows for a board and gets back the document the
// assembler would build from them. Nothing is stored.
package wire

import (
	"encoding/json"

	"github.com/matthewbaird/autoboard/internal/assemble"
)

// ── Client → Server messages ────────────────────────────────────────────────

// ClientMessage is the envelope for all client-to-server WebSocket messages.
type ClientMessage struct {
	Type string          `json:"type"` // "list", "create_edit", "detail", "ping"
	ID   string          `json:"id"`   // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ListData is the payload for "list" messages.
type ListData struct {
	BoardID int64                  `json:"board_id"`
	Input   assemble.ListViewInput `json:"input"`
}

// CreateEditData is the payload for "create_edit" messages.
type CreateEditData struct {
	BoardID int64                    `json:"board_id"`
	Rows    []assemble.CreateEditRow `json:"rows"`
}

// DetailData is the payload for "detail" messages.
type DetailData struct {
	BoardID  int64                  `json:"board_id"`
	Sections []assemble.ViewSection `json:"sections"`
}

// ── Server → Client messages ────────────────────────────────────────────────

// ServerMessage is the envelope for all server-to-client WebSocket messages.
type ServerMessage struct {
	Type      string `json:"type"`                 // "document", "error", "pong"
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// DocumentData carries an assembled document.
type DocumentData struct {
	Kind     string `json:"kind"` // "list", "create_edit", "view"
	Document any    `json:"document"`
}

// ErrorData carries an error message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
