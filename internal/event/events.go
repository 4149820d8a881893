// Package event defines the domain events emitted when a wizard step is
// accepted by the persistence layer or a board record changes.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event types.
const (
	TypeBoardCreated    = "board_created"
	TypeBoardUpdated    = "board_updated"
	TypeListConfigSaved = "list_config_saved"
	TypeCreateEditSaved = "create_edit_saved"
	TypeViewSaved       = "view_saved"
	TypeRecordCreated   = "record_created"
	TypeRecordUpdated   = "record_updated"
	TypeRecordDeleted   = "record_deleted"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	OccurredAt time.Time       `json:"occurred_at"`
	BoardID    int64           `json:"board_id"`
	Summary    string          `json:"summary"`
	Payload    json.RawMessage `json:"payload,omitempty"`
}

// Publisher sends domain events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, evt DomainEvent)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, DomainEvent) {}

func newID() string { return ulid.Make().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func newEvent(eventType string, boardID int64, summary string, payload any) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  eventType,
		OccurredAt: time.Now().UTC(),
		BoardID:    boardID,
		Summary:    summary,
		Payload:    mustJSON(payload),
	}
}

// BoardPayload describes a created or updated board.
type BoardPayload struct {
	Name              string   `json:"name"`
	PhysicalTableName string   `json:"physical_table_name"`
	Columns           []string `json:"columns"`
	AddedColumns      []string `json:"added_columns,omitempty"`
}

func NewBoardCreated(boardID int64, p BoardPayload) DomainEvent {
	return newEvent(TypeBoardCreated, boardID,
		fmt.Sprintf("Board %q created with %d columns", p.Name, len(p.Columns)), p)
}

func NewBoardUpdated(boardID int64, p BoardPayload) DomainEvent {
	return newEvent(TypeBoardUpdated, boardID,
		fmt.Sprintf("Board %q updated, %d columns added", p.Name, len(p.AddedColumns)), p)
}

// ConfigPayload describes a stored configuration document.
type ConfigPayload struct {
	Document string   `json:"document"`
	Fields   []string `json:"fields"`
}

func NewListConfigSaved(boardID int64, fields []string) DomainEvent {
	return newEvent(TypeListConfigSaved, boardID,
		fmt.Sprintf("List view saved with %d columns", len(fields)),
		ConfigPayload{Document: "list", Fields: fields})
}

func NewCreateEditSaved(boardID int64, fields []string) DomainEvent {
	return newEvent(TypeCreateEditSaved, boardID,
		fmt.Sprintf("Create/edit form saved with %d fields", len(fields)),
		ConfigPayload{Document: "create_edit", Fields: fields})
}

func NewViewSaved(boardID int64, fields []string) DomainEvent {
	return newEvent(TypeViewSaved, boardID,
		fmt.Sprintf("Detail view saved with %d fields", len(fields)),
		ConfigPayload{Document: "view", Fields: fields})
}

// RecordPayload identifies a changed record.
type RecordPayload struct {
	RecordID int64    `json:"record_id"`
	Fields   []string `json:"fields,omitempty"`
}

func NewRecordCreated(boardID, recordID int64, fields []string) DomainEvent {
	return newEvent(TypeRecordCreated, boardID,
		fmt.Sprintf("Record %d created", recordID), RecordPayload{RecordID: recordID, Fields: fields})
}

func NewRecordUpdated(boardID, recordID int64, fields []string) DomainEvent {
	return newEvent(TypeRecordUpdated, boardID,
		fmt.Sprintf("Record %d updated, %d fields written", recordID, len(fields)),
		RecordPayload{RecordID: recordID, Fields: fields})
}

func NewRecordDeleted(boardID, recordID int64) DomainEvent {
	return newEvent(TypeRecordDeleted, boardID,
		fmt.Sprintf("Record %d deleted", recordID), RecordPayload{RecordID: recordID})
}
