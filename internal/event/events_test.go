package event

import (
	"encoding/json"
	"testing"

	"github.com/oklog/ulid/v2"
)

func TestNewBoardCreated(t *testing.T) {
	evt := NewBoardCreated(3, BoardPayload{Name: "Diary", PhysicalTableName: "diary", Columns: []string{"title", "mood"}})
	if evt.EventType != TypeBoardCreated {
		t.Errorf("EventType = %q, want %q", evt.EventType, TypeBoardCreated)
	}
	if evt.BoardID != 3 {
		t.Errorf("BoardID = %d, want 3", evt.BoardID)
	}
	if _, err := ulid.Parse(evt.ID); err != nil {
		t.Errorf("ID %q is not a ULID: %v", evt.ID, err)
	}
	var p BoardPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if len(p.Columns) != 2 {
		t.Errorf("payload columns = %v, want 2", p.Columns)
	}
}

func TestEventIDsAreOrdered(t *testing.T) {
	a := NewViewSaved(1, []string{"x"})
	b := NewViewSaved(1, []string{"x"})
	if a.ID == b.ID {
		t.Fatalf("ids collide: %s", a.ID)
	}
	if a.ID > b.ID {
		t.Errorf("ids out of order: %s > %s", a.ID, b.ID)
	}
}

func TestNewRecordUpdated(t *testing.T) {
	evt := NewRecordUpdated(2, 11, []string{"title", "mood"})
	if evt.EventType != TypeRecordUpdated {
		t.Errorf("EventType = %q, want %q", evt.EventType, TypeRecordUpdated)
	}
	var p RecordPayload
	if err := json.Unmarshal(evt.Payload, &p); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if p.RecordID != 11 {
		t.Errorf("payload record_id = %d, want 11", p.RecordID)
	}
	if evt.Summary != "Record 11 updated, 2 fields written" {
		t.Errorf("Summary = %q", evt.Summary)
	}
}
