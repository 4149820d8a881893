// Package types provides the board model and the canonical configuration
// documents exchanged between the wizard and the persistence layer.
// Documents reference columns by name only.
package types

import (
	"encoding/json"
	"strings"
	"time"
)

// AttachmentColumn is the synthetic column present when file attachment is
// enabled on a board.
const AttachmentColumn = "attachment"

// Meta document names stored per board.
const (
	MetaColumns    = "columns"
	MetaList       = "list"
	MetaCreateEdit = "create_edit"
	MetaView       = "view"

	SchemaVersion = "v1"
)

// Board is an operator-defined record type.
type Board struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	PhysicalTableName string    `json:"physical_table_name"`
	Note              string    `json:"note,omitempty"`
	IsFileAttach      bool      `json:"is_file_attach"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Column is one typed field of a board.
type Column struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	DataType string `json:"data_type"`
	Comment  string `json:"comment,omitempty"`
	Required bool   `json:"required"`
	Order    int    `json:"order"`
}

// AttachmentPseudoColumn returns the synthetic attachment column.
func AttachmentPseudoColumn() Column {
	return Column{Name: AttachmentColumn, Label: "Attachment", DataType: "string"}
}

// ColumnsMeta is the stored "columns" document of a board.
type ColumnsMeta struct {
	Fields []Column `json:"fields"`
}

// Find returns the column with the given name, compared case-insensitively.
func (m ColumnsMeta) Find(name string) (Column, bool) {
	for _, c := range m.Fields {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// MetaRecord is one stored configuration document.
type MetaRecord struct {
	BoardID   int64           `json:"board_id"`
	Name      string          `json:"name"`
	Meta      json.RawMessage `json:"meta"`
	Schema    string          `json:"schema"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ── List view ────────────────────────────────────────────────────────────────

// PageSizeOptions is the fixed page size choice list.
var PageSizeOptions = []int{10, 20, 50, 100}

// DefaultPageSize is used when no valid page size was chosen.
const DefaultPageSize = 20

// ListViewConfig configures the list and search view of a board.
type ListViewConfig struct {
	ViewMode    string       `json:"view_mode"`
	Columns     []ListColumn `json:"columns"`
	Pagination  Pagination   `json:"pagination"`
	DefaultSort []SortSpec   `json:"default_sort"`
	Search      SearchConfig `json:"search"`
	Actions     Actions      `json:"actions"`
}

// ListColumn is one displayed column of the list view.
type ListColumn struct {
	Name     string `json:"name"`
	Label    string `json:"label"`
	Width    string `json:"width"`
	Align    string `json:"align"`
	Sortable bool   `json:"sortable"`
}

// Pagination settings of the list view.
type Pagination struct {
	Enabled         bool  `json:"enabled"`
	PageSize        int   `json:"page_size"`
	PageSizeOptions []int `json:"page_size_options"`
}

// SortSpec orders the list by one column.
type SortSpec struct {
	Column string `json:"column"`
	Order  string `json:"order"` // "asc" or "desc"
}

// SearchConfig settings of the list view.
type SearchConfig struct {
	Enabled      bool     `json:"enabled"`
	Mode         string   `json:"mode"`
	SimpleFields []string `json:"simple_fields"`
	ShowToggle   bool     `json:"show_toggle"`
}

// Actions are the fixed row actions of the list view.
type Actions struct {
	ShowEdit   bool `json:"show_edit"`
	ShowDelete bool `json:"show_delete"`
	ShowDetail bool `json:"show_detail"`
}

// ReferencedNames returns every column name the config refers to.
func (c ListViewConfig) ReferencedNames() []string {
	names := make([]string, 0, len(c.Columns)+len(c.Search.SimpleFields)+len(c.DefaultSort))
	for _, col := range c.Columns {
		names = append(names, col.Name)
	}
	names = append(names, c.Search.SimpleFields...)
	for _, s := range c.DefaultSort {
		names = append(names, s.Column)
	}
	return names
}

// ── Create/edit form and detail view ─────────────────────────────────────────

// CreateEditConfig is the create/edit form document.
type CreateEditConfig struct {
	Columns []CreateEditField `json:"columns"`
}

// ViewConfig is the detail view document.
type ViewConfig struct {
	Columns []ViewField `json:"columns"`
}

// Option is one choice of a radio or checkbox-multi element.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ── Step payloads ────────────────────────────────────────────────────────────

// CreateBoardRequest is the step 1 payload. A non-nil BoardID edits an
// existing board.
type CreateBoardRequest struct {
	BoardID           *int64          `json:"board_id,omitempty"`
	Name              string          `json:"name"`
	PhysicalTableName string          `json:"physical_table_name,omitempty"`
	Note              string          `json:"note"`
	IsFileAttach      bool            `json:"is_file_attach"`
	Columns           []ColumnRequest `json:"columns"`
}

// ColumnRequest is one column of the step 1 payload.
type ColumnRequest struct {
	Name     string `json:"name,omitempty"`
	Label    string `json:"label"`
	DataType string `json:"data_type"`
	Comment  string `json:"comment,omitempty"`
	Required bool   `json:"required,omitempty"`
}

// CreateBoardResponse acknowledges step 1.
type CreateBoardResponse struct {
	Message  string `json:"message"`
	BoardID  int64  `json:"board_id"`
	Redirect string `json:"redirect,omitempty"`
}

// ListConfigRequest is the step 2 payload.
type ListConfigRequest struct {
	ListConfig ListViewConfig `json:"list_config"`
}

// CreateEditRequest is the step 3 payload.
type CreateEditRequest struct {
	CreateEdit CreateEditConfig `json:"create_edit"`
}

// ViewRequest is the step 4 payload.
type ViewRequest struct {
	View ViewConfig `json:"view"`
}

// StepResponse answers steps 2 to 4, and carries Detail on failure.
type StepResponse struct {
	Redirect string `json:"redirect,omitempty"`
	Detail   string `json:"detail,omitempty"`
}
