package types

import "time"

// Record is one row of a board's physical table keyed by column name.
type Record map[string]any

// ID returns the row id, or 0 when the record has none.
func (r Record) ID() int64 {
	switch v := r["id"].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	}
	return 0
}

// RecordQuery selects one page of a record table.
type RecordQuery struct {
	// Search is matched case-insensitively as a substring of any of
	// SearchColumns.
	Search        string
	SearchColumns []string
	Sort          []SortSpec
	// Limit 0 returns every row.
	Limit  int
	Offset int
}

// RecordPage is one page of records with the total row count of the
// filtered table.
type RecordPage struct {
	BoardID   int64    `json:"board_id"`
	BoardName string   `json:"board_name"`
	Records   []Record `json:"records"`
	Total     int      `json:"total"`
	Page      int      `json:"page"`
	PageSize  int      `json:"page_size"`
	Sort      SortSpec `json:"sort"`
	Search    string   `json:"search,omitempty"`
}

// File is an uploaded attachment. The blob lives at
// <files dir>/<BaseFolder>/<PhysicalName>.
type File struct {
	ID           int64     `json:"id"`
	BaseFolder   string    `json:"-"`
	PhysicalName string    `json:"-"`
	LogicalName  string    `json:"logical_name"`
	Size         int64     `json:"size"`
	Mime         string    `json:"mime"`
	CreatedAt    time.Time `json:"created_at"`
}
