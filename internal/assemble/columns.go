// Package assemble turns raw per-field step input into the canonical
// list view, create/edit and detail view documents.
//
// Row-level problems (a row without a name or element type) skip the row;
// document-level problems (no fields at all, a reference to a column the
// board does not have) fail the whole assembly.
package assemble

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matthewbaird/autoboard/internal/types"
)

var (
	ErrNoFields         = errors.New("at least one field required")
	ErrNoListColumns    = errors.New("at least one display column is required")
	ErrUnknownColumn    = errors.New("unknown column")
	ErrAlreadyAdded     = errors.New("field already added")
	ErrNoSelection      = errors.New("select a field to add")
	ErrUnknownRow       = errors.New("unknown row")
	ErrUnknownSection   = errors.New("unknown section")
	ErrInvalidSortOrder = errors.New("sort order must be asc or desc")
)

func unknownColumn(name string) error {
	return fmt.Errorf("%w: %s", ErrUnknownColumn, name)
}

// ColumnSet is the authoritative column list a document is assembled
// against. Lookups are by name, case-insensitive.
type ColumnSet struct {
	cols       []types.Column
	byName     map[string]types.Column
	fileAttach bool
}

// NewColumnSet builds a set from the board's columns. When fileAttach is
// true the synthetic attachment column is appended.
func NewColumnSet(cols []types.Column, fileAttach bool) *ColumnSet {
	s := &ColumnSet{
		cols:       make([]types.Column, 0, len(cols)+1),
		byName:     make(map[string]types.Column, len(cols)+1),
		fileAttach: fileAttach,
	}
	for _, c := range cols {
		s.add(c)
	}
	if fileAttach {
		s.add(types.AttachmentPseudoColumn())
	}
	return s
}

func (s *ColumnSet) add(c types.Column) {
	key := strings.ToLower(c.Name)
	if _, dup := s.byName[key]; dup {
		return
	}
	s.cols = append(s.cols, c)
	s.byName[key] = c
}

// Lookup returns the column named name.
func (s *ColumnSet) Lookup(name string) (types.Column, bool) {
	c, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Columns returns every column in order, attachment last.
func (s *ColumnSet) Columns() []types.Column {
	return append([]types.Column(nil), s.cols...)
}

// FileAttach reports whether the attachment column is part of the set.
func (s *ColumnSet) FileAttach() bool { return s.fileAttach }

// Len returns the number of columns including attachment.
func (s *ColumnSet) Len() int { return len(s.cols) }
