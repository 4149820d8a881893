package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/matthewbaird/autoboard/internal/types"
)

const maxIdentifierLen = 63

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedColumns = map[string]bool{
	"id":                   true,
	"created_at":           true,
	"updated_at":           true,
	types.AttachmentColumn: true,
}

var reservedTables = map[string]bool{
	"boards":    true,
	"meta_data": true,
}

func checkIdentifier(kind, name string) error {
	if len(name) > maxIdentifierLen {
		return invalid("%s name %q is longer than %d characters", kind, name, maxIdentifierLen)
	}
	if !identifierRe.MatchString(name) {
		return invalid("%s name %q must start with a letter or underscore and contain only letters, digits and underscores", kind, name)
	}
	return nil
}

func checkTableName(name string) error {
	if err := checkIdentifier("Table", name); err != nil {
		return err
	}
	lower := strings.ToLower(name)
	if reservedTables[lower] || strings.HasPrefix(lower, "sqlite_") {
		return invalid("Table name %q is reserved", name)
	}
	return nil
}

func checkColumnName(name string) error {
	if err := checkIdentifier("Column", name); err != nil {
		return err
	}
	if reservedColumns[strings.ToLower(name)] {
		return invalid("Column name %q is reserved", name)
	}
	return nil
}

// generateTableName returns a fresh physical table name.
func generateTableName() string {
	return "board_" + strings.ToLower(ulid.Make().String())
}

// columnNamer hands out col_<n> names that do not collide with taken.
type columnNamer struct {
	taken map[string]bool
	next  int
}

func newColumnNamer() *columnNamer {
	return &columnNamer{taken: make(map[string]bool)}
}

func (n *columnNamer) reserve(name string) {
	if name != "" {
		n.taken[strings.ToLower(name)] = true
	}
}

func (n *columnNamer) name() string {
	for {
		n.next++
		name := fmt.Sprintf("col_%d", n.next)
		if !n.taken[name] {
			n.taken[name] = true
			return name
		}
	}
}
