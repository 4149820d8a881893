// Package schema checks canonical configuration documents against CUE
// definitions before they are stored.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/matthewbaird/autoboard/internal/types"
)

//go:embed board.cue
var boardCUE string

// Definition names in board.cue.
const (
	DefListConfig = "#ListConfig"
	DefCreateEdit = "#CreateEdit"
	DefView       = "#View"
)

// Checker holds the compiled definitions. Checks are serialised on one
// CUE context.
type Checker struct {
	mu   sync.Mutex
	ctx  *cue.Context
	defs map[string]cue.Value
}

// NewChecker compiles the embedded definitions.
func NewChecker() (*Checker, error) {
	ctx := cuecontext.New()
	v := ctx.CompileString(boardCUE, cue.Filename("board.cue"))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("compiling board.cue: %w", err)
	}
	c := &Checker{ctx: ctx, defs: make(map[string]cue.Value)}
	for _, name := range []string{DefListConfig, DefCreateEdit, DefView} {
		def := v.LookupPath(cue.ParsePath(name))
		if !def.Exists() {
			return nil, fmt.Errorf("board.cue: missing definition %s", name)
		}
		c.defs[name] = def
	}
	return c, nil
}

// Check validates v, encoded as JSON, against the named definition.
func (c *Checker) Check(def string, v any) error {
	schema, ok := c.defs[def]
	if !ok {
		return fmt.Errorf("unknown definition %s", def)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.ctx.CompileBytes(data, cue.Filename(def+".json"))
	if err := doc.Err(); err != nil {
		return fmt.Errorf("decoding document: %w", err)
	}
	if err := schema.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%s: %w", def, err)
	}
	return nil
}

// CheckListConfig validates a list view document.
func (c *Checker) CheckListConfig(cfg types.ListViewConfig) error {
	return c.Check(DefListConfig, cfg)
}

// CheckCreateEdit validates a create/edit document.
func (c *Checker) CheckCreateEdit(cfg types.CreateEditConfig) error {
	return c.Check(DefCreateEdit, cfg)
}

// CheckView validates a detail view document.
func (c *Checker) CheckView(cfg types.ViewConfig) error {
	return c.Check(DefView, cfg)
}
