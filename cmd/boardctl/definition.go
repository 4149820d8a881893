package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/validate"
	"github.com/matthewbaird/autoboard/internal/wizard"
)

// definition is a whole board in one YAML file. Empty create_edit or detail
// sections fall back to every column with its recommended type. create_edit
// rows without an element_type are left off the form.
type definition struct {
	Board      validate.BoardParams     `yaml:"board"`
	List       assemble.ListViewInput   `yaml:"list"`
	CreateEdit []assemble.CreateEditRow `yaml:"create_edit"`
	Detail     []assemble.ViewSection   `yaml:"detail"`
}

func loadDefinition(path string) (*definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var def definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return &def, nil
}

// apply runs the four wizard steps in order and returns the board id.
func apply(ctx context.Context, w *wizard.Wizard, def *definition) (int64, error) {
	if err := w.SubmitBasics(ctx, def.Board); err != nil {
		return 0, err
	}
	if err := w.SubmitListView(ctx, def.List); err != nil {
		return w.BoardID(), err
	}

	if err := w.EditCreateEdit(func(d *assemble.CreateEditDraft) error {
		if len(def.CreateEdit) == 0 {
			d.PopulateFromColumns()
			return nil
		}
		return d.ReplaceRows(def.CreateEdit)
	}); err != nil {
		return w.BoardID(), err
	}
	if err := w.SubmitCreateEdit(ctx); err != nil {
		return w.BoardID(), err
	}

	if err := w.EditView(func(d *assemble.ViewDraft) error {
		if len(def.Detail) == 0 {
			d.PopulateFromColumns()
			return nil
		}
		return d.ReplaceSections(def.Detail)
	}); err != nil {
		return w.BoardID(), err
	}
	if err := w.SubmitDetailView(ctx); err != nil {
		return w.BoardID(), err
	}
	return w.BoardID(), nil
}
