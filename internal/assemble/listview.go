package assemble

import (
	"strings"

	"github.com/matthewbaird/autoboard/internal/types"
)

// DefaultViewMode is used when no view mode was chosen.
const DefaultViewMode = "table"

// ListViewInput is the raw step 2 input.
type ListViewInput struct {
	ViewMode          string   `json:"view_mode" yaml:"view_mode"`
	Columns           []string `json:"columns" yaml:"columns"`
	PaginationEnabled bool     `json:"pagination_enabled" yaml:"pagination_enabled"`
	PageSize          int      `json:"page_size" yaml:"page_size"`
	SortColumn        string   `json:"sort_column" yaml:"sort_column"`
	SortOrder         string   `json:"sort_order" yaml:"sort_order"`
	SearchEnabled     bool     `json:"search_enabled" yaml:"search_enabled"`
	SearchFields      []string `json:"search_fields" yaml:"search_fields"`
}

// ListView assembles the list view document. Every referenced name must
// resolve in cols; labels come from the column set.
func ListView(in ListViewInput, cols *ColumnSet) (types.ListViewConfig, error) {
	cfg := types.ListViewConfig{
		ViewMode: strings.TrimSpace(in.ViewMode),
		Columns:  []types.ListColumn{},
		Pagination: types.Pagination{
			Enabled:         in.PaginationEnabled,
			PageSize:        types.DefaultPageSize,
			PageSizeOptions: append([]int(nil), types.PageSizeOptions...),
		},
		DefaultSort: []types.SortSpec{},
		Search: types.SearchConfig{
			Enabled:      in.SearchEnabled,
			Mode:         "simple",
			SimpleFields: []string{},
			ShowToggle:   true,
		},
		Actions: types.Actions{ShowEdit: true, ShowDelete: true, ShowDetail: true},
	}
	if cfg.ViewMode == "" {
		cfg.ViewMode = DefaultViewMode
	}
	for _, n := range types.PageSizeOptions {
		if in.PageSize == n {
			cfg.Pagination.PageSize = n
		}
	}

	seen := make(map[string]bool, len(in.Columns))
	for _, name := range in.Columns {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, ok := cols.Lookup(name)
		if !ok {
			return types.ListViewConfig{}, unknownColumn(name)
		}
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		cfg.Columns = append(cfg.Columns, types.ListColumn{
			Name:     c.Name,
			Label:    c.Label,
			Width:    "auto",
			Align:    "left",
			Sortable: true,
		})
	}
	if len(cfg.Columns) == 0 {
		return types.ListViewConfig{}, ErrNoListColumns
	}

	if sortCol := strings.TrimSpace(in.SortColumn); sortCol != "" {
		c, ok := cols.Lookup(sortCol)
		if !ok {
			return types.ListViewConfig{}, unknownColumn(sortCol)
		}
		order := strings.ToLower(strings.TrimSpace(in.SortOrder))
		switch order {
		case "":
			order = "desc"
		case "asc", "desc":
		default:
			return types.ListViewConfig{}, ErrInvalidSortOrder
		}
		cfg.DefaultSort = append(cfg.DefaultSort, types.SortSpec{Column: c.Name, Order: order})
	}

	for _, name := range in.SearchFields {
		if strings.TrimSpace(name) == "" {
			continue
		}
		c, ok := cols.Lookup(name)
		if !ok {
			return types.ListViewConfig{}, unknownColumn(name)
		}
		if !containsString(cfg.Search.SimpleFields, c.Name) {
			cfg.Search.SimpleFields = append(cfg.Search.SimpleFields, c.Name)
		}
	}
	return cfg, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
