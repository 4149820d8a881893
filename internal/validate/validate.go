// Package validate holds the board validation predicates. Each predicate
// returns a Result carrying at most one user-facing message; the first
// failing check wins.
package validate

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/matthewbaird/autoboard/internal/types"
)

// User-facing messages.
const (
	MsgLabelRequired      = "Column label is required"
	MsgNameRequired       = "Column name is required"
	MsgDataTypeRequired   = "Column data type is required"
	MsgBoardNameRequired  = "Board name is required"
	MsgTableNameRequired  = "Physical table name is required"
	MsgFieldsNotArray     = "Fields must be an array"
	MsgFieldsEmpty        = "At least one field is required"
	MsgInvalidResponse    = "Invalid response format"
	MsgUnknownError       = "Unknown error"
	MsgInvalidResponseID  = "Invalid board_id in response"
	msgDuplicateNamesHead = "Duplicate column names: "
)

// Result is the outcome of a predicate.
type Result struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

var passed = Result{Valid: true}

func fail(msg string) Result { return Result{Error: msg} }

// Field is one column as entered on step 1.
type Field struct {
	Label    string `json:"label" yaml:"label"`
	Name     string `json:"name" yaml:"name"`
	DataType string `json:"data_type" yaml:"data_type"`
	Comment  string `json:"comment,omitempty" yaml:"comment,omitempty"`
	Required bool   `json:"required" yaml:"required"`
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// ValidateField checks label, then name, then data type.
func ValidateField(f Field) Result {
	if blank(f.Label) {
		return fail(MsgLabelRequired)
	}
	if blank(f.Name) {
		return fail(MsgNameRequired)
	}
	if f.DataType == "" {
		return fail(MsgDataTypeRequired)
	}
	return passed
}

// ValidateBoardBasics checks the board name, then the table name.
func ValidateBoardBasics(name, tableName string) Result {
	if blank(name) {
		return fail(MsgBoardNameRequired)
	}
	if blank(tableName) {
		return fail(MsgTableNameRequired)
	}
	return passed
}

// ValidateFields checks the field list. A nil slice means no list was
// given at all; a non-nil empty slice is an empty list.
func ValidateFields(fields []Field) Result {
	if fields == nil {
		return fail(MsgFieldsNotArray)
	}
	if len(fields) == 0 {
		return fail(MsgFieldsEmpty)
	}
	for _, f := range fields {
		if r := ValidateField(f); !r.Valid {
			return r
		}
	}
	return passed
}

// DuplicateResult lists case-folded names that occur more than once, in
// first-seen order.
type DuplicateResult struct {
	HasDuplicates bool
	Duplicates    []string
}

// CheckDuplicateNames compares names case-insensitively. Each duplicated
// name is reported once.
func CheckDuplicateNames(fields []Field) DuplicateResult {
	counts := make(map[string]int, len(fields))
	var dups []string
	for _, f := range fields {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		counts[key]++
		if counts[key] == 2 {
			dups = append(dups, key)
		}
	}
	return DuplicateResult{HasDuplicates: len(dups) > 0, Duplicates: dups}
}

// DuplicateNamesMessage formats the duplicate names failure.
func DuplicateNamesMessage(names []string) string {
	return msgDuplicateNamesHead + strings.Join(names, ", ")
}

// BoardParams is the raw step 1 input.
type BoardParams struct {
	BoardName    string  `json:"name" yaml:"name"`
	TableName    string  `json:"physical_table_name" yaml:"physical_table_name"`
	Note         string  `json:"note" yaml:"note"`
	IsFileAttach bool    `json:"is_file_attach" yaml:"is_file_attach"`
	Fields       []Field `json:"fields" yaml:"fields"`
}

// BoardData is the trimmed, canonical board fragment.
type BoardData struct {
	Board   BoardBasics       `json:"board"`
	Columns types.ColumnsMeta `json:"columns"`
}

// BoardBasics is the identity part of BoardData.
type BoardBasics struct {
	Name              string `json:"name"`
	PhysicalTableName string `json:"physical_table_name"`
	Note              string `json:"note"`
	IsFileAttach      bool   `json:"is_file_attach"`
}

// BuildResult is the outcome of BuildBoardData.
type BuildResult struct {
	Success bool       `json:"success"`
	Error   string     `json:"error,omitempty"`
	Data    *BoardData `json:"data,omitempty"`
}

// BuildBoardData validates basics, then every field, then name uniqueness,
// and returns the trimmed fragment on success.
func BuildBoardData(p BoardParams) BuildResult {
	if r := ValidateBoardBasics(p.BoardName, p.TableName); !r.Valid {
		return BuildResult{Error: r.Error}
	}
	if r := ValidateFields(p.Fields); !r.Valid {
		return BuildResult{Error: r.Error}
	}
	if d := CheckDuplicateNames(p.Fields); d.HasDuplicates {
		return BuildResult{Error: DuplicateNamesMessage(d.Duplicates)}
	}

	cols := make([]types.Column, len(p.Fields))
	for i, f := range p.Fields {
		cols[i] = types.Column{
			Name:     strings.TrimSpace(f.Name),
			Label:    strings.TrimSpace(f.Label),
			DataType: strings.TrimSpace(f.DataType),
			Comment:  strings.TrimSpace(f.Comment),
			Required: f.Required,
			Order:    i + 1,
		}
	}
	return BuildResult{
		Success: true,
		Data: &BoardData{
			Board: BoardBasics{
				Name:              strings.TrimSpace(p.BoardName),
				PhysicalTableName: strings.TrimSpace(p.TableName),
				Note:              strings.TrimSpace(p.Note),
				IsFileAttach:      p.IsFileAttach,
			},
			Columns: types.ColumnsMeta{Fields: cols},
		},
	}
}

// ResponseResult is the outcome of ValidateCreateBoardResponse.
type ResponseResult struct {
	Success bool   `json:"success"`
	BoardID int64  `json:"board_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ValidateCreateBoardResponse checks a step 1 acceptance body: a JSON object
// whose message is "success" and whose board_id is a positive integer.
func ValidateCreateBoardResponse(body []byte) ResponseResult {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return ResponseResult{Error: MsgInvalidResponse}
	}

	var message string
	if raw, ok := obj["message"]; ok {
		_ = json.Unmarshal(raw, &message)
	}
	if message != "success" {
		if message == "" {
			message = detailOf(obj)
		}
		if message == "" {
			message = MsgUnknownError
		}
		return ResponseResult{Error: message}
	}

	raw, ok := obj["board_id"]
	if !ok {
		return ResponseResult{Error: MsgInvalidResponseID}
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil || n <= 0 || n != math.Trunc(n) {
		return ResponseResult{Error: MsgInvalidResponseID}
	}
	return ResponseResult{Success: true, BoardID: int64(n)}
}

func detailOf(obj map[string]json.RawMessage) string {
	raw, ok := obj["detail"]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
