package handler

import (
	"net/http"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
)

type fieldTypeCatalog struct {
	DataTypes []fieldtype.DataTypeInfo `json:"data_types"`
	Elements  []fieldtype.ElementInfo  `json:"element_types"`
	Displays  []fieldtype.DisplayInfo  `json:"display_types"`
}

// FieldTypes serves the field type registry.
func FieldTypes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, fieldTypeCatalog{
		DataTypes: fieldtype.DataTypes(),
		Elements:  fieldtype.Elements(),
		Displays:  fieldtype.Displays(),
	})
}
