package handler

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/service"
)

var checkerTmpl = template.Must(template.New("checker").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{.Board.Name}}</title></head>
<body>
<h1>{{.Board.Name}} <small>{{.Board.PhysicalTableName}}</small></h1>
{{if .Note}}<section class="note">{{.Note}}</section>{{end}}
<table>
<tr><th>name</th><th>label</th><th>data type</th><th>required</th></tr>
{{range .Board.Columns}}<tr><td>{{.Name}}</td><td>{{.Label}}</td><td>{{.DataType}}</td><td>{{.Required}}</td></tr>
{{end}}</table>
{{range .Docs}}<h2>{{.Name}}</h2>
<pre>{{.Body}}</pre>
{{end}}</body>
</html>
`))

type checkerDoc struct {
	Name string
	Body string
}

type checkerPage struct {
	Board struct {
		Name              string
		PhysicalTableName string
		Columns           any
	}
	Note template.HTML
	Docs []checkerDoc
}

// Checker renders every stored document of a board on one page. The board
// note is rendered as markdown.
func (h *BoardHandler) Checker(w http.ResponseWriter, r *http.Request) {
	id, ok := parseBoardID(w, r, "id")
	if !ok {
		return
	}
	def, err := h.svc.Definition(r.Context(), id)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	page, err := buildCheckerPage(def)
	if err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	var buf bytes.Buffer
	if err := checkerTmpl.Execute(&buf, page); err != nil {
		serviceErrorToHTTP(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("checker write", zap.Error(err))
	}
}

func buildCheckerPage(def *service.Definition) (checkerPage, error) {
	var page checkerPage
	page.Board.Name = def.Board.Name
	page.Board.PhysicalTableName = def.Board.PhysicalTableName
	page.Board.Columns = def.Columns.Fields

	if def.Board.Note != "" {
		var note bytes.Buffer
		// goldmark escapes raw HTML by default.
		if err := goldmark.Convert([]byte(def.Board.Note), &note); err != nil {
			return page, err
		}
		page.Note = template.HTML(note.String())
	}

	for _, rec := range def.Meta {
		var body bytes.Buffer
		if err := json.Indent(&body, rec.Meta, "", "  "); err != nil {
			body.Reset()
			body.Write(rec.Meta)
		}
		page.Docs = append(page.Docs, checkerDoc{Name: rec.Name, Body: body.String()})
	}
	return page, nil
}
