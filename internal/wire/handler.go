package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/assemble"
	"github.com/matthewbaird/autoboard/internal/schema"
	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/types"
)

// ColumnSource resolves the column set of a board.
type ColumnSource interface {
	ColumnSet(ctx context.Context, boardID int64) (types.Board, *assemble.ColumnSet, error)
}

// Handler manages WebSocket connections for the live preview.
type Handler struct {
	columns ColumnSource
	checker *schema.Checker
	logger  *zap.Logger
}

// NewHandler creates a preview handler. checker may be nil.
func NewHandler(columns ColumnSource, checker *schema.Checker, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{columns: columns, checker: checker, logger: logger.Named("preview")}
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn("websocket accept", zap.Error(err))
		return
	}
	defer conn.CloseNow()

	ctx := r.Context()
	for {
		var msg ClientMessage
		err := wsjson.Read(ctx, conn, &msg)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				h.logger.Debug("connection closed", zap.Int("status", int(websocket.CloseStatus(err))))
			}
			return
		}

		switch msg.Type {
		case "list":
			h.handleList(ctx, conn, msg)
		case "create_edit":
			h.handleCreateEdit(ctx, conn, msg)
		case "detail":
			h.handleDetail(ctx, conn, msg)
		case "ping":
			h.send(ctx, conn, ServerMessage{Type: "pong", RequestID: msg.ID})
		default:
			h.sendError(ctx, conn, msg.ID, "unknown_type", fmt.Sprintf("unknown message type: %s", msg.Type))
		}
	}
}

// columnSet loads the board's columns, answering with an error message
// when that fails.
func (h *Handler) columnSet(ctx context.Context, conn *websocket.Conn, msg ClientMessage, boardID int64) (*assemble.ColumnSet, bool) {
	_, cols, err := h.columns.ColumnSet(ctx, boardID)
	if err == nil {
		return cols, true
	}
	if errors.Is(err, service.ErrNotFound) {
		h.sendError(ctx, conn, msg.ID, "not_found", err.Error())
	} else {
		h.logger.Error("loading columns", zap.Int64("board_id", boardID), zap.Error(err))
		h.sendError(ctx, conn, msg.ID, "internal", "internal server error")
	}
	return nil, false
}

func (h *Handler) handleList(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data ListData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid list data")
		return
	}
	cols, ok := h.columnSet(ctx, conn, msg, data.BoardID)
	if !ok {
		return
	}
	doc, err := assemble.ListView(data.Input, cols)
	if err == nil && h.checker != nil {
		err = h.checker.CheckListConfig(doc)
	}
	h.reply(ctx, conn, msg.ID, types.MetaList, doc, err)
}

func (h *Handler) handleCreateEdit(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data CreateEditData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid create_edit data")
		return
	}
	cols, ok := h.columnSet(ctx, conn, msg, data.BoardID)
	if !ok {
		return
	}
	doc, err := assemble.CreateEdit(data.Rows, cols)
	if err == nil && h.checker != nil {
		err = h.checker.CheckCreateEdit(doc)
	}
	h.reply(ctx, conn, msg.ID, types.MetaCreateEdit, doc, err)
}

func (h *Handler) handleDetail(ctx context.Context, conn *websocket.Conn, msg ClientMessage) {
	var data DetailData
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		h.sendError(ctx, conn, msg.ID, "invalid_data", "invalid detail data")
		return
	}
	cols, ok := h.columnSet(ctx, conn, msg, data.BoardID)
	if !ok {
		return
	}
	doc, err := assemble.DetailView(data.Sections, cols)
	if err == nil && h.checker != nil {
		err = h.checker.CheckView(doc)
	}
	h.reply(ctx, conn, msg.ID, types.MetaView, doc, err)
}

func (h *Handler) reply(ctx context.Context, conn *websocket.Conn, requestID, kind string, doc any, err error) {
	if err != nil {
		h.sendError(ctx, conn, requestID, "assemble_error", err.Error())
		return
	}
	h.send(ctx, conn, ServerMessage{
		Type:      "document",
		RequestID: requestID,
		Data:      DocumentData{Kind: kind, Document: doc},
	})
}

func (h *Handler) send(ctx context.Context, conn *websocket.Conn, msg ServerMessage) {
	if err := wsjson.Write(ctx, conn, msg); err != nil {
		h.logger.Debug("write error", zap.Error(err))
	}
}

func (h *Handler) sendError(ctx context.Context, conn *websocket.Conn, requestID, code, message string) {
	h.send(ctx, conn, ServerMessage{
		Type:      "error",
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
		},
	})
}
