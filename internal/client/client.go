// Package client submits wizard steps to a running autoboard server over
// HTTP. Client implements wizard.Submitter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/matthewbaird/autoboard/internal/fieldtype"
	"github.com/matthewbaird/autoboard/internal/types"
	"github.com/matthewbaird/autoboard/internal/validate"
)

// Step endpoints.
const (
	PathStep1 = "/boards/new/step1"
	PathStep2 = "/boards/new/step2/%d"
	PathStep3 = "/boards/new/step3/%d"
	PathStep4 = "/boards/new/step4/%d"
)

// RejectedError is a non-2xx answer from the server.
type RejectedError struct {
	Status int
	Detail string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.Status, e.Detail)
}

// Rejection returns the server's message.
func (e *RejectedError) Rejection() string { return e.Detail }

// Client talks to the autoboard HTTP surface. Requests are never retried.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// New creates a client for baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return &Client{http: http, logger: logger.Named("client")}
}

// CreateBoard posts step 1 and returns the raw answer for the caller to
// validate. Only an error status without a body is turned into an error.
func (c *Client) CreateBoard(ctx context.Context, req types.CreateBoardRequest) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(req).Post(PathStep1)
	if err != nil {
		c.logger.Error("step 1 request failed", zap.Error(err))
		return nil, fmt.Errorf("POST %s: %w", PathStep1, err)
	}
	body := resp.Body()
	if resp.IsError() && len(bytes.TrimSpace(body)) == 0 {
		return nil, &RejectedError{Status: resp.StatusCode(), Detail: resp.Status()}
	}
	c.logger.Debug("step 1 answered", zap.Int("status", resp.StatusCode()))
	return body, nil
}

func (c *Client) SaveListConfig(ctx context.Context, boardID int64, req types.ListConfigRequest) (types.StepResponse, error) {
	return c.step(ctx, fmt.Sprintf(PathStep2, boardID), req)
}

func (c *Client) SaveCreateEdit(ctx context.Context, boardID int64, req types.CreateEditRequest) (types.StepResponse, error) {
	return c.step(ctx, fmt.Sprintf(PathStep3, boardID), req)
}

func (c *Client) SaveView(ctx context.Context, boardID int64, req types.ViewRequest) (types.StepResponse, error) {
	return c.step(ctx, fmt.Sprintf(PathStep4, boardID), req)
}

func (c *Client) step(ctx context.Context, path string, body any) (types.StepResponse, error) {
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(path)
	if err != nil {
		c.logger.Error("step request failed", zap.String("path", path), zap.Error(err))
		return types.StepResponse{}, fmt.Errorf("POST %s: %w", path, err)
	}
	if resp.IsError() {
		return types.StepResponse{}, &RejectedError{Status: resp.StatusCode(), Detail: detailOf(resp)}
	}
	var out types.StepResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return types.StepResponse{}, &RejectedError{Status: resp.StatusCode(), Detail: validate.MsgInvalidResponse}
	}
	return out, nil
}

func detailOf(resp *resty.Response) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return resp.Status()
}

// Catalog is the field type catalog served by the server.
type Catalog struct {
	DataTypes []fieldtype.DataTypeInfo `json:"data_types"`
	Elements  []fieldtype.ElementInfo  `json:"element_types"`
	Displays  []fieldtype.DisplayInfo  `json:"display_types"`
}

// FieldTypes fetches the server's field type catalog.
func (c *Client) FieldTypes(ctx context.Context) (*Catalog, error) {
	var out Catalog
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/api/field-types")
	if err != nil {
		return nil, fmt.Errorf("GET /api/field-types: %w", err)
	}
	if resp.IsError() {
		return nil, &RejectedError{Status: resp.StatusCode(), Detail: detailOf(resp)}
	}
	return &out, nil
}

// Columns fetches the stored columns of a board.
func (c *Client) Columns(ctx context.Context, boardID int64) (types.ColumnsMeta, error) {
	var out types.ColumnsMeta
	path := fmt.Sprintf("/boards/%d/columns", boardID)
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get(path)
	if err != nil {
		return types.ColumnsMeta{}, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.IsError() {
		return types.ColumnsMeta{}, &RejectedError{Status: resp.StatusCode(), Detail: detailOf(resp)}
	}
	return out, nil
}
