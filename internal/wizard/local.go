package wizard

import (
	"context"
	"encoding/json"

	"github.com/matthewbaird/autoboard/internal/service"
	"github.com/matthewbaird/autoboard/internal/types"
)

// LocalSubmitter submits steps to an in-process BoardService. Rejections
// come back as error payloads, the same way the HTTP surface answers.
type LocalSubmitter struct {
	svc *service.BoardService
}

func NewLocalSubmitter(svc *service.BoardService) *LocalSubmitter {
	return &LocalSubmitter{svc: svc}
}

func rejected(err error) bool {
	code := service.HTTPStatus(err)
	return code >= 400 && code < 500
}

func (s *LocalSubmitter) CreateBoard(ctx context.Context, req types.CreateBoardRequest) ([]byte, error) {
	resp, err := s.svc.CreateOrUpdateBoard(ctx, req)
	if err != nil {
		if rejected(err) {
			return json.Marshal(types.StepResponse{Detail: err.Error()})
		}
		return nil, err
	}
	return json.Marshal(resp)
}

func (s *LocalSubmitter) step(resp types.StepResponse, err error) (types.StepResponse, error) {
	if err != nil && rejected(err) {
		return types.StepResponse{Detail: err.Error()}, nil
	}
	return resp, err
}

func (s *LocalSubmitter) SaveListConfig(ctx context.Context, boardID int64, req types.ListConfigRequest) (types.StepResponse, error) {
	return s.step(s.svc.SaveListConfig(ctx, boardID, req.ListConfig))
}

func (s *LocalSubmitter) SaveCreateEdit(ctx context.Context, boardID int64, req types.CreateEditRequest) (types.StepResponse, error) {
	return s.step(s.svc.SaveCreateEdit(ctx, boardID, req.CreateEdit))
}

func (s *LocalSubmitter) SaveView(ctx context.Context, boardID int64, req types.ViewRequest) (types.StepResponse, error) {
	return s.step(s.svc.SaveView(ctx, boardID, req.View))
}
