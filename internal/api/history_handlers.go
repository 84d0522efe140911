package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/{id}/history",
		Summary:     "Get undo history status",
		Tags:        []string{"History"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "undoBinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/undo",
		Summary:     "Undo the last card mutation",
		Tags:        []string{"History"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUndo)

	huma.Register(s.api, huma.Operation{
		OperationID: "redoBinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/redo",
		Summary:     "Redo a previously undone mutation",
		Tags:        []string{"History"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRedo)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearHistory",
		Method:      http.MethodDelete,
		Path:        "/api/v1/binders/{id}/history",
		Summary:     "Drop the undo history",
		Tags:        []string{"History"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearHistory)
}

// === DTOs ===

// HistoryStatusResponse describes where the binder sits in its undo log.
type HistoryStatusResponse struct {
	BinderID string   `json:"binder_id"`
	CanUndo  bool     `json:"can_undo"`
	CanRedo  bool     `json:"can_redo"`
	Entries  int      `json:"entries" doc:"Number of recorded snapshots"`
	Cursor   int      `json:"cursor" doc:"Index of the current snapshot"`
	Labels   []string `json:"labels,omitempty" doc:"Operation labels, oldest first"`
}

// HistoryStatusOutput wraps the history status for Huma.
type HistoryStatusOutput struct {
	Body HistoryStatusResponse
}

// === Handlers ===

func (s *Server) handleGetHistory(ctx context.Context, input *BinderPathInput) (*HistoryStatusOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	status, err := s.services.History.Status(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &HistoryStatusOutput{Body: HistoryStatusResponse{
		BinderID: status.BinderID,
		CanUndo:  status.CanUndo,
		CanRedo:  status.CanRedo,
		Entries:  status.Entries,
		Cursor:   status.Cursor,
		Labels:   status.Labels,
	}}, nil
}

func (s *Server) handleUndo(ctx context.Context, input *BinderPathInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.History.Undo(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleRedo(ctx context.Context, input *BinderPathInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.History.Redo(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleClearHistory(ctx context.Context, input *BinderPathInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.History.Clear(ctx, userID, input.BinderID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}
