package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/binderapp/binder-server/internal/domain"
	"github.com/binderapp/binder-server/internal/service"
)

func (s *Server) registerBinderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createBinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders",
		Summary:     "Create a binder",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBinder)

	huma.Register(s.api, huma.Operation{
		OperationID: "listBinders",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders",
		Summary:     "List the caller's binders",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBinders)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPublicBinders",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/public",
		Summary:     "List public binders",
		Tags:        []string{"Binders"},
	}, s.handleListPublicBinders)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBinder",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/{id}",
		Summary:     "Get a binder",
		Description: "Owners see their private binders; everyone else only sees public ones",
		Tags:        []string{"Binders"},
	}, s.handleGetBinder)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBinder",
		Method:      http.MethodPatch,
		Path:        "/api/v1/binders/{id}",
		Summary:     "Update binder metadata or settings",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBinder)

	huma.Register(s.api, huma.Operation{
		OperationID: "archiveBinder",
		Method:      http.MethodDelete,
		Path:        "/api/v1/binders/{id}",
		Summary:     "Archive a binder",
		Description: "Soft delete; the binder can be restored later",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleArchiveBinder)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreBinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/restore",
		Summary:     "Restore an archived binder",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRestoreBinder)

	huma.Register(s.api, huma.Operation{
		OperationID: "addCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/cards",
		Summary:     "Place a card in a slot",
		Description: "Position -1 places the card in the first free slot",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "removeCard",
		Method:      http.MethodDelete,
		Path:        "/api/v1/binders/{id}/cards/{position}",
		Summary:     "Remove the card at a slot",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRemoveCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveCard",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/cards/move",
		Summary:     "Move a card to an empty slot",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMoveCard)

	huma.Register(s.api, huma.Operation{
		OperationID: "swapCards",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/cards/swap",
		Summary:     "Swap the contents of two slots",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSwapCards)

	huma.Register(s.api, huma.Operation{
		OperationID: "clearPage",
		Method:      http.MethodDelete,
		Path:        "/api/v1/binders/{id}/pages/{page}",
		Summary:     "Clear every slot on a page",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleClearPage)

	huma.Register(s.api, huma.Operation{
		OperationID: "condenseBinder",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/condense",
		Summary:     "Pack all cards to the front",
		Description: "Removes gaps while preserving card order",
		Tags:        []string{"Binders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCondenseBinder)
}

// === DTOs ===

// CreateBinderInput contains the binder creation request.
type CreateBinderInput struct {
	Authorization string `header:"Authorization"`
	Body          struct {
		Name        string                 `json:"name" doc:"Binder name"`
		Description string                 `json:"description,omitempty"`
		Public      bool                   `json:"public,omitempty" doc:"Visible to everyone when true"`
		Settings    *domain.BinderSettings `json:"settings,omitempty" doc:"Grid settings, defaults to 3x3"`
	}
}

// UpdateBinderInput contains the binder patch request. Omitted fields are
// left unchanged.
type UpdateBinderInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Body          struct {
		Name        *string                `json:"name,omitempty"`
		Description *string                `json:"description,omitempty"`
		Public      *bool                  `json:"public,omitempty"`
		Settings    *domain.BinderSettings `json:"settings,omitempty"`
	}
}

// AuthInput carries only the auth header.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// BinderPathInput identifies one binder for owner-only operations.
type BinderPathInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
}

// GetBinderInput identifies one binder; the auth header is optional.
type GetBinderInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
}

// AddCardInput contains the slot placement request.
type AddCardInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Body          struct {
		Position  int    `json:"position" doc:"Zero-based slot position, -1 for first free slot"`
		CardID    string `json:"card_id" doc:"Catalog card ID, e.g. base1-4"`
		Condition string `json:"condition,omitempty" doc:"Card condition grade"`
		Notes     string `json:"notes,omitempty"`
		Quantity  int    `json:"quantity,omitempty" doc:"Copies in this slot, defaults to 1"`
	}
}

// RemoveCardInput identifies one slot to clear.
type RemoveCardInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Position      int    `path:"position"`
}

// MoveCardInput contains the move request.
type MoveCardInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Body          struct {
		From int `json:"from"`
		To   int `json:"to"`
	}
}

// SwapCardsInput contains the swap request.
type SwapCardsInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Body          struct {
		A int `json:"a"`
		B int `json:"b"`
	}
}

// ClearPageInput identifies one page to clear.
type ClearPageInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Page          int    `path:"page"`
}

// BinderResponse is the API shape of a binder.
type BinderResponse struct {
	ID          string                 `json:"id"`
	OwnerID     string                 `json:"owner_id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Slug        string                 `json:"slug,omitempty"`
	Public      bool                   `json:"public"`
	Settings    domain.BinderSettings  `json:"settings"`
	Cards       map[int]domain.CardRef `json:"cards"`
	CardCount   int                    `json:"card_count"`
	PageCount   int                    `json:"page_count"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// BinderOutput wraps a single binder for Huma.
type BinderOutput struct {
	Body BinderResponse
}

// BinderListResponse is a list of binders.
type BinderListResponse struct {
	Binders []BinderResponse `json:"binders"`
	Total   int              `json:"total"`
}

// BinderListOutput wraps a binder list for Huma.
type BinderListOutput struct {
	Body BinderListResponse
}

func binderResponse(b *domain.Binder) BinderResponse {
	return BinderResponse{
		ID:          b.ID,
		OwnerID:     b.OwnerID,
		Name:        b.Name,
		Description: b.Description,
		Slug:        b.Slug,
		Public:      b.Public,
		Settings:    b.Settings,
		Cards:       b.Cards,
		CardCount:   b.CardCount(),
		PageCount:   b.PageCount(),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

func binderListResponse(binders []*domain.Binder) BinderListResponse {
	out := make([]BinderResponse, len(binders))
	for i, b := range binders {
		out[i] = binderResponse(b)
	}
	return BinderListResponse{Binders: out, Total: len(out)}
}

// === Handlers ===

func (s *Server) handleCreateBinder(ctx context.Context, input *CreateBinderInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.Create(ctx, userID, service.CreateBinderInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Public:      input.Body.Public,
		Settings:    input.Body.Settings,
	})
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleListBinders(ctx context.Context, input *AuthInput) (*BinderListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binders, err := s.services.Binder.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BinderListOutput{Body: binderListResponse(binders)}, nil
}

func (s *Server) handleListPublicBinders(ctx context.Context, _ *struct{}) (*BinderListOutput, error) {
	binders, err := s.services.Binder.ListPublic(ctx)
	if err != nil {
		return nil, err
	}

	return &BinderListOutput{Body: binderListResponse(binders)}, nil
}

func (s *Server) handleGetBinder(ctx context.Context, input *GetBinderInput) (*BinderOutput, error) {
	callerID, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.Get(ctx, callerID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleUpdateBinder(ctx context.Context, input *UpdateBinderInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.Update(ctx, userID, input.BinderID, service.UpdateBinderInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
		Public:      input.Body.Public,
		Settings:    input.Body.Settings,
	})
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleArchiveBinder(ctx context.Context, input *BinderPathInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Binder.Archive(ctx, userID, input.BinderID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}

func (s *Server) handleRestoreBinder(ctx context.Context, input *BinderPathInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.Restore(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleAddCard(ctx context.Context, input *AddCardInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	ref := domain.CardRef{
		CardID:    input.Body.CardID,
		Condition: domain.Condition(input.Body.Condition),
		Notes:     input.Body.Notes,
		Quantity:  input.Body.Quantity,
	}

	binder, err := s.services.Binder.AddCard(ctx, userID, input.BinderID, input.Body.Position, ref)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleRemoveCard(ctx context.Context, input *RemoveCardInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.RemoveCard(ctx, userID, input.BinderID, input.Position)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleMoveCard(ctx context.Context, input *MoveCardInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.MoveCard(ctx, userID, input.BinderID, input.Body.From, input.Body.To)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleSwapCards(ctx context.Context, input *SwapCardsInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.SwapCards(ctx, userID, input.BinderID, input.Body.A, input.Body.B)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleClearPage(ctx context.Context, input *ClearPageInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.ClearPage(ctx, userID, input.BinderID, input.Page)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}

func (s *Server) handleCondenseBinder(ctx context.Context, input *BinderPathInput) (*BinderOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binder, err := s.services.Binder.Condense(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderOutput{Body: binderResponse(binder)}, nil
}
