package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/binderapp/binder-server/internal/domain"
)

func (s *Server) registerSocialRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleLike",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/like",
		Summary:     "Toggle a like",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleLike)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/favorite",
		Summary:     "Toggle a favorite",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBinderStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/{id}/stats",
		Summary:     "Get social counters for a binder",
		Tags:        []string{"Social"},
	}, s.handleGetBinderStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFavorites",
		Method:      http.MethodGet,
		Path:        "/api/v1/favorites",
		Summary:     "List the caller's favorited binders",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFavorites)

	huma.Register(s.api, huma.Operation{
		OperationID: "addComment",
		Method:      http.MethodPost,
		Path:        "/api/v1/binders/{id}/comments",
		Summary:     "Comment on a binder",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddComment)

	huma.Register(s.api, huma.Operation{
		OperationID: "listComments",
		Method:      http.MethodGet,
		Path:        "/api/v1/binders/{id}/comments",
		Summary:     "List comments on a binder",
		Tags:        []string{"Social"},
	}, s.handleListComments)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteComment",
		Method:      http.MethodDelete,
		Path:        "/api/v1/comments/{id}",
		Summary:     "Delete a comment",
		Description: "Allowed for the comment author and the binder owner",
		Tags:        []string{"Social"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteComment)
}

// === DTOs ===

// ReactionResponse reports the caller's reaction state after a toggle.
type ReactionResponse struct {
	Active bool  `json:"active" doc:"Whether the caller's reaction is now on"`
	Count  int64 `json:"count" doc:"Total count across all users"`
}

// ReactionOutput wraps a reaction response for Huma.
type ReactionOutput struct {
	Body ReactionResponse
}

// BinderStatsResponse carries the denormalized social counters.
type BinderStatsResponse struct {
	BinderID  string `json:"binder_id"`
	Likes     int64  `json:"likes"`
	Favorites int64  `json:"favorites"`
	Comments  int64  `json:"comments"`
	Views     int64  `json:"views"`
	Liked     bool   `json:"liked" doc:"Whether the caller has liked this binder"`
	Favorited bool   `json:"favorited" doc:"Whether the caller has favorited this binder"`
}

// BinderStatsOutput wraps binder stats for Huma.
type BinderStatsOutput struct {
	Body BinderStatsResponse
}

// AddCommentInput contains the comment creation request.
type AddCommentInput struct {
	Authorization string `header:"Authorization"`
	BinderID      string `path:"id"`
	Body          struct {
		Body string `json:"body" doc:"Comment text, up to 2000 characters"`
	}
}

// CommentPathInput identifies one comment.
type CommentPathInput struct {
	Authorization string `header:"Authorization"`
	CommentID     string `path:"id"`
}

// CommentResponse is the API shape of a comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	BinderID  string    `json:"binder_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// CommentOutput wraps one comment for Huma.
type CommentOutput struct {
	Body CommentResponse
}

// CommentListResponse is a list of comments, oldest first.
type CommentListResponse struct {
	Comments []CommentResponse `json:"comments"`
	Total    int               `json:"total"`
}

// CommentListOutput wraps a comment list for Huma.
type CommentListOutput struct {
	Body CommentListResponse
}

func commentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		BinderID:  c.BinderID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

// === Handlers ===

func (s *Server) handleToggleLike(ctx context.Context, input *BinderPathInput) (*ReactionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	state, err := s.services.Social.ToggleLike(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &ReactionOutput{Body: ReactionResponse{Active: state.Active, Count: state.Count}}, nil
}

func (s *Server) handleToggleFavorite(ctx context.Context, input *BinderPathInput) (*ReactionOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	state, err := s.services.Social.ToggleFavorite(ctx, userID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &ReactionOutput{Body: ReactionResponse{Active: state.Active, Count: state.Count}}, nil
}

func (s *Server) handleGetBinderStats(ctx context.Context, input *GetBinderInput) (*BinderStatsOutput, error) {
	callerID, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Social.GetStats(ctx, callerID, input.BinderID)
	if err != nil {
		return nil, err
	}

	return &BinderStatsOutput{Body: BinderStatsResponse{
		BinderID:  stats.BinderID,
		Likes:     stats.Likes,
		Favorites: stats.Favorites,
		Comments:  stats.Comments,
		Views:     stats.Views,
		Liked:     stats.Liked,
		Favorited: stats.Favorited,
	}}, nil
}

func (s *Server) handleListFavorites(ctx context.Context, input *AuthInput) (*BinderListOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	binders, err := s.services.Social.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &BinderListOutput{Body: binderListResponse(binders)}, nil
}

func (s *Server) handleAddComment(ctx context.Context, input *AddCommentInput) (*CommentOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comment, err := s.services.Social.AddComment(ctx, userID, input.BinderID, input.Body.Body)
	if err != nil {
		return nil, err
	}

	return &CommentOutput{Body: commentResponse(comment)}, nil
}

func (s *Server) handleListComments(ctx context.Context, input *GetBinderInput) (*CommentListOutput, error) {
	callerID, err := s.optionalAuthenticate(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	comments, err := s.services.Social.ListComments(ctx, callerID, input.BinderID)
	if err != nil {
		return nil, err
	}

	out := make([]CommentResponse, len(comments))
	for i, c := range comments {
		out[i] = commentResponse(c)
	}

	return &CommentListOutput{Body: CommentListResponse{Comments: out, Total: len(out)}}, nil
}

func (s *Server) handleDeleteComment(ctx context.Context, input *CommentPathInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Social.DeleteComment(ctx, userID, input.CommentID); err != nil {
		return nil, err
	}

	return &struct{}{}, nil
}
