package ptcg

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"net/url"
	"strconv"

	"github.com/binderapp/binder-server/internal/catalog"
)

// SearchCards searches the catalog with the q query grammar built from
// the params.
func (c *Client) SearchCards(ctx context.Context, params catalog.SearchParams) (*catalog.SearchPage, error) {
	query := url.Values{}

	q := buildQuery(params.Name, params.SetID, params.Rarity, params.Supertype, params.Types)
	if q != "" {
		query.Set("q", q)
	}

	page := params.Page
	if page <= 0 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	query.Set("pageSize", strconv.Itoa(pageSize))

	if params.OrderBy != "" {
		query.Set("orderBy", params.OrderBy)
	}

	body, err := c.doRequest(ctx, "/cards", query)
	if err != nil {
		return nil, wrapError("searchCards", "", err)
	}

	var resp cardListResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("searchCards", "", fmt.Errorf("parse response: %w", err))
	}

	cards := make([]catalog.Card, 0, len(resp.Data))
	for i := range resp.Data {
		cards = append(cards, resp.Data[i].toCard())
	}

	return &catalog.SearchPage{
		Cards:      cards,
		Page:       resp.Page,
		PageSize:   resp.PageSize,
		TotalCount: resp.TotalCount,
	}, nil
}

// GetCard fetches a single card by provider ID.
func (c *Client) GetCard(ctx context.Context, id string) (*catalog.Card, error) {
	if !ValidCardID(id) {
		return nil, wrapError("getCard", id, ErrInvalidID)
	}

	body, err := c.doRequest(ctx, "/cards/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, wrapError("getCard", id, err)
	}

	var resp cardResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getCard", id, fmt.Errorf("parse response: %w", err))
	}

	card := resp.Data.toCard()
	return &card, nil
}

// GetSet fetches a single expansion set by ID.
func (c *Client) GetSet(ctx context.Context, id string) (*catalog.Set, error) {
	body, err := c.doRequest(ctx, "/sets/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, wrapError("getSet", id, err)
	}

	var resp setResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError("getSet", id, fmt.Errorf("parse response: %w", err))
	}

	set := resp.Data.toSet()
	return &set, nil
}
