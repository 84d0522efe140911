// Package tcgdex implements the fallback card catalog client against the
// TCGdex REST API. It covers the subset of operations the primary client
// offers so the catalog service can fail over transparently.
package tcgdex

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/binderapp/binder-server/internal/catalog"
)

const (
	defaultBaseURL = "https://api.tcgdex.net/v2/en"

	defaultTimeout = 30 * time.Second
)

// Sentinel errors for TCGdex API operations.
var (
	ErrNotFound = errors.New("tcgdex: not found")
	ErrServer   = errors.New("tcgdex: server error")
)

// Client provides read access to the TCGdex card database.
type Client struct {
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	baseURL string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a new client. TCGdex publishes no rate limits, so pace
// requests the same way as the primary to stay a good citizen.
func New(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 5),
		logger:  logger,
		baseURL: defaultBaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Close releases resources. Currently a no-op but included for interface
// consistency.
func (c *Client) Close() {
	// No persistent resources to close
}

// GetCard fetches a single card by provider ID, e.g. "base1-4".
func (c *Client) GetCard(ctx context.Context, id string) (*catalog.Card, error) {
	body, err := c.doRequest(ctx, "/cards/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("tcgdex getCard [%s]: %w", id, err)
	}

	var raw rawCard
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("tcgdex getCard [%s]: parse response: %w", id, err)
	}

	card := raw.toCard()
	return &card, nil
}

// SearchCards searches by card name. TCGdex filtering is simpler than the
// primary grammar: only name and set filters translate, the rest are
// dropped. Pagination is applied server-side.
func (c *Client) SearchCards(ctx context.Context, params catalog.SearchParams) (*catalog.SearchPage, error) {
	query := url.Values{}

	if params.Name != "" {
		query.Set("name", params.Name)
	}
	if params.SetID != "" {
		query.Set("set", params.SetID)
	}

	page := params.Page
	if page <= 0 {
		page = 1
	}
	pageSize := params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	query.Set("pagination:page", fmt.Sprintf("%d", page))
	query.Set("pagination:itemsPerPage", fmt.Sprintf("%d", pageSize))

	body, err := c.doRequest(ctx, "/cards", query)
	if err != nil {
		return nil, fmt.Errorf("tcgdex searchCards: %w", err)
	}

	var raws []rawCardBrief
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, fmt.Errorf("tcgdex searchCards: parse response: %w", err)
	}

	cards := make([]catalog.Card, 0, len(raws))
	for i := range raws {
		cards = append(cards, raws[i].toCard())
	}

	// The brief listing carries no total count. Signal "maybe more" by
	// reporting a full page as one past the current window.
	total := (page-1)*pageSize + len(cards)
	if len(cards) == pageSize {
		total++
	}

	return &catalog.SearchPage{
		Cards:      cards,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
	}, nil
}

// GetSet fetches a single expansion set by ID.
func (c *Client) GetSet(ctx context.Context, id string) (*catalog.Set, error) {
	body, err := c.doRequest(ctx, "/sets/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("tcgdex getSet [%s]: %w", id, err)
	}

	var raw rawSet
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("tcgdex getSet [%s]: parse response: %w", id, err)
	}

	set := raw.toSet()
	return &set, nil
}

// doRequest executes a rate-limited GET.
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "BinderServer/1.0")

	if c.logger != nil {
		c.logger.Debug("tcgdex request", "path", path)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Join(ErrServer, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
