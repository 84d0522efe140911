package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxImageSize caps downloads at 10MB. High-res card scans run 1-3MB;
// anything larger is not a card image.
const maxImageSize = 10 << 20

// Fetcher downloads card images from the catalog CDN and caches them on disk.
type Fetcher struct {
	storage *Storage
	http    *http.Client
	logger  *slog.Logger
}

// NewFetcher creates a new Fetcher instance.
func NewFetcher(storage *Storage, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		storage: storage,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

// Fetch returns cached image data for a card, downloading it on first use.
// Returns the image bytes and a blurhash placeholder string.
// The blurhash is recomputed on cache hits; it's cheap at thumbnail size.
func (f *Fetcher) Fetch(ctx context.Context, cardID, imageURL string) ([]byte, string, error) {
	if f.storage.Exists(cardID) {
		data, err := f.storage.Get(cardID)
		if err != nil {
			return nil, "", err
		}
		hash, err := ComputeBlurHash(data)
		if err != nil {
			f.logger.Warn("failed to compute blurhash for cached image",
				"card_id", cardID,
				"error", err,
			)
			hash = ""
		}
		return data, hash, nil
	}

	if imageURL == "" {
		return nil, "", fmt.Errorf("card %s has no image URL", cardID)
	}

	data, err := f.download(ctx, imageURL)
	if err != nil {
		return nil, "", fmt.Errorf("download image for %s: %w", cardID, err)
	}

	if err := f.storage.Save(cardID, data); err != nil {
		return nil, "", fmt.Errorf("cache image for %s: %w", cardID, err)
	}

	hash, err := ComputeBlurHash(data)
	if err != nil {
		f.logger.Warn("failed to compute blurhash",
			"card_id", cardID,
			"error", err,
		)
		hash = ""
	}

	f.logger.Debug("fetched and cached card image",
		"card_id", cardID,
		"size", len(data),
	)

	return data, hash, nil
}

// download retrieves the image bytes from the CDN.
func (f *Fetcher) download(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Nothing to do about close errors here

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxImageSize {
		return nil, fmt.Errorf("image exceeds %d byte limit", maxImageSize)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image response")
	}

	return data, nil
}
