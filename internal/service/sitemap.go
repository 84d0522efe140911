package service

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/binderapp/binder-server/internal/store"
)

// SitemapService renders sitemap.xml and robots.txt from the set of
// public binders. Private binders and share links never appear; share
// codes are unguessable by design and listing them would defeat that.
type SitemapService struct {
	store     *store.Store
	publicURL string
	logger    *slog.Logger
}

// NewSitemapService creates a new sitemap service. publicURL is the
// externally visible base URL, without a trailing slash.
func NewSitemapService(store *store.Store, publicURL string, logger *slog.Logger) *SitemapService {
	return &SitemapService{
		store:     store,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

// sitemapURL is one <url> entry.
type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// urlSet is the sitemap root element.
type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// Sitemap renders sitemap.xml: the landing and browse pages plus one
// entry per public binder.
func (s *SitemapService) Sitemap(ctx context.Context) ([]byte, error) {
	binders, err := s.store.ListPublicBinders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list public binders: %w", err)
	}

	set := urlSet{
		XMLNS: sitemapNamespace,
		URLs: []sitemapURL{
			{Loc: s.publicURL + "/", ChangeFreq: "daily", Priority: "1.0"},
			{Loc: s.publicURL + "/binders", ChangeFreq: "hourly", Priority: "0.8"},
		},
	}

	for _, binder := range binders {
		set.URLs = append(set.URLs, sitemapURL{
			Loc:        s.binderURL(binder.ID, binder.Slug),
			LastMod:    binder.UpdatedAt.UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	out, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal sitemap: %w", err)
	}

	return append([]byte(xml.Header), out...), nil
}

// Robots renders robots.txt. Everything public is crawlable; the API and
// share URLs are not.
func (s *SitemapService) Robots() []byte {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Disallow: /s/\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Sitemap: %s/sitemap.xml\n", s.publicURL)
	return []byte(b.String())
}

// binderURL builds the canonical public URL for a binder. The slug is
// cosmetic; the ID resolves the page.
func (s *SitemapService) binderURL(binderID, slug string) string {
	if slug != "" {
		return fmt.Sprintf("%s/b/%s/%s", s.publicURL, binderID, slug)
	}
	return fmt.Sprintf("%s/b/%s", s.publicURL, binderID)
}
