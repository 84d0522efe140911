package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitemapService_Sitemap(t *testing.T) {
	store := newTestStore(t)
	svc := NewSitemapService(store, "https://binders.example.com/", discardLogger())
	ctx := context.Background()

	createTestBinder(t, store, "bnd-public", "usr-1", true)
	createTestBinder(t, store, "bnd-private", "usr-1", false)

	out, err := svc.Sitemap(ctx)
	require.NoError(t, err)

	xml := string(out)
	assert.True(t, strings.HasPrefix(xml, "<?xml"))
	assert.Contains(t, xml, `xmlns="http://www.sitemaps.org/schemas/sitemap/0.9"`)
	assert.Contains(t, xml, "<loc>https://binders.example.com/</loc>")
	assert.Contains(t, xml, "<loc>https://binders.example.com/b/bnd-public/test-binder-bnd-public</loc>")
	assert.Contains(t, xml, "<lastmod>")
	assert.NotContains(t, xml, "bnd-private")
}

func TestSitemapService_Sitemap_Empty(t *testing.T) {
	store := newTestStore(t)
	svc := NewSitemapService(store, "https://binders.example.com", discardLogger())

	out, err := svc.Sitemap(context.Background())
	require.NoError(t, err)

	// Still a valid sitemap with the static pages.
	xml := string(out)
	assert.Contains(t, xml, "<loc>https://binders.example.com/</loc>")
	assert.Contains(t, xml, "<loc>https://binders.example.com/binders</loc>")
}

func TestSitemapService_Robots(t *testing.T) {
	store := newTestStore(t)
	svc := NewSitemapService(store, "https://binders.example.com", discardLogger())

	robots := string(svc.Robots())
	assert.Contains(t, robots, "User-agent: *")
	assert.Contains(t, robots, "Disallow: /api/")
	assert.Contains(t, robots, "Disallow: /s/")
	assert.Contains(t, robots, "Sitemap: https://binders.example.com/sitemap.xml")
}
