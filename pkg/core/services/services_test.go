package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkpage/pkg/adapters/repository/sqlstore"
	"github.com/wadjakorntonsri/linkpage/pkg/cache"
	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

var epoch = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	store     *sqlstore.Store
	cache     *cache.PageCache
	clock     *clock
	links     *LinkService
	pages     *PageService
	profiles  *ProfileService
	analytics *AnalyticsService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	store, err := sqlstore.Open(ctx, ":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(ctx))

	h := &harness{
		store: store,
		cache: cache.New(64, time.Minute),
		clock: &clock{t: epoch},
	}
	h.links = NewLinkService(store, store, h.cache, nil)
	h.pages = NewPageService(store, store, store, h.cache, nil)
	h.profiles = NewProfileService(store, h.cache, nil)
	h.analytics = NewAnalyticsService(store, store, store, "pepper", nil)

	h.links.now = h.clock.now
	h.pages.now = h.clock.now
	h.profiles.now = h.clock.now
	h.analytics.now = h.clock.now
	return h
}

func (h *harness) profile(t *testing.T, email string) *domain.Profile {
	t.Helper()
	p, err := h.profiles.EnsureProfile(context.Background(), email, "Test User", "")
	require.NoError(t, err)
	return p
}

func (h *harness) page(t *testing.T, ownerID, slug string) *domain.LandingPage {
	t.Helper()
	p, err := h.pages.CreatePage(context.Background(), ownerID, domain.PageInput{Title: "Page " + slug, Slug: slug})
	require.NoError(t, err)
	h.clock.advance(time.Second)
	return p
}

func (h *harness) link(t *testing.T, page *domain.LandingPage, title string, position int) *domain.LinkEntry {
	t.Helper()
	e, err := h.links.CreateLink(context.Background(), page.ID, page.OwnerID,
		domain.LinkInput{Title: title, URL: "https://example.com/" + title}, position)
	require.NoError(t, err)
	h.clock.advance(time.Second)
	return e
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool { return &b }

func titlesOf(entries []domain.LinkEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Title
	}
	return out
}
