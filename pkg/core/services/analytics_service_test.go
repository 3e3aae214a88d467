package services

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

func TestAnalyticsService_TrackPageView(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "jane@example.com")
	page := h.page(t, owner.ID, "")

	view := domain.TrackEvent{PageID: page.ID, Type: domain.EventPageView, IP: "203.0.113.7", UserAgent: "test-agent"}

	res, err := h.analytics.Track(ctx, view)
	require.NoError(t, err)
	assert.True(t, res.Tracked)

	h.clock.advance(3 * time.Second)
	res, err = h.analytics.Track(ctx, view)
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.Equal(t, ReasonDuplicate, res.Reason)

	other := view
	other.IP = "198.51.100.1"
	res, err = h.analytics.Track(ctx, other)
	require.NoError(t, err)
	assert.True(t, res.Tracked, "dedup is per visitor")

	h.clock.advance(3 * time.Second)
	res, err = h.analytics.Track(ctx, view)
	require.NoError(t, err)
	assert.True(t, res.Tracked, "window has passed")

	res, err = h.analytics.Track(ctx, domain.TrackEvent{PageID: "missing", Type: domain.EventPageView})
	require.NoError(t, err)
	assert.False(t, res.Tracked)
	assert.Equal(t, ReasonPageNotFound, res.Reason)
}

func TestAnalyticsService_TrackClick(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "jane@example.com")
	page := h.page(t, owner.ID, "")
	shop := h.page(t, owner.ID, "shop")
	blog := h.link(t, page, "Blog", 0)
	item := h.link(t, shop, "Item", 0)

	click := domain.TrackEvent{PageID: page.ID, Type: domain.EventClick, LinkID: blog.ID, IP: "203.0.113.7"}

	res, err := h.analytics.Track(ctx, click)
	require.NoError(t, err)
	assert.True(t, res.Tracked)

	h.clock.advance(time.Second)
	res, err = h.analytics.Track(ctx, click)
	require.NoError(t, err)
	assert.Equal(t, ReasonDuplicate, res.Reason)

	h.clock.advance(2 * time.Second)
	res, err = h.analytics.Track(ctx, click)
	require.NoError(t, err)
	assert.True(t, res.Tracked)

	foreign := click
	foreign.LinkID = item.ID
	res, err = h.analytics.Track(ctx, foreign)
	require.NoError(t, err)
	assert.Equal(t, ReasonLinkNotFound, res.Reason)

	foreign.LinkID = "missing"
	res, err = h.analytics.Track(ctx, foreign)
	require.NoError(t, err)
	assert.Equal(t, ReasonLinkNotFound, res.Reason)
}

func TestAnalyticsService_TrackValidation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ev   domain.TrackEvent
	}{
		{"no page", domain.TrackEvent{Type: domain.EventPageView}},
		{"unknown type", domain.TrackEvent{PageID: "p", Type: "scroll"}},
		{"click without link", domain.TrackEvent{PageID: "p", Type: domain.EventClick}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.analytics.Track(ctx, tt.ev)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAnalyticsService_PageStats(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "jane@example.com")
	page := h.page(t, owner.ID, "")
	blog := h.link(t, page, "Blog", 0)
	shop := h.link(t, page, "Shop", 1)
	gone := h.link(t, page, "Gone", 2)

	track := func(ev domain.TrackEvent) {
		t.Helper()
		res, err := h.analytics.Track(ctx, ev)
		require.NoError(t, err)
		require.True(t, res.Tracked)
		h.clock.advance(10 * time.Second)
	}

	for _, ip := range []string{"1.1.1.1", "2.2.2.2", "1.1.1.1"} {
		track(domain.TrackEvent{PageID: page.ID, Type: domain.EventPageView, IP: ip})
	}
	track(domain.TrackEvent{PageID: page.ID, Type: domain.EventClick, LinkID: shop.ID, IP: "1.1.1.1"})
	track(domain.TrackEvent{PageID: page.ID, Type: domain.EventClick, LinkID: shop.ID, IP: "2.2.2.2"})
	track(domain.TrackEvent{PageID: page.ID, Type: domain.EventClick, LinkID: blog.ID, IP: "1.1.1.1"})
	track(domain.TrackEvent{PageID: page.ID, Type: domain.EventClick, LinkID: gone.ID, IP: "1.1.1.1"})
	require.NoError(t, h.links.DeleteLink(ctx, gone.ID, owner.ID))

	stats, err := h.analytics.PageStats(ctx, page.ID, owner.ID, domain.DateRange{})
	require.NoError(t, err)

	assert.Equal(t, domain.AnalyticsSummary{
		TotalViews:     3,
		UniqueVisitors: 2,
		TotalClicks:    4,
		UniqueClickers: 2,
	}, stats.Summary)

	require.Len(t, stats.ViewsBy, defaultStatsDays)
	last := stats.ViewsBy[len(stats.ViewsBy)-1]
	assert.Equal(t, "2026-03-01", last.Date)
	assert.EqualValues(t, 3, last.Views)
	assert.Zero(t, stats.ViewsBy[0].Views)

	require.Len(t, stats.TopLinks, 2)
	assert.Equal(t, domain.TopLink{LinkID: shop.ID, Title: "Shop", Clicks: 2}, stats.TopLinks[0])
	assert.Equal(t, domain.TopLink{LinkID: blog.ID, Title: "Blog", Clicks: 1}, stats.TopLinks[1])

	_, err = h.analytics.PageStats(ctx, page.ID, "intruder", domain.DateRange{})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.analytics.PageStats(ctx, page.ID, owner.ID, domain.DateRange{Start: epoch, End: epoch})
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestViewsByDay(t *testing.T) {
	start := time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC)
	r := domain.DateRange{Start: start, End: start.AddDate(0, 0, 3)}
	views := []domain.PageView{
		{CreatedAt: start.Add(time.Hour)},
		{CreatedAt: start.AddDate(0, 0, 2).Add(23 * time.Hour)},
		{CreatedAt: start.AddDate(0, 0, 2)},
	}

	got := viewsByDay(views, r)
	assert.Equal(t, []domain.DailyViews{
		{Date: "2026-01-30", Views: 1},
		{Date: "2026-01-31", Views: 0},
		{Date: "2026-02-01", Views: 2},
	}, got)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"short", "agent", 10, "agent"},
		{"exact", "agent", 5, "agent"},
		{"ascii cut", "agent", 3, "age"},
		{"rune at cut", strings.Repeat("a", 499) + "é", 500, strings.Repeat("a", 499)},
		{"cut inside 4-byte rune", "ab😀cd", 4, "ab"},
		{"cut after rune", "ab😀cd", 6, "ab😀"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.n)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, len(got), tt.n)
		})
	}
}

func TestAnalyticsService_TrackStoresValidUTF8(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "jane@example.com")
	page := h.page(t, owner.ID, "")

	agent := strings.Repeat("a", maxHeaderLength-1) + "é"
	res, err := h.analytics.Track(ctx, domain.TrackEvent{PageID: page.ID, Type: domain.EventPageView, IP: "203.0.113.7", UserAgent: agent})
	require.NoError(t, err)
	require.True(t, res.Tracked)

	views, err := h.store.ListPageViews(ctx, page.ID, domain.DateRange{Start: epoch.Add(-time.Hour), End: epoch.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, utf8.ValidString(views[0].UserAgent))
	assert.Equal(t, strings.Repeat("a", maxHeaderLength-1), views[0].UserAgent)
}
