package services

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"slices"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.AnalyticsService = (*AnalyticsService)(nil)

const (
	pageViewDedupWindow = 5 * time.Second
	clickDedupWindow    = 2 * time.Second

	defaultStatsDays = 30
	maxStatsDays     = 366
	topLinksLimit    = 10
	maxHeaderLength  = 500
)

// Reasons reported when an event is not stored.
const (
	ReasonPageNotFound = "page not found"
	ReasonLinkNotFound = "link not found on page"
	ReasonDuplicate    = "duplicate"
)

type AnalyticsService struct {
	events ports.AnalyticsRepository
	pages  ports.PageRepository
	links  ports.LinkRepository
	salt   string
	log    *logger.Logger
	now    func() time.Time
}

func NewAnalyticsService(events ports.AnalyticsRepository, pages ports.PageRepository, links ports.LinkRepository, salt string, log *logger.Logger) *AnalyticsService {
	return &AnalyticsService{
		events: events,
		pages:  pages,
		links:  links,
		salt:   salt,
		log:    log.With(map[string]any{"component": "analytics_service"}),
		now:    time.Now,
	}
}

// Track records a pageview or click. Unknown pages, foreign links and repeats
// from the same visitor inside the dedup window are skipped without error.
func (s *AnalyticsService) Track(ctx context.Context, ev domain.TrackEvent) (domain.TrackResult, error) {
	if ev.PageID == "" {
		return domain.TrackResult{}, domain.NewValidationError("landing_page_id", "is required")
	}
	switch ev.Type {
	case domain.EventPageView:
	case domain.EventClick:
		if ev.LinkID == "" {
			return domain.TrackResult{}, domain.NewValidationError("link_id", "is required for clicks")
		}
	default:
		return domain.TrackResult{}, domain.NewValidationError("event_type", "must be pageview or click")
	}

	page, err := s.pages.GetPage(ctx, ev.PageID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.TrackResult{Reason: ReasonPageNotFound}, nil
	}
	if err != nil {
		return domain.TrackResult{}, err
	}

	now := s.now().UTC()
	ipHash := s.hashIP(ev.IP)

	if ev.Type == domain.EventPageView {
		view := &domain.PageView{
			ID:        uuid.NewString(),
			PageID:    page.ID,
			OwnerID:   page.OwnerID,
			IPHash:    ipHash,
			UserAgent: truncate(ev.UserAgent, maxHeaderLength),
			Referrer:  truncate(ev.Referrer, maxHeaderLength),
			CreatedAt: now,
		}
		recorded, err := s.events.RecordPageView(ctx, view, now.Add(-pageViewDedupWindow))
		if err != nil {
			return domain.TrackResult{}, err
		}
		if !recorded {
			return domain.TrackResult{Reason: ReasonDuplicate}, nil
		}
		return domain.TrackResult{Tracked: true}, nil
	}

	link, err := s.links.GetLink(ctx, ev.LinkID)
	if errors.Is(err, domain.ErrNotFound) || (err == nil && link.PageID != page.ID) {
		return domain.TrackResult{Reason: ReasonLinkNotFound}, nil
	}
	if err != nil {
		return domain.TrackResult{}, err
	}

	click := &domain.LinkClick{
		ID:        uuid.NewString(),
		PageID:    page.ID,
		LinkID:    link.ID,
		OwnerID:   page.OwnerID,
		IPHash:    ipHash,
		CreatedAt: now,
	}
	recorded, err := s.events.RecordClick(ctx, click, now.Add(-clickDedupWindow))
	if err != nil {
		return domain.TrackResult{}, err
	}
	if !recorded {
		return domain.TrackResult{Reason: ReasonDuplicate}, nil
	}
	return domain.TrackResult{Tracked: true}, nil
}

// PageStats aggregates an owned page's events over r. A zero range means the
// last 30 days including today.
func (s *AnalyticsService) PageStats(ctx context.Context, pageID, ownerID string, r domain.DateRange) (*domain.PageStats, error) {
	r, err := s.normalizeRange(r)
	if err != nil {
		return nil, err
	}
	if _, err := ownedPage(ctx, s.pages, pageID, ownerID); err != nil {
		return nil, err
	}

	views, err := s.events.ListPageViews(ctx, pageID, r)
	if err != nil {
		return nil, err
	}
	clicks, err := s.events.ListClicks(ctx, pageID, r)
	if err != nil {
		return nil, err
	}
	links, err := s.links.ListLinks(ctx, pageID)
	if err != nil {
		return nil, err
	}

	stats := &domain.PageStats{
		ViewsBy:  viewsByDay(views, r),
		TopLinks: topLinks(clicks, links, topLinksLimit),
	}

	visitors := make(map[string]struct{})
	for _, v := range views {
		visitors[v.IPHash] = struct{}{}
	}
	clickers := make(map[string]struct{})
	for _, c := range clicks {
		clickers[c.IPHash] = struct{}{}
	}
	stats.Summary = domain.AnalyticsSummary{
		TotalViews:     int64(len(views)),
		UniqueVisitors: int64(len(visitors)),
		TotalClicks:    int64(len(clicks)),
		UniqueClickers: int64(len(clickers)),
	}
	return stats, nil
}

func (s *AnalyticsService) normalizeRange(r domain.DateRange) (domain.DateRange, error) {
	if r.Start.IsZero() && r.End.IsZero() {
		today := s.now().UTC().Truncate(24 * time.Hour)
		return domain.DateRange{
			Start: today.AddDate(0, 0, -(defaultStatsDays - 1)),
			End:   today.AddDate(0, 0, 1),
		}, nil
	}
	r.Start, r.End = r.Start.UTC(), r.End.UTC()
	if !r.End.After(r.Start) {
		return r, domain.NewValidationError("range", "end must be after start")
	}
	if r.End.Sub(r.Start) > maxStatsDays*24*time.Hour {
		return r, domain.NewValidationError("range", "must not exceed 366 days")
	}
	return r, nil
}

func (s *AnalyticsService) hashIP(ip string) string {
	sum := sha256.Sum256([]byte(s.salt + ip))
	return hex.EncodeToString(sum[:])
}

// viewsByDay buckets views per UTC day, including empty days of the range.
func viewsByDay(views []domain.PageView, r domain.DateRange) []domain.DailyViews {
	counts := make(map[string]int64)
	for _, v := range views {
		counts[v.CreatedAt.UTC().Format(time.DateOnly)]++
	}

	var out []domain.DailyViews
	for day := r.Start.Truncate(24 * time.Hour); day.Before(r.End); day = day.AddDate(0, 0, 1) {
		key := day.Format(time.DateOnly)
		out = append(out, domain.DailyViews{Date: key, Views: counts[key]})
	}
	return out
}

// topLinks ranks current entries by clicks. Clicks on deleted entries are
// dropped.
func topLinks(clicks []domain.LinkClick, links []domain.LinkEntry, limit int) []domain.TopLink {
	counts := make(map[string]int64)
	for _, c := range clicks {
		counts[c.LinkID]++
	}

	out := []domain.TopLink{}
	for _, l := range links {
		if n := counts[l.ID]; n > 0 {
			out = append(out, domain.TopLink{LinkID: l.ID, Title: l.Title, Clicks: n})
		}
	}
	slices.SortStableFunc(out, func(a, b domain.TopLink) int {
		return cmp.Compare(b.Clicks, a.Clicks)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
