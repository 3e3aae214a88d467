package domain

import "time"

// EventType names a tracked analytics event
type EventType string

const (
	EventPageView EventType = "pageview"
	EventClick    EventType = "click"
)

// PageView is a recorded visit to a public page
type PageView struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	OwnerID   string    `json:"owner_id"`
	IPHash    string    `json:"ip_hash,omitempty"` // Salted, never the raw address
	UserAgent string    `json:"user_agent,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LinkClick is a recorded click on a public link
type LinkClick struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	LinkID    string    `json:"link_id"`
	OwnerID   string    `json:"owner_id"`
	IPHash    string    `json:"ip_hash,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackEvent is the public tracking payload.
type TrackEvent struct {
	PageID    string    `json:"landing_page_id"`
	Type      EventType `json:"event_type"`
	LinkID    string    `json:"link_id,omitempty"`
	Referrer  string    `json:"referrer,omitempty"`
	UserAgent string    `json:"-"`
	IP        string    `json:"-"`
}

// TrackResult tells the caller whether an event was stored.
type TrackResult struct {
	Tracked bool   `json:"tracked"`
	Reason  string `json:"reason,omitempty"`
}

// DateRange bounds analytics queries; End is exclusive.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// AnalyticsSummary aggregates a page's traffic
type AnalyticsSummary struct {
	TotalViews     int64 `json:"total_views"`
	UniqueVisitors int64 `json:"unique_visitors"`
	TotalClicks    int64 `json:"total_clicks"`
	UniqueClickers int64 `json:"unique_clickers"`
}

type DailyViews struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Views int64  `json:"views"`
}

type TopLink struct {
	LinkID string `json:"link_id"`
	Title  string `json:"title"`
	Clicks int64  `json:"clicks"`
}

// PageStats is the dashboard payload for one page.
type PageStats struct {
	Summary  AnalyticsSummary `json:"summary"`
	ViewsBy  []DailyViews     `json:"views_by_day"`
	TopLinks []TopLink        `json:"top_links"`
}
