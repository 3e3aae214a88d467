package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

// LinkStore is the persistence capability the link manager drives. Both the
// local LinkService and the HTTP remote client implement it.
type LinkStore interface {
	// FetchLinks returns every entry of a page ordered by position.
	FetchLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error)
	CreateLink(ctx context.Context, pageID, ownerID string, in domain.LinkInput, position int) (*domain.LinkEntry, error)
	UpdateLink(ctx context.Context, id, ownerID string, patch domain.LinkPatch) (*domain.LinkEntry, error)
	DeleteLink(ctx context.Context, id, ownerID string) error
	// ReorderLinks applies the whole batch or nothing.
	ReorderLinks(ctx context.Context, positions []domain.LinkPosition, ownerID string) error
}

// LinkRepository defines storage operations for link entries
type LinkRepository interface {
	ListLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error)
	GetLink(ctx context.Context, id string) (*domain.LinkEntry, error)
	CreateLink(ctx context.Context, link *domain.LinkEntry) error
	UpdateLink(ctx context.Context, link *domain.LinkEntry) error
	DeleteLink(ctx context.Context, id, ownerID string) error
	ReorderLinks(ctx context.Context, positions []domain.LinkPosition, ownerID string) error
}

// PageRepository defines storage operations for landing pages
type PageRepository interface {
	CreatePage(ctx context.Context, page *domain.LandingPage) error
	GetPage(ctx context.Context, id string) (*domain.LandingPage, error)
	GetPageBySlug(ctx context.Context, ownerID, slug string) (*domain.LandingPage, error)
	GetDefaultPage(ctx context.Context, ownerID string) (*domain.LandingPage, error)
	ListPages(ctx context.Context, ownerID string) ([]domain.LandingPage, error)
	CountPages(ctx context.Context, ownerID string) (int, error)
	UpdatePage(ctx context.Context, page *domain.LandingPage) error
	SetDefaultPage(ctx context.Context, ownerID, pageID string) error
	DeletePage(ctx context.Context, id, ownerID string) error // Cascades to links
}

// ProfileRepository defines storage operations for profiles
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (*domain.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, profile *domain.Profile) error
}

// AnalyticsRepository stores raw events. Aggregation happens in the service.
// The Record methods skip an event when the same visitor already has one for
// the page (or link) at or after since, and report whether they wrote it.
type AnalyticsRepository interface {
	RecordPageView(ctx context.Context, view *domain.PageView, since time.Time) (bool, error)
	RecordClick(ctx context.Context, click *domain.LinkClick, since time.Time) (bool, error)
	ListPageViews(ctx context.Context, pageID string, r domain.DateRange) ([]domain.PageView, error)
	ListClicks(ctx context.Context, pageID string, r domain.DateRange) ([]domain.LinkClick, error)
}

// PublicPageCache memoizes public page lookups.
type PublicPageCache interface {
	Get(ctx context.Context, key string, load func(ctx context.Context) (*domain.PublicPage, error)) (*domain.PublicPage, error)
	InvalidatePage(pageID string)
	InvalidateOwner(ownerID string)
}

// LinkService is the owner-facing link API: the LinkStore capability plus
// an ownership-checked listing.
type LinkService interface {
	LinkStore
	ListOwnedLinks(ctx context.Context, pageID, ownerID string) ([]domain.LinkEntry, error)
}

// PageService defines business logic for landing pages
type PageService interface {
	CreatePage(ctx context.Context, ownerID string, in domain.PageInput) (*domain.LandingPage, error)
	GetPage(ctx context.Context, id, ownerID string) (*domain.LandingPage, error)
	ListPages(ctx context.Context, ownerID string) ([]domain.LandingPage, error)
	UpdatePage(ctx context.Context, id, ownerID string, patch domain.PagePatch) (*domain.LandingPage, error)
	DeletePage(ctx context.Context, id, ownerID string) error
	SetPixel(ctx context.Context, id, ownerID string, cfg domain.PixelConfig) (*domain.LandingPage, error)
	ClearPixel(ctx context.Context, id, ownerID string) error
	GetPublicPage(ctx context.Context, username, slug string) (*domain.PublicPage, error)
}

// ProfileService defines business logic for profiles
type ProfileService interface {
	EnsureProfile(ctx context.Context, email, fullName, avatarURL string) (*domain.Profile, error)
	GetProfile(ctx context.Context, id string) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.Profile, error)
}

// AnalyticsService defines tracking and reporting
type AnalyticsService interface {
	Track(ctx context.Context, ev domain.TrackEvent) (domain.TrackResult, error)
	PageStats(ctx context.Context, pageID, ownerID string, r domain.DateRange) (*domain.PageStats, error)
}
