package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/linkpage/pkg/cache"
	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/theme"
	"github.com/wadjakorntonsri/linkpage/pkg/core/validate"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.PageService = (*PageService)(nil)

type PageService struct {
	pages    ports.PageRepository
	links    ports.LinkRepository
	profiles ports.ProfileRepository
	cache    ports.PublicPageCache
	log      *logger.Logger
	now      func() time.Time
}

// NewPageService wires the service. cache may be nil, in which case public
// lookups always hit the repositories.
func NewPageService(pages ports.PageRepository, links ports.LinkRepository, profiles ports.ProfileRepository, cache ports.PublicPageCache, log *logger.Logger) *PageService {
	return &PageService{
		pages:    pages,
		links:    links,
		profiles: profiles,
		cache:    cache,
		log:      log.With(map[string]any{"component": "page_service"}),
		now:      time.Now,
	}
}

// CreatePage stores a new page. An owner's first page becomes the default.
func (s *PageService) CreatePage(ctx context.Context, ownerID string, in domain.PageInput) (*domain.LandingPage, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.ToLower(strings.TrimSpace(in.Slug))
	in.Theme = strings.ToLower(strings.TrimSpace(in.Theme))
	if in.Theme == "" {
		in.Theme = theme.DefaultName
	}
	if err := validate.PageInput(in); err != nil {
		return nil, err
	}

	if err := s.ensureSlugFree(ctx, ownerID, in.Slug, ""); err != nil {
		return nil, err
	}

	count, err := s.pages.CountPages(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	page := &domain.LandingPage{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Slug:      in.Slug,
		Title:     in.Title,
		Bio:       in.Bio,
		Theme:     in.Theme,
		IsDefault: count == 0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.pages.CreatePage(ctx, page); err != nil {
		return nil, err
	}

	s.log.With(map[string]any{"page_id": page.ID, "owner_id": ownerID}).Info("page created")
	s.invalidateOwner(ownerID)
	return page, nil
}

// GetPage returns an owned page with its links.
func (s *PageService) GetPage(ctx context.Context, id, ownerID string) (*domain.LandingPage, error) {
	page, err := ownedPage(ctx, s.pages, id, ownerID)
	if err != nil {
		return nil, err
	}
	links, err := s.links.ListLinks(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Links = links
	return page, nil
}

func (s *PageService) ListPages(ctx context.Context, ownerID string) ([]domain.LandingPage, error) {
	return s.pages.ListPages(ctx, ownerID)
}

func (s *PageService) UpdatePage(ctx context.Context, id, ownerID string, patch domain.PagePatch) (*domain.LandingPage, error) {
	if patch.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*patch.Slug))
		patch.Slug = &slug
	}
	if patch.Theme != nil {
		name := strings.ToLower(strings.TrimSpace(*patch.Theme))
		patch.Theme = &name
	}
	if err := validate.PagePatch(patch); err != nil {
		return nil, err
	}

	page, err := ownedPage(ctx, s.pages, id, ownerID)
	if err != nil {
		return nil, err
	}

	if patch.Slug != nil && *patch.Slug != page.Slug {
		if err := s.ensureSlugFree(ctx, ownerID, *patch.Slug, id); err != nil {
			return nil, err
		}
	}

	updated := patch.Apply(*page)
	updated.IsDefault = page.IsDefault
	updated.UpdatedAt = s.now().UTC()
	if err := s.pages.UpdatePage(ctx, &updated); err != nil {
		return nil, err
	}

	if patch.IsDefault != nil && *patch.IsDefault && !page.IsDefault {
		if err := s.pages.SetDefaultPage(ctx, ownerID, id); err != nil {
			return nil, err
		}
		updated.IsDefault = true
	}

	s.invalidateOwner(ownerID)
	return &updated, nil
}

// DeletePage removes the page. When it was the default, the oldest remaining
// page takes over.
func (s *PageService) DeletePage(ctx context.Context, id, ownerID string) error {
	page, err := ownedPage(ctx, s.pages, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.pages.DeletePage(ctx, id, ownerID); err != nil {
		return err
	}

	if page.IsDefault {
		remaining, err := s.pages.ListPages(ctx, ownerID)
		if err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := s.pages.SetDefaultPage(ctx, ownerID, remaining[0].ID); err != nil {
				return err
			}
		}
	}

	s.invalidateOwner(ownerID)
	return nil
}

// SetPixel stores the page's Facebook Pixel configuration.
func (s *PageService) SetPixel(ctx context.Context, id, ownerID string, cfg domain.PixelConfig) (*domain.LandingPage, error) {
	cfg.PixelID = strings.TrimSpace(cfg.PixelID)
	if err := validate.Pixel(cfg); err != nil {
		return nil, err
	}
	return s.writePixel(ctx, id, ownerID, &cfg)
}

func (s *PageService) ClearPixel(ctx context.Context, id, ownerID string) error {
	_, err := s.writePixel(ctx, id, ownerID, nil)
	return err
}

func (s *PageService) writePixel(ctx context.Context, id, ownerID string, cfg *domain.PixelConfig) (*domain.LandingPage, error) {
	page, err := ownedPage(ctx, s.pages, id, ownerID)
	if err != nil {
		return nil, err
	}
	page.Pixel = cfg
	page.UpdatedAt = s.now().UTC()
	if err := s.pages.UpdatePage(ctx, page); err != nil {
		return nil, err
	}
	s.invalidatePage(id)
	return page, nil
}

// GetPublicPage resolves /username or /username/slug to what a visitor sees:
// active entries only and no pixel credentials.
func (s *PageService) GetPublicPage(ctx context.Context, username, slug string) (*domain.PublicPage, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	slug = strings.ToLower(strings.TrimSpace(slug))

	load := func(ctx context.Context) (*domain.PublicPage, error) {
		return s.loadPublicPage(ctx, username, slug)
	}
	if s.cache == nil {
		return load(ctx)
	}
	return s.cache.Get(ctx, cache.Key(username, slug), load)
}

func (s *PageService) loadPublicPage(ctx context.Context, username, slug string) (*domain.PublicPage, error) {
	profile, err := s.profiles.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	var page *domain.LandingPage
	if slug == "" {
		page, err = s.pages.GetDefaultPage(ctx, profile.ID)
	} else {
		page, err = s.pages.GetPageBySlug(ctx, profile.ID, slug)
	}
	if err != nil {
		return nil, err
	}

	links, err := s.links.ListLinks(ctx, page.ID)
	if err != nil {
		return nil, err
	}
	active := make([]domain.LinkEntry, 0, len(links))
	for _, l := range links {
		if l.IsActive {
			active = append(active, l)
		}
	}

	page.Pixel = page.Pixel.Public()
	return &domain.PublicPage{Page: *page, Profile: *profile, Links: active}, nil
}

func (s *PageService) ensureSlugFree(ctx context.Context, ownerID, slug, exceptID string) error {
	existing, err := s.pages.GetPageBySlug(ctx, ownerID, slug)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == exceptID:
		return nil
	default:
		return fmt.Errorf("page slug %q: %w", slug, domain.ErrAlreadyExists)
	}
}

func (s *PageService) invalidatePage(id string) {
	if s.cache != nil {
		s.cache.InvalidatePage(id)
	}
}

func (s *PageService) invalidateOwner(ownerID string) {
	if s.cache != nil {
		s.cache.InvalidateOwner(ownerID)
	}
}

// ownedPage hides other owners' pages behind ErrNotFound.
func ownedPage(ctx context.Context, pages ports.PageRepository, id, ownerID string) (*domain.LandingPage, error) {
	page, err := pages.GetPage(ctx, id)
	if err != nil {
		return nil, err
	}
	if page.OwnerID != ownerID {
		return nil, fmt.Errorf("page %s: %w", id, domain.ErrNotFound)
	}
	return page, nil
}
