package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/linklist"
	"github.com/wadjakorntonsri/linkpage/pkg/core/validate"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

var _ ports.LinkService = (*LinkService)(nil)

// LinkService is the server side of the link store capability. It enforces
// validation and ownership and keeps the public page cache fresh.
type LinkService struct {
	links ports.LinkRepository
	pages ports.PageRepository
	cache ports.PublicPageCache
	log   *logger.Logger
	now   func() time.Time
}

// NewLinkService wires the service. cache may be nil.
func NewLinkService(links ports.LinkRepository, pages ports.PageRepository, cache ports.PublicPageCache, log *logger.Logger) *LinkService {
	return &LinkService{
		links: links,
		pages: pages,
		cache: cache,
		log:   log.With(map[string]any{"component": "link_service"}),
		now:   time.Now,
	}
}

func (s *LinkService) FetchLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error) {
	return s.links.ListLinks(ctx, pageID)
}

// ListOwnedLinks lists a page's entries after checking that ownerID owns it.
func (s *LinkService) ListOwnedLinks(ctx context.Context, pageID, ownerID string) ([]domain.LinkEntry, error) {
	if _, err := ownedPage(ctx, s.pages, pageID, ownerID); err != nil {
		return nil, err
	}
	return s.links.ListLinks(ctx, pageID)
}

func (s *LinkService) CreateLink(ctx context.Context, pageID, ownerID string, in domain.LinkInput, position int) (*domain.LinkEntry, error) {
	if err := validate.LinkInput(in); err != nil {
		return nil, err
	}
	if position < 0 {
		return nil, domain.NewValidationError("position", "must not be negative")
	}
	if _, err := ownedPage(ctx, s.pages, pageID, ownerID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	link := &domain.LinkEntry{
		ID:        uuid.NewString(),
		PageID:    pageID,
		OwnerID:   ownerID,
		Kind:      in.EffectiveKind(),
		Title:     in.Title,
		URL:       in.URL,
		IsActive:  true,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.links.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	s.invalidate(pageID)
	return link, nil
}

func (s *LinkService) UpdateLink(ctx context.Context, id, ownerID string, patch domain.LinkPatch) (*domain.LinkEntry, error) {
	link, err := s.ownedLink(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}
	if err := validate.LinkPatch(link.Kind, patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return link, nil
	}

	updated := patch.Apply(*link)
	updated.UpdatedAt = s.now().UTC()
	if err := s.links.UpdateLink(ctx, &updated); err != nil {
		return nil, err
	}

	s.invalidate(updated.PageID)
	return &updated, nil
}

func (s *LinkService) DeleteLink(ctx context.Context, id, ownerID string) error {
	link, err := s.ownedLink(ctx, id, ownerID)
	if err != nil {
		return err
	}
	if err := s.links.DeleteLink(ctx, id, ownerID); err != nil {
		return err
	}

	s.invalidate(link.PageID)
	return nil
}

// ReorderLinks accepts a full, dense {id, position} mapping for one page.
// Every id must be an entry of that page owned by ownerID; otherwise nothing
// changes.
func (s *LinkService) ReorderLinks(ctx context.Context, positions []domain.LinkPosition, ownerID string) error {
	if len(positions) == 0 {
		return nil
	}
	if !linklist.IsDense(positions) {
		return domain.NewValidationError("positions", "must be a permutation of 0..n-1 over distinct ids")
	}

	first, err := s.ownedLink(ctx, positions[0].ID, ownerID)
	if err != nil {
		return err
	}

	current, err := s.links.ListLinks(ctx, first.PageID)
	if err != nil {
		return err
	}
	onPage := make(map[string]struct{}, len(current))
	for _, e := range current {
		onPage[e.ID] = struct{}{}
	}
	for _, p := range positions {
		if _, ok := onPage[p.ID]; !ok {
			return fmt.Errorf("link %s: %w", p.ID, domain.ErrNotFound)
		}
	}
	if len(positions) != len(current) {
		return domain.NewValidationError("positions", "must include every entry of the page")
	}

	if err := s.links.ReorderLinks(ctx, positions, ownerID); err != nil {
		return err
	}

	s.invalidate(first.PageID)
	return nil
}

// ownedLink hides other owners' entries behind ErrNotFound.
func (s *LinkService) ownedLink(ctx context.Context, id, ownerID string) (*domain.LinkEntry, error) {
	link, err := s.links.GetLink(ctx, id)
	if err != nil {
		return nil, err
	}
	if link.OwnerID != ownerID {
		return nil, fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	return link, nil
}

func (s *LinkService) invalidate(pageID string) {
	if s.cache != nil {
		s.cache.InvalidatePage(pageID)
	}
}
