package linklist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

var errStore = errors.New("store unavailable")

// fakeStore is an in-memory LinkStore. Setting gate makes calls signal on
// started and then wait for a value on gate (or ctx). gateOnly limits that to
// one operation.
type fakeStore struct {
	mu      sync.Mutex
	entries []domain.LinkEntry
	nextID  int

	fetchErr   error
	createErr  error
	updateErr  error
	deleteErr  error
	reorderErr error

	gate     chan error
	started  chan string
	gateOnly string

	calls     map[string]int
	reorders  [][]domain.LinkPosition
	inFlight  int
	maxFlight int
}

func newFakeStore(titles ...string) *fakeStore {
	s := &fakeStore{calls: make(map[string]int)}
	for i, title := range titles {
		s.entries = append(s.entries, domain.LinkEntry{
			ID:       title,
			PageID:   "page-1",
			OwnerID:  "owner-1",
			Kind:     domain.KindLink,
			Title:    title,
			URL:      "https://example.com/" + title,
			IsActive: true,
			Position: i,
		})
	}
	s.nextID = len(titles)
	return s
}

func (s *fakeStore) enter(ctx context.Context, op string) error {
	s.mu.Lock()
	s.calls[op]++
	s.inFlight++
	s.maxFlight = max(s.maxFlight, s.inFlight)
	gate, started := s.gate, s.started
	if s.gateOnly != "" && s.gateOnly != op {
		gate = nil
	}
	s.mu.Unlock()

	if gate == nil {
		return nil
	}
	if started != nil {
		started <- op
	}
	select {
	case err := <-gate:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *fakeStore) leave() {
	s.mu.Lock()
	s.inFlight--
	s.mu.Unlock()
}

func (s *fakeStore) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeStore) FetchLinks(ctx context.Context, pageID string) ([]domain.LinkEntry, error) {
	defer s.leave()
	if err := s.enter(ctx, "fetch"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return slices.Clone(s.entries), nil
}

func (s *fakeStore) CreateLink(ctx context.Context, pageID, ownerID string, in domain.LinkInput, position int) (*domain.LinkEntry, error) {
	defer s.leave()
	if err := s.enter(ctx, "create"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.nextID++
	e := domain.LinkEntry{
		ID:       fmt.Sprintf("new-%d", s.nextID),
		PageID:   pageID,
		OwnerID:  ownerID,
		Kind:     in.EffectiveKind(),
		Title:    in.Title,
		URL:      in.URL,
		IsActive: true,
		Position: position,
	}
	s.entries = append(s.entries, e)
	return &e, nil
}

func (s *fakeStore) UpdateLink(ctx context.Context, id, ownerID string, patch domain.LinkPatch) (*domain.LinkEntry, error) {
	defer s.leave()
	if err := s.enter(ctx, "update"); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	for i, e := range s.entries {
		if e.ID == id {
			s.entries[i] = patch.Apply(e)
			out := s.entries[i]
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *fakeStore) DeleteLink(ctx context.Context, id, ownerID string) error {
	defer s.leave()
	if err := s.enter(ctx, "delete"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.entries = slices.DeleteFunc(s.entries, func(e domain.LinkEntry) bool { return e.ID == id })
	return nil
}

func (s *fakeStore) ReorderLinks(ctx context.Context, positions []domain.LinkPosition, ownerID string) error {
	defer s.leave()
	s.mu.Lock()
	s.reorders = append(s.reorders, slices.Clone(positions))
	s.mu.Unlock()
	if err := s.enter(ctx, "reorder"); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reorderErr
}
