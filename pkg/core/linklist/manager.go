// Package linklist keeps the ordered list of one landing page's entries for an
// editing session. Create, Update and Delete apply locally only after the
// store confirms. Reorder applies optimistically and restores the exact
// snapshot it replaced when the store rejects it. Reorders run one at a time.
package linklist

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
	"github.com/wadjakorntonsri/linkpage/pkg/core/validate"
	"github.com/wadjakorntonsri/linkpage/pkg/logger"
	"github.com/wadjakorntonsri/linkpage/pkg/ports"
)

// State is a point-in-time copy of the manager's list.
type State struct {
	Entries []domain.LinkEntry
	Loading bool
	Err     error // Last remote failure, cleared by the next success
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. The default is silent.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// Manager owns the local list of a single page.
type Manager struct {
	store   ports.LinkStore
	pageID  string
	ownerID string
	log     *logger.Logger

	// Serializes Load and Reorder so a reorder never snapshots a list that
	// another reorder has not settled yet.
	serial *semaphore.Weighted

	life   context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	entries []domain.LinkEntry
	loads   int
	err     error
	closed  bool
	subs    map[int]chan State
	nextSub int
}

// New returns a manager for pageID acting on behalf of ownerID. Call Load to
// populate it and Close when the editing session ends.
func New(store ports.LinkStore, pageID, ownerID string, opts ...Option) *Manager {
	life, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:   store,
		pageID:  pageID,
		ownerID: ownerID,
		serial:  semaphore.NewWeighted(1),
		life:    life,
		cancel:  cancel,
		subs:    make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With(map[string]any{"page_id": pageID})
	return m
}

// State returns a copy of the current list and flags.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stateLocked()
}

// Entries returns a copy of the current list.
func (m *Manager) Entries() []domain.LinkEntry {
	return m.State().Entries
}

// Subscribe returns a channel that always holds the latest state. Slow
// readers skip intermediate states. The channel is closed by cancel or Close.
func (m *Manager) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		close(ch)
		return ch, func() {}
	}

	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.stateLocked()

	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if c, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(c)
		}
	}
}

// Close ends the session. Pending calls are cancelled, their responses are
// discarded and every later operation returns domain.ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.mu.Unlock()

	m.cancel()
	return nil
}

// Load replaces the local list with the store's entries ordered by position.
func (m *Manager) Load(ctx context.Context) error {
	ctx, done := m.bind(ctx)
	defer done()

	if err := m.serial.Acquire(ctx, 1); err != nil {
		return m.abortErr(err)
	}
	defer m.serial.Release(1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	m.loads++
	m.publishLocked()
	m.mu.Unlock()

	entries, err := m.store.FetchLinks(ctx, m.pageID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("discarding links fetched after close")
		return domain.ErrClosed
	}
	m.loads--

	if err != nil {
		ferr := &domain.FetchError{PageID: m.pageID, Err: err}
		m.err = ferr
		m.publishLocked()
		return ferr
	}

	entries = slices.Clone(entries)
	slices.SortStableFunc(entries, func(a, b domain.LinkEntry) int {
		return cmp.Compare(a.Position, b.Position)
	})
	m.entries = entries
	m.err = nil
	m.publishLocked()
	return nil
}

// Create validates in and appends the persisted entry at the end of the list.
// Nothing changes locally if validation or the store fails.
func (m *Manager) Create(ctx context.Context, in domain.LinkInput) (*domain.LinkEntry, error) {
	if err := validate.LinkInput(in); err != nil {
		return nil, err
	}

	m.mu.RLock()
	closed, position := m.closed, len(m.entries)
	m.mu.RUnlock()
	if closed {
		return nil, domain.ErrClosed
	}

	ctx, done := m.bind(ctx)
	defer done()

	created, err := m.store.CreateLink(ctx, m.pageID, m.ownerID, in, position)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("discarding create response after close")
		return nil, domain.ErrClosed
	}
	if err != nil {
		return nil, m.failLocked("create", err)
	}

	next := make([]domain.LinkEntry, 0, len(m.entries)+1)
	next = append(next, m.entries...)
	next = append(next, *created)
	m.entries = next
	m.err = nil
	m.publishLocked()

	out := *created
	return &out, nil
}

// Update applies a partial edit. Only supplied fields are validated, using the
// rules of the entry's kind. The entry keeps its local position.
func (m *Manager) Update(ctx context.Context, id string, patch domain.LinkPatch) (*domain.LinkEntry, error) {
	m.mu.RLock()
	closed := m.closed
	idx := m.indexLocked(id)
	var current domain.LinkEntry
	if idx >= 0 {
		current = m.entries[idx]
	}
	m.mu.RUnlock()

	if closed {
		return nil, domain.ErrClosed
	}
	if idx < 0 {
		return nil, fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}
	if err := validate.LinkPatch(current.Kind, patch); err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return &current, nil
	}

	ctx, done := m.bind(ctx)
	defer done()

	updated, err := m.store.UpdateLink(ctx, id, m.ownerID, patch)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("discarding update response after close")
		return nil, domain.ErrClosed
	}
	if err != nil {
		return nil, m.failLocked("update", err)
	}

	out := *updated
	if idx = m.indexLocked(id); idx >= 0 {
		out.Position = m.entries[idx].Position
		next := slices.Clone(m.entries)
		next[idx] = out
		m.entries = next
	}
	m.err = nil
	m.publishLocked()
	return &out, nil
}

// Delete removes the entry remotely, then locally. Remaining positions are
// left as they are.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.RLock()
	closed, idx := m.closed, m.indexLocked(id)
	m.mu.RUnlock()

	if closed {
		return domain.ErrClosed
	}
	if idx < 0 {
		return fmt.Errorf("link %s: %w", id, domain.ErrNotFound)
	}

	ctx, done := m.bind(ctx)
	defer done()

	err := m.store.DeleteLink(ctx, id, m.ownerID)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("discarding delete response after close")
		return domain.ErrClosed
	}
	if err != nil {
		return m.failLocked("delete", err)
	}

	m.entries = slices.DeleteFunc(slices.Clone(m.entries), func(e domain.LinkEntry) bool {
		return e.ID == id
	})
	m.err = nil
	m.publishLocked()
	return nil
}

// Reorder moves the entry at from to index to. The new order is visible
// immediately. If the store rejects it the list goes back to exactly what it
// was when this reorder took its snapshot, and the error is returned.
//
// from == to and out-of-range indexes are no-ops that never reach the store.
// Concurrent calls queue; ctx bounds the wait.
func (m *Manager) Reorder(ctx context.Context, from, to int) error {
	if from == to {
		return nil
	}

	ctx, done := m.bind(ctx)
	defer done()

	if err := m.serial.Acquire(ctx, 1); err != nil {
		return m.abortErr(err)
	}
	defer m.serial.Release(1)

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return domain.ErrClosed
	}
	prior := m.entries
	next, ok := Move(prior, from, to)
	if !ok {
		m.mu.Unlock()
		return nil
	}
	m.entries = next
	m.publishLocked()
	m.mu.Unlock()

	err := m.store.ReorderLinks(ctx, Positions(next), m.ownerID)
	if err == nil {
		m.mu.Lock()
		if !m.closed {
			m.err = nil
			m.publishLocked()
		}
		m.mu.Unlock()
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		m.log.Debug("discarding reorder failure after close")
		return domain.ErrClosed
	}
	m.entries = prior
	rerr := m.failLocked("reorder", err)
	m.log.WithError(err).With(map[string]any{"from": from, "to": to}).Warn("reorder rejected, list restored")
	return rerr
}

// bind derives a context that is also cancelled when the manager closes.
func (m *Manager) bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(m.life, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (m *Manager) abortErr(err error) error {
	if m.life.Err() != nil {
		return domain.ErrClosed
	}
	return err
}

// failLocked records a remote failure and publishes it.
func (m *Manager) failLocked(op string, err error) error {
	var rerr *domain.RemoteError
	if !errors.As(err, &rerr) {
		rerr = &domain.RemoteError{Op: op, Err: err}
	}
	m.err = rerr
	m.publishLocked()
	return rerr
}

func (m *Manager) indexLocked(id string) int {
	return slices.IndexFunc(m.entries, func(e domain.LinkEntry) bool { return e.ID == id })
}

func (m *Manager) stateLocked() State {
	return State{
		Entries: slices.Clone(m.entries),
		Loading: m.loads > 0,
		Err:     m.err,
	}
}

// publishLocked replaces whatever each subscriber has not read yet. Only
// this method sends, always under mu, so the send never blocks.
func (m *Manager) publishLocked() {
	if len(m.subs) == 0 {
		return
	}
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- m.stateLocked()
	}
}
