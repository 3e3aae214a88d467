package linklist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func loaded(t *testing.T, store *fakeStore) *Manager {
	t.Helper()
	m := New(store, "page-1", "owner-1")
	t.Cleanup(func() { _ = m.Close() })
	require.NoError(t, m.Load(context.Background()))
	return m
}

func strPtr(s string) *string { return &s }

func waitStarted(t *testing.T, started <-chan string, want string) {
	t.Helper()
	select {
	case op := <-started:
		require.Equal(t, want, op)
	case <-time.After(2 * time.Second):
		t.Fatalf("store call %q never started", want)
	}
}

func TestLoadSortsByPosition(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	store.entries[0].Position, store.entries[2].Position = 2, 0

	m := loaded(t, store)

	st := m.State()
	assert.Equal(t, []string{"C", "B", "A"}, ids(st.Entries))
	assert.False(t, st.Loading)
	assert.NoError(t, st.Err)
}

func TestLoadFailureIsFetchError(t *testing.T) {
	store := newFakeStore("A")
	store.fetchErr = errStore
	m := New(store, "page-1", "owner-1")
	defer m.Close()

	err := m.Load(context.Background())

	var ferr *domain.FetchError
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, "page-1", ferr.PageID)
	assert.ErrorIs(t, err, domain.ErrFetch)
	assert.ErrorIs(t, err, domain.ErrRemote)
	assert.ErrorIs(t, err, errStore)
	assert.Empty(t, m.Entries())
	assert.Equal(t, err, m.State().Err)
}

// [A,B,C] reorder(0,2) -> [B,C,A] with dense positions.
func TestReorderMovesAndRenumbers(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)

	require.NoError(t, m.Reorder(context.Background(), 0, 2))

	entries := m.Entries()
	assert.Equal(t, []string{"B", "C", "A"}, ids(entries))
	assert.Equal(t, []int{0, 1, 2}, positions(entries))
	require.Len(t, store.reorders, 1)
	assert.Equal(t, []domain.LinkPosition{
		{ID: "B", Position: 0},
		{ID: "C", Position: 1},
		{ID: "A", Position: 2},
	}, store.reorders[0])
}

// A rejected reorder puts back the identical list and reports the error.
func TestReorderRollsBackOnFailure(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)
	before := m.Entries()
	store.reorderErr = errStore

	err := m.Reorder(context.Background(), 0, 2)

	require.ErrorIs(t, err, domain.ErrRemote)
	require.ErrorIs(t, err, errStore)
	var rerr *domain.RemoteError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "reorder", rerr.Op)
	assert.Equal(t, before, m.Entries())
	assert.Equal(t, err, m.State().Err)
}

func TestReorderRollbackIgnoresChangesMadeWhileInFlight(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)
	before := m.Entries()

	store.gate = make(chan error)
	store.started = make(chan string)
	store.gateOnly = "reorder"

	done := make(chan error, 1)
	go func() { done <- m.Reorder(context.Background(), 0, 2) }()
	waitStarted(t, store.started, "reorder")

	assert.Equal(t, []string{"B", "C", "A"}, ids(m.Entries()), "optimistic order is visible while pending")

	created, err := m.Create(context.Background(), domain.LinkInput{Title: "D", URL: "https://d.example"})
	require.NoError(t, err)
	assert.Equal(t, 3, created.Position)
	assert.Equal(t, []string{"B", "C", "A", created.ID}, ids(m.Entries()))

	store.gate <- errStore
	require.ErrorIs(t, <-done, errStore)

	assert.Equal(t, before, m.Entries())
}

func TestReorderNoopsNeverReachStore(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)

	for _, pair := range [][2]int{{1, 1}, {0, 3}, {-1, 1}, {5, 0}} {
		require.NoError(t, m.Reorder(context.Background(), pair[0], pair[1]))
	}

	assert.Zero(t, store.count("reorder"))
	assert.Equal(t, []string{"A", "B", "C"}, ids(m.Entries()))
}

func TestConcurrentReordersSerialize(t *testing.T) {
	tests := []struct {
		name       string
		firstErr   error
		wantFinal  []string
		wantSecond []domain.LinkPosition
	}{
		{
			name:      "first succeeds",
			firstErr:  nil,
			wantFinal: []string{"C", "B", "A"},
			wantSecond: []domain.LinkPosition{
				{ID: "C", Position: 0}, {ID: "B", Position: 1}, {ID: "A", Position: 2},
			},
		},
		{
			name:      "first fails",
			firstErr:  errStore,
			wantFinal: []string{"B", "A", "C"},
			wantSecond: []domain.LinkPosition{
				{ID: "B", Position: 0}, {ID: "A", Position: 1}, {ID: "C", Position: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore("A", "B", "C")
			m := loaded(t, store)
			store.gate = make(chan error)
			store.started = make(chan string)

			first := make(chan error, 1)
			go func() { first <- m.Reorder(context.Background(), 0, 2) }()
			waitStarted(t, store.started, "reorder")

			second := make(chan error, 1)
			go func() { second <- m.Reorder(context.Background(), 0, 1) }()

			select {
			case op := <-store.started:
				t.Fatalf("%s started while the first reorder was pending", op)
			case <-time.After(50 * time.Millisecond):
			}

			store.gate <- tt.firstErr
			assert.ErrorIs(t, <-first, tt.firstErr)

			waitStarted(t, store.started, "reorder")
			store.gate <- nil
			require.NoError(t, <-second)

			assert.Equal(t, tt.wantFinal, ids(m.Entries()))
			require.Len(t, store.reorders, 2)
			assert.Equal(t, tt.wantSecond, store.reorders[1])
			assert.Equal(t, 1, store.maxFlight)
		})
	}
}

func TestReorderWaitRespectsContext(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)
	store.gate = make(chan error)
	store.started = make(chan string)

	first := make(chan error, 1)
	go func() { first <- m.Reorder(context.Background(), 0, 2) }()
	waitStarted(t, store.started, "reorder")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := m.Reorder(ctx, 1, 0)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	store.gate <- nil
	require.NoError(t, <-first)
	assert.Equal(t, 1, store.count("reorder"))
}

// A javascript: URL is rejected before any remote call.
func TestCreateRejectsUnsafeURL(t *testing.T) {
	store := newFakeStore("A")
	m := loaded(t, store)

	_, err := m.Create(context.Background(), domain.LinkInput{Title: "x", URL: "javascript:alert(1)", Kind: domain.KindLink})

	require.ErrorIs(t, err, domain.ErrValidation)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "url", verr.Errors[0].Field)
	assert.Zero(t, store.count("create"))
	assert.Equal(t, []string{"A"}, ids(m.Entries()))
}

func TestCreateAppendsAtCurrentLength(t *testing.T) {
	store := newFakeStore("A", "B")
	m := loaded(t, store)

	created, err := m.Create(context.Background(), domain.LinkInput{Title: "Section", Kind: domain.KindHeader})
	require.NoError(t, err)

	assert.Equal(t, 2, created.Position)
	assert.Equal(t, domain.KindHeader, created.Kind)
	entries := m.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, created.ID, entries[2].ID)
}

func TestCreateFailureLeavesListUntouched(t *testing.T) {
	store := newFakeStore("A", "B")
	m := loaded(t, store)
	before := m.Entries()
	store.createErr = errStore

	_, err := m.Create(context.Background(), domain.LinkInput{Title: "C", URL: "https://c.example"})

	require.ErrorIs(t, err, domain.ErrRemote)
	assert.Equal(t, before, m.Entries())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)

	updated, err := m.Update(context.Background(), "B", domain.LinkPatch{Title: strPtr("Bee")})
	require.NoError(t, err)
	assert.Equal(t, "Bee", updated.Title)

	entries := m.Entries()
	assert.Equal(t, []string{"A", "B", "C"}, ids(entries))
	assert.Equal(t, []int{0, 1, 2}, positions(entries))
	assert.Equal(t, "Bee", entries[1].Title)
	assert.Equal(t, "https://example.com/B", entries[1].URL)
}

func TestUpdateValidatesOnlySuppliedFields(t *testing.T) {
	store := newFakeStore("A")
	m := loaded(t, store)

	_, err := m.Update(context.Background(), "A", domain.LinkPatch{URL: strPtr("data:text/html,x")})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Zero(t, store.count("update"))

	active := false
	updated, err := m.Update(context.Background(), "A", domain.LinkPatch{IsActive: &active})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
}

func TestUpdateUnknownIDIsNotFound(t *testing.T) {
	store := newFakeStore("A")
	m := loaded(t, store)

	_, err := m.Update(context.Background(), "missing", domain.LinkPatch{Title: strPtr("x")})

	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, store.count("update"))
}

func TestUpdateFailureLeavesListUntouched(t *testing.T) {
	store := newFakeStore("A")
	m := loaded(t, store)
	before := m.Entries()
	store.updateErr = domain.ErrNotFound

	_, err := m.Update(context.Background(), "A", domain.LinkPatch{Title: strPtr("x")})

	require.ErrorIs(t, err, domain.ErrRemote)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, before, m.Entries())
}

func TestDeleteRemovesWithoutRenumbering(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := loaded(t, store)

	require.NoError(t, m.Delete(context.Background(), "A"))

	entries := m.Entries()
	assert.Equal(t, []string{"B", "C"}, ids(entries))
	assert.Equal(t, []int{1, 2}, positions(entries))
}

func TestDeleteFailureKeepsEntry(t *testing.T) {
	store := newFakeStore("A", "B")
	m := loaded(t, store)
	store.deleteErr = errStore

	err := m.Delete(context.Background(), "A")

	require.ErrorIs(t, err, errStore)
	assert.Equal(t, []string{"A", "B"}, ids(m.Entries()))
}

func TestCloseDiscardsLateResponses(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	m := New(store, "page-1", "owner-1")
	require.NoError(t, m.Load(context.Background()))
	store.gate = make(chan error)
	store.started = make(chan string)

	updates, _ := m.Subscribe()
	<-updates

	done := make(chan error, 1)
	go func() { done <- m.Reorder(context.Background(), 0, 2) }()
	waitStarted(t, store.started, "reorder")

	require.NoError(t, m.Close())

	assert.ErrorIs(t, <-done, domain.ErrClosed)
	assert.Equal(t, []string{"B", "C", "A"}, ids(m.Entries()), "no rollback applied after close")

	for range updates {
	}

	_, err := m.Create(context.Background(), domain.LinkInput{Title: "x", URL: "https://x.example"})
	assert.ErrorIs(t, err, domain.ErrClosed)
	assert.ErrorIs(t, m.Load(context.Background()), domain.ErrClosed)
	assert.ErrorIs(t, m.Reorder(context.Background(), 0, 1), domain.ErrClosed)
	assert.NoError(t, m.Close())
}

func TestSubscribeSeesLatestState(t *testing.T) {
	store := newFakeStore("A", "B")
	m := loaded(t, store)

	updates, cancel := m.Subscribe()
	first := <-updates
	assert.Equal(t, []string{"A", "B"}, ids(first.Entries))

	require.NoError(t, m.Reorder(context.Background(), 0, 1))
	store.reorderErr = errStore
	require.Error(t, m.Reorder(context.Background(), 0, 1))

	latest := <-updates
	assert.Equal(t, []string{"B", "A"}, ids(latest.Entries))
	assert.True(t, errors.Is(latest.Err, errStore))

	cancel()
	_, open := <-updates
	assert.False(t, open)
}

func TestLoadingFlagWhileFetching(t *testing.T) {
	store := newFakeStore("A")
	m := New(store, "page-1", "owner-1")
	defer m.Close()
	store.gate = make(chan error)
	store.started = make(chan string)

	done := make(chan error, 1)
	go func() { done <- m.Load(context.Background()) }()
	waitStarted(t, store.started, "fetch")

	assert.True(t, m.State().Loading)
	store.gate <- nil
	require.NoError(t, <-done)
	assert.False(t, m.State().Loading)
}
