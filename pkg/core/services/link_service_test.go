package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

func TestLinkService_CreateLink(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "owner@example.com")
	page := h.page(t, owner.ID, "")

	t.Run("appends with the given position", func(t *testing.T) {
		e, err := h.links.CreateLink(ctx, page.ID, owner.ID, domain.LinkInput{Title: "Blog", URL: "https://blog.example.com"}, 0)
		require.NoError(t, err)
		assert.Equal(t, domain.KindLink, e.Kind)
		assert.True(t, e.IsActive)
		assert.Equal(t, 0, e.Position)
		assert.NotEmpty(t, e.ID)
	})

	t.Run("header without url", func(t *testing.T) {
		e, err := h.links.CreateLink(ctx, page.ID, owner.ID, domain.LinkInput{Title: "Projects", Kind: domain.KindHeader}, 1)
		require.NoError(t, err)
		assert.Equal(t, domain.KindHeader, e.Kind)
		assert.Empty(t, e.URL)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := h.links.CreateLink(ctx, page.ID, owner.ID, domain.LinkInput{Title: "Bad", URL: "ftp://x"}, 2)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("negative position", func(t *testing.T) {
		_, err := h.links.CreateLink(ctx, page.ID, owner.ID, domain.LinkInput{Title: "Neg", URL: "https://x.com"}, -1)
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("foreign page", func(t *testing.T) {
		_, err := h.links.CreateLink(ctx, page.ID, "someone-else", domain.LinkInput{Title: "X", URL: "https://x.com"}, 2)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	entries, err := h.links.FetchLinks(ctx, page.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Blog", "Projects"}, titlesOf(entries))
}

func TestLinkService_UpdateAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "owner@example.com")
	page := h.page(t, owner.ID, "")
	blog := h.link(t, page, "Blog", 0)

	updated, err := h.links.UpdateLink(ctx, blog.ID, owner.ID, domain.LinkPatch{Title: strPtr("My Blog"), IsActive: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, "My Blog", updated.Title)
	assert.False(t, updated.IsActive)
	assert.Equal(t, blog.URL, updated.URL)

	_, err = h.links.UpdateLink(ctx, blog.ID, "intruder", domain.LinkPatch{Title: strPtr("x")})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.links.UpdateLink(ctx, blog.ID, owner.ID, domain.LinkPatch{Title: strPtr("")})
	require.ErrorIs(t, err, domain.ErrValidation)

	require.ErrorIs(t, h.links.DeleteLink(ctx, blog.ID, "intruder"), domain.ErrNotFound)
	require.NoError(t, h.links.DeleteLink(ctx, blog.ID, owner.ID))
	require.ErrorIs(t, h.links.DeleteLink(ctx, blog.ID, owner.ID), domain.ErrNotFound)
}

func TestLinkService_ReorderLinks(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "owner@example.com")
	page := h.page(t, owner.ID, "")
	a := h.link(t, page, "A", 0)
	b := h.link(t, page, "B", 1)
	c := h.link(t, page, "C", 2)

	other := h.profile(t, "other@example.com")
	otherPage := h.page(t, other.ID, "")
	foreign := h.link(t, otherPage, "F", 0)

	tests := []struct {
		name      string
		owner     string
		positions []domain.LinkPosition
		wantErr   error
	}{
		{
			name:      "gap in positions",
			owner:     owner.ID,
			positions: []domain.LinkPosition{{ID: a.ID, Position: 0}, {ID: b.ID, Position: 2}, {ID: c.ID, Position: 3}},
			wantErr:   domain.ErrValidation,
		},
		{
			name:      "duplicate id",
			owner:     owner.ID,
			positions: []domain.LinkPosition{{ID: a.ID, Position: 0}, {ID: a.ID, Position: 1}, {ID: c.ID, Position: 2}},
			wantErr:   domain.ErrValidation,
		},
		{
			name:      "missing entry",
			owner:     owner.ID,
			positions: []domain.LinkPosition{{ID: a.ID, Position: 0}, {ID: b.ID, Position: 1}},
			wantErr:   domain.ErrValidation,
		},
		{
			name:      "entry of another page",
			owner:     owner.ID,
			positions: []domain.LinkPosition{{ID: a.ID, Position: 0}, {ID: b.ID, Position: 1}, {ID: foreign.ID, Position: 2}},
			wantErr:   domain.ErrNotFound,
		},
		{
			name:      "wrong owner",
			owner:     other.ID,
			positions: []domain.LinkPosition{{ID: a.ID, Position: 0}, {ID: b.ID, Position: 1}, {ID: c.ID, Position: 2}},
			wantErr:   domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.links.ReorderLinks(ctx, tt.positions, tt.owner)
			require.ErrorIs(t, err, tt.wantErr)

			entries, err := h.links.FetchLinks(ctx, page.ID)
			require.NoError(t, err)
			assert.Equal(t, []string{"A", "B", "C"}, titlesOf(entries))
		})
	}

	t.Run("full permutation", func(t *testing.T) {
		err := h.links.ReorderLinks(ctx, []domain.LinkPosition{{ID: c.ID, Position: 0}, {ID: a.ID, Position: 1}, {ID: b.ID, Position: 2}}, owner.ID)
		require.NoError(t, err)

		entries, err := h.links.ListOwnedLinks(ctx, page.ID, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, titlesOf(entries))
	})

	t.Run("empty batch", func(t *testing.T) {
		require.NoError(t, h.links.ReorderLinks(ctx, nil, owner.ID))
	})
}

func TestLinkService_InvalidatesPublicCache(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	owner := h.profile(t, "jane@example.com")
	page := h.page(t, owner.ID, "")
	blog := h.link(t, page, "Blog", 0)

	pub, err := h.pages.GetPublicPage(ctx, owner.Username, "")
	require.NoError(t, err)
	require.Len(t, pub.Links, 1)
	require.Equal(t, 1, h.cache.Len())

	_, err = h.links.UpdateLink(ctx, blog.ID, owner.ID, domain.LinkPatch{Title: strPtr("Journal")})
	require.NoError(t, err)
	assert.Equal(t, 0, h.cache.Len())

	pub, err = h.pages.GetPublicPage(ctx, owner.Username, "")
	require.NoError(t, err)
	assert.Equal(t, "Journal", pub.Links[0].Title)
}
