package linklist

import (
	"slices"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

// Move returns a new slice with the entry at from reinserted at to, every
// position renumbered to its index. The input is never modified. ok is false
// when either index is out of range.
func Move(entries []domain.LinkEntry, from, to int) (moved []domain.LinkEntry, ok bool) {
	if from < 0 || from >= len(entries) || to < 0 || to >= len(entries) {
		return nil, false
	}

	next := slices.Clone(entries)
	item := next[from]
	next = slices.Delete(next, from, from+1)
	next = slices.Insert(next, to, item)
	Renumber(next)
	return next, true
}

// Renumber sets each entry's position to its index.
func Renumber(entries []domain.LinkEntry) {
	for i := range entries {
		entries[i].Position = i
	}
}

// Positions is the {id, position} batch sent to the store for a reorder.
func Positions(entries []domain.LinkEntry) []domain.LinkPosition {
	out := make([]domain.LinkPosition, len(entries))
	for i, e := range entries {
		out[i] = domain.LinkPosition{ID: e.ID, Position: e.Position}
	}
	return out
}

// IsDense reports whether positions is a permutation of 0..n-1 over distinct ids.
func IsDense(positions []domain.LinkPosition) bool {
	seenPos := make([]bool, len(positions))
	seenID := make(map[string]struct{}, len(positions))
	for _, p := range positions {
		if p.Position < 0 || p.Position >= len(positions) || seenPos[p.Position] {
			return false
		}
		if _, dup := seenID[p.ID]; dup || p.ID == "" {
			return false
		}
		seenPos[p.Position] = true
		seenID[p.ID] = struct{}{}
	}
	return true
}
