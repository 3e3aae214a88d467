package domain

import "time"

// LinkKind distinguishes clickable links from section headers.
type LinkKind string

const (
	KindLink   LinkKind = "link"
	KindHeader LinkKind = "header"
)

// Valid reports whether k is a known kind.
func (k LinkKind) Valid() bool {
	return k == KindLink || k == KindHeader
}

// LinkEntry is one row of a landing page's ordered list
type LinkEntry struct {
	ID        string    `json:"id"`
	PageID    string    `json:"page_id"`
	OwnerID   string    `json:"owner_id"`
	Kind      LinkKind  `json:"kind"`
	Title     string    `json:"title"`
	URL       string    `json:"url"` // Empty for headers
	IsActive  bool      `json:"is_active"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LinkInput is the payload for appending a new entry.
type LinkInput struct {
	Title string   `json:"title"`
	URL   string   `json:"url,omitempty"`
	Kind  LinkKind `json:"kind,omitempty"`
}

// EffectiveKind defaults an empty kind to KindLink.
func (in LinkInput) EffectiveKind() LinkKind {
	if in.Kind == "" {
		return KindLink
	}
	return in.Kind
}

// LinkPatch carries a partial update. Nil fields are left untouched.
type LinkPatch struct {
	Title    *string `json:"title,omitempty"`
	URL      *string `json:"url,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p LinkPatch) IsEmpty() bool {
	return p.Title == nil && p.URL == nil && p.IsActive == nil
}

// Apply returns a copy of e with the patch fields applied.
func (p LinkPatch) Apply(e LinkEntry) LinkEntry {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.URL != nil {
		e.URL = *p.URL
	}
	if p.IsActive != nil {
		e.IsActive = *p.IsActive
	}
	return e
}

// LinkPosition is one element of a reorder batch.
type LinkPosition struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
}
