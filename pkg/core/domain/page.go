package domain

import "time"

// LandingPage is a public link-in-bio page owned by a profile
type LandingPage struct {
	ID            string            `json:"id"`
	OwnerID       string            `json:"owner_id"`
	Slug          string            `json:"slug"` // Empty for the owner's root page
	Title         string            `json:"title"`
	Bio           string            `json:"bio"`
	Theme         string            `json:"theme"`
	AvatarURL     string            `json:"avatar_url,omitempty"`
	IsDefault     bool              `json:"is_default"`
	Customization PageCustomization `json:"customization"`
	Pixel         *PixelConfig      `json:"pixel,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
	Links         []LinkEntry       `json:"links,omitempty"` // Populated when fetching full page details
}

// ButtonStyle selects the link card shape. The zero value inherits the default.
type ButtonStyle string

const (
	ButtonRounded ButtonStyle = "rounded"
	ButtonPill    ButtonStyle = "pill"
	ButtonSquare  ButtonStyle = "square"
	ButtonOutline ButtonStyle = "outline"
)

// FontFamily is a key into the font registry. The zero value means no override.
type FontFamily string

// CustomColors holds literal hex overrides; a nil field inherits the theme.
type CustomColors struct {
	Background     *string `json:"background,omitempty"`
	Text           *string `json:"text,omitempty"`
	CardBackground *string `json:"card_background,omitempty"`
	CardText       *string `json:"card_text,omitempty"`
}

// IsEmpty reports whether no colour is overridden.
func (c *CustomColors) IsEmpty() bool {
	return c == nil || (c.Background == nil && c.Text == nil && c.CardBackground == nil && c.CardText == nil)
}

// SocialLink is one icon in the page's social bar. Platform is unique per page.
type SocialLink struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

// PageCustomization is the optional overlay on top of the base theme.
type PageCustomization struct {
	CustomColors *CustomColors `json:"custom_colors,omitempty"`
	ButtonStyle  ButtonStyle   `json:"button_style,omitempty"`
	FontFamily   FontFamily    `json:"font_family,omitempty"`
	SocialLinks  []SocialLink  `json:"social_links,omitempty"`
}

// PixelConfig is the Facebook Pixel setup of a page.
type PixelConfig struct {
	PixelID       string   `json:"pixel_id"`
	AccessToken   string   `json:"access_token,omitempty"`
	TestEventCode string   `json:"test_event_code,omitempty"`
	Events        []string `json:"events"`
	IsActive      bool     `json:"is_active"`
}

// Public strips the server-side credentials.
func (p *PixelConfig) Public() *PixelConfig {
	if p == nil || !p.IsActive {
		return nil
	}
	return &PixelConfig{
		PixelID:  p.PixelID,
		Events:   append([]string(nil), p.Events...),
		IsActive: true,
	}
}

// PageInput is the payload for creating a page.
type PageInput struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Bio   string `json:"bio"`
	Theme string `json:"theme"`
}

// PagePatch is a partial page update. Nil fields are left untouched.
type PagePatch struct {
	Title         *string            `json:"title,omitempty"`
	Slug          *string            `json:"slug,omitempty"`
	Bio           *string            `json:"bio,omitempty"`
	Theme         *string            `json:"theme,omitempty"`
	AvatarURL     *string            `json:"avatar_url,omitempty"`
	IsDefault     *bool              `json:"is_default,omitempty"`
	Customization *PageCustomization `json:"customization,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pp PagePatch) Apply(p LandingPage) LandingPage {
	if pp.Title != nil {
		p.Title = *pp.Title
	}
	if pp.Slug != nil {
		p.Slug = *pp.Slug
	}
	if pp.Bio != nil {
		p.Bio = *pp.Bio
	}
	if pp.Theme != nil {
		p.Theme = *pp.Theme
	}
	if pp.AvatarURL != nil {
		p.AvatarURL = *pp.AvatarURL
	}
	if pp.IsDefault != nil {
		p.IsDefault = *pp.IsDefault
	}
	if pp.Customization != nil {
		p.Customization = *pp.Customization
	}
	return p
}

// Profile is the public identity behind one or more pages
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfilePatch updates the display fields of a profile.
type ProfilePatch struct {
	FullName  *string `json:"full_name,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// PublicPage is what a visitor's renderer receives.
type PublicPage struct {
	Page    LandingPage `json:"page"`
	Profile Profile     `json:"profile"`
	Links   []LinkEntry `json:"links"` // Active entries only, in position order
}
