package validate

import "github.com/wadjakorntonsri/linkpage/pkg/core/domain"

type linkRules struct {
	Title string `json:"title" validate:"required,not_blank,max=100"`
	URL   string `json:"url" validate:"required,max=2048,http_url"`
	Kind  string `json:"kind" validate:"oneof=link header"`
}

type headerRules struct {
	Title string `json:"title" validate:"required,not_blank,max=100"`
	URL   string `json:"url" validate:"max=0"`
	Kind  string `json:"kind" validate:"oneof=link header"`
}

// LinkInput checks a new entry. Links need an http(s) URL; headers must not
// carry one.
func LinkInput(in domain.LinkInput) error {
	kind := string(in.EffectiveKind())
	if in.EffectiveKind() == domain.KindHeader {
		return check(headerRules{Title: in.Title, URL: in.URL, Kind: kind})
	}
	return check(linkRules{Title: in.Title, URL: in.URL, Kind: kind})
}

type linkPatchRules struct {
	Title *string `json:"title" validate:"omitnil,required,not_blank,max=100"`
	URL   *string `json:"url" validate:"omitnil,required,max=2048,http_url"`
}

type headerPatchRules struct {
	Title *string `json:"title" validate:"omitnil,required,not_blank,max=100"`
	URL   *string `json:"url" validate:"omitnil,max=0"`
}

// LinkPatch checks only the fields the patch supplies, against the rules of
// the entry's kind.
func LinkPatch(kind domain.LinkKind, p domain.LinkPatch) error {
	if kind == domain.KindHeader {
		return check(headerPatchRules{Title: p.Title, URL: p.URL})
	}
	return check(linkPatchRules{Title: p.Title, URL: p.URL})
}

type pageRules struct {
	Title string `json:"title" validate:"required,not_blank,max=100"`
	Slug  string `json:"slug" validate:"slug"`
	Bio   string `json:"bio" validate:"max=500"`
	Theme string `json:"theme" validate:"theme"`
}

// PageInput checks a new page. An empty theme must be defaulted by the caller.
func PageInput(in domain.PageInput) error {
	return check(pageRules{Title: in.Title, Slug: in.Slug, Bio: in.Bio, Theme: in.Theme})
}

type colorsRules struct {
	Background     *string `json:"background" validate:"omitnil,hex_color"`
	Text           *string `json:"text" validate:"omitnil,hex_color"`
	CardBackground *string `json:"card_background" validate:"omitnil,hex_color"`
	CardText       *string `json:"card_text" validate:"omitnil,hex_color"`
}

type socialRules struct {
	Platform string `json:"platform" validate:"required,platform"`
	URL      string `json:"url" validate:"required,http_url"`
}

type customizationRules struct {
	CustomColors *colorsRules  `json:"custom_colors"`
	ButtonStyle  string        `json:"button_style" validate:"omitempty,button_style"`
	FontFamily   string        `json:"font_family" validate:"omitempty,font"`
	SocialLinks  []socialRules `json:"social_links" validate:"max=20,unique=Platform,dive"`
}

func toCustomizationRules(c domain.PageCustomization) customizationRules {
	r := customizationRules{
		ButtonStyle: string(c.ButtonStyle),
		FontFamily:  string(c.FontFamily),
	}
	if c.CustomColors != nil {
		r.CustomColors = &colorsRules{
			Background:     c.CustomColors.Background,
			Text:           c.CustomColors.Text,
			CardBackground: c.CustomColors.CardBackground,
			CardText:       c.CustomColors.CardText,
		}
	}
	for _, s := range c.SocialLinks {
		r.SocialLinks = append(r.SocialLinks, socialRules{Platform: s.Platform, URL: s.URL})
	}
	return r
}

// Customization checks a page overlay.
func Customization(c domain.PageCustomization) error {
	return check(toCustomizationRules(c))
}

type pagePatchRules struct {
	Title         *string             `json:"title" validate:"omitnil,required,not_blank,max=100"`
	Slug          *string             `json:"slug" validate:"omitnil,slug"`
	Bio           *string             `json:"bio" validate:"omitnil,max=500"`
	Theme         *string             `json:"theme" validate:"omitnil,theme"`
	AvatarURL     string              `json:"avatar_url" validate:"omitempty,http_url"`
	Customization *customizationRules `json:"customization"`
}

// PagePatch checks the supplied fields of a page update.
func PagePatch(p domain.PagePatch) error {
	r := pagePatchRules{Title: p.Title, Slug: p.Slug, Bio: p.Bio, Theme: p.Theme}
	if p.AvatarURL != nil {
		r.AvatarURL = *p.AvatarURL
	}
	if p.Customization != nil {
		c := toCustomizationRules(*p.Customization)
		r.Customization = &c
	}
	return check(r)
}

type pixelRules struct {
	PixelID       string   `json:"pixel_id" validate:"required,pixel_id"`
	AccessToken   string   `json:"access_token" validate:"required,not_blank"`
	TestEventCode string   `json:"test_event_code" validate:"max=100"`
	Events        []string `json:"events" validate:"min=1,max=10,dive,oneof=PageView ViewContent Lead Contact Subscribe CompleteRegistration"`
}

// Pixel checks a Facebook Pixel configuration.
func Pixel(p domain.PixelConfig) error {
	return check(pixelRules{
		PixelID:       p.PixelID,
		AccessToken:   p.AccessToken,
		TestEventCode: p.TestEventCode,
		Events:        p.Events,
	})
}

type profilePatchRules struct {
	FullName  *string `json:"full_name" validate:"omitnil,required,not_blank,max=100"`
	AvatarURL string  `json:"avatar_url" validate:"omitempty,http_url"`
}

// ProfilePatch checks the supplied display fields.
func ProfilePatch(p domain.ProfilePatch) error {
	r := profilePatchRules{FullName: p.FullName}
	if p.AvatarURL != nil {
		r.AvatarURL = *p.AvatarURL
	}
	return check(r)
}

type usernameRules struct {
	Username string `json:"username" validate:"required,username"`
}

// Username checks a public handle.
func Username(s string) error {
	return check(usernameRules{Username: s})
}
