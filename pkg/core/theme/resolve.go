package theme

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

const (
	secondaryTextOpacity = "0.6"
	outlineBorderWidth   = "2px"
	outlineHover         = "hover:opacity-80"
	profileFillAlpha     = 0.8
	profileBorderAlpha   = 0.35
	profileBlur          = "blur(12px)"
)

// Declarations are literal inline style values. Empty fields are not emitted.
type Declarations struct {
	BackgroundColor string `json:"background_color,omitempty"`
	Color           string `json:"color,omitempty"`
	Opacity         string `json:"opacity,omitempty"`
	BorderWidth     string `json:"border_width,omitempty"`
	BorderStyle     string `json:"border_style,omitempty"`
	BorderColor     string `json:"border_color,omitempty"`
	BackdropFilter  string `json:"backdrop_filter,omitempty"`
}

// CSS renders the declarations in a fixed property order.
func (d Declarations) CSS() string {
	props := []struct{ name, value string }{
		{"background-color", d.BackgroundColor},
		{"color", d.Color},
		{"opacity", d.Opacity},
		{"border-width", d.BorderWidth},
		{"border-style", d.BorderStyle},
		{"border-color", d.BorderColor},
		{"backdrop-filter", d.BackdropFilter},
	}
	var b strings.Builder
	for _, p := range props {
		if p.value == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("; ")
		}
		b.WriteString(p.name)
		b.WriteString(": ")
		b.WriteString(p.value)
	}
	return b.String()
}

// Style is either a theme class token or literal declarations, never both.
type Style struct {
	ClassName string        `json:"class_name,omitempty"`
	Inline    *Declarations `json:"style,omitempty"`
}

// ClassStyle uses a theme token.
func ClassStyle(token string) Style {
	return Style{ClassName: token}
}

// LiteralStyle uses literal declarations.
func LiteralStyle(d Declarations) Style {
	return Style{Inline: &d}
}

// IsLiteral reports whether the style carries literal declarations.
func (s Style) IsLiteral() bool {
	return s.Inline != nil
}

// CSS returns the inline declarations, or "" for a class style.
func (s Style) CSS() string {
	if s.Inline == nil {
		return ""
	}
	return s.Inline.CSS()
}

// Resolved is the render-ready style set for a page. Renderers consume only this.
type Resolved struct {
	Theme         string `json:"theme"`
	Background    Style  `json:"background"`
	Text          Style  `json:"text"`
	TextSecondary Style  `json:"text_secondary"`
	Card          Style  `json:"card"`
	CardHover     string `json:"card_hover"`
	ProfileCard   Style  `json:"profile_card"`
	AvatarRing    string `json:"avatar_ring"`
	ButtonRadius  string `json:"button_radius"`
	FontStack     string `json:"font_stack,omitempty"` // Empty: inherit the ambient font
	ThemeColor    string `json:"theme_color"`
}

// Resolve layers c over t. It is pure: equal inputs give deep-equal outputs,
// and every absent customization field falls back to the theme.
func Resolve(t Theme, c *domain.PageCustomization) Resolved {
	var (
		colors *domain.CustomColors
		button domain.ButtonStyle
		font   domain.FontFamily
	)
	if c != nil {
		colors = c.CustomColors
		button = c.ButtonStyle
		font = c.FontFamily
	}
	if colors == nil {
		colors = &domain.CustomColors{}
	}
	outline := button == domain.ButtonOutline

	r := Resolved{
		Theme:        t.Name,
		AvatarRing:   t.AvatarRing,
		ButtonRadius: ButtonRadius(button),
		FontStack:    FontStack(font),
		ThemeColor:   t.ThemeColor,
	}

	if bg := colors.Background; bg != nil {
		r.Background = LiteralStyle(Declarations{BackgroundColor: *bg})
		r.ThemeColor = *bg
	} else {
		r.Background = ClassStyle(t.Background)
	}

	if txt := colors.Text; txt != nil {
		r.Text = LiteralStyle(Declarations{Color: *txt})
		r.TextSecondary = LiteralStyle(Declarations{Color: *txt, Opacity: secondaryTextOpacity})
	} else {
		r.Text = ClassStyle(t.Text)
		r.TextSecondary = ClassStyle(t.TextSecondary)
	}

	card := colors.CardBackground
	switch {
	case outline && card != nil:
		r.Card = LiteralStyle(Declarations{
			BackgroundColor: "transparent",
			BorderWidth:     outlineBorderWidth,
			BorderStyle:     "solid",
			BorderColor:     *card,
		})
	case outline:
		r.Card = ClassStyle("bg-transparent border-2 " + t.Border)
	case card != nil:
		r.Card = LiteralStyle(Declarations{BackgroundColor: *card})
	default:
		r.Card = ClassStyle(t.Card)
	}

	if outline {
		r.CardHover = outlineHover
	} else {
		r.CardHover = t.CardHover
	}

	if card != nil {
		r.ProfileCard = LiteralStyle(profileCard(*card))
	} else {
		r.ProfileCard = ClassStyle(t.ProfileCard)
	}

	return r
}

// ButtonRadius maps a button style to its corner-radius token.
func ButtonRadius(s domain.ButtonStyle) string {
	switch s {
	case domain.ButtonPill:
		return "rounded-full"
	case domain.ButtonSquare:
		return "rounded-none"
	default:
		return "rounded-xl"
	}
}

// FontStack returns the CSS stack for a registered font, or "" when the
// page should inherit the ambient font.
func FontStack(key domain.FontFamily) string {
	if key == "" {
		return ""
	}
	f, ok := LookupFont(key)
	if !ok {
		return ""
	}
	return f.Stack()
}

func profileCard(hex string) Declarations {
	c, err := colorful.Hex(hex)
	if err != nil {
		// Unparseable colours still win, just without translucency.
		return Declarations{BackgroundColor: hex, BackdropFilter: profileBlur}
	}
	r, g, b := c.RGB255()
	return Declarations{
		BackgroundColor: rgba(r, g, b, profileFillAlpha),
		BorderWidth:     "1px",
		BorderStyle:     "solid",
		BorderColor:     rgba(r, g, b, profileBorderAlpha),
		BackdropFilter:  profileBlur,
	}
}

func rgba(r, g, b uint8, a float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", r, g, b, a)
}
