// Package theme holds the static base themes, font and social registries,
// and the resolver that layers a page customization over a base theme.
package theme

import "strings"

// Theme is a named bundle of default class tokens. Themes are immutable.
type Theme struct {
	Name          string
	Label         string
	Background    string
	Card          string
	CardHover     string
	Text          string
	TextSecondary string
	Border        string
	Accent        string
	AvatarRing    string
	ProfileCard   string
	ThemeColor    string // Solid colour for browser chrome
}

// DefaultName is used whenever a page names an unknown theme.
const DefaultName = "light"

var catalogue = map[string]Theme{
	"light": {
		Name:          "light",
		Label:         "Light",
		Background:    "bg-gray-50",
		Card:          "bg-white border border-gray-200",
		CardHover:     "hover:bg-gray-50 hover:shadow-md",
		Text:          "text-gray-900",
		TextSecondary: "text-gray-500",
		Border:        "border-gray-200",
		Accent:        "bg-gray-900 text-white",
		AvatarRing:    "ring-white",
		ProfileCard:   "bg-white/80 backdrop-blur-sm border border-gray-200",
		ThemeColor:    "#f9fafb",
	},
	"dark": {
		Name:          "dark",
		Label:         "Dark",
		Background:    "bg-gray-950",
		Card:          "bg-gray-900 border border-gray-800",
		CardHover:     "hover:bg-gray-800 hover:shadow-lg",
		Text:          "text-white",
		TextSecondary: "text-gray-400",
		Border:        "border-gray-800",
		Accent:        "bg-white text-gray-900",
		AvatarRing:    "ring-gray-900",
		ProfileCard:   "bg-gray-900/80 backdrop-blur-sm border border-gray-800",
		ThemeColor:    "#030712",
	},
	"gradient": {
		Name:          "gradient",
		Label:         "Gradient",
		Background:    "bg-gradient-to-br from-purple-600 via-pink-500 to-orange-400",
		Card:          "bg-white/20 backdrop-blur-sm border border-white/30",
		CardHover:     "hover:bg-white/30 hover:shadow-lg",
		Text:          "text-white",
		TextSecondary: "text-white/80",
		Border:        "border-white/30",
		Accent:        "bg-white text-purple-700",
		AvatarRing:    "ring-white/50",
		ProfileCard:   "bg-white/15 backdrop-blur-md border border-white/30",
		ThemeColor:    "#9333ea",
	},
	"neon": {
		Name:          "neon",
		Label:         "Neon",
		Background:    "bg-gray-950",
		Card:          "bg-gray-900/80 border border-cyan-500/50 shadow-[0_0_15px_rgba(6,182,212,0.15)]",
		CardHover:     "hover:border-cyan-400 hover:shadow-[0_0_25px_rgba(6,182,212,0.3)]",
		Text:          "text-cyan-50",
		TextSecondary: "text-cyan-300/70",
		Border:        "border-cyan-500/50",
		Accent:        "bg-cyan-500 text-gray-950",
		AvatarRing:    "ring-cyan-500/50",
		ProfileCard:   "bg-gray-900/70 backdrop-blur-sm border border-cyan-500/40",
		ThemeColor:    "#030712",
	},
	"glassmorphism": {
		Name:          "glassmorphism",
		Label:         "Glass",
		Background:    "bg-gradient-to-br from-blue-400 via-indigo-500 to-purple-600",
		Card:          "bg-white/10 backdrop-blur-md border border-white/20 shadow-lg",
		CardHover:     "hover:bg-white/20 hover:shadow-xl",
		Text:          "text-white",
		TextSecondary: "text-white/70",
		Border:        "border-white/20",
		Accent:        "bg-white/25 backdrop-blur-sm text-white border border-white/30",
		AvatarRing:    "ring-white/30",
		ProfileCard:   "bg-white/10 backdrop-blur-lg border border-white/20",
		ThemeColor:    "#6366f1",
	},
}

var order = []string{"light", "dark", "gradient", "neon", "glassmorphism"}

// Names lists the registered themes in display order.
func Names() []string {
	return append([]string(nil), order...)
}

// Lookup returns the theme registered under name.
func Lookup(name string) (Theme, bool) {
	t, ok := catalogue[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Get returns the named theme, falling back to the default theme.
func Get(name string) Theme {
	if t, ok := Lookup(name); ok {
		return t
	}
	return catalogue[DefaultName]
}
