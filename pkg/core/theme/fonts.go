package theme

import (
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

// Font describes one selectable family.
type Font struct {
	Key      domain.FontFamily
	Label    string
	Family   string
	Weights  string
	Category string
	Fallback string
}

// Stack is the CSS font-family value for the font.
func (f Font) Stack() string {
	return fmt.Sprintf("%q, %s", f.Family, f.Fallback)
}

// StylesheetURL is the Google Fonts URL for the font. The ambient font
// (inter) is always loaded, so it has none.
func (f Font) StylesheetURL() string {
	if f.Key == AmbientFont {
		return ""
	}
	family := strings.ReplaceAll(f.Family, " ", "+")
	return fmt.Sprintf("https://fonts.googleapis.com/css2?family=%s:wght@%s&display=swap", family, f.Weights)
}

// AmbientFont is the family every page inherits when it sets no override.
const AmbientFont domain.FontFamily = "inter"

var fonts = []Font{
	{Key: "inter", Label: "Inter", Family: "Inter", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "poppins", Label: "Poppins", Family: "Poppins", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "roboto", Label: "Roboto", Family: "Roboto", Weights: "400;500;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "playfair", Label: "Playfair Display", Family: "Playfair Display", Weights: "400;600;700", Category: "Serif", Fallback: "serif"},
	{Key: "space-grotesk", Label: "Space Grotesk", Family: "Space Grotesk", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "dm-sans", Label: "DM Sans", Family: "DM Sans", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "outfit", Label: "Outfit", Family: "Outfit", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
	{Key: "sora", Label: "Sora", Family: "Sora", Weights: "400;500;600;700", Category: "Sans-serif", Fallback: "sans-serif"},
}

var fontIndex = func() map[domain.FontFamily]Font {
	m := make(map[domain.FontFamily]Font, len(fonts))
	for _, f := range fonts {
		m[f.Key] = f
	}
	return m
}()

// Fonts lists the registry in display order.
func Fonts() []Font {
	return append([]Font(nil), fonts...)
}

// LookupFont returns the registered font for key.
func LookupFont(key domain.FontFamily) (Font, bool) {
	f, ok := fontIndex[key]
	return f, ok
}
