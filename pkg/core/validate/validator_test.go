package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/linkpage/pkg/core/domain"
)

func strPtr(s string) *string { return &s }

func fields(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected *domain.ValidationError, got %v", err)
	out := make([]string, 0, len(verr.Errors))
	for _, fe := range verr.Errors {
		out = append(out, fe.Field)
	}
	return out
}

func TestIsHTTPURL(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"https://example.com", true},
		{"http://example.com/path?q=1", true},
		{"HTTPS://EXAMPLE.COM", true},
		{"javascript:alert(1)", false},
		{"JavaScript:alert(1)", false},
		{"data:text/html,hi", false},
		{"ftp://example.com", false},
		{"example.com", false},
		{"https:///nohost", false},
		{" https://example.com", false},
		{"https://exa mple.com", false},
		{"", false},
		{"https://example.com/" + strings.Repeat("a", 2048), false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, IsHTTPURL(tt.raw))
		})
	}
}

func TestLinkInput(t *testing.T) {
	tests := []struct {
		name   string
		in     domain.LinkInput
		fields []string
	}{
		{"valid link", domain.LinkInput{Title: "Shop", URL: "https://x.com"}, nil},
		{"valid header", domain.LinkInput{Title: "Section", Kind: domain.KindHeader}, nil},
		{"blank title", domain.LinkInput{Title: "   ", URL: "https://x.com"}, []string{"title"}},
		{"long title", domain.LinkInput{Title: strings.Repeat("a", 101), URL: "https://x.com"}, []string{"title"}},
		{"script url", domain.LinkInput{Title: "x", URL: "javascript:alert(1)"}, []string{"url"}},
		{"missing url", domain.LinkInput{Title: "x"}, []string{"url"}},
		{"header with url", domain.LinkInput{Title: "x", URL: "https://x.com", Kind: domain.KindHeader}, []string{"url"}},
		{"unknown kind", domain.LinkInput{Title: "x", URL: "https://x.com", Kind: "button"}, []string{"kind"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := LinkInput(tt.in)
			if tt.fields == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidation)
			assert.ElementsMatch(t, tt.fields, fields(t, err))
		})
	}
}

func TestLinkPatchChecksOnlySuppliedFields(t *testing.T) {
	require.NoError(t, LinkPatch(domain.KindLink, domain.LinkPatch{}))
	require.NoError(t, LinkPatch(domain.KindLink, domain.LinkPatch{Title: strPtr("New")}))

	err := LinkPatch(domain.KindLink, domain.LinkPatch{URL: strPtr("javascript:void(0)")})
	assert.Equal(t, []string{"url"}, fields(t, err))

	err = LinkPatch(domain.KindLink, domain.LinkPatch{Title: strPtr("")})
	assert.Equal(t, []string{"title"}, fields(t, err))

	err = LinkPatch(domain.KindHeader, domain.LinkPatch{URL: strPtr("https://x.com")})
	assert.Equal(t, []string{"url"}, fields(t, err))
}

func TestPageInput(t *testing.T) {
	require.NoError(t, PageInput(domain.PageInput{Title: "Me", Slug: "shop-2024", Theme: "dark"}))
	require.NoError(t, PageInput(domain.PageInput{Title: "Me", Theme: "light"}))

	err := PageInput(domain.PageInput{Title: "", Slug: "Bad Slug", Bio: strings.Repeat("b", 501), Theme: "sepia"})
	assert.ElementsMatch(t, []string{"title", "slug", "bio", "theme"}, fields(t, err))
}

func TestCustomization(t *testing.T) {
	valid := domain.PageCustomization{
		CustomColors: &domain.CustomColors{Background: strPtr("#112233"), Text: strPtr("#FFFFFF")},
		ButtonStyle:  domain.ButtonOutline,
		FontFamily:   "poppins",
		SocialLinks: []domain.SocialLink{
			{Platform: "instagram", URL: "https://instagram.com/me"},
			{Platform: "github", URL: "https://github.com/me"},
		},
	}
	require.NoError(t, Customization(valid))
	require.NoError(t, Customization(domain.PageCustomization{}))

	bad := domain.PageCustomization{
		CustomColors: &domain.CustomColors{CardBackground: strPtr("red")},
		ButtonStyle:  "wavy",
		FontFamily:   "comic-sans",
	}
	assert.ElementsMatch(t,
		[]string{"custom_colors.card_background", "button_style", "font_family"},
		fields(t, Customization(bad)))

	dup := domain.PageCustomization{SocialLinks: []domain.SocialLink{
		{Platform: "github", URL: "https://github.com/a"},
		{Platform: "github", URL: "https://github.com/b"},
	}}
	assert.Equal(t, []string{"social_links"}, fields(t, Customization(dup)))

	unknown := domain.PageCustomization{SocialLinks: []domain.SocialLink{{Platform: "myspace", URL: "ftp://x"}}}
	assert.ElementsMatch(t,
		[]string{"social_links[0].platform", "social_links[0].url"},
		fields(t, Customization(unknown)))
}

func TestPagePatch(t *testing.T) {
	require.NoError(t, PagePatch(domain.PagePatch{AvatarURL: strPtr("")}))
	require.NoError(t, PagePatch(domain.PagePatch{Slug: strPtr("")}))

	err := PagePatch(domain.PagePatch{
		Theme:         strPtr("sepia"),
		AvatarURL:     strPtr("file:///etc/passwd"),
		Customization: &domain.PageCustomization{ButtonStyle: "wavy"},
	})
	assert.ElementsMatch(t, []string{"theme", "avatar_url", "customization.button_style"}, fields(t, err))
}

func TestPixel(t *testing.T) {
	require.NoError(t, Pixel(domain.PixelConfig{PixelID: "123456", AccessToken: "tok", Events: []string{"PageView"}}))

	err := Pixel(domain.PixelConfig{PixelID: "abc", Events: nil})
	assert.ElementsMatch(t, []string{"pixel_id", "access_token", "events"}, fields(t, err))

	err = Pixel(domain.PixelConfig{PixelID: "1", AccessToken: "tok", Events: []string{"Purchase"}})
	assert.Equal(t, []string{"events[0]"}, fields(t, err))
}

func TestUsername(t *testing.T) {
	require.NoError(t, Username("jane-doe"))
	for _, bad := range []string{"", "ab", "-jane", "jane-", "Jane", "jane_doe", strings.Repeat("a", 31)} {
		assert.Error(t, Username(bad), bad)
	}
}

func TestProfilePatch(t *testing.T) {
	require.NoError(t, ProfilePatch(domain.ProfilePatch{FullName: strPtr("Jane")}))
	err := ProfilePatch(domain.ProfilePatch{FullName: strPtr(" "), AvatarURL: strPtr("javascript:x")})
	assert.ElementsMatch(t, []string{"full_name", "avatar_url"}, fields(t, err))
}
