package theme

// Platform is a supported social network for the icon bar.
type Platform struct {
	Key         string
	Label       string
	Color       string
	Placeholder string
}

var platforms = []Platform{
	{Key: "instagram", Label: "Instagram", Color: "#E4405F", Placeholder: "https://instagram.com/username"},
	{Key: "tiktok", Label: "TikTok", Color: "#000000", Placeholder: "https://tiktok.com/@username"},
	{Key: "youtube", Label: "YouTube", Color: "#FF0000", Placeholder: "https://youtube.com/@channel"},
	{Key: "twitter", Label: "X", Color: "#000000", Placeholder: "https://x.com/username"},
	{Key: "facebook", Label: "Facebook", Color: "#1877F2", Placeholder: "https://facebook.com/username"},
	{Key: "linkedin", Label: "LinkedIn", Color: "#0A66C2", Placeholder: "https://linkedin.com/in/username"},
	{Key: "github", Label: "GitHub", Color: "#181717", Placeholder: "https://github.com/username"},
	{Key: "whatsapp", Label: "WhatsApp", Color: "#25D366", Placeholder: "https://wa.me/5511999999999"},
	{Key: "telegram", Label: "Telegram", Color: "#26A5E4", Placeholder: "https://t.me/username"},
	{Key: "spotify", Label: "Spotify", Color: "#1DB954", Placeholder: "https://open.spotify.com/artist/id"},
	{Key: "twitch", Label: "Twitch", Color: "#9146FF", Placeholder: "https://twitch.tv/username"},
	{Key: "discord", Label: "Discord", Color: "#5865F2", Placeholder: "https://discord.gg/invite"},
}

// Platforms lists the supported networks in display order.
func Platforms() []Platform {
	return append([]Platform(nil), platforms...)
}

// LookupPlatform returns the platform registered under key.
func LookupPlatform(key string) (Platform, bool) {
	for _, p := range platforms {
		if p.Key == key {
			return p, true
		}
	}
	return Platform{}, false
}
