package domain

// Platform names the source site of a media URL.
type Platform string

const (
	PlatformYouTube   Platform = "youtube"
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformUnknown   Platform = "unknown"
)

// FormatOption is one selectable quality as reported by /api/validate.
type FormatOption struct {
	Itag      string `json:"itag"`
	Quality   string `json:"quality"`
	Container string `json:"container"`
	Type      string `json:"type"`
}
