package platform

import "mediadl/internal/domain"

const (
	SelectorBest      = "best"
	SelectorBestAudio = "bestaudio"
	SelectorDefault   = "best[height<=720]"
)

// StandardFormats is offered when metadata extraction succeeded.
func StandardFormats() []domain.FormatOption {
	return []domain.FormatOption{
		{Itag: SelectorBest, Quality: "Best quality", Container: "mp4", Type: "video"},
		{Itag: "worst[height>=720]", Quality: "720p HD", Container: "mp4", Type: "video"},
		{Itag: "worst[height>=480]", Quality: "480p Standard", Container: "mp4", Type: "video"},
		{Itag: "worst[height>=360]", Quality: "360p Fast", Container: "mp4", Type: "video"},
		{Itag: SelectorBestAudio, Quality: "Audio MP3", Container: "m4a", Type: "audio"},
	}
}

// FallbackFormats is offered when metadata could not be fetched.
func FallbackFormats() []domain.FormatOption {
	return []domain.FormatOption{
		{Itag: SelectorBest, Quality: "Best quality", Container: "mp4", Type: "video"},
		{Itag: SelectorBestAudio, Quality: "Audio MP3", Container: "m4a", Type: "audio"},
	}
}
