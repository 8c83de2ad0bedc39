package extractor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"mediadl/internal/domain"
	"mediadl/internal/platform"
)

// YouTube is the native backend built on kkdai/youtube. It only understands
// YouTube URLs and cannot transcode, so audio is served in its source
// container.
type YouTube struct {
	client *youtube.Client
}

// NewYouTube builds the backend. A nil httpClient uses the library default.
func NewYouTube(httpClient *http.Client) *YouTube {
	return &YouTube{client: &youtube.Client{HTTPClient: httpClient}}
}

func (y *YouTube) Name() string { return BackendYouTube }

func (y *YouTube) video(ctx context.Context, op, url string) (*youtube.Video, error) {
	p, err := platform.DetectString(url)
	if err != nil {
		return nil, &Error{Kind: KindUnsupported, Op: op, Err: err}
	}
	if p != domain.PlatformYouTube {
		return nil, &Error{Kind: KindUnsupported, Op: op, Err: fmt.Errorf("platform %s not handled by %s backend", p, BackendYouTube)}
	}
	v, err := y.client.GetVideoContext(ctx, url)
	if err != nil {
		return nil, &Error{Kind: kindForYouTubeError(err), Op: op, Err: err}
	}
	return v, nil
}

func (y *YouTube) FetchMetadata(ctx context.Context, url string) (Metadata, error) {
	v, err := y.video(ctx, "metadata", url)
	if err != nil {
		return Metadata{}, err
	}
	meta := Metadata{Title: v.Title, DurationSeconds: int(v.Duration.Seconds())}
	if n := len(v.Thumbnails); n > 0 {
		meta.Thumbnail = v.Thumbnails[n-1].URL
	}
	return meta, nil
}

// ListFormats reports the muxed mp4 variants plus the best audio track.
func (y *YouTube) ListFormats(ctx context.Context, url string, meta Metadata) []domain.FormatOption {
	v, err := y.video(ctx, "formats", url)
	if err != nil {
		return platform.FallbackFormats()
	}
	muxed := v.Formats.Type("video/mp4").WithAudioChannels()
	sort.SliceStable(muxed, func(i, j int) bool { return muxed[i].Height > muxed[j].Height })
	out := make([]domain.FormatOption, 0, len(muxed)+1)
	seen := make(map[string]struct{})
	for _, f := range muxed {
		label := f.QualityLabel
		if label == "" {
			label = f.Quality
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, domain.FormatOption{
			Itag:      strconv.Itoa(f.ItagNo),
			Quality:   label,
			Container: "mp4",
			Type:      "video",
		})
	}
	if audio := bestAudio(v.Formats); audio != nil {
		out = append(out, domain.FormatOption{
			Itag:      strconv.Itoa(audio.ItagNo),
			Quality:   "Audio",
			Container: containerOf(audio.MimeType),
			Type:      "audio",
		})
	}
	if len(out) == 0 {
		return platform.FallbackFormats()
	}
	return out
}

func (y *YouTube) Probe(ctx context.Context, url string, req StreamRequest) error {
	v, err := y.video(ctx, "probe", url)
	if err != nil {
		return err
	}
	if _, err := selectFormat(v, req); err != nil {
		return &Error{Kind: KindUnavailable, Op: "probe", Err: err}
	}
	return nil
}

func (y *YouTube) Stream(ctx context.Context, url string, req StreamRequest) (*Stream, error) {
	v, err := y.video(ctx, "stream", url)
	if err != nil {
		return nil, err
	}
	f, err := selectFormat(v, req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Op: "stream", Err: err}
	}
	body, _, err := y.client.GetStreamContext(ctx, v, f)
	if err != nil {
		return nil, &Error{Kind: kindForYouTubeError(err), Op: "stream", Err: err}
	}
	contentType := mediaType(f.MimeType)
	return &Stream{Body: body, ContentType: contentType, Extension: containerOf(f.MimeType)}, nil
}

func selectFormat(v *youtube.Video, req StreamRequest) (*youtube.Format, error) {
	if req.WantsAudio() {
		if f := bestAudio(v.Formats); f != nil {
			return f, nil
		}
		return nil, errors.New("no audio format available")
	}
	if itag, ok := req.Selector.Itag(); ok {
		matches := v.Formats.Itag(itag)
		if len(matches) == 0 {
			return nil, fmt.Errorf("itag %d not offered", itag)
		}
		return &matches[0], nil
	}
	muxed := v.Formats.Type("video/mp4").WithAudioChannels()
	if len(muxed) == 0 {
		muxed = v.Formats.WithAudioChannels()
	}
	var best *youtube.Format
	for i := range muxed {
		f := &muxed[i]
		if f.Height > 720 {
			continue
		}
		if best == nil || f.Height > best.Height {
			best = f
		}
	}
	if best == nil && len(muxed) > 0 {
		best = &muxed[0]
	}
	if best == nil {
		return nil, errors.New("no muxed format available")
	}
	return best, nil
}

func bestAudio(formats youtube.FormatList) *youtube.Format {
	var best *youtube.Format
	for i := range formats {
		f := &formats[i]
		if !strings.HasPrefix(f.MimeType, "audio/") {
			continue
		}
		if best == nil || f.Bitrate > best.Bitrate {
			best = f
		}
	}
	return best
}

func mediaType(mimeType string) string {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil || mt == "" {
		return "application/octet-stream"
	}
	return mt
}

func containerOf(mimeType string) string {
	switch mediaType(mimeType) {
	case "audio/mp4":
		return "m4a"
	case "audio/webm", "video/webm":
		return "webm"
	case "video/mp4":
		return "mp4"
	default:
		return "bin"
	}
}

func kindForYouTubeError(err error) Kind {
	switch {
	case errors.Is(err, youtube.ErrVideoPrivate):
		return KindPrivate
	case errors.Is(err, youtube.ErrLoginRequired):
		return KindLoginRequired
	case errors.Is(err, youtube.ErrNotPlayableInEmbed):
		return KindProtected
	case errors.Is(err, youtube.ErrInvalidCharactersInVideoID),
		errors.Is(err, youtube.ErrVideoIDMinLength):
		return KindUnsupported
	}
	var statusErr *youtube.ErrPlayabiltyStatus
	if errors.As(err, &statusErr) {
		return KindUnavailable
	}
	return classifyMessage(err.Error())
}

var _ Extractor = (*YouTube)(nil)
