package extractor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/lrstanley/go-ytdlp"

	"mediadl/internal/domain"
	"mediadl/internal/platform"
)

const refererHeader = "referer:https://www.google.com/"

// audioStreamSelector keeps audio in an MP4 container. yt-dlp cannot run its
// audio post-processor on "-o -" output, so no mp3 conversion happens here.
const audioStreamSelector = "bestaudio[ext=m4a]/bestaudio[ext=mp4]"

// YtDlp drives the yt-dlp executable through go-ytdlp. It handles every
// platform yt-dlp knows about.
type YtDlp struct {
	executable string
}

// NewYtDlp returns a backend using the given executable, or "yt-dlp" from
// PATH when empty.
func NewYtDlp(executable string) *YtDlp {
	executable = strings.TrimSpace(executable)
	if executable == "" {
		executable = "yt-dlp"
	}
	return &YtDlp{executable: executable}
}

func (y *YtDlp) Name() string { return BackendYtDlp }

func (y *YtDlp) command() *ytdlp.Command {
	return ytdlp.New().
		SetExecutable(y.executable).
		NoCheckCertificates().
		NoWarnings().
		NoPlaylist().
		AddHeaders(refererHeader)
}

type ytdlpInfo struct {
	Title     string   `json:"title"`
	Thumbnail string   `json:"thumbnail"`
	Duration  *float64 `json:"duration"`
}

// FetchMetadata runs --dump-single-json and decodes the fields we surface.
func (y *YtDlp) FetchMetadata(ctx context.Context, url string) (Metadata, error) {
	res, err := y.command().DumpSingleJSON().Run(ctx, url)
	if err != nil {
		return Metadata{}, wrap("metadata", KindUnknown, runError(err, res))
	}
	var info ytdlpInfo
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return Metadata{}, wrap("metadata", KindUnknown, fmt.Errorf("decode yt-dlp json: %w", err))
	}
	meta := Metadata{Title: info.Title, Thumbnail: info.Thumbnail}
	if info.Duration != nil {
		meta.DurationSeconds = int(math.Round(*info.Duration))
	}
	return meta, nil
}

// ListFormats returns the static quality table; yt-dlp selectors are
// portable across sites so no per-URL listing is needed.
func (y *YtDlp) ListFormats(ctx context.Context, url string, meta Metadata) []domain.FormatOption {
	return platform.StandardFormats()
}

// Probe checks the selector resolves without downloading anything.
func (y *YtDlp) Probe(ctx context.Context, url string, req StreamRequest) error {
	cmd := y.command()
	if platform.LimitedFormats(req.Platform) {
		cmd = cmd.DumpSingleJSON()
	} else {
		selector, _, _ := streamTarget(req)
		cmd = cmd.Simulate().Format(selector)
	}
	res, err := cmd.Run(ctx, url)
	if err != nil {
		return wrap("probe", KindUnknown, runError(err, res))
	}
	return nil
}

// Stream starts yt-dlp writing the media to stdout.
func (y *YtDlp) Stream(ctx context.Context, url string, req StreamRequest) (*Stream, error) {
	selector, contentType, ext := streamTarget(req)
	proc := y.command().Output("-").Format(selector).BuildCommand(ctx, url)
	stderr := &limitedBuffer{max: 8 << 10}
	proc.Stderr = stderr
	stdout, err := proc.StdoutPipe()
	if err != nil {
		return nil, wrap("stream", KindUnknown, err)
	}
	if err := proc.Start(); err != nil {
		return nil, wrap("stream", KindUnknown, fmt.Errorf("start yt-dlp: %w", err))
	}
	return &Stream{
		Body:        &processReader{cmd: proc, stdout: stdout, stderr: stderr},
		ContentType: contentType,
		Extension:   ext,
	}, nil
}

// streamTarget returns the selector and the labels matching what yt-dlp
// actually writes to stdout.
func streamTarget(req StreamRequest) (selector, contentType, ext string) {
	if req.WantsAudio() {
		return audioStreamSelector, "audio/mp4", "m4a"
	}
	return req.ResolveSelector(), req.Format.ContentType(), req.Format.Extension()
}

func runError(err error, res *ytdlp.Result) error {
	if res != nil && strings.TrimSpace(res.Stderr) != "" {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(res.Stderr))
	}
	return err
}

// processReader surfaces a non-zero yt-dlp exit as a read error once stdout
// is drained, so callers notice truncated media.
type processReader struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr *limitedBuffer

	once    sync.Once
	waitErr error
	drained bool
}

func (p *processReader) Read(b []byte) (int, error) {
	n, err := p.stdout.Read(b)
	if errors.Is(err, io.EOF) {
		p.drained = true
		if werr := p.wait(); werr != nil {
			return n, werr
		}
	}
	return n, err
}

func (p *processReader) Close() error {
	if !p.drained && p.cmd.Process != nil {
		// client went away mid-transfer
		_ = p.cmd.Process.Kill()
	}
	_ = p.stdout.Close()
	if err := p.wait(); err != nil && !isKilled(err) {
		return err
	}
	return nil
}

func (p *processReader) wait() error {
	p.once.Do(func() {
		if err := p.cmd.Wait(); err != nil {
			p.waitErr = wrap("stream", KindUnknown, fmt.Errorf("yt-dlp exited: %w: %s", err, strings.TrimSpace(p.stderr.String())))
		}
	})
	return p.waitErr
}

func isKilled(err error) bool {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return !exitErr.Exited()
	}
	return errors.Is(err, os.ErrProcessDone)
}

type limitedBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (l *limitedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if room := l.max - len(l.buf); room > 0 {
		if len(p) > room {
			l.buf = append(l.buf, p[:room]...)
		} else {
			l.buf = append(l.buf, p...)
		}
	}
	return len(p), nil
}

func (l *limitedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return string(l.buf)
}

var _ Extractor = (*YtDlp)(nil)
