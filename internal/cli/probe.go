package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediadl/internal/domain"
	"mediadl/internal/platform"
)

type probeResult struct {
	Platform  domain.Platform       `json:"platform"`
	Supported bool                  `json:"supported"`
	Title     string                `json:"title"`
	Thumbnail string                `json:"thumbnail,omitempty"`
	Duration  int                   `json:"duration,omitempty"`
	Formats   []domain.FormatOption `json:"formats"`
}

func ProbeCmd(build Builder) *cobra.Command {
	return &cobra.Command{
		Use:   "probe <url>",
		Short: "print metadata and selectable formats for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := platform.ParseURL(args[0])
			if err != nil {
				return err
			}
			p := platform.Detect(u)
			if !platform.Downloadable(p) {
				return fmt.Errorf("%w: %s", domain.ErrUnsupportedPlatform, u.Host)
			}
			svc, err := build("")
			if err != nil {
				return err
			}
			meta, err := svc.Extractor.FetchMetadata(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch metadata: %w", err)
			}
			return writeJSON(cmd.OutOrStdout(), probeResult{
				Platform:  p,
				Supported: platform.Supported(p),
				Title:     meta.Title,
				Thumbnail: meta.Thumbnail,
				Duration:  meta.DurationSeconds,
				Formats:   svc.Extractor.ListFormats(cmd.Context(), args[0], meta),
			})
		},
	}
}
