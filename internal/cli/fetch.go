package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediadl/internal/domain"
	"mediadl/internal/platform"
	"mediadl/internal/service"
)

func FetchCmd(build Builder) *cobra.Command {
	var (
		format  string
		quality string
		itag    string
	)
	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "download a URL into the storage directory and print the job",
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
			mf, err := domain.ParseMediaFormat(format)
			if err != nil {
				return err
			}
			svc, err := build(string(service.DeliveryDisk))
			if err != nil {
				return err
			}

			job, err := svc.Runner.Submit(cmd.Context(), domain.NewJob{
				URL:      args[0],
				Platform: p,
				Format:   mf,
				Quality:  quality,
				Itag:     domain.FormatSelector(itag),
			})
			if err != nil {
				return err
			}
			if err := svc.Runner.Wait(cmd.Context()); err != nil {
				return err
			}
			job, err = svc.Jobs.Get(cmd.Context(), job.ID)
			if err != nil {
				return err
			}
			if err := writeJSON(cmd.OutOrStdout(), job); err != nil {
				return err
			}
			if job.Status == domain.JobStatusFailed {
				msg := "unknown error"
				if job.Error != nil {
					msg = *job.Error
				}
				return errors.New(msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(domain.FormatMP4), "mp4 or mp3")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "quality label, e.g. \"Audio MP3\"")
	cmd.Flags().StringVar(&itag, "itag", "", "format selector or YouTube itag")
	return cmd
}
