// Package cli implements the mediactl command tree.
package cli

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"mediadl/internal/bootstrap"
)

// Builder wires the pipeline for a delivery mode ("" keeps the configured one).
type Builder func(mode string) (*bootstrap.Services, error)

// NewRootCmd assembles every subcommand around build.
func NewRootCmd(build Builder) *cobra.Command {
	root := &cobra.Command{
		Use:           "mediactl",
		Short:         "Inspect and download media from supported platforms",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(ProbeCmd(build))
	root.AddCommand(FetchCmd(build))
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
