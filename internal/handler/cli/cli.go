package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jgivc/libmvbundle/internal/common"
	"github.com/jgivc/libmvbundle/internal/entity"
	"github.com/spf13/cobra"
)

const (
	ackFlag       = "i-really-know-what-im-doing"
	defaultConfig = "config.yml"
)

type BundleRunner interface {
	Run(ctx context.Context, cfgPath string) (*entity.Report, error)
}

// NewRootCommand builds the libmvbundle command. The runner is not touched
// unless the acknowledgment flag is given.
func NewRootCommand(runner BundleRunner, version string) *cobra.Command {
	var (
		cfgPath string
		ack     bool
	)

	cmd := &cobra.Command{
		Use:   "libmvbundle",
		Short: "Vendor libmv sources and regenerate the CMakeLists.txt build descriptor",
		Long: `libmvbundle copies the files listed in the manifest from a libmv checkout into
the destination tree, then scans the vendored tree and writes the CMakeLists.txt
build descriptor for it.

Everything under the vendored roots is removed before copying.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !ack {
				fmt.Fprintf(cmd.OutOrStdout(), "*** Please run again with --%s ...\n", ackFlag)

				return common.ErrNotAcknowledged
			}

			report, err := runner.Run(cmd.Context(), cfgPath)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", defaultConfig, "Path to config file")
	cmd.Flags().BoolVar(&ack, ackFlag, false, "Confirm that the vendored tree may be wiped and regenerated")

	cmd.AddCommand(newVersionCommand(version))

	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}
}

func printReport(w io.Writer, report *entity.Report) {
	if report.Revision != "" {
		fmt.Fprintf(w, "Upstream revision: %s\n", report.Revision)
	}

	var size int64
	for _, file := range report.Copied {
		size += file.Size
	}
	fmt.Fprintf(w, "Copied %d files (%d bytes) from %s\n", len(report.Copied), size, report.SourceRoot)

	if c := report.Classification; c != nil {
		fmt.Fprintf(w, "Sources: %d, headers: %d, third party sources: %d, third party headers: %d, tests: %d\n",
			len(c.Sources), len(c.Headers), len(c.ThirdPartySources), len(c.ThirdPartyHeaders), len(c.Tests))
	}

	fmt.Fprintf(w, "Written %s\n", report.Output)
}
