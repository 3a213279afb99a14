package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sniper/internal/eventlog"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	After int64
	Limit int
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:           "log",
		Short:         "Dump the event log",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLog(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.After, "after", 0, "only records with offset greater than this")
	cmd.Flags().IntVar(&opts.Limit, "limit", 1000, "maximum number of records")

	return cmd
}

func runLog(opts *LogOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	b, err := openBackend(cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	recs, err := b.log.Read(eventlog.Offset(opts.After), opts.Limit, 0)
	if err != nil {
		return fmt.Errorf("read event log: %w", err)
	}

	out := cmd.OutOrStdout()

	if opts.Format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(recs)
	}

	if len(recs) == 0 {
		fmt.Fprintln(out, "no events")
		return nil
	}
	for _, rec := range recs {
		fmt.Fprintf(out, "%6d  %-36s  %s\n", rec.Offset, rec.ID, rec.Details)
	}
	return nil
}
