// Package cli implements the sniper command line: run the service, place
// max bids, inspect the event log, and validate configuration.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/sniper/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // config file path, empty for defaults + env
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sniper CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "sniper",
		Short: "Automated auction bidding agent",
		Long: `An automated auction sniper built on an event-sourced core.

Auction-house and operator events are appended to a durable event log;
the bidding engine follows the log transactionally and places outbids
up to the configured ceiling per item.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file path")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewBidCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))

	return cmd
}

// loadConfig builds the effective configuration for a command.
func (o *RootOptions) loadConfig() (config.Config, error) {
	return config.Load(o.Config)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
