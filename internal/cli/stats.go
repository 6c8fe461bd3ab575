package cli

import (
	"github.com/spf13/cobra"

	"github.com/histomap/histomap/internal/store"
)

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print row counts and deduplication statistics",
		Long: `Print table row counts, the list of stored years, and how many
border rows are shared between relationships.

Example:
  histomap stats --db ./maps.db
  histomap stats --db ./maps.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}

	return cmd
}

type statsPayload struct {
	store.Stats
	StoredYears []int `json:"stored_years"`
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read stats", err)
	}
	years, err := st.Years(cmd.Context())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list years", err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return out.JSON(statsPayload{Stats: stats, StoredYears: years})
	}

	out.Textf("Years:          %d\n", stats.Years)
	out.Textf("Countries:      %d\n", stats.Countries)
	out.Textf("Borders:        %d (%d shared)\n", stats.Borders, stats.SharedBorders)
	out.Textf("Cities:         %d\n", stats.Cities)
	out.Textf("Notes:          %d\n", stats.Notes)
	if len(years) > 0 {
		out.Textf("Stored years:  ")
		for _, y := range years {
			out.Textf(" %d", y)
		}
		out.Textf("\n")
	}
	return nil
}
