package cli

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/histomap/histomap/internal/histdata"
	"github.com/histomap/histomap/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <year>",
		Short: "Print the stored snapshot for a year",
		Long: `Print the countries, cities and note stored for a year.

A year with no stored data prints an empty snapshot; that is the
engine's contract, not an error.

Example:
  histomap show --db ./maps.db 1900
  histomap show --db ./maps.db 1900 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, err := strconv.Atoi(args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, fmt.Sprintf("invalid year %q", args[0]), err)
			}
			return runShow(rootOpts, cmd, year)
		},
	}

	return cmd
}

func runShow(opts *RootOptions, cmd *cobra.Command, year int) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	data, err := st.Load(cmd.Context(), year)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("failed to load year %d", year), err)
	}

	out := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	if opts.Format == "json" {
		return out.JSON(data)
	}

	printSnapshot(out, data)
	return nil
}

func printSnapshot(out *OutputFormatter, data *histdata.Data) {
	out.Textf("Year %d\n", data.Year)

	// Stored order is relationship insertion order; collated name order
	// reads better for humans.
	coll := collate.New(language.Und)

	countries := make([]histdata.Country, len(data.Countries))
	copy(countries, data.Countries)
	sort.Slice(countries, func(i, j int) bool {
		return coll.CompareString(countries[i].Name, countries[j].Name) < 0
	})

	out.Textf("Countries (%d):\n", len(countries))
	for _, c := range countries {
		out.Textf("  %s: %d contour points\n", c.Name, len(c.Contour))
	}

	cities := make([]histdata.City, len(data.Cities))
	copy(cities, data.Cities)
	sort.Slice(cities, func(i, j int) bool {
		return coll.CompareString(cities[i].Name, cities[j].Name) < 0
	})

	out.Textf("Cities (%d):\n", len(cities))
	for _, c := range cities {
		out.Textf("  %s: (%g, %g)\n", c.Name, c.Coordinate.Latitude, c.Coordinate.Longitude)
	}

	if data.Note != nil {
		out.Textf("Note: %s\n", data.Note.Text)
	} else {
		out.Textf("Note: (none)\n")
	}
}
