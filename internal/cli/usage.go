package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/stats"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// NewUsageCommand creates the usage command.
func NewUsageCommand(rootOpts *RootOptions) *cobra.Command {
	var carID string
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show laps and distance per tire of a car",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				usage, err := stats.TireUsage(cmd.Context(), s.DB(), s.Dialect(), carID)
				if err != nil {
					return err
				}
				if f.Format == "json" {
					if usage == nil {
						usage = []stats.Usage{}
					}
					return f.Success(usage)
				}

				rows := make([][]string, len(usage))
				for i, u := range usage {
					last := u.LastUsed
					if last == "" {
						last = "-"
					}
					rows[i] = []string{
						u.TireID, u.Name,
						strconv.FormatInt(u.Stints, 10), strconv.FormatInt(u.Laps, 10),
						stats.FormatDistance(u.Distance), last,
					}
				}
				f.Table([]string{"TIRE", "NAME", "STINTS", "LAPS", "DISTANCE", "LAST USED"}, rows)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&carID, "car", "", "car id (required)")
	_ = cmd.MarkFlagRequired("car")
	return cmd
}
