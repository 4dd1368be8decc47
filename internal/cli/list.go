package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/stats"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var carID string
	cmd := &cobra.Command{
		Use:       "list cars|tracks|tires|stints",
		Short:     "List logbook entries",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"cars", "tracks", "tires", "stints"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				return runList(cmd, s, f, args[0], carID)
			})
		},
	}
	cmd.Flags().StringVar(&carID, "car", "", "only tires or stints of this car")
	return cmd
}

func runList(cmd *cobra.Command, s *store.Store, f *OutputFormatter, what, carID string) error {
	ctx := cmd.Context()
	var (
		data    any
		headers []string
		rows    [][]string
	)

	switch what {
	case "cars":
		cars, err := s.ListCars(ctx)
		if err != nil {
			return err
		}
		data, headers = cars, []string{"ID", "NAME"}
		for _, c := range cars {
			rows = append(rows, []string{c.CarID, c.Name})
		}
	case "tracks":
		tracks, err := s.ListTracks(ctx)
		if err != nil {
			return err
		}
		data, headers = tracks, []string{"ID", "NAME", "LENGTH"}
		for _, t := range tracks {
			rows = append(rows, []string{t.TrackID, t.Name, stats.FormatDistance(t.Length)})
		}
	case "tires":
		tires, err := s.ListTires(ctx, carID)
		if err != nil {
			return err
		}
		data, headers = tires, []string{"ID", "NAME", "CAR", "POSITIONS"}
		for _, t := range tires {
			rows = append(rows, []string{t.TireID, t.Name, t.CarID, positions(t)})
		}
	case "stints":
		stints, err := s.ListStints(ctx, carID)
		if err != nil {
			return err
		}
		data, headers = stints, []string{"ID", "DATE", "CAR", "TRACK", "LAPS", "LF", "RF", "LR", "RR"}
		for _, st := range stints {
			rows = append(rows, []string{
				st.StintID, st.Date, st.CarID, st.TrackID, strconv.FormatInt(st.Laps, 10),
				st.LeftFront, st.RightFront, st.LeftRear, st.RightRear,
			})
		}
	}

	if f.Format == "json" {
		return f.Success(data)
	}
	f.Table(headers, rows)
	return nil
}

func positions(t store.Tire) string {
	out := ""
	for _, p := range []struct {
		ok   bool
		name string
	}{{t.AllowedLF, "LF"}, {t.AllowedRF, "RF"}, {t.AllowedLR, "LR"}, {t.AllowedRR, "RR"}} {
		if !p.ok {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p.name
	}
	return out
}
