package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OscarFredriksson/tire-logger/internal/schema"
	"github.com/OscarFredriksson/tire-logger/internal/store"
)

// NewAddCommand creates the add command with one subcommand per entity.
// Passing --id of an existing entity updates it.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or update a car, track, tire or stint",
	}
	cmd.AddCommand(newAddCarCommand(rootOpts))
	cmd.AddCommand(newAddTrackCommand(rootOpts))
	cmd.AddCommand(newAddTireCommand(rootOpts))
	cmd.AddCommand(newAddStintCommand(rootOpts))
	return cmd
}

// validated runs check and turns its problems into an error.
func validated(check func(v *schema.Validator) schema.Errors) error {
	v, err := schema.Default()
	if err != nil {
		return err
	}
	if errs := check(v); len(errs) > 0 {
		return errs
	}
	return nil
}

func reportAdded(f *OutputFormatter, kind, id, name string, entity any) error {
	if f.Format == "json" {
		return f.Success(entity)
	}
	fmt.Fprintf(f.Writer, "Saved %s %s (%s)\n", kind, id, name)
	return nil
}

func newAddCarCommand(rootOpts *RootOptions) *cobra.Command {
	var car store.Car
	cmd := &cobra.Command{
		Use:   "car",
		Short: "Add a car",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				err := validated(func(v *schema.Validator) schema.Errors {
					return v.ValidateCar(map[string]any{"name": car.Name})
				})
				if err != nil {
					return err
				}
				saved, err := s.PutCar(cmd.Context(), car)
				if err != nil {
					return err
				}
				return reportAdded(f, "car", saved.CarID, saved.Name, saved)
			})
		},
	}
	cmd.Flags().StringVar(&car.CarID, "id", "", "car id (generated when empty)")
	cmd.Flags().StringVar(&car.Name, "name", "", "car name")
	return cmd
}

func newAddTrackCommand(rootOpts *RootOptions) *cobra.Command {
	var track store.Track
	cmd := &cobra.Command{
		Use:   "track",
		Short: "Add a track",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				err := validated(func(v *schema.Validator) schema.Errors {
					return v.ValidateTrack(map[string]any{"name": track.Name, "length": track.Length})
				})
				if err != nil {
					return err
				}
				saved, err := s.PutTrack(cmd.Context(), track)
				if err != nil {
					return err
				}
				return reportAdded(f, "track", saved.TrackID, saved.Name, saved)
			})
		},
	}
	cmd.Flags().StringVar(&track.TrackID, "id", "", "track id (generated when empty)")
	cmd.Flags().StringVar(&track.Name, "name", "", "track name")
	cmd.Flags().Int64Var(&track.Length, "length", 0, "lap length in metres")
	return cmd
}

func newAddTireCommand(rootOpts *RootOptions) *cobra.Command {
	var tire store.Tire
	cmd := &cobra.Command{
		Use:   "tire",
		Short: "Add a tire",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				err := validated(func(v *schema.Validator) schema.Errors {
					return v.ValidateTire(map[string]any{
						"name":      tire.Name,
						"carId":     tire.CarID,
						"allowedLf": tire.AllowedLF,
						"allowedRf": tire.AllowedRF,
						"allowedLr": tire.AllowedLR,
						"allowedRr": tire.AllowedRR,
					})
				})
				if err != nil {
					return err
				}
				saved, err := s.PutTire(cmd.Context(), tire)
				if err != nil {
					return err
				}
				return reportAdded(f, "tire", saved.TireID, saved.Name, saved)
			})
		},
	}
	cmd.Flags().StringVar(&tire.TireID, "id", "", "tire id (generated when empty)")
	cmd.Flags().StringVar(&tire.Name, "name", "", "tire name")
	cmd.Flags().StringVar(&tire.CarID, "car", "", "id of the car the tire belongs to")
	cmd.Flags().BoolVar(&tire.AllowedLF, "lf", false, "may be mounted left front")
	cmd.Flags().BoolVar(&tire.AllowedRF, "rf", false, "may be mounted right front")
	cmd.Flags().BoolVar(&tire.AllowedLR, "lr", false, "may be mounted left rear")
	cmd.Flags().BoolVar(&tire.AllowedRR, "rr", false, "may be mounted right rear")
	return cmd
}

func newAddStintCommand(rootOpts *RootOptions) *cobra.Command {
	var stint store.Stint
	cmd := &cobra.Command{
		Use:   "stint",
		Short: "Log a stint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withStore(cmd, func(s *store.Store, f *OutputFormatter) error {
				if stint.Date == "" {
					stint.Date = store.FormatDate(rootOpts.Now())
				}
				fields := map[string]any{
					"trackId":    stint.TrackID,
					"carId":      stint.CarID,
					"date":       stint.Date,
					"laps":       stint.Laps,
					"leftFront":  stint.LeftFront,
					"rightFront": stint.RightFront,
					"leftRear":   stint.LeftRear,
					"rightRear":  stint.RightRear,
				}
				if stint.Note != "" {
					fields["note"] = stint.Note
				}
				err := validated(func(v *schema.Validator) schema.Errors {
					return v.ValidateStint(fields)
				})
				if err != nil {
					return err
				}
				saved, err := s.PutStint(cmd.Context(), stint)
				if err != nil {
					return err
				}
				return reportAdded(f, "stint", saved.StintID, saved.Date, saved)
			})
		},
	}
	cmd.Flags().StringVar(&stint.StintID, "id", "", "stint id (generated when empty)")
	cmd.Flags().StringVar(&stint.CarID, "car", "", "car id")
	cmd.Flags().StringVar(&stint.TrackID, "track", "", "track id")
	cmd.Flags().StringVar(&stint.Date, "date", "", "stint date, RFC 3339 (default now)")
	cmd.Flags().Int64Var(&stint.Laps, "laps", 0, "laps driven")
	cmd.Flags().StringVar(&stint.LeftFront, "lf", "", "left front tire id")
	cmd.Flags().StringVar(&stint.RightFront, "rf", "", "right front tire id")
	cmd.Flags().StringVar(&stint.LeftRear, "lr", "", "left rear tire id")
	cmd.Flags().StringVar(&stint.RightRear, "rr", "", "right rear tire id")
	cmd.Flags().StringVar(&stint.Note, "note", "", "free-form note")
	return cmd
}
