package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"healthlog/internal/app"
	"healthlog/internal/domain"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "healthlog",
		Short:         "Log health measurements and view them by local calendar day",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newGlucoseCmd(),
		newPressureCmd(),
		newInsulinCmd(),
		newMedCmd(),
		newLogCmd(),
		newSuggestCmd(),
		newThresholdsCmd(),
	)
	return root
}

// withLedger opens the ledger for one command invocation and closes the
// backing store afterwards.
func withLedger(cmd *cobra.Command, fn func(l *app.Ledger) error) error {
	l, closer, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return fn(l)
}

func newGlucoseCmd() *cobra.Command {
	var gctx, at string
	cmd := &cobra.Command{
		Use:   "glucose <value>",
		Short: "Record a blood glucose measurement in mg/dL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("value must be a number: %w", err)
			}
			return withLedger(cmd, func(l *app.Ledger) error {
				m, err := l.AddGlucose(cmd.Context(), value, domain.GlucoseContext(gctx), at)
				if err != nil {
					return err
				}
				fmt.Printf("glucose %g mg/dL (%s) on %s: %s\n",
					m.Value, m.Context, l.Clock().DayKey(m.Instant), m.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&gctx, "context", string(domain.GlucoseCustom), "fasting, postprandial or custom")
	cmd.Flags().StringVar(&at, "at", "", "timestamp (RFC 3339 or local YYYY-MM-DDTHH:MM), default now")
	return cmd
}

func newPressureCmd() *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "pressure <systolic> <diastolic>",
		Short: "Record a blood pressure measurement in mmHg",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sys, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("systolic must be a number: %w", err)
			}
			dia, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("diastolic must be a number: %w", err)
			}
			return withLedger(cmd, func(l *app.Ledger) error {
				m, err := l.AddPressure(cmd.Context(), sys, dia, at)
				if err != nil {
					return err
				}
				fmt.Printf("pressure %g/%g mmHg on %s: %s\n",
					m.Systolic, m.Diastolic, l.Clock().DayKey(m.Instant), m.Status)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "timestamp, default now")
	return cmd
}

func newInsulinCmd() *cobra.Command {
	var typ, ictx, notes, at string
	cmd := &cobra.Command{
		Use:   "insulin <dose>",
		Short: "Record an insulin dose in units",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dose, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("dose must be a number: %w", err)
			}
			return withLedger(cmd, func(l *app.Ledger) error {
				e, err := l.AddInsulin(cmd.Context(), dose,
					domain.InsulinType(typ), domain.InsulinContext(ictx), notes, at)
				if err != nil {
					return err
				}
				fmt.Printf("insulin %g u %s (%s) on %s\n",
					e.Dose, e.Type, e.Context, l.Clock().DayKey(e.Instant))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&typ, "type", string(domain.InsulinRapid), "rapid, long or mixed")
	cmd.Flags().StringVar(&ictx, "context", string(domain.InsulinCorrection), "fasting, postprandial or correction")
	cmd.Flags().StringVar(&notes, "notes", "", "free-form notes")
	cmd.Flags().StringVar(&at, "at", "", "timestamp, default now")
	return cmd
}

func newMedCmd() *cobra.Command {
	var rel, at string
	cmd := &cobra.Command{
		Use:   "med <name>",
		Short: "Record a medication intake",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(l *app.Ledger) error {
				r, err := l.AddMedicationIntake(cmd.Context(), args[0], domain.FoodRelation(rel), at)
				if err != nil {
					return err
				}
				fmt.Printf("%s (%s food), taken %d time(s)\n", r.Name, r.FoodRelation, r.UsageCount)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&rel, "relation", string(domain.FoodNone), "before, during, after or none")
	cmd.Flags().StringVar(&at, "at", "", "timestamp, default now")
	return cmd
}

func newLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log [days]",
		Short: "Show records grouped by local calendar day, most recent first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days := 7
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n <= 0 {
					return fmt.Errorf("days must be a positive integer")
				}
				days = n
			}
			return withLedger(cmd, func(l *app.Ledger) error {
				clock := l.Clock()
				now := clock.Now()
				end := clock.DayKey(now)
				start := clock.DayKey(now.AddDate(0, 0, -(days - 1)))

				records, err := l.QueryByDayRange(start, end)
				if err != nil {
					return err
				}
				for _, b := range app.Aggregate(clock, records, start, end) {
					fmt.Println(b.Day)
					for _, r := range b.Records {
						m := clock.Local(r.RecordInstant())
						fmt.Printf("  %02d:%02d  %s\n", m.Hour, m.Minute, describe(r))
					}
				}
				return nil
			})
		},
	}
	return cmd
}

func describe(r domain.Record) string {
	switch v := r.(type) {
	case domain.GlucoseMeasurement:
		return fmt.Sprintf("glucose %g mg/dL (%s) [%s]", v.Value, v.Context, v.Status)
	case domain.PressureMeasurement:
		return fmt.Sprintf("pressure %g/%g mmHg [%s]", v.Systolic, v.Diastolic, v.Status)
	case domain.InsulinEntry:
		s := fmt.Sprintf("insulin %g u %s (%s)", v.Dose, v.Type, v.Context)
		if v.Notes != "" {
			s += " - " + v.Notes
		}
		return s
	case domain.MedicationRecord:
		return fmt.Sprintf("medication %s (%s food)", v.Name, v.FoodRelation)
	}
	return string(r.Kind())
}

func newSuggestCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "suggest [query]",
		Short: "Suggest medication names by usage frequency and recency",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return withLedger(cmd, func(l *app.Ledger) error {
				for _, s := range l.Suggest(query, limit) {
					fmt.Printf("%s (%d)\n", s.Name, s.UsageCount)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", app.DefaultSuggestionLimit, "maximum suggestions")
	return cmd
}

func newThresholdsCmd() *cobra.Command {
	var gMin, gMax, sMin, sMax, dMin, dMax float64
	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Show or update the personal threshold bands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, func(l *app.Ledger) error {
				t := l.Thresholds()
				if cmd.Flags().NFlag() > 0 {
					set := func(name string, dst *float64, v float64) {
						if cmd.Flags().Changed(name) {
							*dst = v
						}
					}
					set("glucose-min", &t.Glucose.Min, gMin)
					set("glucose-max", &t.Glucose.Max, gMax)
					set("systolic-min", &t.Systolic.Min, sMin)
					set("systolic-max", &t.Systolic.Max, sMax)
					set("diastolic-min", &t.Diastolic.Min, dMin)
					set("diastolic-max", &t.Diastolic.Max, dMax)
					if err := l.UpdateThresholds(cmd.Context(), t); err != nil {
						return err
					}
				}
				t = l.Thresholds()
				fmt.Printf("glucose   %g-%g mg/dL\n", t.Glucose.Min, t.Glucose.Max)
				fmt.Printf("systolic  %g-%g mmHg\n", t.Systolic.Min, t.Systolic.Max)
				fmt.Printf("diastolic %g-%g mmHg\n", t.Diastolic.Min, t.Diastolic.Max)
				return nil
			})
		},
	}
	def := domain.DefaultThresholds()
	cmd.Flags().Float64Var(&gMin, "glucose-min", def.Glucose.Min, "glucose band minimum")
	cmd.Flags().Float64Var(&gMax, "glucose-max", def.Glucose.Max, "glucose band maximum")
	cmd.Flags().Float64Var(&sMin, "systolic-min", def.Systolic.Min, "systolic band minimum")
	cmd.Flags().Float64Var(&sMax, "systolic-max", def.Systolic.Max, "systolic band maximum")
	cmd.Flags().Float64Var(&dMin, "diastolic-min", def.Diastolic.Min, "diastolic band minimum")
	cmd.Flags().Float64Var(&dMax, "diastolic-max", def.Diastolic.Max, "diastolic band maximum")
	return cmd
}
