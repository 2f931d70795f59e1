package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"pocketpet/internal/parental"
	"pocketpet/internal/save"
)

var errWrongPassword = errors.New("incorrect parental password")

func newParentalCmd(opts *rootOptions) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "parental",
		Short: "Parental controls (password protected)",
	}
	cmd.PersistentFlags().StringVar(&password, "password", "", "Parental password")
	_ = cmd.MarkPersistentFlagRequired("password")

	// guarded opens the app and checks the password before running fn.
	guarded := func(fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.gate.VerifyPassword(password) {
				a.logger.Warn("parental password rejected")
				return errWrongPassword
			}
			return fn(cmd, a, args)
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show parental settings and usage",
		Args:  cobra.NoArgs,
		RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
			stats, err := a.gate.Stats()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Enabled:        %t\n", a.gate.Enabled())
			fmt.Fprintf(out, "Allowed hours:  %s\n", formatHours(a.gate.AllowedHours()))
			fmt.Fprintf(out, "Playing now:    %t\n", a.gate.IsWithinAllowedTime())
			fmt.Fprintf(out, "Minutes played: %d\n", stats.TotalTimePlayed)
			fmt.Fprintf(out, "Launches:       %d\n", stats.NumberOfLaunches)
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "hours HOUR|FROM-TO|none ...",
		Short: "Set the hours of the day when playing is allowed",
		Args:  cobra.MinimumNArgs(1),
		RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
			hours, err := parseHours(args)
			if err != nil {
				return err
			}
			if err := a.gate.SetAllowedHours(hours); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Allowed hours: %s\n", formatHours(a.gate.AllowedHours()))
			return nil
		}),
	})

	for _, toggle := range []struct {
		use, short string
		enabled    bool
	}{
		{"enable", "Turn the play time restriction on", true},
		{"disable", "Turn the play time restriction off", false},
	} {
		enabled := toggle.enabled
		cmd.AddCommand(&cobra.Command{
			Use:   toggle.use,
			Short: toggle.short,
			Args:  cobra.NoArgs,
			RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
				if err := a.gate.SetEnabled(enabled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Parental controls enabled: %t\n", enabled)
				return nil
			}),
		})
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset-stats",
		Short: "Reset the play time and launch counters",
		Args:  cobra.NoArgs,
		RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.gate.ResetStats(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Usage statistics reset")
			return nil
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-password NEW",
		Short: "Change the parental password",
		Args:  cobra.ExactArgs(1),
		RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
			if err := a.gate.SetPassword(args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Password changed")
			return nil
		}),
	})

	var reviveSlot int
	revive := &cobra.Command{
		Use:   "revive",
		Short: "Bring the pet in a save slot back to full health",
		Args:  cobra.NoArgs,
		RunE: guarded(func(cmd *cobra.Command, a *app, args []string) error {
			state, err := save.Revive(cmd.Context(), a.saves, reviveSlot)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is back on their feet!\n", state.Pet().Name)
			return nil
		}),
	}
	revive.Flags().IntVar(&reviveSlot, "slot", 1, "Save slot")
	cmd.AddCommand(revive)

	return cmd
}

// parseHours accepts single hours, inclusive ranges such as 8-20, or the
// word none for an empty set.
func parseHours(args []string) ([]int, error) {
	hours := []int{}
	for _, arg := range args {
		if arg == "none" {
			continue
		}
		from, to, isRange := strings.Cut(arg, "-")
		lo, err := strconv.Atoi(from)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", parental.ErrInvalidHour, arg)
		}
		hi := lo
		if isRange {
			if hi, err = strconv.Atoi(to); err != nil {
				return nil, fmt.Errorf("%w: %q", parental.ErrInvalidHour, arg)
			}
		}
		if lo < 0 || hi > 23 || hi < lo {
			return nil, fmt.Errorf("%w: %q", parental.ErrInvalidHour, arg)
		}
		for h := lo; h <= hi; h++ {
			hours = append(hours, h)
		}
	}
	return hours, nil
}

func formatHours(hours []int) string {
	if len(hours) == 0 {
		return "none"
	}
	parts := make([]string, len(hours))
	for i, h := range hours {
		parts[i] = strconv.Itoa(h)
	}
	return strings.Join(parts, " ")
}
