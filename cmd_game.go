package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pocketpet/internal/game"
	"pocketpet/internal/parental"
	"pocketpet/internal/pet"
	"pocketpet/internal/save"
	"pocketpet/internal/session"
	"pocketpet/internal/ui"
)

const exitSaveTimeout = 5 * time.Second

var errOutsideHours = errors.New("playing is not allowed right now. Ask a parent to change the allowed hours")

func newNewCmd(opts *rootOptions) *cobra.Command {
	var slot int
	var player string
	var force bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Start a new game in a save slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			if !force {
				_, err := a.saves.Load(ctx, slot)
				switch {
				case err == nil:
					return fmt.Errorf("slot %d is already in use. Use --force to overwrite it", slot)
				case !errors.Is(err, save.ErrSlotUnavailable):
					return err
				}
			}

			state, err := game.New(slot, player)
			if err != nil {
				return err
			}
			if err := a.saves.Save(ctx, state); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "New game for %s in slot %d. Run 'pocketpet play --slot %d' to adopt a pet!\n", player, slot, slot)
			return nil
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 1, "Save slot")
	cmd.Flags().StringVar(&player, "player", "Player", "Player name")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing slot")
	return cmd
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	var slot int
	var player string

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play the game stored in a save slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runPlay(cmd.Context(), a, slot, player)
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 1, "Save slot")
	cmd.Flags().StringVar(&player, "player", "Player", "Player name when the slot is empty")
	return cmd
}

// loadOrCreate returns the stored game for slot, or a fresh one when the
// slot has never been used.
func loadOrCreate(ctx context.Context, a *app, slot int, player string) (*game.GameState, error) {
	state, err := a.saves.Load(ctx, slot)
	if errors.Is(err, save.ErrSlotEmpty) {
		a.logger.Info("starting a new game", zap.Int("slot", slot))
		return game.New(slot, player)
	}
	return state, err
}

func runPlay(ctx context.Context, a *app, slot int, player string) error {
	if err := a.gate.IncrementLaunchCount(); err != nil {
		a.logger.Warn("recording launch failed", zap.Error(err))
	}
	monitor := parental.NewMonitor(a.gate, a.cfg.Parental.MonitorInterval, a.logger)
	if !monitor.Allowed() {
		return errOutsideHours
	}

	state, err := loadOrCreate(ctx, a, slot, player)
	if err != nil {
		return err
	}

	sess := session.New(state, a.registry, session.ConfigFrom(a.cfg.Game), a.logger)
	defer sess.Close()

	if err := sess.Begin(ctx); err != nil {
		return err
	}
	snap, err := sess.Snapshot(ctx)
	if err != nil {
		return err
	}

	saveFn := func(ctx context.Context) error { return sess.Save(ctx, a.saves) }
	program := tea.NewProgram(ui.NewModel(sess, saveFn, a.registry, snap), tea.WithAltScreen())

	monitor.OnChange(func(allowed bool) {
		program.Send(ui.ParentalMsg{Allowed: allowed})
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return monitor.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		program.Quit()
		return nil
	})
	g.Go(func() error {
		defer cancel()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("running game screen: %w", err)
		}
		return nil
	})
	runErr := g.Wait()

	saveCtx, cancelSave := context.WithTimeout(context.Background(), exitSaveTimeout)
	defer cancelSave()
	if err := sess.Save(saveCtx, a.saves); err != nil {
		return errors.Join(runErr, fmt.Errorf("saving on exit: %w", err))
	}
	return runErr
}

func newCareCmd(opts *rootOptions) *cobra.Command {
	var slot int

	cmd := &cobra.Command{
		Use:   "care INTERACTION [ITEM]",
		Short: "Look after the pet in a save slot without opening the game screen",
		Example: `  pocketpet care feed meat
  pocketpet care "Take to the vet" --slot 2`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := pet.ParseInteraction(args[0])
			if err != nil {
				return err
			}
			item := ""
			if len(args) == 2 {
				item = args[1]
			}

			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()
			if !a.gate.IsWithinAllowedTime() {
				return errOutsideHours
			}

			ctx := cmd.Context()
			state, err := a.saves.Load(ctx, slot)
			if err != nil {
				return err
			}
			if err := state.Player.Interact(kind, item); err != nil {
				return err
			}
			if err := a.saves.Save(ctx, state); err != nil {
				return err
			}
			p := state.Pet()
			a.logger.Info("care applied", zap.Int("slot", slot), zap.String("interaction", string(kind)), zap.Stringer("pet", p))
			fmt.Fprintf(cmd.OutOrStdout(), "%s Done! %s\n", pet.GetInteractionDefinition(kind).Emoji, pet.GetStatusWithLabel(*p))
			return nil
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 1, "Save slot")
	return cmd
}

func newSlotsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "slots",
		Short: "List save slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			infos, err := a.saves.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(infos) == 0 {
				fmt.Fprintln(out, "No saved games yet. Run 'pocketpet new' to start one.")
				return nil
			}
			fmt.Fprintf(out, "%-5s %-12s %-12s %-8s %-9s %6s  %s\n", "SLOT", "PLAYER", "PET", "TYPE", "STATE", "SCORE", "UPDATED")
			for _, info := range infos {
				if info.Corrupt {
					fmt.Fprintf(out, "%-5d (unreadable)\n", info.Slot)
					continue
				}
				petName, kind, state := "-", "-", "-"
				if info.PetName != "" {
					petName, kind, state = info.PetName, a.registry.Name(info.Archetype), string(info.State)
				}
				fmt.Fprintf(out, "%-5d %-12s %-12s %-8s %-9s %6d  %s\n",
					info.Slot, info.PlayerName, petName, kind, state, info.Score,
					info.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newStatsCmd(opts *rootOptions) *cobra.Command {
	var slot int
	var interactive bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the stats stored in a save slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			state, err := a.saves.Load(cmd.Context(), slot)
			if err != nil {
				return err
			}
			if interactive {
				return ui.DisplayStats(state, a.registry)
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderStatsCard(state, a.registry))
			return nil
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 1, "Save slot")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Show the stats card full screen")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	var slot int

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a save slot",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.saves.Delete(cmd.Context(), slot); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Slot %d deleted\n", slot)
			return nil
		},
	}

	cmd.Flags().IntVar(&slot, "slot", 1, "Save slot")
	return cmd
}
