package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tutu-network/timebank/internal/app/controller"
	"github.com/tutu-network/timebank/internal/domain"
	"github.com/tutu-network/timebank/internal/tui"
)

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(earnCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(resetCmd)

	statusCmd.Flags().Bool("json", false, "Print the full status as JSON")
	setCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	resetCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}

// ─── run ────────────────────────────────────────────────────────────────────

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the interactive timer",
	Long:  `Open the full-screen timer. The display refreshes every tick while earning or using.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()
		return tui.Run(rt.engine)
	},
}

// ─── status ─────────────────────────────────────────────────────────────────

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current balance without changing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		s := rt.engine.Snapshot()
		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		printStatus(cmd, s)
		return nil
	},
}

// ─── earn / use / stop ──────────────────────────────────────────────────────

var earnCmd = &cobra.Command{
	Use:   "earn",
	Short: "Start earning time",
	RunE:  intent(func(c *controller.Controller) { c.OnEarnClicked() }),
}

var useCmd = &cobra.Command{
	Use:   "use",
	Short: "Start using time",
	RunE:  intent(func(c *controller.Controller) { c.OnUseClicked() }),
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the timer",
	RunE:  intent(func(c *controller.Controller) { c.OnStopClicked() }),
}

// intent opens the engine (resuming any running mode), applies fn and
// prints the result. The mode keeps running in the stored record after
// the process exits.
func intent(fn func(*controller.Controller)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		rt.engine.Open()
		fn(controller.New(rt.engine, nil))
		printStatus(cmd, rt.engine.Snapshot())
		return nil
	}
}

// ─── set ────────────────────────────────────────────────────────────────────

var setCmd = &cobra.Command{
	Use:   "set [HOURS] [MINUTES] [SECONDS]",
	Short: "Overwrite the balance and stop",
	Long: `Overwrite the balance with HOURS:MINUTES:SECONDS and stop the timer.
Missing or non-numeric fields count as zero.`,
	Args: cobra.MaximumNArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields := make([]string, 3)
		copy(fields, args)

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		rt.engine.Open()
		ctrl := controller.New(rt.engine, confirmer(cmd))
		if err := ctrl.OnUpdateClicked(fields[0], fields[1], fields[2]); err != nil {
			if errors.Is(err, domain.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "Balance unchanged.")
				return nil
			}
			return err
		}
		printStatus(cmd, rt.engine.Snapshot())
		return nil
	},
}

// ─── reset ──────────────────────────────────────────────────────────────────

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the stored balance and start over",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close()

		ctrl := controller.New(rt.engine, confirmer(cmd))
		ctrl.SetClearer(rt.store)
		if err := ctrl.Reset(); err != nil {
			if errors.Is(err, domain.ErrNotConfirmed) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing reset.")
				return nil
			}
			return err
		}
		printStatus(cmd, rt.engine.Snapshot())
		return nil
	},
}

// confirmer honours --yes, otherwise prompts on the terminal.
func confirmer(cmd *cobra.Command) domain.Confirmer {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return controller.AutoConfirm(true)
	}
	return controller.PromptConfirmer{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
}
