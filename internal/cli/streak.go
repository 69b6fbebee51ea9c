package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
	"github.com/vitalquest/vitalquest/internal/domain"
)

func init() {
	streakCmd.AddCommand(streakFreezeCmd)
	rootCmd.AddCommand(streakCmd)
}

var streakCmd = &cobra.Command{
	Use:     "streak",
	Aliases: []string{"streaks"},
	Short:   "List streaks",
	RunE:    runStreaks,
}

func runStreaks(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	streaks := d.Engine.Streaks()
	if len(streaks) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No streaks yet. Complete a quest to start one.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tREF\tCURRENT\tLONGEST\tFREEZES\tLAST")
	for _, st := range streaks {
		ref := st.ReferenceID
		if ref == "" {
			ref = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\n",
			st.Type, ref, st.CurrentStreak, st.LongestStreak,
			st.FreezesAvailable, dateOrDash(st.LastCompletedDate),
		)
	}
	return w.Flush()
}

var streakFreezeCmd = &cobra.Command{
	Use:   "freeze <type> [ref]",
	Short: "Buy a streak freeze with gold",
	Long: `Spend gold on a freeze for one streak. A freeze is used up instead of
breaking the streak the next time a day is missed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		t := domain.StreakType(args[0])
		var ref string
		if len(args) == 2 {
			ref = args[1]
		}
		if err := d.Engine.BuyStreakFreeze(t, ref); err != nil {
			return err
		}
		u, _ := d.Engine.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Freeze bought for %d gold. %d gold left.\n",
			d.Engine.Rulebook().Rules().Streaks.FreezeCost, u.Character.Gold)
		return nil
	},
}
