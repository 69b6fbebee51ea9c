package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsAll, "all", false, "Include hidden achievements")
	rootCmd.AddCommand(achievementsCmd)
}

var achievementsAll bool

var achievementsCmd = &cobra.Command{
	Use:     "achievements",
	Aliases: []string{"ach"},
	Short:   "List achievements and progress",
	RunE:    runAchievements,
}

func runAchievements(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tRARITY\tPROGRESS\tSTATUS")
	for _, a := range d.Engine.Achievements() {
		if a.Hidden && !a.Unlocked && !achievementsAll {
			continue
		}
		status := "locked"
		if a.Unlocked {
			status = "unlocked " + a.UnlockedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.Title, a.Rarity,
			renderBar(ratioPct(a.Progress, a.Target)),
			status,
		)
	}
	return w.Flush()
}
