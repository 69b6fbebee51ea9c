package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"me"},
	Short:   "Show your character sheet",
	RunE:    runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	u, err := d.Engine.User()
	if err != nil {
		return fmt.Errorf("%w (run 'vitalquest init' first)", err)
	}
	book := d.Engine.Rulebook()
	c, st := u.Character, u.Stats

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s  Level %d %s\n", c.Name, c.Level, c.Class)
	fmt.Fprintf(out, "  %s\n", c.Class.Description())
	if c.Level >= book.Rules().Levels.MaxLevel() {
		fmt.Fprintf(out, "  XP   %s  max level (%d total)\n", renderBar(100), c.TotalXP)
	} else {
		fmt.Fprintf(out, "  XP   %s  %d / %d (next level in %d)\n",
			renderBar(book.LevelProgressPct(c)), c.CurrentXP, book.XPForNextLevel(c), book.XPToNextLevel(c))
	}
	fmt.Fprintf(out, "  HP   %s  %d / %d\n", renderBar(ratioPct(float64(c.HP), float64(c.MaxHP))), c.HP, c.MaxHP)
	fmt.Fprintf(out, "  Gold %d\n", c.Gold)

	_, unread := d.Engine.Notifications()
	records, err := d.DB.ActivityCount()
	if err != nil {
		return fmt.Errorf("count records: %w", err)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Quests completed:   %d (%d active)\n", st.TotalQuestsCompleted, len(d.Engine.ActiveQuests()))
	fmt.Fprintf(out, "Achievements:       %d\n", st.TotalAchievementsUnlocked)
	fmt.Fprintf(out, "Streak:             %d days (best %d)\n", st.CurrentStreak, st.LongestStreak)
	fmt.Fprintf(out, "Lifetime steps:     %s\n", num(st.TotalSteps))
	fmt.Fprintf(out, "Exercise minutes:   %s\n", num(st.TotalExerciseMinutes))
	fmt.Fprintf(out, "Meditation minutes: %s\n", num(st.TotalMeditationMinutes))
	fmt.Fprintf(out, "Records logged:     %d\n", records)
	fmt.Fprintf(out, "Unread:             %d\n", unread)
	return nil
}
