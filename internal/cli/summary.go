package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	historyCmd.Flags().IntVar(&historyDays, "days", 7, "Number of days to show")
	rootCmd.AddCommand(summaryCmd, historyCmd, sweepCmd)
}

var historyDays int

var summaryCmd = &cobra.Command{
	Use:   "summary [YYYY-MM-DD]",
	Short: "Show one day's totals (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	book := d.Engine.Rulebook()
	day := d.Engine.Now()
	if len(args) == 1 {
		if day, err = time.ParseInLocation(time.DateOnly, args[0], book.Location()); err != nil {
			return fmt.Errorf("invalid date: %w", err)
		}
	}
	sum, ok := d.Engine.DailySummary(day)
	out := cmd.OutOrStdout()
	if !ok {
		fmt.Fprintf(out, "Nothing logged on %s.\n", book.DayKey(day))
		return nil
	}

	fmt.Fprintf(out, "%s\n", book.DayKey(day))
	fmt.Fprintf(out, "  Steps:       %s\n", num(sum.Steps))
	fmt.Fprintf(out, "  Exercise:    %s min\n", num(sum.ExerciseMinutes))
	fmt.Fprintf(out, "  Meditation:  %s min\n", num(sum.MeditationMinutes))
	fmt.Fprintf(out, "  Water:       %s glasses\n", num(sum.WaterGlasses))
	fmt.Fprintf(out, "  Meals:       %d\n", sum.MealsLogged)
	fmt.Fprintf(out, "  Sleep:       %s h\n", num(sum.SleepHours))
	fmt.Fprintf(out, "  Quests done: %d\n", sum.QuestsCompleted)
	fmt.Fprintf(out, "  Earned:      %d XP, %d gold\n", sum.XPEarned, sum.GoldEarned)
	if !sum.HasActivity() {
		return nil
	}

	start := book.StartOfDay(day)
	recs, err := d.DB.ListActivities(start, start.AddDate(0, 0, 1))
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	fmt.Fprintln(out)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tVALUE\tSOURCE")
	for _, a := range recs {
		fmt.Fprintf(w, "%s\t%s\t%s %s\t%s\n",
			a.Date.In(book.Location()).Format("15:04"), a.Type, num(a.Value), a.Unit, a.Source)
	}
	return w.Flush()
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show daily totals for recent days",
	RunE:  runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	if historyDays < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	book := d.Engine.Rulebook()
	now := d.Engine.Now()
	from := book.DayKey(now.AddDate(0, 0, -(historyDays - 1)))
	sums, err := d.DB.SummariesBetween(from, book.DayKey(now))
	if err != nil {
		return fmt.Errorf("load history: %w", err)
	}
	if len(sums) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAY\tSTEPS\tEXERCISE\tMEDITATION\tWATER\tMEALS\tSLEEP\tQUESTS\tXP")
	for _, s := range sums {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\t%d\t%d\n",
			book.DayKey(s.Date), num(s.Steps), num(s.ExerciseMinutes), num(s.MeditationMinutes),
			num(s.WaterGlasses), s.MealsLogged, num(s.SleepHours), s.QuestsCompleted, s.XPEarned,
		)
	}
	return w.Flush()
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run day-boundary maintenance now",
	Long: `Expire missed daily quests (with HP damage), walk streaks forward using
freezes where available, and generate the next quest batches. 'serve' does
this on a timer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if _, err := d.Engine.User(); err != nil {
			return err
		}
		rep := d.SweepOnce()
		fmt.Fprintf(cmd.OutOrStdout(), "Expired %d quests, broke %d streaks, added %d quests.\n",
			rep.QuestsExpired, rep.StreaksBroken, rep.QuestsAdded)
		return nil
	},
}
