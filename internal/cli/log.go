package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
	"github.com/vitalquest/vitalquest/internal/domain"
)

func init() {
	logExerciseCmd.Flags().Float64Var(&logCalories, "calories", 0, "Calories burned")
	logExerciseCmd.Flags().Float64Var(&logHeartRate, "heart-rate", 0, "Average heart rate")
	logMealCmd.Flags().Float64Var(&logCalories, "calories", 0, "Calories eaten")
	logMealCmd.Flags().BoolVar(&logHealthy, "healthy", false, "Mark the meal as healthy")
	logSleepCmd.Flags().StringVar(&logQuality, "quality", "", "Sleep quality: poor, fair, good, excellent")
	logCmd.PersistentFlags().StringVar(&logNotes, "notes", "", "Free-form notes")

	logCmd.AddCommand(logStepsCmd, logExerciseCmd, logMeditationCmd, logWaterCmd, logMealCmd, logSleepCmd)
	rootCmd.AddCommand(logCmd)
}

var (
	logCalories  float64
	logHeartRate float64
	logHealthy   bool
	logQuality   string
	logNotes     string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Log an activity for now",
}

var logStepsCmd = &cobra.Command{
	Use:   "steps <count>",
	Short: "Log steps",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd, args[0], func(v float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivitySteps, Value: v}
		})
	},
}

var logExerciseCmd = &cobra.Command{
	Use:   "exercise <minutes>",
	Short: "Log an exercise session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd, args[0], func(v float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivityExercise, Value: v, Metadata: domain.ExerciseDetails{
				DurationMinutes: v, Calories: logCalories, HeartRate: logHeartRate, Notes: logNotes,
			}}
		})
	},
}

var logMeditationCmd = &cobra.Command{
	Use:   "meditation <minutes>",
	Short: "Log a meditation session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd, args[0], func(v float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivityMeditation, Value: v, Metadata: domain.MeditationDetails{
				DurationMinutes: v, Notes: logNotes,
			}}
		})
	},
}

var logWaterCmd = &cobra.Command{
	Use:   "water <glasses>",
	Short: "Log glasses of water",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd, args[0], func(v float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivityWater, Value: v}
		})
	},
}

var logMealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log a meal",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLog(cmd, "1", func(float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivityMeal, Value: 1, Metadata: domain.MealDetails{
				Calories: logCalories, Healthy: logHealthy, Notes: logNotes,
			}}
		})
	},
}

var logSleepCmd = &cobra.Command{
	Use:   "sleep <hours>",
	Short: "Log a night's sleep",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := domain.SleepQuality(logQuality)
		switch q {
		case "", domain.SleepPoor, domain.SleepFair, domain.SleepGood, domain.SleepExcellent:
		default:
			return fmt.Errorf("unknown sleep quality %q", logQuality)
		}
		return runLog(cmd, args[0], func(v float64) domain.ActivityRecord {
			return domain.ActivityRecord{Type: domain.ActivitySleep, Value: v, Metadata: domain.SleepDetails{
				DurationMinutes: v * 60, Quality: q, Notes: logNotes,
			}}
		})
	},
}

// runLog parses the amount, logs the record and prints what it earned.
func runLog(cmd *cobra.Command, amount string, build func(float64) domain.ActivityRecord) error {
	v, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	before, err := d.Engine.User()
	if err != nil {
		return fmt.Errorf("%w (run 'vitalquest init' first)", err)
	}
	rec, err := d.Engine.LogActivity(build(v))
	if err != nil {
		return err
	}
	after, _ := d.Engine.User()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Logged %s: %s %s.\n", rec.Type, num(rec.Value), rec.Unit)
	printGains(cmd, before, after)
	return nil
}

// printGains reports the XP, gold and level change between two snapshots.
func printGains(cmd *cobra.Command, before, after domain.User) {
	out := cmd.OutOrStdout()
	xp := after.Character.TotalXP - before.Character.TotalXP
	gold := after.Character.Gold - before.Character.Gold
	if xp > 0 || gold != 0 {
		fmt.Fprintf(out, "  +%d XP, %+d gold\n", xp, gold)
	}
	if after.Character.Level > before.Character.Level {
		fmt.Fprintf(out, "  Level up! You are now level %d.\n", after.Character.Level)
	}
	if n := after.Stats.TotalQuestsCompleted - before.Stats.TotalQuestsCompleted; n > 0 {
		fmt.Fprintf(out, "  %d quest(s) completed.\n", n)
	}
	if n := after.Stats.TotalAchievementsUnlocked - before.Stats.TotalAchievementsUnlocked; n > 0 {
		fmt.Fprintf(out, "  %d achievement(s) unlocked.\n", n)
	}
}
