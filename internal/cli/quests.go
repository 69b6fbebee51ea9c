package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/app/engagement"
	"github.com/vitalquest/vitalquest/internal/daemon"
	"github.com/vitalquest/vitalquest/internal/domain"
)

func init() {
	questsCmd.Flags().BoolVar(&questsDone, "done", false, "List completed quests instead")

	questAddCmd.Flags().StringVar(&questSpec.Description, "description", "", "Quest description")
	questAddCmd.Flags().StringVar(&questCategory, "category", "custom", "fitness, nutrition, mindfulness, sleep, hydration or custom")
	questAddCmd.Flags().StringVar(&questDifficulty, "difficulty", "easy", "easy, medium, hard or epic")
	questAddCmd.Flags().StringVar(&questMetric, "metric", "", "Daily total that drives progress (e.g. steps, water_glasses)")
	questAddCmd.Flags().Float64Var(&questSpec.Target, "target", 1, "Target value")
	questAddCmd.Flags().StringVar(&questDue, "due", "", "Due date YYYY-MM-DD (default: none)")

	questsCmd.AddCommand(questAddCmd, questRmCmd)
	rootCmd.AddCommand(questsCmd, completeCmd)
}

var (
	questsDone      bool
	questSpec       engagement.CustomQuestSpec
	questCategory   string
	questDifficulty string
	questMetric     string
	questDue        string
)

var questsCmd = &cobra.Command{
	Use:     "quests",
	Aliases: []string{"q"},
	Short:   "List active quests",
	RunE:    runQuests,
}

func runQuests(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	quests := d.Engine.ActiveQuests()
	if questsDone {
		quests = d.Engine.CompletedQuests()
	}
	if len(quests) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No quests. Run 'vitalquest init' or wait for the next sweep.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tPROGRESS\tREWARD\tDUE")
	for _, q := range quests {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s / %s\t%d XP, %d gold\t%s\n",
			q.ID, q.Type, q.Title,
			num(q.Progress), num(q.Target),
			q.XPReward, q.GoldReward,
			dateOrDash(q.DueDate),
		)
	}
	return w.Flush()
}

var questAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a custom quest",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuestAdd,
}

func runQuestAdd(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	spec := questSpec
	spec.Title = args[0]
	spec.Category = domain.QuestCategory(questCategory)
	spec.Difficulty = domain.QuestDifficulty(questDifficulty)
	spec.Metric = domain.ProgressMetric(questMetric)
	if questDue != "" {
		due, err := time.ParseInLocation(time.DateOnly, questDue, d.Engine.Rulebook().Location())
		if err != nil {
			return fmt.Errorf("invalid --due: %w", err)
		}
		spec.DueDate = due.AddDate(0, 0, 1)
	}

	q, err := d.Engine.CreateCustomQuest(spec)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s: %q worth %d XP and %d gold.\n", q.ID, q.Title, q.XPReward, q.GoldReward)
	return nil
}

var questRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Abandon an active quest",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		if err := d.Engine.DeleteQuest(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s.\n", args[0])
		return nil
	},
}

var completeCmd = &cobra.Command{
	Use:   "complete <quest-id>",
	Short: "Mark a quest as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := daemon.New()
		if err != nil {
			return err
		}
		defer d.Close()

		before, err := d.Engine.User()
		if err != nil {
			return err
		}
		if err := d.Engine.CompleteQuest(args[0]); err != nil {
			return err
		}
		after, _ := d.Engine.User()
		fmt.Fprintf(cmd.OutOrStdout(), "Quest %s complete.\n", args[0])
		printGains(cmd, before, after)
		return nil
	},
}
