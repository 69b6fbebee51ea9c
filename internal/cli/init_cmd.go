package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
	"github.com/vitalquest/vitalquest/internal/domain"
)

func init() {
	initCmd.Flags().BoolVar(&initReset, "reset", false, "Wipe all progress and start over")
	rootCmd.AddCommand(initCmd)
}

var initReset bool

var initCmd = &cobra.Command{
	Use:   "init [username]",
	Short: "Create your character",
	Long: `Create the player profile with the achievement catalog and the first
daily and weekly quests. The name defaults to engine.username in config.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	out := cmd.OutOrStdout()
	if initReset {
		if err := d.Engine.Reset(); err != nil {
			return err
		}
		fmt.Fprintln(out, "Progress reset. Back to level 1.")
		return nil
	}

	name := d.Config.Engine.Username
	if len(args) == 1 {
		name = args[0]
	}
	if err := d.Engine.Initialize(name); err != nil {
		if errors.Is(err, domain.ErrUserExists) {
			u, _ := d.Engine.User()
			fmt.Fprintf(out, "%s already exists (level %d). Use --reset to start over.\n", u.Username, u.Character.Level)
			return nil
		}
		return err
	}

	u, _ := d.Engine.User()
	fmt.Fprintf(out, "Welcome, %s! %d quests are waiting. Run 'vitalquest quests' to see them.\n",
		u.Username, len(d.Engine.ActiveQuests()))
	return nil
}
