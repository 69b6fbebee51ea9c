// Package cli implements the VitalQuest command-line interface using Cobra.
// Every command opens the local daemon state, runs one engine operation and
// prints the result.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vitalquest",
	Short: "VitalQuest — turn daily health habits into an RPG",
	Long: `VitalQuest is a local-first gamification engine for fitness tracking.
Log steps, workouts, meditation, water, meals and sleep; earn XP and gold,
level up, complete quests, unlock achievements and keep streaks alive.

Run 'vitalquest init' once, then 'vitalquest serve' for the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
