package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file.json|->",
	Short: "Import activities synced from a health platform",
	Long: `Import activity records exported by a health platform. The file may be
a JSON array, an {"activities": [...]} object or JSON Lines. Records whose
id was already imported are skipped, so re-running an import is safe.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	recs, err := readActivities(args[0], cmd.InOrStdin())
	if err != nil {
		return err
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
	n, err := d.Engine.ImportActivities(recs)
	if err != nil {
		return err
	}
	after, _ := d.Engine.User()

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d records (%d skipped).\n", n, len(recs), len(recs)-n)
	printGains(cmd, before, after)
	return nil
}
