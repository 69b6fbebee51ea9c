package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/vitalquest/vitalquest/internal/daemon"
)

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to listen on (overrides config)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVar(&serveMetrics, "metrics", false, "Expose Prometheus /metrics (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

var (
	serveHost    string
	servePort    int
	serveMetrics bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the VitalQuest API server",
	Long: `Start the HTTP API at localhost:8787 together with the maintenance
sweeper that expires missed quests and streaks at day boundaries.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	d, err := daemon.New()
	if err != nil {
		return err
	}
	defer d.Close()

	// Override config from flags
	if serveHost != "" {
		d.Config.API.Host = serveHost
	}
	if servePort > 0 {
		d.Config.API.Port = servePort
	}
	if serveMetrics {
		d.Config.Telemetry.Prometheus = true
		d.Server.EnableMetrics()
	}
	if rootCmd.Version != "" {
		d.Server.SetVersion(rootCmd.Version)
	}

	return d.Serve(context.Background())
}
