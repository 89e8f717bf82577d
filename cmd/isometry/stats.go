package isometry

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/isometry-app/isometry"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print node statistics for the knowledge graph",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := isometry.Open(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	stats, err := client.Nodes().GetNodeStatistics(context.Background())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(stats)
}
