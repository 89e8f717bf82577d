package isometry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/isometry-app/isometry"
	"github.com/isometry-app/isometry/pkg/latch"
	"github.com/isometry-app/isometry/pkg/types"
)

var queryCmd = &cobra.Command{
	Use:   "query [expression]",
	Short: "Run a LATCH filter expression against the knowledge graph",
	Long: `Run a LATCH filter expression and print the matching nodes as JSON.

Examples:
  isometry query "priority:>=8 AND folder:'Work'"
  isometry query --preset overdue
  isometry query "tag:contains(urgent)" --limit 20`,
	RunE: runQuery,
}

var (
	queryPreset  string
	queryOffset  int
	queryLimit   int
	queryExplain bool
)

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryPreset, "preset", "", "Run a built-in preset instead of an expression")
	queryCmd.Flags().IntVar(&queryOffset, "offset", 0, "Number of matches to skip")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Maximum number of matches (0 = all)")
	queryCmd.Flags().BoolVar(&queryExplain, "explain", false, "Print the generated SQL fragment instead of running it")
}

func runQuery(cmd *cobra.Command, args []string) error {
	expression := strings.Join(args, " ")
	if expression == "" && queryPreset == "" {
		return fmt.Errorf("an expression argument or --preset is required")
	}

	if queryExplain {
		if expression == "" {
			var err error
			expression, err = latch.PresetExpression(queryPreset, time.Now())
			if err != nil {
				return err
			}
		}
		filter, err := latch.Compile(expression)
		if err != nil {
			return err
		}
		fmt.Println(filter.WhereClause)
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	client, err := isometry.Open(cfg)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := context.Background()
	var nodes []*types.Node
	if expression != "" {
		nodes, err = client.Query(ctx, expression, queryOffset, queryLimit)
	} else {
		nodes, err = client.QueryPreset(ctx, queryPreset, queryOffset, queryLimit)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}
