package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect LLM request logs",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent LLM requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, _, log, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		defer log.Sync()

		rows, err := st.LLMLogRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return err
		}
		if len(rows) == 0 {
			fmt.Println("No LLM requests recorded.")
			return nil
		}

		fmt.Printf("%-19s  %-16s  %-28s  %6s  %6s  %7s  %s\n",
			"Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK")
		fmt.Println(strings.Repeat("─", 96))
		for _, row := range rows {
			ok := "✓"
			if !row.Success {
				ok = "✗"
			}
			fmt.Printf("%-19s  %-16s  %-28s  %6d  %6d  %7d  %s\n",
				row.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				row.Purpose, truncate(row.Model, 28),
				row.InputTokens, row.OutputTokens, row.LatencyMs, ok)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated LLM token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, log, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		defer log.Sync()

		usage, err := st.LLMLogRepo().UsageByPurpose(cmd.Context())
		if err != nil {
			return err
		}
		if len(usage) == 0 {
			fmt.Println("No LLM usage recorded yet.")
			return nil
		}

		fmt.Printf("%-16s  %6s  %10s  %10s  %8s\n",
			"Purpose", "Calls", "Input", "Output", "Avg Ms")
		fmt.Println(strings.Repeat("─", 60))
		var calls, in, out int64
		for _, u := range usage {
			fmt.Printf("%-16s  %6d  %10d  %10d  %8.0f\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		fmt.Println(strings.Repeat("─", 60))
		fmt.Printf("%-16s  %6d  %10d  %10d\n", "TOTAL", calls, in, out)
		return nil
	},
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of rows to show")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
