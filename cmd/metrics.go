package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"talewire/pkg/metrics"
	"talewire/pkg/store"
)

var (
	metricsSlot    int
	metricsName    string
	recordModel    string
	recordOK       bool
	recordDuration int64
	recordStage    string
	recordSession  string
	recordError    string
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Inspect or append slot metrics",
}

var metricsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries of a named metrics document",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		// Best-effort read: a corrupt metrics document lists as empty.
		doc := driver.Store().ReadMetrics(metricsSlot, metricsName)

		fmt.Println(inboxHeader.Render(fmt.Sprintf(
			"slot %d metrics %q: %d entries", metricsSlot, metricsName, len(doc.Entries),
		)))
		for _, entry := range doc.Entries {
			outcome := "ok"
			if !entry.OK {
				outcome = "failed"
			}
			line := fmt.Sprintf("  %s  %s  %s  %dms  stage=%s session=%s",
				entry.At.Local().Format("15:04:05"), entry.Model, outcome,
				entry.DurationMS, entry.Stage, entry.Session)
			fmt.Println(line)
			if entry.Error != "" {
				fmt.Println(inboxDim.Render("    " + entry.Error))
			}
		}
	},
}

var metricsRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Append one timed-operation entry",
	Long:  "Lets an external stage record the outcome of one timed call (for example one AI-stage invocation) against a named metrics document.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		recorder := metrics.NewRecorder(driver.Store(), slog.Default())
		entry := store.MetricEntry{
			Model:      recordModel,
			OK:         recordOK,
			DurationMS: recordDuration,
			Stage:      recordStage,
			Session:    recordSession,
			Error:      recordError,
		}

		if err := recorder.Record(metricsSlot, metricsName, entry); err != nil {
			fmt.Printf("record failed: %v\n", err)
			return
		}
		fmt.Printf("recorded entry in slot %d metrics %q\n", metricsSlot, metricsName)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.AddCommand(metricsListCmd)
	metricsCmd.AddCommand(metricsRecordCmd)

	metricsCmd.PersistentFlags().IntVar(&metricsSlot, "slot", 1, "data slot to use")
	metricsCmd.PersistentFlags().StringVar(&metricsName, "name", "ai", "metrics document name")

	metricsRecordCmd.Flags().StringVar(&recordModel, "model", "", "model or operation identity")
	metricsRecordCmd.Flags().BoolVar(&recordOK, "ok", true, "whether the timed call succeeded")
	metricsRecordCmd.Flags().Int64Var(&recordDuration, "duration-ms", 0, "call duration in milliseconds")
	metricsRecordCmd.Flags().StringVar(&recordStage, "stage", "", "pipeline stage that made the call")
	metricsRecordCmd.Flags().StringVar(&recordSession, "session", "", "session identity")
	metricsRecordCmd.Flags().StringVar(&recordError, "error", "", "error text for failed calls")
}
