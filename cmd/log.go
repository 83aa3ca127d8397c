package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	logSlot int
	logTail int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the tail of a slot log",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		if err := driver.Store().EnsureLog(logSlot); err != nil {
			fmt.Printf("log read failed: %v\n", err)
			return
		}
		doc, err := driver.Store().ReadLog(logSlot)
		if err != nil {
			fmt.Printf("log read failed: %v\n", err)
			return
		}

		entries := doc.Messages
		if logTail > 0 && len(entries) > logTail {
			entries = entries[len(entries)-logTail:]
		}

		fmt.Println(inboxHeader.Render(fmt.Sprintf("slot %d: %d of %d log entries", logSlot, len(entries), len(doc.Messages))))
		for _, env := range entries {
			printEnvelope(env)
		}
	},
}

func init() {
	rootCmd.AddCommand(logCmd)

	logCmd.Flags().IntVar(&logSlot, "slot", 1, "data slot to inspect")
	logCmd.Flags().IntVar(&logTail, "tail", 20, "entries to show from the end, 0 for all")
}
