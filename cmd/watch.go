package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"talewire/pkg/ui/watch"
)

var watchSlot int

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of one data slot",
	Long:  "Renders the slot status line, log tail, and inbox depth in the terminal, re-reading the documents on a fixed interval.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, cfg, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		refresh := time.Duration(cfg.Watch.RefreshSeconds) * time.Second
		if err := watch.Run(driver.Store(), watchSlot, refresh); err != nil {
			fmt.Printf("watch failed: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().IntVar(&watchSlot, "slot", 1, "data slot to watch")
}
