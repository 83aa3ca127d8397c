package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/cobra"
)

var statusSlot int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the slot status line",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		doc, err := driver.Store().ReadStatus(statusSlot)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Printf("slot %d has no status document yet\n", statusSlot)
			return
		}
		if err != nil {
			// Schema errors print verbatim so the operator can repair the
			// document by hand.
			fmt.Printf("status read failed: %v\n", err)
			return
		}

		line := doc.Line
		if line == "" {
			line = "(empty)"
		}
		fmt.Println(inboxHeader.Render(fmt.Sprintf("slot %d: %s", statusSlot, line)))
		if !doc.UpdatedAt.IsZero() {
			fmt.Println(inboxDim.Render("  updated " + doc.UpdatedAt.Local().String()))
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().IntVar(&statusSlot, "slot", 1, "data slot to inspect")
}
