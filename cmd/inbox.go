package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"talewire/pkg/message"
)

var (
	inboxSlot  int
	inboxDrain bool
)

var inboxHeader = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("222"))
var inboxDim = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "List or drain a slot inbox",
	Long:  "Shows the envelopes waiting in a slot inbox (newest first). With --drain, claims them and leaves the inbox empty.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		var envelopes []message.Envelope
		if inboxDrain {
			envelopes, err = driver.Drain(inboxSlot)
		} else {
			envelopes, err = driver.Peek(inboxSlot)
		}
		if err != nil {
			fmt.Printf("inbox read failed: %v\n", err)
			return
		}

		verb := "waiting"
		if inboxDrain {
			verb = "drained"
		}
		fmt.Println(inboxHeader.Render(fmt.Sprintf("slot %d: %d envelope(s) %s", inboxSlot, len(envelopes), verb)))

		for _, env := range envelopes {
			printEnvelope(env)
		}
	},
}

func printEnvelope(env message.Envelope) {
	line := fmt.Sprintf("  %s  %s", env.ID, env.Sender)
	if env.Stage != "" {
		line += " → " + env.Stage
	}
	if env.Status != "" {
		line += fmt.Sprintf(" [%s]", env.Status)
	}
	fmt.Println(line)
	fmt.Println(inboxDim.Render("    " + env.Content))
}

func init() {
	rootCmd.AddCommand(inboxCmd)

	inboxCmd.Flags().IntVar(&inboxSlot, "slot", 1, "data slot to inspect")
	inboxCmd.Flags().BoolVar(&inboxDrain, "drain", false, "claim the messages and empty the inbox")
}
