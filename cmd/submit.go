package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"talewire/pkg/message"
)

var (
	submitSlot        int
	submitSender      string
	submitContent     string
	submitType        string
	submitStage       string
	submitStatus      string
	submitCorrelation string
	submitReplyTo     string
	submitPriority    int
	submitFlags       []string
)

var submitForwarded = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
var submitLogged = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Route one envelope through the pipeline",
	Long: "Builds an envelope from flags, routes it, appends the log entry, " +
		"and forwards the outbox copy to the slot inbox when the router decides to.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = args

		driver, _, err := newDriver()
		if err != nil {
			fmt.Printf("failed to start: %v\n", err)
			return
		}

		env := message.New(message.Input{
			Sender:        submitSender,
			Content:       submitContent,
			Type:          submitType,
			Stage:         submitStage,
			Slot:          submitSlot,
			CorrelationID: submitCorrelation,
			ReplyTo:       submitReplyTo,
			Priority:      submitPriority,
			Status:        message.Status(submitStatus),
			Flags:         submitFlags,
		})

		decision, err := driver.Submit(submitSlot, env)
		if err != nil {
			fmt.Printf("submit failed: %v\n", err)
			return
		}

		fmt.Println(submitLogged.Render(fmt.Sprintf(
			"logged %s (sender %s, stage %q, status %q)",
			decision.Log.ID, decision.Log.Sender, decision.Log.Stage, decision.Log.Status,
		)))
		if decision.Outbox != nil {
			fmt.Println(submitForwarded.Render(fmt.Sprintf(
				"forwarded to inbox (stage %q, status %q)",
				decision.Outbox.Stage, decision.Outbox.Status,
			)))
			return
		}
		fmt.Println(submitLogged.Render("no forward: log-only hop"))
	},
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().IntVar(&submitSlot, "slot", 1, "data slot to route within")
	submitCmd.Flags().StringVar(&submitSender, "sender", "", "envelope sender identity")
	submitCmd.Flags().StringVar(&submitContent, "content", "", "opaque payload")
	submitCmd.Flags().StringVar(&submitType, "type", "", "optional message kind tag")
	submitCmd.Flags().StringVar(&submitStage, "stage", "", "optional pipeline stage label")
	submitCmd.Flags().StringVar(&submitStatus, "status", "", "current envelope status")
	submitCmd.Flags().StringVar(&submitCorrelation, "correlation", "", "pipeline-run correlation id")
	submitCmd.Flags().StringVar(&submitReplyTo, "reply-to", "", "id of the envelope this answers")
	submitCmd.Flags().IntVar(&submitPriority, "priority", 0, "advisory priority, higher is more urgent")
	submitCmd.Flags().StringSliceVar(&submitFlags, "flag", nil, "string markers, repeatable")

	_ = submitCmd.MarkFlagRequired("sender")
	_ = submitCmd.MarkFlagRequired("content")
}
