package pipeline

import (
	"testing"

	"github.com/stretchr/testify/require"

	"talewire/pkg/message"
	"talewire/pkg/router"
	"talewire/pkg/store"
)

func newTestDriver(t *testing.T) (*Driver, *store.Store) {
	t.Helper()

	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	return NewDriver(st, router.New(nil), nil), st
}

func TestSubmitRejectsInvalidEnvelope(t *testing.T) {
	driver, _ := newTestDriver(t)

	_, err := driver.Submit(1, message.Envelope{ID: "x", Sender: "j"})
	require.Error(t, err, "envelope without content must be rejected at the boundary")
}

func TestSubmitRejectsNonPositiveSlot(t *testing.T) {
	driver, _ := newTestDriver(t)

	env := message.New(message.Input{Sender: "j", Content: "hello"})
	for _, slot := range []int{0, -1} {
		_, err := driver.Submit(slot, env)
		require.Error(t, err, "slot %d must be rejected, slots are numbered from 1", slot)
	}
}

func TestSubmitLogOnlyHopBootstrapsInbox(t *testing.T) {
	driver, st := newTestDriver(t)

	// A hop the router does not forward must still leave a readable,
	// empty inbox behind.
	env := message.New(message.Input{Sender: "renderer", Stage: "rendered_scene", Content: "fin"})
	decision, err := driver.Submit(1, env)
	require.NoError(t, err)
	require.False(t, decision.Forwarded())

	inbox, err := st.ReadInbox(1)
	require.NoError(t, err)
	require.Empty(t, inbox.Messages)
}

func TestSubmitForwardedHop(t *testing.T) {
	driver, st := newTestDriver(t)

	env := message.New(message.Input{Sender: "j", Type: "user_input", Content: "look around"})
	decision, err := driver.Submit(1, env)
	require.NoError(t, err)
	require.True(t, decision.Forwarded())

	logDoc, err := st.ReadLog(1)
	require.NoError(t, err)
	require.Len(t, logDoc.Messages, 1)
	require.Equal(t, message.StatusSent, logDoc.Messages[0].Status)

	inbox, err := st.ReadInbox(1)
	require.NoError(t, err)
	require.Len(t, inbox.Messages, 1)
	require.Equal(t, "user_input", inbox.Messages[0].Stage)
	require.Equal(t, message.StatusSent, inbox.Messages[0].Status)

	status, err := st.ReadStatus(1)
	require.NoError(t, err)
	require.Contains(t, status.Line, "forwarded")
}

func TestSubmitLogOnlyHop(t *testing.T) {
	driver, st := newTestDriver(t)

	env := message.New(message.Input{Sender: "data_broker", Content: "sync report", Status: message.StatusError})
	decision, err := driver.Submit(1, env)
	require.NoError(t, err)
	require.False(t, decision.Forwarded())

	logDoc, err := st.ReadLog(1)
	require.NoError(t, err)
	require.Len(t, logDoc.Messages, 1)

	inbox, err := st.ReadInbox(1)
	require.NoError(t, err)
	require.Empty(t, inbox.Messages, "log-only hops must not touch the inbox")

	status, err := st.ReadStatus(1)
	require.NoError(t, err)
	require.Contains(t, status.Line, "logged")
}

func TestSubmitDefaultsEnvelopeSlot(t *testing.T) {
	driver, st := newTestDriver(t)

	env := message.New(message.Input{Sender: "user", Content: "open door"})
	_, err := driver.Submit(4, env)
	require.NoError(t, err)

	logDoc, err := st.ReadLog(4)
	require.NoError(t, err)
	require.Equal(t, 4, logDoc.Messages[0].Slot)
}

func TestDrainClaimsAndEmpties(t *testing.T) {
	driver, st := newTestDriver(t)

	for _, content := range []string{"first", "second"} {
		env := message.New(message.Input{Sender: "j", Content: content})
		_, err := driver.Submit(1, env)
		require.NoError(t, err)
	}

	claimed, err := driver.Drain(1)
	require.NoError(t, err)
	require.Len(t, claimed, 2)
	require.Equal(t, "second", claimed[0].Content, "inbox is newest-first")

	inbox, err := st.ReadInbox(1)
	require.NoError(t, err)
	require.Empty(t, inbox.Messages)

	again, err := driver.Drain(1)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestPeekDoesNotConsume(t *testing.T) {
	driver, _ := newTestDriver(t)

	env := message.New(message.Input{Sender: "j", Content: "peek me"})
	_, err := driver.Submit(1, env)
	require.NoError(t, err)

	first, err := driver.Peek(1)
	require.NoError(t, err)
	second, err := driver.Peek(1)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, second, 1)
}

// TestFullPipelineRun walks one logical run through every stage the router
// recognizes, the way the external stages would drive it.
func TestFullPipelineRun(t *testing.T) {
	driver, st := newTestDriver(t)
	const slot = 2

	// Player input enters the pipeline.
	input := message.New(message.Input{Sender: "j", Type: "user_input", Content: "attack the goblin"})
	decision, err := driver.Submit(slot, input)
	require.NoError(t, err)
	require.True(t, decision.Forwarded())
	correlation := decision.Log.CorrelationID

	// The rules stage claims it, adjudicates, and submits its ruling. The
	// resubmission is its own message: the user_input kind tag stays with
	// the player's envelope, otherwise the router would keep classifying
	// every later hop as user input.
	claimed, err := driver.Drain(slot)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	ruling, ok := message.TrySetStatus(claimed[0], message.StatusProcessing)
	require.True(t, ok)
	ruling, ok = message.TrySetStatus(ruling, message.StatusPendingStateApply)
	require.True(t, ok)
	ruling.Sender = "rules_lawyer"
	ruling.Type = ""
	ruling.Stage = "ruling_attack"
	ruling.Content = "goblin takes 4 damage"

	decision, err = driver.Submit(slot, ruling)
	require.NoError(t, err)
	require.True(t, decision.Forwarded())
	require.Equal(t, message.StatusPendingStateApply, decision.Outbox.Status)

	// The state applier claims the ruling and submits the applied result.
	claimed, err = driver.Drain(slot)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	applied, ok := message.TrySetStatus(claimed[0], message.StatusProcessing)
	require.True(t, ok)
	applied.Sender = "state_applier"
	applied.Stage = "applied_damage"
	applied.Content = "goblin hp 3 -> -1"

	decision, err = driver.Submit(slot, applied)
	require.NoError(t, err)
	require.True(t, decision.Forwarded())
	require.Equal(t, message.StatusSent, decision.Outbox.Status)

	// The renderer claims it and submits rendered output: terminal hop.
	claimed, err = driver.Drain(slot)
	require.NoError(t, err)
	require.Len(t, claimed, 1)

	rendered := claimed[0]
	rendered.Sender = "renderer"
	rendered.Stage = "rendered_scene"
	rendered.Content = "The goblin crumples."

	decision, err = driver.Submit(slot, rendered)
	require.NoError(t, err)
	require.False(t, decision.Forwarded())

	// Every hop of the run is in the log, tied by correlation id.
	logDoc, err := st.ReadLog(slot)
	require.NoError(t, err)
	require.Len(t, logDoc.Messages, 4)
	for _, entry := range logDoc.Messages {
		require.Equal(t, correlation, entry.CorrelationID)
	}
}
