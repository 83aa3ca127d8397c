package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"talewire/pkg/message"
	"talewire/pkg/store"
)

type snapshot struct {
	statusLine string
	updatedAt  time.Time
	entries    []message.Envelope
	inboxCount int
	err        error
}

type snapshotMsg snapshot

type tickMsg struct{}

type model struct {
	store   *store.Store
	slot    int
	refresh time.Duration

	theme     theme
	spinner   spinner.Model
	viewport  viewport.Model
	snap      snapshot
	width     int
	height    int
	isReady   bool
	followLog bool
	loaded    bool
}

func newModel(st *store.Store, slot int, refresh time.Duration) *model {
	spin := spinner.New()
	spin.Spinner = spinner.Points
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))

	vp := viewport.New(80, 16)

	return &model{
		store:     st,
		slot:      slot,
		refresh:   refresh,
		theme:     defaultTheme(),
		spinner:   spin,
		viewport:  vp,
		width:     100,
		height:    28,
		followLog: true,
	}
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, snapshotCmd(m.store, m.slot), tickCmd(m.refresh))
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		m.resizeComponents()
		m.refreshViewport()
		m.isReady = true
		return m, nil

	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "esc", "q":
			return m, tea.Quit
		case "r":
			return m, snapshotCmd(m.store, m.slot)
		case "pgup", "ctrl+b":
			m.viewport.PageUp()
			m.followLog = false
		case "pgdown", "ctrl+f":
			m.viewport.PageDown()
			if m.viewport.AtBottom() {
				m.followLog = true
			}
		case "home":
			m.viewport.GotoTop()
			m.followLog = false
		case "end":
			m.viewport.GotoBottom()
			m.followLog = true
		}
		return m, nil

	case tickMsg:
		return m, tea.Batch(snapshotCmd(m.store, m.slot), tickCmd(m.refresh))

	case snapshotMsg:
		m.snap = snapshot(typed)
		m.loaded = true
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}

	return m, nil
}

func (m *model) View() string {
	if !m.isReady {
		m.resizeComponents()
		m.refreshViewport()
	}

	header := m.theme.header.Width(m.width - 2).Render(fmt.Sprintf("🗞 Talewire · slot %d", m.slot))
	meta := m.theme.headerMeta.Render(fmt.Sprintf(
		"root:%s · log:%d · inbox:%d",
		m.store.Root(), len(m.snap.entries), m.snap.inboxCount,
	))
	divider := m.theme.divider.Width(m.width - 2).Render(strings.Repeat("═", max(8, m.width-2)))

	statusLine := m.theme.statusLine.Render("⋯ waiting for first snapshot")
	if m.loaded {
		line := m.snap.statusLine
		if line == "" {
			line = "(no status line yet)"
		}
		statusLine = m.theme.statusLine.Render(fmt.Sprintf("» %s", line))
		if !m.snap.updatedAt.IsZero() {
			statusLine += " " + m.theme.hint.Render(m.snap.updatedAt.Local().Format("15:04:05"))
		}
	}

	hint := m.theme.hint.Render(fmt.Sprintf(
		"%s refresh %s · r reload · PgUp/PgDn scroll · End follow · q quit",
		m.spinner.View(), m.refresh,
	))

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		meta,
		divider,
		statusLine,
		m.theme.viewport.Width(m.width-2).Render(m.viewport.View()),
		hint,
	)
}

func (m *model) resizeComponents() {
	w := max(50, m.width-6)
	h := max(8, m.height-9)
	m.viewport.Width = w
	m.viewport.Height = h
}

func (m *model) refreshViewport() {
	previousOffset := m.viewport.YOffset

	var sections []string
	if m.snap.err != nil {
		sections = append(sections, lipgloss.JoinVertical(lipgloss.Left,
			m.theme.errTitle.Render("▌SLOT ERROR"),
			m.theme.errBox.Width(m.viewport.Width).Render(m.snap.err.Error()),
		))
	}
	for _, env := range m.snap.entries {
		sections = append(sections, m.renderEntry(env))
	}
	if len(sections) == 0 {
		sections = append(sections, m.theme.hint.Render("log is empty"))
	}

	m.viewport.SetContent(strings.Join(sections, "\n\n"))
	if m.followLog {
		m.viewport.GotoBottom()
		return
	}

	maxOffset := max(0, m.viewport.TotalLineCount()-m.viewport.Height)
	m.viewport.SetYOffset(min(previousOffset, maxOffset))
}

func (m *model) renderEntry(env message.Envelope) string {
	label := env.Sender
	if env.Stage != "" {
		label += " → " + env.Stage
	}
	if env.Status != "" {
		label += fmt.Sprintf(" [%s]", env.Status)
	}

	title := m.theme.entryTitle
	switch {
	case env.Status == message.StatusError:
		title = m.theme.errTitle
	case env.Status == message.StatusDone:
		title = m.theme.doneTitle
	}

	body := strings.TrimSpace(env.Content)
	body += "\n" + m.theme.hint.Render(fmt.Sprintf("id %s · %s", env.ID, env.CreatedAt.Local().Format("15:04:05")))

	return lipgloss.JoinVertical(lipgloss.Left,
		title.Render(label),
		m.theme.entryBox.Width(m.viewport.Width).Render(body),
	)
}

func tickCmd(refresh time.Duration) tea.Cmd {
	return tea.Tick(refresh, func(_ time.Time) tea.Msg {
		return tickMsg{}
	})
}

// snapshotCmd re-reads the slot documents. A slot that has not produced
// documents yet renders empty rather than as an error; real schema
// corruption surfaces verbatim so the operator can fix the file.
func snapshotCmd(st *store.Store, slot int) tea.Cmd {
	return func() tea.Msg {
		var snap snapshot

		if status, err := st.ReadStatus(slot); err == nil {
			snap.statusLine = status.Line
			snap.updatedAt = status.UpdatedAt
		} else if !errors.Is(err, fs.ErrNotExist) {
			snap.err = err
		}

		if logDoc, err := st.ReadLog(slot); err == nil {
			snap.entries = logDoc.Messages
		} else if !errors.Is(err, fs.ErrNotExist) && snap.err == nil {
			snap.err = err
		}

		if inbox, err := st.ReadInbox(slot); err == nil {
			snap.inboxCount = len(inbox.Messages)
		} else if !errors.Is(err, fs.ErrNotExist) && snap.err == nil {
			snap.err = err
		}

		return snapshotMsg(snap)
	}
}
