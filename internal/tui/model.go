package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"mailtriage/internal/dashboard"
	"mailtriage/internal/model"
)

type viewState int

const (
	viewDashboard viewState = iota
	viewAnalytics
)

const (
	emailListItemHeight = 3
	minListPaneWidth    = 34
	minDetailPaneWidth  = 40
	snapshotInterval    = time.Second
)

// Model is the terminal front end over the dashboard controller. All
// state transitions flow through Update; the controller owns the data,
// the model owns presentation.
type Model struct {
	controller *dashboard.Controller

	emails    []model.Email
	analytics *model.AnalyticsSummary

	selectedIdx     int
	viewportTopLine int
	currentView     viewState
	editingDraft    bool
	confirmingClear bool
	draftBuffer     string

	width, height int
	statusBarText string
	statusIsError bool
	statusIsTemp  bool
}

func NewModel(controller *dashboard.Controller) Model {
	return Model{
		controller:    controller,
		statusBarText: "Connecting...",
	}
}

func (m Model) Init() tea.Cmd {
	return snapshotTickCmd(snapshotInterval)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureSelectedVisible()

	case tea.KeyMsg:
		return m.handleKey(msg)

	case snapshotTickMsg:
		m.pullSnapshot()
		if !m.statusIsTemp {
			m.setStandardStatus()
		}
		cmds = append(cmds, snapshotTickCmd(snapshotInterval))

	case selectionDoneMsg:
		m.draftBuffer = m.controller.Draft()

	case actionDoneMsg:
		m.pullSnapshot()
		if msg.Outcome.Err != nil {
			m.updateStatusError(fmt.Sprintf("%s failed: %v", msg.Action, msg.Outcome.Err))
		} else {
			text := msg.Outcome.Message
			if text == "" {
				text = msg.Action + " done"
			}
			if msg.Outcome.Engine != "" {
				text += " [" + msg.Outcome.Engine + "]"
			}
			m.showTemporaryStatus(text, 4*time.Second, &cmds)
		}
		m.draftBuffer = m.controller.Draft()

	case clearTempStatusMsg:
		if m.statusIsTemp {
			m.statusIsTemp = false
			m.setStandardStatus()
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingDraft {
		return m.handleEditorKey(msg)
	}

	if m.confirmingClear {
		m.confirmingClear = false
		if msg.String() == "x" {
			m.selectedIdx = 0
			m.viewportTopLine = 0
			m.draftBuffer = ""
			return m, actionCmd("clear database", m.controller.ClearAll)
		}
		m.setStandardStatus()
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c", "q":
		m.controller.Stop()
		return m, tea.Quit

	case "tab":
		if m.currentView == viewDashboard {
			m.currentView = viewAnalytics
		} else {
			m.currentView = viewDashboard
		}
		m.setStandardStatus()

	case "up", "k":
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.ensureSelectedVisible()
		}

	case "down", "j":
		if m.selectedIdx < len(m.emails)-1 {
			m.selectedIdx++
			m.ensureSelectedVisible()
		}

	case "enter":
		if email, ok := m.emailAt(m.selectedIdx); ok {
			return m, selectCmd(m.controller, email)
		}

	case "esc":
		m.controller.ClearSelection()
		m.draftBuffer = ""
		m.setStandardStatus()

	case "e":
		if m.controller.Selected() != nil {
			m.editingDraft = true
			m.draftBuffer = m.controller.Draft()
			m.updateStatusBar("Editing draft. [Esc]:Done")
		}

	case "g":
		if m.controller.Selected() != nil {
			return m, actionCmd("generate", m.controller.GenerateResponse)
		}

	case "s":
		if m.controller.Selected() != nil {
			return m, actionCmd("send", m.controller.Send)
		}

	case "w":
		if m.controller.Selected() != nil {
			return m, actionCmd("save draft", m.controller.SaveDraft)
		}

	case "r":
		if email, ok := m.emailAt(m.selectedIdx); ok {
			id := email.ID
			return m, actionCmd("resolve", func(ctx context.Context) dashboard.Outcome {
				return m.controller.Resolve(ctx, id)
			})
		}

	case "l":
		return m, actionCmd("load samples", m.controller.LoadSamples)

	case "u":
		if m.controller.StagedUpload() == "" {
			m.updateStatusError("No CSV staged. Pass --csv on startup.")
			return m, nil
		}
		return m, actionCmd("upload", m.controller.UploadCSV)

	case "x":
		m.confirmingClear = true
		m.updateStatusError("Clear ALL emails and responses? Press [X] again to confirm, any other key to cancel.")
	}

	return m, nil
}

// handleEditorKey applies keystrokes to the local draft only. Nothing
// reaches the server until save or send.
func (m Model) handleEditorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editingDraft = false
		m.controller.EditDraft(m.draftBuffer)
		m.setStandardStatus()

	case tea.KeyCtrlC:
		m.controller.Stop()
		return m, tea.Quit

	case tea.KeyEnter:
		m.draftBuffer += "\n"

	case tea.KeyBackspace:
		if len(m.draftBuffer) > 0 {
			runes := []rune(m.draftBuffer)
			m.draftBuffer = string(runes[:len(runes)-1])
		}

	case tea.KeySpace:
		m.draftBuffer += " "

	case tea.KeyRunes:
		m.draftBuffer += string(msg.Runes)
	}

	return m, nil
}

func (m *Model) pullSnapshot() {
	m.emails = m.controller.Emails()
	m.analytics = m.controller.Analytics()
	if m.selectedIdx >= len(m.emails) && len(m.emails) > 0 {
		m.selectedIdx = len(m.emails) - 1
	}
	if len(m.emails) == 0 {
		m.selectedIdx = 0
		m.viewportTopLine = 0
	}
	m.ensureSelectedVisible()
}

func (m Model) emailAt(idx int) (model.Email, bool) {
	if idx < 0 || idx >= len(m.emails) {
		return model.Email{}, false
	}
	return m.emails[idx], true
}

func (m Model) visibleListHeight() int {
	statusBarHeight := 1
	titleHeight := 2
	h := m.height - statusBarHeight - titleHeight
	if h < 0 {
		h = 0
	}
	return h
}

func (m Model) itemsThatFit() int {
	return m.visibleListHeight() / emailListItemHeight
}

func (m *Model) ensureSelectedVisible() {
	if len(m.emails) == 0 {
		m.viewportTopLine = 0
		return
	}
	fit := m.itemsThatFit()
	if fit <= 0 {
		m.viewportTopLine = m.selectedIdx
		return
	}
	if m.selectedIdx < m.viewportTopLine {
		m.viewportTopLine = m.selectedIdx
	} else if m.selectedIdx >= m.viewportTopLine+fit {
		m.viewportTopLine = m.selectedIdx - fit + 1
	}
	if m.viewportTopLine < 0 {
		m.viewportTopLine = 0
	}
	maxTop := len(m.emails) - fit
	if maxTop < 0 {
		maxTop = 0
	}
	if m.viewportTopLine > maxTop {
		m.viewportTopLine = maxTop
	}
}

func (m *Model) showTemporaryStatus(text string, duration time.Duration, cmds *[]tea.Cmd) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = true
	*cmds = append(*cmds, tea.Tick(duration, func(t time.Time) tea.Msg {
		return clearTempStatusMsg{}
	}))
}

func (m *Model) updateStatusBar(text string) {
	m.statusBarText = text
	m.statusIsError = false
	m.statusIsTemp = false
}

func (m *Model) updateStatusError(text string) {
	m.statusBarText = text
	m.statusIsError = true
	m.statusIsTemp = false
}

func (m *Model) setStandardStatus() {
	if m.statusIsTemp {
		return
	}

	busy := ""
	if m.controller.BulkBusy() {
		busy = " | busy..."
	} else if m.controller.GenerateBusy() {
		busy = " | generating..."
	}

	statusMsg := fmt.Sprintf(" %s | %d emails%s ",
		time.Now().Format("15:04:05"), len(m.emails), busy)

	keyHints := "[Q]:Quit"
	switch m.currentView {
	case viewDashboard:
		keyHints += " | [jk]:Nav [Enter]:Open [G]:Generate [E]:Edit [S]:Send [W]:Save [R]:Resolve [L]:Load [X]:Clear [Tab]:Analytics"
	case viewAnalytics:
		keyHints += " | [Tab]:Dashboard"
	}
	m.updateStatusBar(statusMsg + "| " + keyHints)
}

// truncate shortens a string to a max length, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	if maxLen < 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
