package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/fretsheet/internal/models"
	"github.com/desertthunder/fretsheet/internal/repositories"
)

// Model represents the practice session state.
type Model struct {
	ctx       context.Context
	routines  *repositories.RoutineRepository
	routineID int

	details   models.RoutineDetails
	entryList list.Model
	listReady bool
	busy      bool

	width  int
	height int
	err    error
	help   help.Model
	keys   keyMap
}

// NewModel creates a practice session over the given routine.
func NewModel(ctx context.Context, routines *repositories.RoutineRepository, routineID int) *Model {
	return &Model{
		ctx:       ctx,
		routines:  routines,
		routineID: routineID,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init fetches the routine's entries from the sheet.
func (m *Model) Init() tea.Cmd {
	return m.fetchDetails()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.entryList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case detailsFetchedMsg:
		m.busy = false
		if msg.err != nil {
			if !m.listReady {
				m.err = msg.err
				return m, tea.Quit
			}
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.details = msg.details

		items := make([]list.Item, len(msg.details.Entries))
		for i, entry := range msg.details.Entries {
			items[i] = entryItem{entry: entry}
		}
		if !m.listReady {
			m.entryList = list.New(items, list.NewDefaultDelegate(), 0, 0)
			m.entryList.Title = fmt.Sprintf("Practicing '%s'", msg.details.Routine.Name)
			m.entryList.SetShowHelp(false)
			m.entryList.SetSize(m.width-4, m.height-8)
			m.listReady = true
		} else {
			m.entryList.SetItems(items)
		}
		return m, nil

	case entryToggledMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		return m, m.fetchDetails()

	case progressResetMsg:
		if msg.err != nil {
			m.busy = false
			m.err = msg.err
			return m, nil
		}
		return m, m.fetchDetails()
	}

	return m.updateList(msg)
}

// View renders the practice session.
func (m *Model) View() string {
	if m.err != nil && !m.listReady {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}
	if !m.listReady {
		return styles.help.Render("Loading routine...")
	}

	var status string
	done, total := m.progress()
	switch {
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	case total > 0 && done == total:
		status = styles.ok.Render("✓ Routine complete!")
	default:
		status = styles.warn.Render(fmt.Sprintf("%d/%d complete", done, total))
	}

	helpKeys := []key.Binding{m.keys.toggle, m.keys.reset, m.keys.refresh, m.keys.quit}
	helpView := m.help.ShortHelpView(helpKeys)

	return fmt.Sprintf("%s\n%s\n\n%s", m.entryList.View(), status, helpView)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.toggle):
		if m.busy || !m.listReady {
			return m, nil
		}
		selected := m.entryList.SelectedItem()
		if selected == nil {
			return m, nil
		}
		if item, ok := selected.(entryItem); ok {
			m.busy = true
			entry := item.entry.RoutineItem
			return m, m.toggleEntry(entry.ID, !entry.Completed)
		}
		return m, nil

	case key.Matches(msg, m.keys.reset):
		if m.busy || !m.listReady {
			return m, nil
		}
		m.busy = true
		return m, m.resetProgress()

	case key.Matches(msg, m.keys.refresh):
		if m.busy {
			return m, nil
		}
		return m, m.fetchDetails()
	}

	return m.updateList(msg)
}

func (m *Model) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.listReady {
		return m, nil
	}
	var cmd tea.Cmd
	m.entryList, cmd = m.entryList.Update(msg)
	return m, cmd
}

// progress counts completed entries against the total.
func (m *Model) progress() (done, total int) {
	for _, entry := range m.details.Entries {
		total++
		if entry.RoutineItem.Completed {
			done++
		}
	}
	return done, total
}

func (m *Model) fetchDetails() tea.Cmd {
	return func() tea.Msg {
		details, err := m.routines.Details(m.ctx, m.routineID)
		return detailsFetchedMsg{details: details, err: err}
	}
}

func (m *Model) toggleEntry(entryID int, completed bool) tea.Cmd {
	return func() tea.Msg {
		err := m.routines.SetCompleted(m.ctx, m.routineID, entryID, completed)
		return entryToggledMsg{entryID: entryID, completed: completed, err: err}
	}
}

func (m *Model) resetProgress() tea.Cmd {
	return func() tea.Msg {
		return progressResetMsg{err: m.routines.ResetProgress(m.ctx, m.routineID)}
	}
}
