package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Phase is one stage of the comparison pipeline
type Phase int

const (
	PhaseLoading Phase = iota
	PhaseAligning
	PhaseMatching
	PhaseDiffing
	PhaseWriting
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "Loading sheets"
	case PhaseAligning:
		return "Aligning columns"
	case PhaseMatching:
		return "Matching rows"
	case PhaseDiffing:
		return "Comparing columns"
	case PhaseWriting:
		return "Writing reports"
	case PhaseComplete:
		return "Complete"
	default:
		return "Unknown"
	}
}

// ProgressEvent reports a pipeline stage transition to the UI
type ProgressEvent struct {
	Phase  Phase
	Detail string
}

type doneMsg struct {
	err error
}

var (
	phaseDoneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	phaseCurrentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true)
	phasePendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
	detailStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#00D9FF"))
)

type progressModel struct {
	spinner  spinner.Model
	progress progress.Model
	phase    Phase
	detail   string
	done     bool
	err      error
	width    int
}

func newProgressModel() progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = phaseCurrentStyle

	return progressModel{
		spinner:  s,
		progress: progress.New(progress.WithDefaultGradient()),
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = msg.Width - 4
		if m.progress.Width > 60 {
			m.progress.Width = 60
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil

	case ProgressEvent:
		m.phase = msg.Phase
		m.detail = msg.Detail
		return m, m.progress.SetPercent(float64(msg.Phase) / float64(PhaseComplete))

	case doneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		pm, cmd := m.progress.Update(msg)
		m.progress = pm.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")

	for p := PhaseLoading; p < PhaseComplete; p++ {
		switch {
		case p < m.phase:
			b.WriteString(phaseDoneStyle.Render("  ✓ " + p.String()))
		case p == m.phase:
			line := fmt.Sprintf("  %s%s", m.spinner.View(), p.String())
			if m.detail != "" {
				line += detailStyle.Render(" (" + m.detail + ")")
			}
			b.WriteString(line)
		default:
			b.WriteString(phasePendingStyle.Render("    " + p.String()))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n  " + m.progress.View() + "\n")
	return b.String()
}

// runWithProgress drives the comparer under a bubbletea progress view.
// The comparison runs in its own goroutine and feeds phase events into
// the program; the UI exits when the run finishes or is cancelled.
func runWithProgress(comparer *Comparer, run func() error) error {
	program := tea.NewProgram(newProgressModel())

	comparer.SetObserver(func(ev ProgressEvent) {
		program.Send(ev)
	})

	errChan := make(chan error, 1)
	go func() {
		err := run()
		errChan <- err
		program.Send(doneMsg{err: err})
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}

	return <-errChan
}
