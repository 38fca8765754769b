package tui

import (
	"context"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/leonardotrapani/memoscribe/internal/pipeline"
)

const (
	defaultWidth  = 80
	panelMaxLines = 12
)

// SnapshotMsg carries a new session snapshot into the live view
type SnapshotMsg pipeline.Snapshot

// DoneMsg ends the live view
type DoneMsg struct{ Err error }

// LiveModel shows the transcript and translation growing while a session runs
type LiveModel struct {
	title     string
	snap      pipeline.Snapshot
	spinner   spinner.Model
	width     int
	done      bool
	cancelled bool
	err       error
	cancel    context.CancelFunc
}

func NewLiveModel(title string, translate bool, cancel context.CancelFunc) LiveModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)
	return LiveModel{
		title:   title,
		snap:    pipeline.Snapshot{Phase: pipeline.PhaseSetup, Translate: translate},
		spinner: sp,
		width:   defaultWidth,
		cancel:  cancel,
	}
}

func (m LiveModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.cancelled = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	case SnapshotMsg:
		m.snap = pipeline.Snapshot(msg)
	case DoneMsg:
		m.done = true
		m.err = msg.Err
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m LiveModel) View() string {
	var b strings.Builder
	b.WriteString(StyleHeader.Render(m.title))
	b.WriteString("\n")

	if !m.done && !m.snap.Terminal() {
		status := m.snap.Status
		if status == "" {
			status = string(m.snap.Phase)
		}
		b.WriteString(m.spinner.View() + " " + StyleSubtle.Render(status) + "\n")
	}
	b.WriteString(RenderSnapshot(m.snap, m.width, panelMaxLines))
	if !m.done && !m.cancelled {
		b.WriteString("\n" + StyleMuted.Render("q to cancel") + "\n")
	}
	return b.String()
}

// Cancelled reports whether the user left the view before the session ended
func (m LiveModel) Cancelled() bool { return m.cancelled }

// RenderSnapshot draws the transcript and translation panels. maxLines
// keeps only the tail of each panel, 0 shows everything.
func RenderSnapshot(s pipeline.Snapshot, width, maxLines int) string {
	if width <= 0 {
		width = defaultWidth
	}
	inner := width - 4 // border and padding

	var b strings.Builder
	b.WriteString(StyleLabel.Render("Transcript") + "\n")
	b.WriteString(StyleTranscriptBox.Render(tail(wrap(s.Transcript, inner), maxLines)) + "\n")

	if s.Translate {
		b.WriteString(StyleLabel.Render("Translation") + "\n")
		b.WriteString(StyleTranslationBox.Render(tail(wrap(s.Translation, inner), maxLines)) + "\n")
	}
	if s.Warning != "" {
		b.WriteString(StyleWarning.Render(s.Warning) + "\n")
	}
	if s.Error != "" {
		b.WriteString(StyleError.Render(s.Error) + "\n")
	}
	return b.String()
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(text, " \n"))
}

func tail(text string, maxLines int) string {
	if maxLines <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return text
	}
	return strings.Join(lines[len(lines)-maxLines:], "\n")
}

// Live runs a LiveModel as a bubbletea program fed by pipeline snapshots
type Live struct {
	program *tea.Program
	done    chan struct{}
	final   LiveModel
	err     error
}

// StartLive starts the live view. cancel is called when the user quits it.
func StartLive(title string, translate bool, cancel context.CancelFunc) *Live {
	l := &Live{done: make(chan struct{})}
	l.program = tea.NewProgram(NewLiveModel(title, translate, cancel), tea.WithOutput(os.Stderr))
	go func() {
		defer close(l.done)
		m, err := l.program.Run()
		l.err = err
		if lm, ok := m.(LiveModel); ok {
			l.final = lm
		}
	}()
	return l
}

// Observe implements pipeline.Observer
func (l *Live) Observe(s pipeline.Snapshot) {
	l.program.Send(SnapshotMsg(s))
}

// Finish stops the view and waits for the terminal to be restored
func (l *Live) Finish(err error) error {
	l.program.Send(DoneMsg{Err: err})
	<-l.done
	return l.err
}

// Cancelled reports whether the user quit the view before the session ended
func (l *Live) Cancelled() bool {
	<-l.done
	return l.final.cancelled
}

// IsTerminal reports whether stdout and stderr are attached to a terminal
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}
