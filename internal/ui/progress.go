// Package ui renders batch build progress in the terminal.
package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"sysyc/internal/buildpipeline"
)

// fileRow is one line of the build table.
type fileRow struct {
	path    string
	stage   buildpipeline.Stage
	status  buildpipeline.Status
	elapsed time.Duration
}

// finished reports whether the row will receive no further events.
func (r fileRow) finished() bool {
	switch r.status {
	case buildpipeline.StatusDone, buildpipeline.StatusCached, buildpipeline.StatusError:
		return true
	}
	return false
}

// label is the text shown in the status column.
func (r fileRow) label() string {
	if r.status == buildpipeline.StatusWorking {
		return stageLabel(r.stage)
	}
	return string(r.status)
}

type buildModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	width   int
	// summary is set by the final build event.
	summary string
	done    bool
}

type eventMsg buildpipeline.Event

type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model that tracks files as events
// arrive. The program quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 60

	m := &buildModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = fileRow{path: file, stage: buildpipeline.StageParse, status: buildpipeline.StatusQueued}
		m.byPath[file] = i
	}
	return m
}

// Run drives the progress view on out until events is closed.
func Run(out io.Writer, title string, files []string, events <-chan buildpipeline.Event) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), tea.WithOutput(out), tea.WithInput(nil))
	_, err := p.Run()
	return err
}

func (m *buildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		bm, cmd := m.bar.Update(msg)
		m.bar = bm.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one event from the build goroutine.
func (m *buildModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *buildModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Stage == buildpipeline.StageBuild && ev.Status != buildpipeline.StatusWorking {
			m.summary = fmt.Sprintf("%s in %.1f ms", ev.Status, float64(ev.Elapsed)/float64(time.Millisecond))
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.stage, row.status = ev.Stage, ev.Status
	if row.finished() {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.fraction())
}

// fraction weighs finished files as whole units and running files by how
// far through the pipeline they are.
func (m *buildModel) fraction() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	sum := 0.0
	for _, row := range m.rows {
		if row.finished() {
			sum++
			continue
		}
		if row.status == buildpipeline.StatusWorking {
			sum += stageWeight(row.stage)
		}
	}
	return sum / float64(len(m.rows))
}

func (m *buildModel) counts() (finished, cached, failed int) {
	for _, row := range m.rows {
		if row.finished() {
			finished++
		}
		switch row.status {
		case buildpipeline.StatusCached:
			cached++
		case buildpipeline.StatusError:
			failed++
		}
	}
	return finished, cached, failed
}

func (m *buildModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	finished, cached, failed := m.counts()
	head := fmt.Sprintf("%s  %d/%d", m.title, finished, len(m.rows))
	if m.done {
		head = "✓ " + head
	} else {
		head = m.spinner.View() + " " + head
	}
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(head))
	b.WriteString("\n\n")

	const labelWidth, timeWidth = 10, 10
	pathWidth := max(m.width-labelWidth-timeWidth-6, 16)
	for _, row := range m.rows {
		label := statusStyle(row.status).Render(fmt.Sprintf("%-*s", labelWidth, row.label()))
		elapsed := ""
		if row.finished() {
			elapsed = fmt.Sprintf("%.1f ms", float64(row.elapsed)/float64(time.Millisecond))
		}
		fmt.Fprintf(&b, "  %s %-*s %*s\n", label, pathWidth, truncate(row.path, pathWidth), timeWidth, elapsed)
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1.0))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	foot := fmt.Sprintf("%d cached, %d failed", cached, failed)
	if m.summary != "" {
		foot += ", " + m.summary
	}
	b.WriteString(lipgloss.NewStyle().Faint(true).Render(foot))
	b.WriteString("\n")
	return b.String()
}

func stageWeight(stage buildpipeline.Stage) float64 {
	switch stage {
	case buildpipeline.StageParse:
		return 0.1
	case buildpipeline.StageIRGen:
		return 0.4
	case buildpipeline.StageKoopa:
		return 0.6
	case buildpipeline.StageCodegen:
		return 0.8
	case buildpipeline.StageWrite:
		return 0.95
	}
	return 0
}

func stageLabel(stage buildpipeline.Stage) string {
	switch stage {
	case buildpipeline.StageParse:
		return "parsing"
	case buildpipeline.StageIRGen:
		return "lowering"
	case buildpipeline.StageKoopa:
		return "loading"
	case buildpipeline.StageCodegen:
		return "codegen"
	case buildpipeline.StageWrite:
		return "writing"
	}
	return string(stage)
}

func statusStyle(status buildpipeline.Status) lipgloss.Style {
	switch status {
	case buildpipeline.StatusDone, buildpipeline.StatusCached:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case buildpipeline.StatusError:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case buildpipeline.StatusQueued:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
}

// truncate shortens value to at most width cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
