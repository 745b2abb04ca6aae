package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"tern/internal/driver"
)

// share of a file each stage gives while it is in flight; a finished file = 1
var stageWeight = map[driver.Stage]float64{
	driver.StageParse:   0.2,
	driver.StageIndex:   0.3,
	driver.StageResolve: 0.5,
}

var stageVerb = map[driver.Stage]string{
	driver.StageParse:   "parsing",
	driver.StageIndex:   "indexing",
	driver.StageResolve: "resolving",
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusFg   = map[driver.Status]lipgloss.Color{
		driver.StatusQueued:  "7",
		driver.StatusWorking: "6",
		driver.StatusDone:    "2",
		driver.StatusError:   "1",
	}
)

const statusColumn = 10

type fileRow struct {
	path    string
	stage   driver.Stage
	status  driver.Status
	elapsed time.Duration
}

func (r fileRow) finished() bool { return r.status.Finished() }

func (r fileRow) label() string {
	if r.status == driver.StatusWorking {
		return stageVerb[r.stage]
	}
	return string(r.status)
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	// runStage is a stage announced without a file (one index for everybody)
	runStage driver.Stage
	width    int
	done     bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel renders per-file progress of `tern check` from driver
// events; the program quits once events is closed. Events for files not in
// files (the prelude) only move the spinner.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(76)),
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, f := range files {
		m.rows[i] = fileRow{path: f, status: driver.StatusQueued}
		m.byPath[f] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
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
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	if ev.File == "" {
		if ev.Status == driver.StatusWorking {
			m.runStage = ev.Stage
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.stage, row.status = ev.Stage, ev.Status
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, r := range m.rows {
		if r.finished() {
			sum++
		} else if r.status == driver.StatusWorking {
			sum += stageWeight[r.stage]
		}
	}
	return sum / float64(len(m.rows))
}

// tally counts finished files and those with errors.
func (m *progressModel) tally() (finished, failed int) {
	for _, r := range m.rows {
		if r.finished() {
			finished++
		}
		if r.status == driver.StatusError {
			failed++
		}
	}
	return finished, failed
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder

	header := m.title
	if verb := stageVerb[m.runStage]; verb != "" && !m.done {
		header += " (" + verb + ")"
	}
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(titleStyle.Render(header))
	finished, failed := m.tally()
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d files, %d with errors", finished, len(m.rows), failed)))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-16, 20)
	for _, r := range m.rows {
		status := lipgloss.NewStyle().Foreground(statusFg[r.status]).Render(fmt.Sprintf("%*s", statusColumn, r.label()))
		fmt.Fprintf(&b, "  %s %s", status, truncate(r.path, nameWidth))
		if r.elapsed > 0 {
			fmt.Fprintf(&b, " %.1fms", float64(r.elapsed)/float64(time.Millisecond))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

// truncate shortens value to width terminal cells.
func truncate(value string, width int) string {
	switch {
	case width <= 0 || runewidth.StringWidth(value) <= width:
		return value
	case width <= 3:
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
