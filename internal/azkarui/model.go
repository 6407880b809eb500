// Package azkarui provides the Bubble Tea azkar counter.
package azkarui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/azkar"
	"github.com/verte-zerg/mariam/internal/tui"
)

const maxContentWidth = 90

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	arabicStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	countStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4A4A4A"))
)

// Model implements the Bubble Tea azkar counter.
type Model struct {
	counter *azkar.Counter
	logger  zerolog.Logger

	width  int
	height int

	cursor   int
	viewport viewport.Model
	// offsets[i] is the first content line of zikr i.
	offsets []int
	errMsg  string
}

// NewModel constructs the counter view for the counter's selected category.
func NewModel(counter *azkar.Counter, logger zerolog.Logger) *Model {
	m := &Model{
		counter:  counter,
		logger:   logger,
		viewport: viewport.New(0, 0),
	}
	m.renderContent()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderContent()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			return m, tea.Quit
		}
		ctx := context.Background()
		switch msg.String() {
		case "left", "h", "shift+tab":
			m.moveCategory(ctx, -1)
			return m, nil
		case "right", "l", "tab":
			m.moveCategory(ctx, 1)
			return m, nil
		case "up", "k":
			m.moveCursor(-1)
			return m, nil
		case "down", "j":
			m.moveCursor(1)
			return m, nil
		case " ", "enter":
			m.increment(ctx)
			return m, nil
		case "r":
			m.resetCurrent(ctx)
			return m, nil
		case "R":
			m.resetCategory(ctx)
			return m, nil
		case "g", "home":
			m.cursor = 0
			m.renderContent()
			m.viewport.GotoTop()
			return m, nil
		case "G", "end":
			m.cursor = max(len(m.counter.Selected().Azkar)-1, 0)
			m.renderContent()
			m.viewport.GotoBottom()
			return m, nil
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	header := m.renderTabs()
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return header + "\n" + m.viewport.View() + "\n" + footer
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		fitLines(header, m.width, lipgloss.Height(header)),
		fitLines(m.viewport.View(), m.width, m.viewport.Height),
		fitLines(footer, m.width, lipgloss.Height(footer)),
	)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	headerHeight := lipgloss.Height(m.renderTabs())
	footerHeight := lipgloss.Height(m.renderFooter())
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-headerHeight-footerHeight, 1)
}

func (m *Model) moveCategory(ctx context.Context, delta int) {
	var moved bool
	var err error
	if delta < 0 {
		moved, err = m.counter.PrevCategory(ctx)
	} else {
		moved, err = m.counter.NextCategory(ctx)
	}
	m.setErr(err)
	if moved {
		m.cursor = 0
		m.renderContent()
		m.viewport.GotoTop()
	}
}

func (m *Model) moveCursor(delta int) {
	count := len(m.counter.Selected().Azkar)
	if count == 0 {
		return
	}
	m.cursor = max(0, min(m.cursor+delta, count-1))
	m.renderContent()
	m.scrollToCursor()
}

func (m *Model) increment(ctx context.Context) {
	items := m.counter.Selected().Azkar
	if m.cursor >= len(items) {
		return
	}
	_, done, err := m.counter.Increment(ctx, items[m.cursor].ID)
	m.setErr(err)
	if done && m.cursor < len(items)-1 {
		m.cursor++
	}
	m.renderContent()
	m.scrollToCursor()
}

func (m *Model) resetCurrent(ctx context.Context) {
	items := m.counter.Selected().Azkar
	if m.cursor >= len(items) {
		return
	}
	m.setErr(m.counter.Reset(ctx, items[m.cursor].ID))
	m.renderContent()
}

func (m *Model) resetCategory(ctx context.Context) {
	m.setErr(m.counter.ResetCategory(ctx, m.counter.Selected().Key))
	m.cursor = 0
	m.renderContent()
	m.viewport.GotoTop()
}

func (m *Model) setErr(err error) {
	if err == nil {
		m.errMsg = ""
		return
	}
	m.logger.Error().Err(err).Msg("azkar update failed")
	m.errMsg = err.Error()
}

func (m *Model) scrollToCursor() {
	if m.cursor >= len(m.offsets) || m.viewport.Height <= 0 {
		return
	}
	top := m.offsets[m.cursor]
	if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(top)
	}
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return maxContentWidth
	}
	return max(min(m.width-4, maxContentWidth), 10)
}

func (m *Model) renderContent() {
	category := m.counter.Selected()
	width := m.contentWidth()
	var b strings.Builder
	m.offsets = m.offsets[:0]
	line := 0
	for i, z := range category.Azkar {
		m.offsets = append(m.offsets, line)
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		count := fmt.Sprintf("%d/%d", m.counter.Count(z.ID), z.Count)
		if m.counter.Completed(z.ID) {
			count = doneStyle.Render(count + " done")
		} else {
			count = countStyle.Render(count)
		}
		block := []string{marker + count}
		for _, l := range tui.Wrap(z.Arabic, width) {
			block = append(block, "  "+arabicStyle.Render(alignRight(l, width)))
		}
		for _, l := range tui.Wrap(z.Translation, width) {
			block = append(block, "  "+mutedStyle.Render(l))
		}
		block = append(block, separatorStyle.Render(strings.Repeat("─", width+2)))
		b.WriteString(strings.Join(block, "\n"))
		b.WriteByte('\n')
		line += len(block)
	}
	m.viewport.SetContent(strings.TrimSuffix(b.String(), "\n"))
}

// alignRight pads Arabic lines so they sit against the right margin.
func alignRight(line string, width int) string {
	pad := width - runewidth.StringWidth(line)
	if pad <= 0 {
		return line
	}
	return strings.Repeat(" ", pad) + line
}

func (m *Model) renderTabs() string {
	categories := m.counter.Categories()
	selected := m.counter.SelectedIndex()
	from, to := tabWindow(len(categories), selected, m.width)
	parts := make([]string, 0, to-from+2)
	if from > 0 {
		parts = append(parts, headerStyle.Render("‹"))
	}
	for i := from; i < to; i++ {
		title := categories[i].Title
		if i == selected {
			parts = append(parts, activeNavStyle.Render(title))
		} else {
			parts = append(parts, inactiveNavStyle.Render(title))
		}
	}
	if to < len(categories) {
		parts = append(parts, headerStyle.Render("›"))
	}
	tabs := lipgloss.JoinHorizontal(lipgloss.Center, parts...)
	done, total := m.counter.Progress(categories[selected].Key)
	summary := headerStyle.Render(fmt.Sprintf("%s  %d/%d complete  (%d of %d)",
		categories[selected].Title, done, total, selected+1, len(categories)))
	return tabs + "\n" + summary
}

// tabWindow picks which category tabs fit, keeping the selected one visible.
func tabWindow(count, selected, width int) (int, int) {
	visible := 3
	if width > 0 {
		visible = max(width/22, 1)
	}
	if visible >= count {
		return 0, count
	}
	from := max(selected-visible/2, 0)
	to := from + visible
	if to > count {
		to = count
		from = count - visible
	}
	return from, to
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("←/→: category  ↑/↓: select  space: count  r: reset  R: reset category  q: quit")
	if m.errMsg == "" {
		return help
	}
	return errorStyle.Render(m.errMsg) + "\n" + help
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
