// Package tui provides the Bubble Tea prayer dashboard.
package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mariam/internal/model"
	"github.com/verte-zerg/mariam/internal/prayer"
)

const loadTimeout = 45 * time.Second

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	dayStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0")).Padding(0, 1)
	activeDay   = dayStyle.Copy().Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#4A4A4A")).Bold(true)
	todayMarker = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	alertStyle  = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
)

// Options configure the dashboard.
type Options struct {
	Cache *prayer.Cache
	// Watcher delivers prayer notifications; nil disables them.
	Watcher *prayer.Watcher
	// Bell receives a terminal bell when a prayer time arrives.
	Bell   io.Writer
	Now    func() time.Time
	Logger zerolog.Logger
}

type tickMsg time.Time

type notifyTickMsg struct{}

type notifiedMsg struct {
	notification prayer.Notification
	ok           bool
	err          error
}

type dayLoadedMsg struct {
	key      string
	times    model.PrayerTimes
	tomorrow *model.PrayerTimes
	err      error
}

// Model implements the Bubble Tea prayer dashboard.
type Model struct {
	opts Options

	width  int
	height int

	now      time.Time
	selected time.Time

	times    *model.PrayerTimes
	tomorrow *model.PrayerTimes
	loading  bool
	errMsg   string

	alert *prayer.Notification

	next    model.NextPrayer
	hasNext bool

	schedule        table.Model
	highlightStyles table.Styles
	plainStyles     table.Styles

	dateInput textinput.Model
	inputMode bool
}

// NewModel constructs the dashboard, selecting today.
func NewModel(opts Options) *Model {
	m := &Model{opts: opts}
	m.now = m.clock()
	m.selected = prayer.StartOfDay(m.now)
	m.schedule = table.New(
		table.WithColumns([]table.Column{
			{Title: "Prayer", Width: 10},
			{Title: "Time", Width: 10},
		}),
		table.WithHeight(7),
		table.WithFocused(false),
	)
	m.plainStyles = table.DefaultStyles()
	m.plainStyles.Header = m.plainStyles.Header.Foreground(lipgloss.Color("#8C8C8C")).Bold(false)
	m.plainStyles.Selected = lipgloss.NewStyle()
	m.highlightStyles = m.plainStyles
	m.highlightStyles.Selected = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	m.schedule.SetStyles(m.plainStyles)

	m.dateInput = textinput.New()
	m.dateInput.Prompt = "Go to date: "
	m.dateInput.Placeholder = prayer.DateLayout
	m.dateInput.CharLimit = len(prayer.DateLayout)
	return m
}

func (m *Model) clock() time.Time {
	if m.opts.Now != nil {
		return m.opts.Now()
	}
	return time.Now()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.load(), tick()}
	if m.opts.Watcher != nil {
		cmds = append(cmds, m.checkNotifications())
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func notifyTick() tea.Cmd {
	return tea.Tick(prayer.CheckInterval, func(time.Time) tea.Msg { return notifyTickMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tickMsg:
		prev := m.now
		m.now = m.clock()
		if !prayer.SameDay(prev, m.now) {
			// Midnight passed: today's row and the week strip moved.
			return m, tea.Batch(tick(), m.load())
		}
		m.refreshNext()
		return m, tick()
	case notifyTickMsg:
		return m, m.checkNotifications()
	case notifiedMsg:
		if msg.err != nil {
			m.opts.Logger.Warn().Err(msg.err).Msg("prayer notification check failed")
		}
		if msg.ok {
			n := msg.notification
			m.alert = &n
			m.ringBell()
		}
		return m, notifyTick()
	case dayLoadedMsg:
		if msg.key != prayer.DateKey(m.selected) {
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			m.times = nil
			m.refreshSchedule()
			m.refreshNext()
			return m, nil
		}
		m.errMsg = ""
		times := msg.times
		m.times = &times
		m.tomorrow = msg.tomorrow
		m.refreshSchedule()
		m.refreshNext()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.inputMode {
			return m.updateDateInput(msg)
		}
		switch msg.String() {
		case "q", "esc":
			if m.alert != nil {
				m.alert = nil
				return m, nil
			}
			return m, tea.Quit
		case "left", "h":
			return m, m.stepDate(-1)
		case "right", "l":
			return m, m.stepDate(1)
		case "t", "home":
			return m, m.selectDate(prayer.StartOfDay(m.now))
		case "/", "g":
			m.inputMode = true
			m.dateInput.SetValue("")
			return m, m.dateInput.Focus()
		case "r":
			return m, m.load()
		}
	}
	return m, nil
}

func (m *Model) updateDateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.inputMode = false
		m.dateInput.Blur()
		return m, nil
	case tea.KeyEnter:
		m.inputMode = false
		m.dateInput.Blur()
		date, err := time.ParseInLocation(prayer.DateLayout, strings.TrimSpace(m.dateInput.Value()), m.now.Location())
		if err != nil {
			m.errMsg = fmt.Sprintf("invalid date %q (want %s)", m.dateInput.Value(), prayer.DateLayout)
			return m, nil
		}
		if !m.inWindow(date) {
			first, last := m.window()
			m.errMsg = fmt.Sprintf("%s is outside %s to %s", prayer.DateKey(date), prayer.DateKey(first), prayer.DateKey(last))
			return m, nil
		}
		return m, m.selectDate(date)
	}
	var cmd tea.Cmd
	m.dateInput, cmd = m.dateInput.Update(msg)
	return m, cmd
}

// window is the browsable range: today through the last day of the week strip.
func (m *Model) window() (time.Time, time.Time) {
	days := prayer.WeekDates(m.now)
	return days[0], days[len(days)-1]
}

func (m *Model) inWindow(date time.Time) bool {
	first, last := m.window()
	day := prayer.StartOfDay(date)
	return !day.Before(first) && !day.After(last)
}

// stepDate moves the selection by delta days, staying inside the window.
func (m *Model) stepDate(delta int) tea.Cmd {
	date := m.selected.AddDate(0, 0, delta)
	if !m.inWindow(date) {
		return nil
	}
	return m.selectDate(date)
}

func (m *Model) selectDate(date time.Time) tea.Cmd {
	m.selected = prayer.StartOfDay(date)
	return m.load()
}

func (m *Model) load() tea.Cmd {
	cache := m.opts.Cache
	if cache == nil {
		return nil
	}
	m.loading = true
	selected := m.selected
	now := m.now
	key := prayer.DateKey(selected)
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		times, err := cache.EnsureRange(ctx, selected, now)
		if err != nil {
			return dayLoadedMsg{key: key, err: err}
		}
		msg := dayLoadedMsg{key: key, times: times}
		if tomorrow, ok := cache.Cached(ctx, prayer.StartOfDay(now).AddDate(0, 0, 1)); ok {
			msg.tomorrow = &tomorrow
		}
		return msg
	}
}

func (m *Model) checkNotifications() tea.Cmd {
	w := m.opts.Watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		n, ok, err := w.Check(ctx)
		return notifiedMsg{notification: n, ok: ok, err: err}
	}
}

func (m *Model) ringBell() {
	if m.opts.Bell == nil {
		return
	}
	if _, err := io.WriteString(m.opts.Bell, "\a"); err != nil {
		// Best-effort bell.
		_ = err
	}
}

func (m *Model) refreshSchedule() {
	if m.times == nil {
		m.schedule.SetRows(nil)
		return
	}
	entries := prayer.Schedule(*m.times, prayer.IsFriday(m.selected))
	rows := make([]table.Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, table.Row{e.Name, prayer.To12Hour(e.Time)})
	}
	m.schedule.SetRows(rows)
}

func (m *Model) refreshNext() {
	if m.times == nil {
		m.next, m.hasNext = model.NextPrayer{}, false
	} else {
		m.next, m.hasNext = prayer.Next(m.now, m.selected, *m.times, m.tomorrow)
	}
	if !m.hasNext {
		m.schedule.SetStyles(m.plainStyles)
		return
	}
	for i, row := range m.schedule.Rows() {
		if len(row) > 0 && row[0] == m.next.Name {
			m.schedule.SetCursor(i)
			m.schedule.SetStyles(m.highlightStyles)
			return
		}
	}
	m.schedule.SetStyles(m.plainStyles)
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{m.renderHeader(), m.renderWeek(), m.renderBody()}
	if m.alert != nil {
		sections = append(sections, alertStyle.Render(m.alert.Title()+"\n"+m.alert.Body()))
	}
	if m.inputMode {
		sections = append(sections, m.dateInput.View())
	}
	sections = append(sections, m.renderFooter())
	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render(m.selected.Format("Monday, 2 January 2006"))
	if m.opts.Cache == nil {
		return title
	}
	return title + "\n" + mutedStyle.Render(m.opts.Cache.Location().Label())
}

func (m *Model) renderWeek() string {
	days := prayer.WeekDates(m.now)
	parts := make([]string, 0, len(days))
	for _, d := range days {
		label := fmt.Sprintf("%s %d", prayer.DayName(d), d.Day())
		switch {
		case prayer.SameDay(d, m.selected):
			parts = append(parts, activeDay.Render(label))
		case prayer.SameDay(d, m.now):
			parts = append(parts, dayStyle.Render(todayMarker.Render(label)))
		default:
			parts = append(parts, dayStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderBody() string {
	if m.errMsg != "" {
		return errorStyle.Render(m.errMsg)
	}
	if m.times == nil {
		if m.loading {
			return mutedStyle.Render("Loading prayer times...")
		}
		return mutedStyle.Render("No prayer times.")
	}
	body := m.schedule.View() + "\n" + m.renderNext()
	if prayer.IsFriday(m.selected) && prayer.SameDay(m.selected, m.now) {
		body += "\n" + accentStyle.Render(prayer.FridayReminder)
	}
	return body
}

func (m *Model) renderNext() string {
	if !m.hasNext {
		return mutedStyle.Render("No upcoming prayer for this date.")
	}
	return fmt.Sprintf("Next: %s at %s  %s",
		accentStyle.Render(m.next.Name),
		prayer.To12Hour(m.next.Time),
		accentStyle.Render(prayer.FormatCountdown(m.next.Countdown)),
	)
}

func (m *Model) renderFooter() string {
	if m.inputMode {
		return footerStyle.Render("enter: go  esc: cancel")
	}
	return footerStyle.Render("←/→: day  t: today  /: go to date  r: reload  q: quit")
}
