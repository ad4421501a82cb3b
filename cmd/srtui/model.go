package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"

	"scrollreveal/pkg/aos"
	"scrollreveal/pkg/html"
	"scrollreveal/pkg/scenario"
)

const (
	frameInterval = 16 * time.Millisecond
	lineStep      = 40
	recentEvents  = 6
)

var (
	colorActive  = lipgloss.Color("#9ece6a")
	colorIdle    = lipgloss.Color("#565f89")
	colorRetired = lipgloss.Color("#7aa2f7")
	colorBand    = lipgloss.Color("#f7768e")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0caf5"))
	mutedStyle   = lipgloss.NewStyle().Foreground(colorIdle)
	activeStyle  = lipgloss.NewStyle().Foreground(colorActive).Bold(true)
	idleStyle    = lipgloss.NewStyle().Foreground(colorIdle)
	retiredStyle = lipgloss.NewStyle().Foreground(colorRetired)
	bandStyle    = lipgloss.NewStyle().Foreground(colorBand)
	boxStyle     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorIdle).Padding(0, 1)
)

type keyMap struct {
	Down, Up, PageDown, PageUp, Top, Bottom, Refresh, Quit key.Binding
}

var keys = keyMap{
	Down:     key.NewBinding(key.WithKeys("j", "down")),
	Up:       key.NewBinding(key.WithKeys("k", "up")),
	PageDown: key.NewBinding(key.WithKeys("space", "pgdown", "f")),
	PageUp:   key.NewBinding(key.WithKeys("pgup", "b")),
	Top:      key.NewBinding(key.WithKeys("g", "home")),
	Bottom:   key.NewBinding(key.WithKeys("G", "end")),
	Refresh:  key.NewBinding(key.WithKeys("r")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

type tickMsg time.Time

// model drives a session on a virtual loop, advancing it by wall-clock time
// on every tick so throttled and debounced passes land on schedule.
type model struct {
	title  string
	sess   *scenario.Session
	now    func() time.Time
	last   time.Time
	width  int
	height int
}

func newModel(title string, sess *scenario.Session, now func() time.Time) *model {
	return &model{title: title, sess: sess, now: now, last: now()}
}

func (m *model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.advance()
		return m, tick()
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.MouseWheelMsg:
		switch msg.Button {
		case tea.MouseWheelUp:
			m.scrollBy(-lineStep)
		case tea.MouseWheelDown:
			m.scrollBy(lineStep)
		}
	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	win := m.sess.Window
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Down):
		m.scrollBy(lineStep)
	case key.Matches(msg, keys.Up):
		m.scrollBy(-lineStep)
	case key.Matches(msg, keys.PageDown):
		m.scrollBy(win.InnerHeight() * 0.9)
	case key.Matches(msg, keys.PageUp):
		m.scrollBy(-win.InnerHeight() * 0.9)
	case key.Matches(msg, keys.Top):
		m.advance()
		win.ScrollTo(0)
	case key.Matches(msg, keys.Bottom):
		m.advance()
		win.ScrollTo(win.MaxScroll())
	case key.Matches(msg, keys.Refresh):
		if eng := m.sess.Engine(); eng != nil {
			eng.Refresh()
		}
	}
	return m, nil
}

// advance catches the virtual loop up with the wall clock.
func (m *model) advance() {
	now := m.now()
	if d := now.Sub(m.last); d > 0 {
		m.sess.Loop.Advance(d)
	}
	m.last = now
}

func (m *model) scrollBy(dy float64) {
	m.advance()
	m.sess.Window.ScrollBy(dy)
}

func (m *model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion
	view.SetContent(m.render())
	return view
}

type row struct {
	name    string
	top     float64
	state   string
	inZone  bool
	retired bool
}

func (m *model) rows() []row {
	eng := m.sess.Engine()
	if eng == nil {
		return nil
	}
	scrollY := m.sess.Window.ScrollY()
	var rows []row
	add := func(r aos.Record, retired bool) {
		out := row{name: describe(r.Node), state: r.State.String(), retired: retired}
		if r.Snapshot != nil {
			out.top = r.Snapshot.AnchorTop
			out.inZone = aos.IsInZone(*r.Snapshot, scrollY)
		}
		if retired {
			out.state = "retired"
		}
		rows = append(rows, out)
	}
	for _, r := range eng.Records() {
		add(r, false)
	}
	for _, r := range eng.Retired() {
		add(r, true)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].top < rows[j].top })
	return rows
}

func (m *model) render() string {
	win := m.sess.Window
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("scrollreveal  " + m.title))
	sb.WriteString("\n")
	sb.WriteString(m.scrollBar(40))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("  scrollY %.0f / %.0f  viewport %.0fx%.0f",
		win.ScrollY(), win.MaxScroll(), win.InnerWidth(), win.InnerHeight())))
	sb.WriteString("\n")
	band := aos.TriggerBand * win.InnerHeight()
	sb.WriteString(bandStyle.Render(fmt.Sprintf("trigger zone: anchor top above %.0f and bottom below %.0f (viewport px)",
		win.InnerHeight()-band, band)))
	sb.WriteString("\n\n")

	rows := m.rows()
	if len(rows) == 0 {
		sb.WriteString(mutedStyle.Render("no data-aos elements tracked"))
	}
	var lines []string
	for _, r := range rows {
		style := idleStyle
		switch {
		case r.retired:
			style = retiredStyle
		case r.state == aos.Active.String():
			style = activeStyle
		}
		zone := " "
		if r.inZone {
			zone = bandStyle.Render("*")
		}
		lines = append(lines, fmt.Sprintf("%s %s %-8s %6.0f  %s",
			zone, style.Render("■"), style.Render(r.state), r.top-win.ScrollY(), r.name))
	}
	if len(lines) > 0 {
		sb.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	}
	sb.WriteString("\n")

	timeline := m.sess.Timeline()
	if n := len(timeline); n > recentEvents {
		timeline = timeline[n-recentEvents:]
	}
	for _, ev := range timeline {
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("%8v  %s %s -> %s at %.0f",
			ev.At.Round(time.Millisecond), describe(ev.Transition.Node),
			ev.Transition.From, ev.Transition.To, ev.Transition.ScrollY)))
		sb.WriteString("\n")
	}
	if eng := m.sess.Engine(); eng != nil {
		st := eng.Stats()
		sb.WriteString(mutedStyle.Render(fmt.Sprintf("active %d of %d, retired %d, %d passes (%d scroll, %d resize)",
			st.Active, st.Live, st.Retired, st.Passes, st.Scrolls, st.Resizes)))
		sb.WriteString("\n")
	}
	sb.WriteString(mutedStyle.Render("j/k scroll  space/b page  g/G top/bottom  r refresh  q quit"))
	return sb.String()
}

// scrollBar draws the viewport's position in the document as a track of
// width cells.
func (m *model) scrollBar(width int) string {
	win := m.sess.Window
	docH := win.DocumentHeight()
	if docH <= 0 {
		return strings.Repeat("─", width)
	}
	start := int(win.ScrollY() / docH * float64(width))
	size := max(1, int(win.InnerHeight()/docH*float64(width)))
	var sb strings.Builder
	for i := 0; i < width; i++ {
		if i >= start && i < start+size {
			sb.WriteString("█")
		} else {
			sb.WriteString("─")
		}
	}
	return sb.String()
}

func describe(n *html.Node) string {
	if n == nil {
		return "?"
	}
	name := n.TagName
	if id, ok := n.GetAttribute("id"); ok && id != "" {
		name += "#" + id
	}
	if anim, ok := n.GetAttribute(aos.AttrAnimation); ok && anim != "" {
		name += " [" + anim + "]"
	}
	return name
}
