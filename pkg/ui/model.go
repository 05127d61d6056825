package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/deckwork/pkg/background"
	"github.com/vanderheijden86/deckwork/pkg/debug"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/metrics"
	"github.com/vanderheijden86/deckwork/pkg/nav"
	"github.com/vanderheijden86/deckwork/pkg/watcher"
)

// FileChangedMsg is sent when the deck file changes on disk
type FileChangedMsg struct{}

// WatchErrorMsg carries an error reported by the deck watcher.
type WatchErrorMsg struct {
	Err error
}

// ReadyTimeoutMsg is sent after a short delay so the UI becomes ready even if
// the terminal never reports its size.
type ReadyTimeoutMsg struct{}

// frameMsg is one background animation tick. gen ties it to the animator
// run that produced it; ticks from a stopped run are dropped.
type frameMsg struct {
	gen int
	at  time.Time
}

// ReadyTimeoutCmd returns a command that sends ReadyTimeoutMsg after 100ms.
// This ensures the TUI doesn't hang on "Initializing..." if the terminal
// is slow to report its size (common in tmux, SSH, some terminal emulators).
func ReadyTimeoutCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return ReadyTimeoutMsg{}
	})
}

// WatchFileCmd returns a command that waits for file changes and sends FileChangedMsg
func WatchFileCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		<-w.Changed()
		return FileChangedMsg{}
	}
}

// WatchErrorCmd waits for the next watcher error.
func WatchErrorCmd(w *watcher.Watcher) tea.Cmd {
	return func() tea.Msg {
		err, ok := <-w.Errors()
		if !ok {
			return nil
		}
		return WatchErrorMsg{Err: err}
	}
}

func waitFrame(frames <-chan time.Time, gen int) tea.Cmd {
	if frames == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-frames
		if !ok {
			return nil
		}
		return frameMsg{gen: gen, at: t}
	}
}

// Options configures a presenter Model.
type Options struct {
	Background background.Kind
	FPS        int
	Mouse      bool
	ShowHelp   bool
	StartSlide int // 0-based
	Watcher    *watcher.Watcher
	Seed       int64
	Renderer   *lipgloss.Renderer // nil: lipgloss default renderer
}

// Model is the presenter: one slide at a time, arrows and dots for
// navigation, and an animated field behind the panel.
type Model struct {
	deck  *deck.Deck
	nav   nav.State
	theme Theme
	base  Theme // theme before the deck accent is applied
	keys  KeyMap
	help  help.Model

	viewport viewport.Model
	jump     textinput.Model
	jumping  bool
	showHelp bool

	width, height int
	ready         bool
	layout        layout
	slide         renderedSlide
	md            *MarkdownRenderer

	bgKind   background.Kind
	field    background.Field
	animator *background.Animator
	animGen  int
	seed     int64

	watcher *watcher.Watcher
	mouse   bool

	statusMsg     string
	statusIsError bool
}

// NewModel creates a presenter for d.
func NewModel(d *deck.Deck, opts Options) Model {
	r := opts.Renderer
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	base := DefaultTheme(r)

	ti := textinput.New()
	ti.Placeholder = fmt.Sprintf("1-%d", d.Len())
	ti.CharLimit = 3
	ti.Width = 6

	m := Model{
		deck:     d,
		nav:      nav.Initialize(d.Len()),
		theme:    base.WithAccent(d.Accent),
		base:     base,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		jump:     ti,
		showHelp: opts.ShowHelp,
		bgKind:   opts.Background,
		animator: background.NewAnimator(opts.FPS),
		seed:     opts.Seed,
		watcher:  opts.Watcher,
		mouse:    opts.Mouse,
	}
	if m.bgKind == "" {
		m.bgKind = background.KindNone
	}
	if RichText() {
		m.md = NewMarkdownRenderer(minPanelWidth)
	}

	if opts.StartSlide != 0 {
		s, err := nav.GoTo(m.nav, opts.StartSlide)
		if err != nil {
			m.statusMsg = fmt.Sprintf("Start slide: %v", err)
			m.statusIsError = true
		}
		m.nav = s
	}
	return m
}

// Init starts the background animation and file watching.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ReadyTimeoutCmd()}
	if m.watcher != nil {
		cmds = append(cmds, WatchFileCmd(m.watcher), WatchErrorCmd(m.watcher))
	}
	if m.bgKind != background.KindNone {
		if err := m.animator.Start(context.Background()); err != nil {
			debug.Log("animator start: %v", err)
		} else {
			cmds = append(cmds, waitFrame(m.animator.Frames(), m.animGen))
		}
	}
	return tea.Batch(cmds...)
}

// Stop releases the animator and the watcher. Safe to call more than once.
func (m *Model) Stop() {
	if m.animator != nil {
		m.animator.Stop()
	}
	if m.watcher != nil {
		m.watcher.Stop()
	}
}

// Index returns the current 0-based slide index.
func (m Model) Index() int { return m.nav.Index }

// Nav returns the navigation state.
func (m Model) Nav() nav.State { return m.nav }

// Deck returns the deck being presented.
func (m Model) Deck() *deck.Deck { return m.deck }

// BackgroundKind returns the active background.
func (m Model) BackgroundKind() background.Kind { return m.bgKind }

// Status returns the footer status message and whether it is an error.
func (m Model) Status() (string, bool) { return m.statusMsg, m.statusIsError }

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsError = isErr
}

func (m *Model) clearStatus() {
	m.statusMsg = ""
	m.statusIsError = false
}

// setSize recomputes the geometry and re-renders the slide.
func (m *Model) setSize(w, h int) {
	m.width, m.height = w, h
	m.ready = true
	m.relayout()
}

func (m *Model) relayout() {
	m.help.Width = m.width
	m.help.ShowAll = m.showHelp
	footerH := 1
	if m.showHelp {
		footerH = lipgloss.Height(m.help.View(m.keys))
	}
	m.layout = computeLayout(m.width, m.height, m.deck.Len(), footerH)

	m.viewport.Width = m.layout.ContentWidth
	m.viewport.Height = m.layout.ViewportHeight
	if m.md != nil {
		m.md.SetWidth(m.layout.ContentWidth)
	}

	fieldW, fieldH := m.width, m.layout.BodyHeight
	switch {
	case m.field != nil && m.field.Kind() == m.bgKind:
		m.field.Resize(fieldW, fieldH)
	default:
		m.field = background.New(m.bgKind, fieldW, fieldH, m.seed)
	}
	m.renderSlide()
}

// renderSlide renders the current slide into the viewport. It runs only on
// navigation, resize and reload; animation frames reuse the result.
func (m *Model) renderSlide() {
	if !m.ready {
		return
	}
	defer metrics.Timer(metrics.SlideRender)()

	s, ok := m.deck.Slide(m.nav.Index)
	if !ok {
		m.slide = renderedSlide{}
		m.viewport.SetContent("")
		return
	}
	r := slideRenderer{
		theme:  m.theme,
		deck:   m.deck,
		md:     m.md,
		width:  m.layout.ContentWidth,
		height: m.layout.ViewportHeight,
	}
	m.slide = r.render(s)
	m.viewport.SetContent(m.slide.content)
}

// navigate moves to s, re-rendering only when the slide changes.
func (m *Model) navigate(s nav.State) {
	m.clearStatus()
	if s.Index == m.nav.Index {
		return
	}
	m.nav = s
	m.viewport.GotoTop()
	m.renderSlide()
	debug.Log("slide %s", nav.Counter(m.nav))
}

func (m *Model) goTo(target int) {
	s, err := nav.GoTo(m.nav, target)
	if err != nil {
		m.setStatus(fmt.Sprintf("Jump: %v", err), true)
		return
	}
	m.navigate(s)
}

// activate runs the current slide's action.
func (m *Model) activate() {
	s, ok := m.deck.Slide(m.nav.Index)
	if !ok || s.Action == nil {
		return
	}
	switch s.Action.Do {
	case deck.ActionNext:
		m.navigate(nav.Next(m.nav))
	}
}

// cycleBackground switches to the next background kind, restarting the
// animator. Navigation state is untouched.
func (m *Model) cycleBackground() tea.Cmd {
	m.bgKind = m.bgKind.Next()
	m.animator.Stop()
	m.animGen++
	m.field = nil
	if m.ready {
		m.field = background.New(m.bgKind, m.width, m.layout.BodyHeight, m.seed)
	}
	m.setStatus("Background: "+string(m.bgKind), false)

	if m.bgKind == background.KindNone {
		return nil
	}
	if err := m.animator.Start(context.Background()); err != nil {
		debug.Log("animator restart: %v", err)
		return nil
	}
	return waitFrame(m.animator.Frames(), m.animGen)
}

func (m *Model) copySlide() {
	s, ok := m.deck.Slide(m.nav.Index)
	if !ok {
		return
	}
	if err := clipboard.WriteAll(deck.PlainText(s)); err != nil {
		m.setStatus(fmt.Sprintf("❌ Clipboard error: %v", err), true)
		return
	}
	m.setStatus(fmt.Sprintf("📋 Copied slide %d to clipboard", m.nav.Index+1), false)
}

// reload re-reads the deck from disk. A broken file keeps the current deck.
func (m *Model) reload() {
	path := m.deck.Source
	if path == "" {
		return
	}
	d, err := deck.LoadFile(path)
	if err != nil {
		m.setStatus(fmt.Sprintf("Reload error: %v", err), true)
		return
	}
	m.deck = d
	m.theme = m.base.WithAccent(d.Accent)
	m.nav = nav.Clamp(nav.State{Index: m.nav.Index, Total: d.Len()})
	m.renderSlide()
	m.setStatus("Reloaded deck", false)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		return m, nil

	case ReadyTimeoutMsg:
		if !m.ready {
			m.setSize(80, 24)
		}
		return m, nil

	case frameMsg:
		if msg.gen != m.animGen || !m.animator.Running() {
			return m, nil
		}
		if m.field != nil {
			stop := metrics.Timer(metrics.BackgroundStep)
			m.field.Step()
			stop()
		}
		return m, waitFrame(m.animator.Frames(), msg.gen)

	case FileChangedMsg:
		m.reload()
		if m.watcher != nil {
			cmds = append(cmds, WatchFileCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case WatchErrorMsg:
		m.setStatus(fmt.Sprintf("Watch error: %v", msg.Err), true)
		if m.watcher != nil {
			cmds = append(cmds, WatchErrorCmd(m.watcher))
		}
		return m, tea.Batch(cmds...)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.jumping {
			return m.handleJumpKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Next):
		m.navigate(nav.Next(m.nav))
	case key.Matches(msg, m.keys.Prev):
		m.navigate(nav.Previous(m.nav))
	case key.Matches(msg, m.keys.First):
		m.navigate(nav.First(m.nav))
	case key.Matches(msg, m.keys.Last):
		m.navigate(nav.Last(m.nav))
	case key.Matches(msg, m.keys.Jump):
		n, _ := strconv.Atoi(msg.String())
		if n == 0 {
			n = 10
		}
		m.goTo(n - 1)
	case key.Matches(msg, m.keys.JumpPrompt):
		m.jumping = true
		m.jump.SetValue("")
		return m, m.jump.Focus()
	case key.Matches(msg, m.keys.Action):
		m.activate()
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
	case key.Matches(msg, m.keys.HalfDown):
		m.viewport.HalfViewDown()
	case key.Matches(msg, m.keys.HalfUp):
		m.viewport.HalfViewUp()
	case key.Matches(msg, m.keys.Background):
		return m, m.cycleBackground()
	case key.Matches(msg, m.keys.Copy):
		m.copySlide()
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		if m.ready {
			m.relayout()
		}
	}
	return m, nil
}

func (m Model) handleJumpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.jumping = false
		m.jump.Blur()
		return m, nil
	case "enter":
		m.jumping = false
		m.jump.Blur()
		raw := strings.TrimSpace(m.jump.Value())
		n, err := strconv.Atoi(raw)
		if err != nil {
			m.setStatus(fmt.Sprintf("Jump: %q is not a slide number", raw), true)
			return m, nil
		}
		m.goTo(n - 1)
		return m, nil
	}
	var cmd tea.Cmd
	m.jump, cmd = m.jump.Update(msg)
	return m, cmd
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !m.mouse || !m.ready {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.viewport.LineDown(3)
		return m, nil
	case tea.MouseButtonWheelUp:
		m.viewport.LineUp(3)
		return m, nil
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress {
			return m, nil
		}
	default:
		return m, nil
	}

	h := m.layout.hitTest(msg.X, msg.Y, m.nav, m.slide.action, m.viewport.YOffset)
	switch h.kind {
	case hitPrev:
		m.navigate(nav.Previous(m.nav))
	case hitNext:
		m.navigate(nav.Next(m.nav))
	case hitDot:
		m.goTo(h.index)
	case hitAction:
		m.activate()
	}
	return m, nil
}

// View renders the full screen.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return strings.Join([]string{
		m.renderHeader(),
		m.renderBody(),
		m.renderDots(),
		m.renderFooter(),
	}, "\n")
}

func (m Model) renderHeader() string {
	left := m.theme.Header.Render(m.deck.Title)
	if s, ok := m.deck.Slide(m.nav.Index); ok && s.Indicator != "" {
		left += m.theme.MutedText.Render(" · " + s.Indicator)
	}
	right := m.theme.RenderProgress(m.nav.Index, m.nav.Total, 10) + " " +
		m.theme.MutedText.Render(nav.Counter(m.nav))

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return m.theme.Renderer.NewStyle().MaxWidth(m.width).Render(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderBody() string {
	l := m.layout
	panel := m.theme.panelStyle().
		Width(l.PanelWidth - 2).
		Height(l.ViewportHeight).
		Render(m.viewport.View())

	arrow := func(glyph string, show bool) string {
		rows := make([]string, l.BodyHeight)
		for i := range rows {
			rows[i] = " "
		}
		if show {
			rows[l.ArrowY-l.BodyTop] = m.theme.Arrow.Render(glyph)
		}
		return strings.Join(rows, "\n")
	}

	fg := lipgloss.JoinHorizontal(lipgloss.Top,
		arrow(glyphPrev, nav.HasPrevious(m.nav)), " ",
		panel,
		" ", arrow(glyphNext, nav.HasNext(m.nav)),
	)
	body, _ := background.Compose(m.field, fg, m.width, l.BodyHeight, m.theme.Background)
	return body
}

func (m Model) renderDots() string {
	dots := make([]string, m.nav.Total)
	for i := range dots {
		if nav.IsActive(m.nav, i) {
			dots[i] = m.theme.ActiveDot.Render(glyphDotActive)
		} else {
			dots[i] = m.theme.InactiveDot.Render(glyphDot)
		}
	}
	return strings.Repeat(" ", m.layout.DotsLeft) + strings.Join(dots, " ")
}

func (m Model) renderFooter() string {
	switch {
	case m.jumping:
		return m.theme.Emphasis.Render("Go to slide: ") + m.jump.View()
	case m.statusMsg != "":
		if m.statusIsError {
			return m.theme.ErrorText.Render(truncate(m.statusMsg, m.width))
		}
		return m.theme.MutedText.Render(truncate(m.statusMsg, m.width))
	}
	return m.help.View(m.keys)
}
