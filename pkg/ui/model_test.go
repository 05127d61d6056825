package ui

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/goleak"

	"github.com/vanderheijden86/deckwork/pkg/background"
	"github.com/vanderheijden86/deckwork/pkg/deck"
	"github.com/vanderheijden86/deckwork/pkg/nav"
)

func testOptions(kind background.Kind) Options {
	return Options{
		Background: kind,
		FPS:        30,
		Mouse:      true,
		Seed:       7,
		Renderer:   lipgloss.NewRenderer(io.Discard),
	}
}

func newTestModel(t *testing.T, kind background.Kind) Model {
	t.Helper()
	d, err := deck.Default()
	if err != nil {
		t.Fatalf("Default deck: %v", err)
	}
	return sized(NewModel(d, testOptions(kind)))
}

func sized(m Model) Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(Model)
}

func send(m Model, msg tea.Msg) Model {
	next, _ := m.Update(msg)
	return next.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func click(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}
}

func TestModel_NotReadyView(t *testing.T) {
	d, _ := deck.Default()
	m := NewModel(d, testOptions(background.KindNone))
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View before size = %q", got)
	}
	m = send(m, ReadyTimeoutMsg{})
	if !strings.Contains(m.View(), "1 / 11") {
		t.Error("ready timeout should fall back to a default size")
	}
}

func TestModel_FirstSlideView(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	view := m.View()

	for _, want := range []string{"Pixxel Space", "Home", "1 / 11", "Launch Mission", glyphNext} {
		if !strings.Contains(view, want) {
			t.Errorf("first slide view missing %q", want)
		}
	}
	if strings.Contains(view, glyphPrev) {
		t.Error("previous arrow should be hidden on the first slide")
	}
	if n := strings.Count(view, glyphDotActive); n != 1 {
		t.Errorf("active dots = %d, want 1", n)
	}
	if n := strings.Count(view, glyphDot); n != 10 {
		t.Errorf("inactive dots = %d, want 10", n)
	}
}

func TestModel_LastSlideView(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnd})
	view := m.View()

	if m.Index() != 10 {
		t.Fatalf("End key index = %d", m.Index())
	}
	if !strings.Contains(view, "11 / 11") {
		t.Error("missing counter 11 / 11")
	}
	if !strings.Contains(view, glyphPrev) {
		t.Error("previous arrow should be shown on the last slide")
	}
	if strings.Contains(view, glyphNext) {
		t.Error("next arrow should be hidden on the last slide")
	}
}

func TestModel_ViewFitsTerminal(t *testing.T) {
	for _, kind := range []background.Kind{background.KindNone, background.KindStarfield, background.KindParticles} {
		m := newTestModel(t, kind)
		for i := 0; i < 11; i++ {
			lines := strings.Split(m.View(), "\n")
			if len(lines) != 30 {
				t.Errorf("%s slide %d: %d lines, want 30", kind, i+1, len(lines))
			}
			for n, l := range lines {
				if w := lipgloss.Width(l); w > 100 {
					t.Errorf("%s slide %d line %d: width %d", kind, i+1, n, w)
				}
			}
			m = send(m, tea.KeyMsg{Type: tea.KeyRight})
		}
	}
}

func TestModel_SpaceAdvances(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.Index() != 1 {
		t.Errorf("space: index = %d, want 1", m.Index())
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Index() != 0 {
		t.Errorf("left: index = %d, want 0", m.Index())
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyLeft})
	if m.Index() != 0 {
		t.Errorf("left on first slide: index = %d, want 0", m.Index())
	}
}

func TestModel_NextSaturates(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	for i := 0; i < 20; i++ {
		m = send(m, keyRunes("l"))
	}
	if m.Index() != 10 {
		t.Errorf("index after 20 nexts = %d, want 10", m.Index())
	}
}

func TestModel_EnterRunsAction(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Index() != 1 {
		t.Fatalf("enter on landing slide: index = %d, want 1", m.Index())
	}
	// slide 2 has no action
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Index() != 1 {
		t.Errorf("enter without action moved to %d", m.Index())
	}
}

func TestModel_DigitJumps(t *testing.T) {
	m := newTestModel(t, background.KindNone)

	m = send(m, keyRunes("5"))
	if m.Index() != 4 {
		t.Errorf("5: index = %d, want 4", m.Index())
	}
	m = send(m, keyRunes("0"))
	if m.Index() != 9 {
		t.Errorf("0: index = %d, want 9", m.Index())
	}
	m = send(m, tea.KeyMsg{Type: tea.KeyHome})
	if m.Index() != 0 {
		t.Errorf("home: index = %d, want 0", m.Index())
	}
}

func TestModel_JumpPrompt(t *testing.T) {
	m := newTestModel(t, background.KindNone)

	m = send(m, keyRunes(":"))
	if !m.jumping {
		t.Fatal("colon should open the jump prompt")
	}
	if !strings.Contains(m.View(), "Go to slide") {
		t.Error("jump prompt not shown in footer")
	}
	m = send(m, keyRunes("7"))
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.jumping {
		t.Error("enter should close the prompt")
	}
	if m.Index() != 6 {
		t.Errorf("jump 7: index = %d, want 6", m.Index())
	}
}

func TestModel_JumpPromptRejectsOutOfRange(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, keyRunes("3"))

	m = send(m, keyRunes(":"))
	m = send(m, keyRunes("4"))
	m = send(m, keyRunes("2"))
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.Index() != 2 {
		t.Errorf("rejected jump moved to %d", m.Index())
	}
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, nav.ErrOutOfRange.Error()) {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
	if !strings.Contains(m.View(), "out of range") {
		t.Error("rejection not shown in footer")
	}

	// any navigation clears the status
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if msg, _ := m.Status(); msg != "" {
		t.Errorf("status after navigation = %q", msg)
	}
}

func TestModel_JumpPromptRejectsText(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, keyRunes(":"))
	m = send(m, keyRunes("x"))
	m = send(m, tea.KeyMsg{Type: tea.KeyEnter})

	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "not a slide number") {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
	if m.Index() != 0 {
		t.Errorf("index = %d", m.Index())
	}
}

func TestModel_JumpPromptEscape(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, keyRunes(":"))
	m = send(m, keyRunes("9"))
	m = send(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.jumping || m.Index() != 0 {
		t.Errorf("escape: jumping=%v index=%d", m.jumping, m.Index())
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	_, cmd := m.Update(keyRunes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModel_DotClickJumps(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	l := m.layout

	m = send(m, click(l.DotsLeft+2*5, l.DotsY))
	if m.Index() != 5 {
		t.Errorf("dot click: index = %d, want 5", m.Index())
	}
	if !strings.Contains(m.View(), "6 / 11") {
		t.Error("counter not updated after dot click")
	}
}

func TestModel_ArrowClicks(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	l := m.layout

	m = send(m, click(l.PrevX, l.ArrowY))
	if m.Index() != 0 {
		t.Errorf("hidden prev arrow moved to %d", m.Index())
	}
	m = send(m, click(l.NextX, l.ArrowY))
	if m.Index() != 1 {
		t.Errorf("next arrow: index = %d, want 1", m.Index())
	}
	m = send(m, click(l.PrevX, l.ArrowY))
	if m.Index() != 0 {
		t.Errorf("prev arrow: index = %d, want 0", m.Index())
	}
}

func TestModel_ActionButtonClick(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	a := m.slide.action
	if a == nil {
		t.Fatal("landing slide should have an action button")
	}
	line := strings.Split(m.slide.content, "\n")[a.Line]
	if !strings.Contains(line, "Launch Mission") {
		t.Fatalf("action line = %q", line)
	}

	m = send(m, click(m.layout.ContentLeft+a.Col+1, m.layout.ContentTop+a.Line))
	if m.Index() != 1 {
		t.Errorf("action click: index = %d, want 1", m.Index())
	}
}

func TestModel_MouseDisabled(t *testing.T) {
	d, _ := deck.Default()
	opts := testOptions(background.KindNone)
	opts.Mouse = false
	m := sized(NewModel(d, opts))

	m = send(m, click(m.layout.DotsLeft+4, m.layout.DotsY))
	if m.Index() != 0 {
		t.Errorf("click with mouse disabled moved to %d", m.Index())
	}
}

func TestModel_ReleaseIgnored(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	msg := click(m.layout.DotsLeft+4, m.layout.DotsY)
	msg.Action = tea.MouseActionRelease
	m = send(m, msg)
	if m.Index() != 0 {
		t.Errorf("release moved to %d", m.Index())
	}
}

func TestModel_BackgroundStepKeepsIndex(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := newTestModel(t, background.KindStarfield)
	m = send(m, keyRunes("3"))
	_ = m.Init()
	defer m.Stop()

	before := m.View()
	for i := 0; i < 20; i++ {
		next, cmd := m.Update(frameMsg{gen: m.animGen})
		m = next.(Model)
		if cmd == nil {
			t.Fatal("frame should schedule the next frame")
		}
		if m.Index() != 2 {
			t.Fatalf("frame %d changed index to %d", i, m.Index())
		}
	}
	after := m.View()
	if before == after {
		t.Error("background did not move")
	}
	if !strings.Contains(after, "3 / 11") {
		t.Error("counter changed during animation")
	}
}

func TestModel_StaleFrameDropped(t *testing.T) {
	m := newTestModel(t, background.KindStarfield)
	_, cmd := m.Update(frameMsg{gen: m.animGen + 1})
	if cmd != nil {
		t.Error("stale frame should not schedule another")
	}
}

func TestModel_BackgroundCycle(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := newTestModel(t, background.KindStarfield)
	m = send(m, keyRunes("4"))
	_ = m.Init()
	defer m.Stop()

	want := []background.Kind{background.KindParticles, background.KindNone, background.KindStarfield}
	for _, kind := range want {
		next, cmd := m.Update(keyRunes("b"))
		m = next.(Model)
		if m.BackgroundKind() != kind {
			t.Fatalf("background = %s, want %s", m.BackgroundKind(), kind)
		}
		if (cmd == nil) != (kind == background.KindNone) {
			t.Errorf("%s: frame command = %v", kind, cmd != nil)
		}
		if m.animator.Running() != (kind != background.KindNone) {
			t.Errorf("%s: animator running = %v", kind, m.animator.Running())
		}
		if m.Index() != 3 {
			t.Errorf("background change moved to %d", m.Index())
		}
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	short := m.layout

	m = send(m, keyRunes("?"))
	if m.layout.FooterHeight <= 1 {
		t.Errorf("full help footer height = %d", m.layout.FooterHeight)
	}
	if m.layout.BodyHeight >= short.BodyHeight {
		t.Error("full help should shrink the body")
	}
	if !strings.Contains(m.View(), "half page down") {
		t.Error("full help not shown")
	}

	m = send(m, keyRunes("?"))
	if m.layout != short {
		t.Error("closing help should restore the layout")
	}
}

func TestModel_ScrollKeys(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	// narrow and short so the genesis slide overflows the panel
	m = send(m, tea.WindowSizeMsg{Width: 60, Height: 14})
	m = send(m, keyRunes("2"))

	m = send(m, keyRunes("j"))
	if m.viewport.YOffset != 1 {
		t.Errorf("j: offset = %d, want 1", m.viewport.YOffset)
	}
	m = send(m, keyRunes("k"))
	if m.viewport.YOffset != 0 {
		t.Errorf("k: offset = %d, want 0", m.viewport.YOffset)
	}
	m = send(m, keyRunes("j"))
	m = send(m, tea.KeyMsg{Type: tea.KeySpace})
	if m.viewport.YOffset != 0 {
		t.Error("navigation should reset the scroll offset")
	}
}

func writeDeck(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write deck: %v", err)
	}
}

func TestModel_ReloadKeepsDeckOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.yaml")
	writeDeck(t, path, deck.DefaultSource())
	d, err := deck.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	m := sized(NewModel(d, testOptions(background.KindNone)))
	m = send(m, keyRunes("4"))

	writeDeck(t, path, []byte("title: [broken"))
	m = send(m, FileChangedMsg{})

	if m.Deck() != d {
		t.Error("broken reload replaced the deck")
	}
	if m.Index() != 3 {
		t.Errorf("broken reload moved to %d", m.Index())
	}
	msg, isErr := m.Status()
	if !isErr || !strings.HasPrefix(msg, "Reload error") {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}

	updated := strings.Replace(string(deck.DefaultSource()), "title: Pixxel Space", "title: Orbital Review", 1)
	writeDeck(t, path, []byte(updated))
	m = send(m, FileChangedMsg{})

	if m.Deck().Title != "Orbital Review" {
		t.Errorf("reloaded title = %q", m.Deck().Title)
	}
	if m.Index() != 3 {
		t.Errorf("reload moved to %d", m.Index())
	}
	if msg, isErr := m.Status(); isErr || msg != "Reloaded deck" {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
	if !strings.Contains(m.View(), "Orbital Review") {
		t.Error("header not updated after reload")
	}
}

func TestModel_ReloadEmbeddedIsNoop(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	d := m.Deck()
	m = send(m, FileChangedMsg{})
	if m.Deck() != d {
		t.Error("embedded deck should not reload")
	}
	if msg, _ := m.Status(); msg != "" {
		t.Errorf("status = %q", msg)
	}
}

func TestModel_WatchError(t *testing.T) {
	m := newTestModel(t, background.KindNone)
	m = send(m, WatchErrorMsg{Err: errors.New("watched file was removed")})
	msg, isErr := m.Status()
	if !isErr || !strings.Contains(msg, "removed") {
		t.Errorf("status = %q (error=%v)", msg, isErr)
	}
}

func TestModel_StartSlide(t *testing.T) {
	d, _ := deck.Default()
	opts := testOptions(background.KindNone)
	opts.StartSlide = 4
	if m := NewModel(d, opts); m.Index() != 4 {
		t.Errorf("start slide index = %d", m.Index())
	}

	opts.StartSlide = 11
	m := NewModel(d, opts)
	if m.Index() != 0 {
		t.Errorf("out-of-range start index = %d", m.Index())
	}
	if _, isErr := m.Status(); !isErr {
		t.Error("out-of-range start should set an error status")
	}
}

func TestModel_StopIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	m := newTestModel(t, background.KindParticles)
	_ = m.Init()
	m.Stop()
	m.Stop()
	if m.animator.Running() {
		t.Error("animator still running after Stop")
	}
}

func TestRenderSlide(t *testing.T) {
	d, _ := deck.Default()
	out, err := RenderSlide(d, 4, 100, 30, testOptions(background.KindNone))
	if err != nil {
		t.Fatalf("RenderSlide: %v", err)
	}
	for _, want := range []string{"5 / 11", "Funding", "The Fuel", "$97M"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q", want)
		}
	}

	if _, err := RenderSlide(d, 11, 100, 30, testOptions(background.KindNone)); !errors.Is(err, nav.ErrOutOfRange) {
		t.Errorf("RenderSlide(11) err = %v", err)
	}
}
