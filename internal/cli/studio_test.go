package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/engine"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/random"
)

func newTestStudio(t *testing.T) (*studioModel, *engine.Session) {
	t.Helper()
	cfg := config.Default()
	cfg.History.Backend = config.BackendMemory
	s, err := engine.New(context.Background(), engine.Options{
		Config: cfg,
		RNG:    random.New(3),
		Logger: log.NewWithOptions(io.Discard, log.Options{}),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return newStudioModel(context.Background(), s), s
}

// press sends a key and runs the resulting command to completion.
func press(t *testing.T, m *studioModel, key string) {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	case "backspace":
		msg = tea.KeyMsg{Type: tea.KeyBackspace}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if done, ok := cmd().(opDoneMsg); ok {
		m.Update(done)
	}
}

func typeText(t *testing.T, m *studioModel, text string) {
	t.Helper()
	for _, r := range text {
		press(t, m, string(r))
	}
}

func TestStudioWithoutImage(t *testing.T) {
	m, _ := newTestStudio(t)
	press(t, m, "r")
	if !errors.Is(m.status.err, errors.ErrCodeNoImage) {
		t.Errorf("status error = %v, want NO_IMAGE", m.status.err)
	}
	if !strings.Contains(m.View(), "no image") {
		t.Error("view should say no image is loaded")
	}
}

func TestStudioEditUndoSave(t *testing.T) {
	m, s := newTestStudio(t)
	dir := t.TempDir()
	in := writeInput(t, dir, "in.png")

	press(t, m, "o")
	typeText(t, m, in)
	press(t, m, "enter")
	if m.status.err != nil {
		t.Fatalf("open failed: %v", m.status.err)
	}

	press(t, m, "enter") // first catalog effect
	press(t, m, "m")
	press(t, m, "n")
	if got := len(s.History()); got != 4 {
		t.Fatalf("history depth = %d, want 4", got)
	}
	if !strings.Contains(m.View(), "depth 4") {
		t.Errorf("view does not show depth:\n%s", m.View())
	}

	press(t, m, "u")
	if got := len(s.History()); got != 3 {
		t.Errorf("history depth after undo = %d, want 3", got)
	}

	out := filepath.Join(dir, "saved.png")
	press(t, m, "s")
	typeText(t, m, out)
	press(t, m, "enter")
	if m.status.err != nil {
		t.Fatalf("save failed: %v", m.status.err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestStudioUndoAtBase(t *testing.T) {
	m, _ := newTestStudio(t)
	press(t, m, "g")
	typeText(t, m, "plasma 32x16")
	press(t, m, "enter")
	if m.status.err != nil {
		t.Fatalf("generate failed: %v", m.status.err)
	}
	if !strings.Contains(m.info, "32x16") {
		t.Errorf("info = %q, want size 32x16", m.info)
	}

	press(t, m, "u")
	if !errors.Is(m.status.err, errors.ErrCodeEmptyHistory) {
		t.Errorf("undo at base error = %v, want EMPTY_HISTORY", m.status.err)
	}
}

func TestStudioPromptEditing(t *testing.T) {
	m, _ := newTestStudio(t)
	press(t, m, "s")
	typeText(t, m, "abc")
	press(t, m, "backspace")
	if m.input != "ab" {
		t.Errorf("input = %q, want %q", m.input, "ab")
	}
	press(t, m, "esc")
	if m.prompt != promptNone {
		t.Error("esc did not close the prompt")
	}
	// Keys go back to the menu after the prompt closes.
	press(t, m, "down")
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}
}

func TestStudioIgnoresKeysWhileBusy(t *testing.T) {
	m, _ := newTestStudio(t)
	m.busy = true
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd != nil {
		t.Error("busy studio reacted to a key")
	}
}

func TestParseGenerateInput(t *testing.T) {
	tests := []struct {
		in      string
		name    string
		w, h    int
		wantErr bool
	}{
		{"plasma", "plasma", defaultGenerateWidth, defaultGenerateHeight, false},
		{"circles 64x48", "circles", 64, 48, false},
		{"stripes 10X20", "stripes", 10, 20, false},
		{"", "", 0, 0, true},
		{"plasma big", "", 0, 0, true},
		{"plasma ax10", "", 0, 0, true},
	}
	for _, tt := range tests {
		name, w, h, err := parseGenerateInput(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseGenerateInput(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && (name != tt.name || w != tt.w || h != tt.h) {
			t.Errorf("parseGenerateInput(%q) = %q %dx%d", tt.in, name, w, h)
		}
	}
}
