package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/glitchgen/pkg/batch"
	"github.com/matzehuels/glitchgen/pkg/buildinfo"
	"github.com/matzehuels/glitchgen/pkg/effects"
	"github.com/matzehuels/glitchgen/pkg/engine"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/glitch"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listCategoryStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	statusErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
	promptStyle       = lipgloss.NewStyle().Foreground(colorYellow)
)

func (c *CLI) studioCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "studio [input]",
		Short: "Interactive glitch session with undo",
		Long: `Open an image in an interactive session. Pick effects from the catalog or
use the random presets, undo any step, and save or spin off variations at any
point. Every step is snapshotted in the configured history backend.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, _, err := c.newSession(ctx)
			if err != nil {
				return err
			}
			defer s.Close(ctx)

			m := newStudioModel(ctx, s)
			if len(args) == 1 {
				text, err := openImage(ctx, s, args[0])
				m.finish(opDoneMsg{text: text, err: err})
			}

			// Engine logs would tear through the alt screen.
			prev := c.Logger.GetLevel()
			c.Logger.SetLevel(logQuiet)
			defer c.Logger.SetLevel(prev)

			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			return err
		},
	}
}

// =============================================================================
// Model
// =============================================================================

type promptKind int

const (
	promptNone promptKind = iota
	promptOpen
	promptSave
	promptVariations
	promptGenerate
)

var promptLabels = map[promptKind]string{
	promptOpen:       "Open image",
	promptSave:       "Save as (.png, .jpg)",
	promptVariations: "Variations directory (empty: temp dir)",
	promptGenerate:   "Generator [WxH]",
}

// opDoneMsg reports the end of an engine operation.
type opDoneMsg struct {
	text string
	err  error
}

// studioModel is the bubbletea model of the studio.
type studioModel struct {
	ctx     context.Context
	session *engine.Session
	items   []effects.Effect

	cursor int
	offset int
	height int

	busy   bool
	status opDoneMsg
	info   string // image line, refreshed after each operation

	prompt promptKind
	input  string
}

func newStudioModel(ctx context.Context, s *engine.Session) *studioModel {
	m := &studioModel{
		ctx:     ctx,
		session: s,
		items:   s.Catalog().All(),
		height:  15,
	}
	m.finish(opDoneMsg{text: "o open · g generate"})
	return m
}

// finish records the outcome of an operation.
func (m *studioModel) finish(msg opDoneMsg) {
	m.busy = false
	m.status = msg
	m.info = m.imageLine()
}

// run wraps an operation as a command that reports its outcome.
func (m *studioModel) run(op func() (string, error)) tea.Cmd {
	return func() tea.Msg {
		text, err := op()
		return opDoneMsg{text: text, err: err}
	}
}

func (m *studioModel) Init() tea.Cmd {
	return nil
}

func (m *studioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		m.finish(msg)
		return m, nil
	case tea.WindowSizeMsg:
		m.height = max(msg.Height-10, 5)
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		if m.prompt != promptNone {
			return m, m.updatePrompt(msg)
		}
		return m, m.updateMenu(msg)
	}
	return m, nil
}

func (m *studioModel) updateMenu(msg tea.KeyMsg) tea.Cmd {
	s, ctx := m.session, m.ctx

	switch msg.String() {
	case "q", "esc":
		return tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		m.scroll()
		return nil
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		m.scroll()
		return nil
	case "enter":
		e := m.items[m.cursor]
		return m.start(func() (string, error) {
			if _, err := s.ApplyNamed(ctx, e.ID()); err != nil {
				return "", err
			}
			return "Applied " + e.ID(), nil
		})
	case "r":
		return m.start(func() (string, error) { return describeRun(s.RandomOne(ctx)) })
	case "m":
		return m.start(func() (string, error) { return describeRun(s.RandomMultiple(ctx)) })
	case "n":
		return m.start(func() (string, error) { return describeRun(s.RandomMultipleNoCompression(ctx)) })
	case "u":
		return m.start(func() (string, error) {
			if err := s.Undo(ctx); err != nil {
				return "", err
			}
			return "Undone", nil
		})
	case "o":
		m.prompt = promptOpen
	case "s":
		m.prompt = promptSave
	case "v":
		m.prompt = promptVariations
	case "g":
		m.prompt = promptGenerate
	}
	m.input = ""
	return nil
}

func (m *studioModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		m.prompt = promptNone
		return nil
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
		return nil
	case tea.KeySpace:
		m.input += " "
		return nil
	case tea.KeyRunes:
		m.input += string(msg.Runes)
		return nil
	case tea.KeyEnter:
	default:
		return nil
	}

	kind, input := m.prompt, strings.TrimSpace(m.input)
	m.prompt, m.input = promptNone, ""
	s, ctx := m.session, m.ctx

	switch kind {
	case promptOpen:
		return m.start(func() (string, error) { return openImage(ctx, s, input) })
	case promptSave:
		return m.start(func() (string, error) {
			if err := s.Export(input); err != nil {
				return "", err
			}
			return "Saved " + input, nil
		})
	case promptVariations:
		return m.start(func() (string, error) {
			res, err := s.Variations(ctx, batch.VariationOptions{OutputDir: input})
			if res != nil {
				defer res.Release()
			}
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Wrote %d variations to %s", len(res.Variations)-res.Failed(), res.Dir), nil
		})
	case promptGenerate:
		return m.start(func() (string, error) {
			name, w, h, err := parseGenerateInput(input)
			if err != nil {
				return "", err
			}
			if err := s.Generate(ctx, name, w, h); err != nil {
				return "", err
			}
			return fmt.Sprintf("Generated %s %dx%d", name, w, h), nil
		})
	}
	return nil
}

func (m *studioModel) start(op func() (string, error)) tea.Cmd {
	m.busy = true
	m.status = opDoneMsg{text: "working..."}
	return m.run(op)
}

func (m *studioModel) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.height {
		m.offset = m.cursor - m.height + 1
	}
}

// =============================================================================
// View
// =============================================================================

func (m *studioModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(buildinfo.Title() + " studio"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(m.info))
	b.WriteString("\n\n")

	end := min(m.offset+m.height, len(m.items))
	prevCategory := ""
	if m.offset > 0 {
		prevCategory = m.items[m.offset-1].Category
	}
	for i := m.offset; i < end; i++ {
		e := m.items[i]
		if e.Category != prevCategory {
			b.WriteString(listCategoryStyle.Render(e.Category))
			b.WriteString("\n")
			prevCategory = e.Category
		}
		line := "    " + e.Name
		style := listNormalStyle
		if i == m.cursor {
			line = "  ▸ " + e.Name
			style = listSelectedStyle
		}
		b.WriteString(style.Render(line))
		if tags := effectTags(e); tags != "" {
			b.WriteString("  " + tags)
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.prompt != promptNone:
		b.WriteString(promptStyle.Render(promptLabels[m.prompt]+": ") + m.input + "█")
	case m.status.err != nil:
		b.WriteString(statusErrStyle.Render(iconError + " " + errors.UserMessage(m.status.err)))
	default:
		b.WriteString(StyleDim.Render(iconInfo) + " " + m.status.text)
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("⏎ apply  r random  m multiple  n multiple w/o compression  u undo  s save  v variations  o open  g generate  q quit"))
	return b.String()
}

// imageLine describes the current image, its history depth and where the
// newest snapshot lives.
func (m *studioModel) imageLine() string {
	entries := m.session.History()
	if len(entries) == 0 {
		return "no image"
	}
	top := entries[len(entries)-1]
	return fmt.Sprintf("%dx%d · depth %d · %s", top.Width, top.Height, len(entries), m.session.Location())
}

// =============================================================================
// Helpers
// =============================================================================

func openImage(ctx context.Context, s *engine.Session, path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := s.Load(ctx, path); err != nil {
		return "", err
	}
	return "Opened " + filepath.Base(path), nil
}

func describeRun(res glitch.Result, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return "Applied " + strings.Join(res.Names(), " "+iconArrow+" "), nil
}

// parseGenerateInput parses "name" or "name WxH" (default 800x600).
func parseGenerateInput(input string) (name string, w, h int, err error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return "", 0, 0, errors.New(errors.ErrCodeInvalidInput, "generator name required")
	}
	name, w, h = fields[0], defaultGenerateWidth, defaultGenerateHeight
	if len(fields) > 1 {
		ws, hs, ok := strings.Cut(strings.ToLower(fields[1]), "x")
		if !ok {
			return "", 0, 0, errors.New(errors.ErrCodeInvalidInput, "size must be WxH, got %q", fields[1])
		}
		if w, err = strconv.Atoi(ws); err != nil {
			return "", 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "width")
		}
		if h, err = strconv.Atoi(hs); err != nil {
			return "", 0, 0, errors.Wrap(errors.ErrCodeInvalidInput, err, "height")
		}
	}
	return name, w, h, nil
}
