package cli

import (
	"context"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/glitchgen/pkg/batch"
	"github.com/matzehuels/glitchgen/pkg/config"
	"github.com/matzehuels/glitchgen/pkg/errors"
	"github.com/matzehuels/glitchgen/pkg/imagebuf"
	"github.com/matzehuels/glitchgen/pkg/observability"
)

// newTestCLI isolates config and cache dirs and resets global hooks.
func newTestCLI(t *testing.T) *CLI {
	t.Helper()
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Cleanup(observability.Reset)
	return New(io.Discard, LogInfo)
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	root := newTestCLI(t).RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func writeInput(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b := imagebuf.New(40, 30)
	for y := 0; y < 30; y++ {
		for x := 0; x < 40; x++ {
			b.Image().SetNRGBA(x, y, color.NRGBA{R: uint8(x * 6), G: uint8(y * 8), B: 128, A: 255})
		}
	}
	if err := b.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newTestCLI(t).RootCommand()
	want := []string{"apply", "variations", "folder", "generate", "effects", "studio", "history", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	for _, flag := range []string{"config", "seed", "history"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("missing persistent flag --%s", flag)
		}
	}
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.png")
	out := filepath.Join(dir, "out.jpg")

	err := execute(t, "apply", in, "-o", out, "-e", "invert", "-e", "Corruption/Pixel Sort", "--random", "2", "--seed", "5", "--history", "memory")
	if err != nil {
		t.Fatalf("apply error: %v", err)
	}
	got, err := imagebuf.Open(out)
	if err != nil {
		t.Fatalf("output not readable: %v", err)
	}
	if got.Format() != imagebuf.JPEG {
		t.Errorf("output format = %s, want jpeg", got.Format())
	}
}

func TestApplyCommandDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "shot.png")

	if err := execute(t, "apply", in, "--seed", "3"); err != nil {
		t.Fatalf("apply error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "shot-glitched.png")); err != nil {
		t.Errorf("default output missing: %v", err)
	}

	jpg := filepath.Join(dir, "photo.jpg")
	if err := imagebuf.Filled(30, 20, color.NRGBA{R: 90, G: 30, B: 160, A: 255}).Save(jpg); err != nil {
		t.Fatal(err)
	}
	if err := execute(t, "apply", jpg, "-e", "invert", "--history", "memory"); err != nil {
		t.Fatalf("apply jpeg error: %v", err)
	}
	got, err := imagebuf.Open(filepath.Join(dir, "photo-glitched.jpg"))
	if err != nil {
		t.Fatalf("jpeg default output missing: %v", err)
	}
	if got.Format() != imagebuf.JPEG {
		t.Errorf("default output format = %s, want jpeg", got.Format())
	}
}

func TestApplyCommandErrors(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.png")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown effect", []string{"apply", in, "-e", "melt", "--history", "memory"}, errors.ErrCodeUnknownEffect},
		{"missing input", []string{"apply", filepath.Join(dir, "nope.png"), "--history", "memory"}, errors.ErrCodeSourceLoad},
		{"bad format", []string{"apply", in, "-o", filepath.Join(dir, "x.gif"), "--history", "memory"}, errors.ErrCodeUnsupportedFormat},
		{"bad backend", []string{"apply", in, "--history", "s3"}, errors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := execute(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestVariationsCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeInput(t, dir, "in.png")
	out := filepath.Join(dir, "vars")

	if err := execute(t, "variations", in, "-n", "2", "--min", "1", "--max", "3", "-o", out, "--seed", "11"); err != nil {
		t.Fatalf("variations error: %v", err)
	}
	for _, name := range []string{batch.VariationFile(0), batch.VariationFile(1), batch.CollageFile} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}

func TestVariationsCommandBadCollage(t *testing.T) {
	in := writeInput(t, t.TempDir(), "in.png")
	err := execute(t, "variations", in, "--collage", "stretch", "--history", "memory")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want INVALID_INPUT", err)
	}
}

func TestFolderCommand(t *testing.T) {
	dir := t.TempDir()
	good := writeInput(t, dir, "good.png")
	bad := filepath.Join(dir, "bad.png")
	if err := os.WriteFile(bad, []byte("nope"), 0644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out")

	if err := execute(t, "folder", good, bad, "notes.txt", "-o", out, "--seed", "2"); err != nil {
		t.Fatalf("folder error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(out, "good.png")); err != nil {
		t.Errorf("missing output: %v", err)
	}

	err := execute(t, "folder", bad, "-o", filepath.Join(dir, "out2"))
	if err == nil {
		t.Error("folder with only failures should fail")
	}

	err = execute(t, "folder", "a.txt", "b.doc")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("no images error = %v, want INVALID_INPUT", err)
	}
}

func TestGenerateCommand(t *testing.T) {
	out := filepath.Join(t.TempDir(), "gen.png")
	if err := execute(t, "generate", "stripes", "--width", "50", "--height", "20", "-o", out, "--random", "--seed", "4"); err != nil {
		t.Fatalf("generate error: %v", err)
	}
	got, err := imagebuf.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	// A random run may rotate the image.
	if w, h := got.Size(); w*h != 50*20 {
		t.Errorf("size = %dx%d, want 50x20 pixels", w, h)
	}

	if err := execute(t, "generate", "invert", "-o", out); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("non-generator error = %v, want INVALID_INPUT", err)
	}
}

func TestEffectsCommand(t *testing.T) {
	if err := execute(t, "effects"); err != nil {
		t.Errorf("effects error: %v", err)
	}
	if err := execute(t, "effects", "-c", "noise"); err != nil {
		t.Errorf("effects -c noise error: %v", err)
	}
	if err := execute(t, "effects", "-c", "sparkle"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown category error = %v, want INVALID_INPUT", err)
	}
}

func TestConfigInitAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	if err := execute(t, "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init error: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("written config does not load: %v", err)
	}
	if cfg.Variations.Count != batch.DefaultVariationCount {
		t.Errorf("written config count = %d", cfg.Variations.Count)
	}

	if err := execute(t, "--config", path, "config", "init"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v, want INVALID_INPUT", err)
	}
	if err := execute(t, "--config", path, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error: %v", err)
	}
	if err := execute(t, "--config", path, "config", "show"); err != nil {
		t.Errorf("config show error: %v", err)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	c := newTestCLI(t)
	c.seed = 99
	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 99 {
		t.Errorf("Seed = %d, want 99", cfg.Seed)
	}
	want, _ := historyDir()
	if cfg.History.Dir != want {
		t.Errorf("History.Dir = %q, want %q", cfg.History.Dir, want)
	}

	c.backend = config.BackendMemory
	if cfg, err = c.loadConfig(); err != nil || cfg.History.Backend != config.BackendMemory {
		t.Errorf("backend override = %v, %v", cfg, err)
	}
}

func TestCompletionCommand(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		if err := execute(t, "completion", shell); err != nil {
			t.Errorf("completion %s error: %v", shell, err)
		}
	}
	if err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
