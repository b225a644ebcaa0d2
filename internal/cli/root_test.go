package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/phanxgames/showcase"
)

const testCatalog = `{
  "aspectRatio": "16:9",
  "imageHdWidth": 1600,
  "imageSubWidths": [400, 800],
  "categories": [
    {"id": "exterior", "title": "Exterior", "items": [
      {"type": "image", "src": "ext1-{width}.jpg", "title": "Front"},
      {"type": "image", "src": "ext2-{width}.jpg", "title": "Side"}
    ]},
    {"id": "interior", "title": "Interior", "items": [
      {"type": "360", "frames": ["a.jpg", "b.jpg", "c.jpg"], "title": "Spin"}
    ]}
  ]
}`

// writeTemp writes content to name in a fresh temp dir and returns the path.
func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestSetVersion(t *testing.T) {
	SetVersion("1.0.0", "abc123", "2024-01-01")
	defer SetVersion("", "", "")

	if version != "1.0.0" || commit != "abc123" || date != "2024-01-01" {
		t.Errorf("got %q %q %q", version, commit, date)
	}
}

func TestRootSubcommands(t *testing.T) {
	root := NewRootCmd()
	want := []string{"view", "inspect", "widths", "script"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("verbose") == nil || root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing persistent flags")
	}
}

func TestRootOptionsConfig(t *testing.T) {
	path := writeTemp(t, "showcase.toml", `
load_strategy = "speed"
event_prefix = "shop-"
`)
	opts := &rootOptions{configPath: path, verbose: true}
	cfg, err := opts.config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LoadStrategy != showcase.StrategySpeed {
		t.Errorf("LoadStrategy = %v, want speed", cfg.LoadStrategy)
	}
	if cfg.EventPrefix != "shop-" {
		t.Errorf("EventPrefix = %q", cfg.EventPrefix)
	}
	if !cfg.Debug {
		t.Error("verbose should enable debug")
	}
}

func TestRootOptionsConfigFromEnv(t *testing.T) {
	path := writeTemp(t, "env.toml", `load_strategy = "quality"`)
	t.Setenv("SHOWCASE_CONFIG", path)

	cfg, err := (&rootOptions{}).config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LoadStrategy != showcase.StrategyQuality {
		t.Errorf("LoadStrategy = %v, want quality", cfg.LoadStrategy)
	}
}

func TestRootOptionsConfigInvalid(t *testing.T) {
	path := writeTemp(t, "bad.toml", `load_strategy = "fastest"`)
	if _, err := (&rootOptions{configPath: path}).config(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestInspectCmd(t *testing.T) {
	catalog := writeTemp(t, "catalog.json", testCatalog)
	out, err := execute(t, "inspect", catalog, "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"exterior", "interior", "Front", "Spin", "3 items in 2 categories"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestInspectCmdMissingCatalog(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "missing.json"))
	if err == nil {
		t.Error("expected error for missing catalog")
	}
}

func TestWidthsCmd(t *testing.T) {
	catalog := writeTemp(t, "catalog.json", testCatalog)
	out, err := execute(t, "widths", catalog, "--config", filepath.Join(t.TempDir(), "none.toml"),
		"--strategy", "quality", "--viewport", "500")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "(max-width: 400px)") {
		t.Errorf("missing first breakpoint:\n%s", out)
	}
	if !strings.Contains(out, "selected at 500px") || !strings.Contains(out, "800w") {
		t.Errorf("missing selection:\n%s", out)
	}
	if strings.Contains(out, "balanced") {
		t.Errorf("only quality requested:\n%s", out)
	}
}

func TestWidthsCmdBadStrategy(t *testing.T) {
	catalog := writeTemp(t, "catalog.json", testCatalog)
	if _, err := execute(t, "widths", catalog, "--strategy", "fastest"); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestScriptCmd(t *testing.T) {
	catalog := writeTemp(t, "catalog.json", testCatalog)
	script := writeTemp(t, "script.json", `{"steps": [
  {"action": "next"},
  {"action": "wait", "frames": 40},
  {"action": "screenshot", "label": "second"},
  {"action": "category", "category": "interior"},
  {"action": "wait", "frames": 40},
  {"action": "screenshot", "label": "spin"}
]}`)
	out, err := execute(t, "script", catalog, script, "--config", filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatalf("script: %v\n%s", err, out)
	}
	for _, want := range []string{"second", "item 1/3", "spin", "item 2/3", "script finished"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestScriptCmdBadScript(t *testing.T) {
	catalog := writeTemp(t, "catalog.json", testCatalog)
	script := writeTemp(t, "script.json", `{"steps": [{"action": "fly"}]}`)
	if _, err := execute(t, "script", catalog, script); err == nil {
		t.Error("expected error for unknown action")
	}
}
