package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kobex777/anymaps/pkg/buildinfo"
	"github.com/kobex777/anymaps/pkg/config"
	"github.com/kobex777/anymaps/pkg/store"
	"github.com/kobex777/anymaps/pkg/topology"
)

// run executes the root command with args and returns what it wrote to its
// own output stream.
func run(t *testing.T, c *CLI, args ...string) (string, error) {
	t.Helper()
	root := c.RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand_Subcommands(t *testing.T) {
	root := testCLI(t).RootCommand()
	want := []string{"parse", "layout", "generate", "enhance", "render", "maps", "serve", "cache", "config", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Find(%q) = %v, %v", name, cmd, err)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	out, err := run(t, testCLI(t), "version", "--json")
	if err != nil {
		t.Fatalf("version --json: %v", err)
	}
	var info buildinfo.Info
	if err := json.Unmarshal([]byte(out), &info); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if info.Version == "" {
		t.Error("version is empty")
	}
}

func TestConfigInitThenShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anymaps.yaml")

	if _, err := run(t, testCLI(t), "--config", path, "config", "init"); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if _, err := run(t, testCLI(t), "--config", path, "config", "init"); err == nil {
		t.Error("second config init succeeded without --force")
	}

	out, err := run(t, testCLI(t), "--config", path, "config", "show", "-f", "json")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	var cfg config.Config
	if err := json.Unmarshal([]byte(out), &cfg); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if cfg.Store.Backend != config.BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Store.Backend, config.BackendFile)
	}
}

func TestStoreFlagOverride(t *testing.T) {
	c := testCLI(t)
	c.backend = "sqlite"
	if _, err := c.config(); err == nil {
		t.Error("config() accepted an unknown --store backend")
	}
}

func TestParseCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "notes.mmd")
	out := filepath.Join(dir, "spec.json")
	src := "```mermaid\nmindmap\n  root((Jazz))\n    Origins\n      New Orleans\n    Swing\n```\n"
	if err := os.WriteFile(in, []byte(src), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, testCLI(t), "parse", in, "-f", "spec", "-o", out); err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	var spec topology.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		t.Fatalf("decode spec: %v", err)
	}
	if spec.Title != "Jazz" || len(spec.Nodes) != 4 {
		t.Errorf("spec = %q with %d nodes, want %q with 4", spec.Title, len(spec.Nodes), "Jazz")
	}
}

func TestGenerateThenRender(t *testing.T) {
	c := testCLI(t)
	storeDir := t.TempDir()
	t.Setenv("ANYMAPS_STORE_DIR", storeDir)
	t.Setenv("ANYMAPS_OWNER", "tester")

	if _, err := run(t, c, "--offline", "generate", "History", "of", "jazz"); err != nil {
		t.Fatalf("generate: %v", err)
	}

	st, err := store.NewFileStore(storeDir)
	if err != nil {
		t.Fatal(err)
	}
	maps, err := st.ListMaps(context.Background(), "tester")
	if err != nil {
		t.Fatal(err)
	}
	if len(maps) != 1 {
		t.Fatalf("saved %d maps, want 1", len(maps))
	}

	out := filepath.Join(t.TempDir(), "jazz.mmd")
	if _, err := run(t, testCLIKeepEnv(), "render", maps[0].ID, "-f", "mermaid", "-o", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "mindmap") {
		t.Errorf("rendered mermaid = %q, want mindmap prefix", data)
	}

	if _, err := run(t, testCLIKeepEnv(), "maps", "delete", maps[0].ID); err != nil {
		t.Fatalf("maps delete: %v", err)
	}
	if m, _ := st.GetMap(context.Background(), maps[0].ID); m != nil {
		t.Error("map still present after delete")
	}
}

// testCLIKeepEnv returns a fresh CLI that shares the current test environment.
func testCLIKeepEnv() *CLI {
	return New(io.Discard, LogInfo)
}
