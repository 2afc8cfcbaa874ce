package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reelsort/internal/storage"
)

// runCLI executes the root command with the given args and returns stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// isolateHome points HOME at a temp dir so CLI tests never touch the real
// user config or data directories.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("output %q does not contain %q", haystack, needle)
	}
}

func TestConfigInitAndValidate(t *testing.T) {
	isolateHome(t)

	tmp := t.TempDir()
	target := filepath.Join(tmp, "config.toml")
	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	// A second init without --overwrite must refuse.
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("config init overwrote an existing file")
	}

	out, err = runCLI(t, "config", "validate", "--path", target)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "is valid")
}

func TestRuleAddListDisableRemove(t *testing.T) {
	isolateHome(t)

	out, err := runCLI(t, "rule", "add",
		"--name", "anime",
		"--priority", "5",
		"--template", "Anime/{title} ({year})/{title} S{season:02d}E{episode:02d}.{ext}",
		"--media-type", "tv",
		"--when", "genre equals Animation",
		"--when", "country in JP,KR")
	if err != nil {
		t.Fatalf("rule add: %v", err)
	}
	requireContains(t, out, "Created rule anime")

	out, err = runCLI(t, "rule", "list")
	if err != nil {
		t.Fatalf("rule list: %v", err)
	}
	requireContains(t, out, "anime")

	id := extractRuleID(t, out)
	if _, err := runCLI(t, "rule", "disable", id); err != nil {
		t.Fatalf("rule disable: %v", err)
	}
	if _, err := runCLI(t, "rule", "remove", id); err != nil {
		t.Fatalf("rule remove: %v", err)
	}

	out, err = runCLI(t, "rule", "list")
	if err != nil {
		t.Fatalf("rule list: %v", err)
	}
	if strings.Contains(out, "anime") {
		t.Fatal("removed rule still listed")
	}
}

func TestRuleAddRejectsBadTemplate(t *testing.T) {
	isolateHome(t)

	_, err := runCLI(t, "rule", "add",
		"--name", "bad",
		"--template", "Movies/{not_a_token}.{ext}")
	if err == nil {
		t.Fatal("rule add accepted an invalid template")
	}
}

// extractRuleID pulls the UUID out of a rule list table.
func extractRuleID(t *testing.T, out string) string {
	t.Helper()
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "anime") {
			continue
		}
		fields := strings.Fields(strings.Trim(line, "│| "))
		if len(fields) > 0 {
			return fields[0]
		}
	}
	t.Fatalf("no rule id found in output:\n%s", out)
	return ""
}

func TestParseConditions(t *testing.T) {
	conditions, err := parseConditions([]string{
		"genre equals Animation",
		"country in JP, KR",
		"keyword contains remux",
	})
	if err != nil {
		t.Fatalf("parseConditions: %v", err)
	}
	if len(conditions) != 3 {
		t.Fatalf("got %d conditions", len(conditions))
	}
	if conditions[0].Field != "genre" || conditions[0].Operator != "equals" || conditions[0].Value != "Animation" {
		t.Fatalf("first condition: %+v", conditions[0])
	}
	if len(conditions[1].Values) != 2 || conditions[1].Values[1] != "KR" {
		t.Fatalf("in condition: %+v", conditions[1])
	}

	if _, err := parseConditions([]string{"genre equals"}); err == nil {
		t.Fatal("malformed condition accepted")
	}
}

func TestCollectFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.mkv", "a.mp4", "notes.txt", "sub/c.mkv"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	adapter, err := storage.NewLocal(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	files, err := collectFiles(context.Background(), adapter, []string{dir})
	if err != nil {
		t.Fatalf("collectFiles: %v", err)
	}
	if len(files) != 3 {
		t.Fatalf("got %d files, want the 3 videos", len(files))
	}
	for i := 1; i < len(files); i++ {
		if files[i-1].Path > files[i].Path {
			t.Fatal("files not sorted")
		}
	}

	if _, err := collectFiles(context.Background(), adapter, []string{t.TempDir()}); err == nil {
		t.Fatal("empty directory should be an error")
	}
}
