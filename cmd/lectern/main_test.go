package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lectern/internal/align"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand()
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("output missing %q:\n%s", want, output)
	}
}

// clearKeyEnv keeps ambient credentials from leaking into config loading.
func clearKeyEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LECTERN_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
}

func writeStub(t *testing.T, dir, name, script string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
}

// installStubTools places fake ffprobe/ffmpeg/pdfinfo/pdftoppm binaries on
// PATH. The stubs produce a 30-second video with one stream and decks of 3
// and 2 pages keyed off the document filename.
func installStubTools(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	writeStub(t, dir, "pdfinfo", `#!/bin/sh
case "$@" in
*deck-one*) echo "Pages: 3" ;;
*deck-two*) echo "Pages: 2" ;;
*) echo "Pages: 1" ;;
esac
`)
	writeStub(t, dir, "pdftoppm", `#!/bin/sh
printf 'pagedata'
`)
	writeStub(t, dir, "ffprobe", `#!/bin/sh
cat <<'EOF'
{"streams":[{"codec_type":"video"}],"format":{"duration":"30.0"}}
EOF
`)
	writeStub(t, dir, "ffmpeg", `#!/bin/sh
printf 'framedata'
`)
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeTestInputs(t *testing.T) (video, deck1, deck2 string) {
	t.Helper()
	dir := t.TempDir()
	video = filepath.Join(dir, "session.mp4")
	deck1 = filepath.Join(dir, "deck-one.pdf")
	deck2 = filepath.Join(dir, "deck-two.pdf")
	for _, path := range []string{video, deck1, deck2} {
		if err := os.WriteFile(path, []byte("placeholder"), 0o644); err != nil {
			t.Fatalf("write input %s: %v", path, err)
		}
	}
	return video, deck1, deck2
}

func writeTestConfig(t *testing.T, oracleURL string) string {
	t.Helper()
	content := fmt.Sprintf(`[oracle]
api_key = "test-key"
base_url = %q
model = "test/vision-model"

[sampling]
max_frames = 60
min_interval_seconds = 5

[logging]
level = "error"
`, oracleURL)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// completionBody wraps content in a chat completion response envelope.
func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	})
	if err != nil {
		t.Fatalf("marshal completion: %v", err)
	}
	return body
}

func TestConfigInitWritesSample(t *testing.T) {
	clearKeyEnv(t)
	target := filepath.Join(t.TempDir(), "nested", "config.toml")

	output, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	requireContains(t, output, "Wrote sample configuration to")

	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("read sample config: %v", err)
	}
	if !strings.Contains(string(data), "[oracle]") {
		t.Fatalf("sample config missing [oracle] section:\n%s", data)
	}
}

func TestConfigInitDefaultsToHomePath(t *testing.T) {
	clearKeyEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	output, err := runCLI(t, "config", "init")
	if err != nil {
		t.Fatalf("config init failed: %v\n%s", err, output)
	}
	expected := filepath.Join(home, ".config", "lectern", "config.toml")
	requireContains(t, output, expected)
	if _, err := os.Stat(expected); err != nil {
		t.Fatalf("expected sample at %s: %v", expected, err)
	}
}

func TestConfigInitRefusesExistingFile(t *testing.T) {
	clearKeyEnv(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	if _, err := runCLI(t, "config", "init", "--path", target); err != nil {
		t.Fatalf("first init failed: %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected second init to fail without --overwrite")
	} else if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init --overwrite failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	clearKeyEnv(t)
	path := writeTestConfig(t, "https://example.invalid/api/v1/chat/completions")

	output, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, output)
	}
	requireContains(t, output, "Config path: "+path)
	requireContains(t, output, "Configuration valid.")
}

func TestConfigValidateMissingFileUsesDefaults(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "does-not-exist.toml")

	output, err := runCLI(t, "--config", path, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v\n%s", err, output)
	}
	requireContains(t, output, "defaults were used")
	requireContains(t, output, "Configuration valid.")
}

func TestConfigValidateRejectsBadConfig(t *testing.T) {
	clearKeyEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	bad := "[render]\nscale = -2.0\n"
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := runCLI(t, "--config", path, "config", "validate"); err == nil {
		t.Fatal("expected validation failure for negative render scale")
	} else if !strings.Contains(err.Error(), "render.scale") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPreflightAllChecksPass(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, `{"ok":true}`))
	}))
	defer server.Close()

	path := writeTestConfig(t, server.URL)
	output, err := runCLI(t, "--config", path, "preflight")
	if err != nil {
		t.Fatalf("preflight failed: %v\n%s", err, output)
	}
	for _, want := range []string{"FFprobe", "FFmpeg", "pdfinfo", "pdftoppm", "Alignment oracle", "API reachable", "All checks passed."} {
		requireContains(t, output, want)
	}
}

func TestPreflightReportsMissingKey(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)

	content := "[oracle]\nmodel = \"test/vision-model\"\n"
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	output, err := runCLI(t, "--config", path, "preflight")
	if err == nil {
		t.Fatalf("expected preflight to fail, output:\n%s", output)
	}
	requireContains(t, output, "API key missing")
	if !strings.Contains(err.Error(), "1 preflight check(s) failed") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAlignRequiresAPIKey(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)
	video, deck1, deck2 := writeTestInputs(t)

	content := "[oracle]\nmodel = \"test/vision-model\"\n"
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := runCLI(t, "--config", path, "align", video, deck1, deck2)
	if err == nil {
		t.Fatal("expected align to fail without an api key")
	}
	if !strings.Contains(err.Error(), "api_key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAlignRejectsWrongArgCount(t *testing.T) {
	clearKeyEnv(t)
	path := writeTestConfig(t, "https://example.invalid")

	if _, err := runCLI(t, "--config", path, "align", "only.mp4", "one.pdf"); err == nil {
		t.Fatal("expected arg count error")
	}
}

func TestAlignEndToEnd(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)
	video, deck1, deck2 := writeTestInputs(t)

	oracleContent := `{"transitions":[
		{"timestamp":"00:12","deckId":1,"pageIndex":2,"title":"Motivation","reasoning":"header text","confidence":"High"},
		{"timestamp":"00:03","deckId":1,"pageIndex":1,"title":"Deck One","reasoning":"title slide","confidence":"High"},
		{"timestamp":"00:20","deckId":2,"pageIndex":1,"title":"Deck Two","reasoning":"new template","confidence":"Medium"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, oracleContent))
	}))
	defer server.Close()

	path := writeTestConfig(t, server.URL)
	output, err := runCLI(t, "--config", path, "align", video, deck1, deck2)
	if err != nil {
		t.Fatalf("align failed: %v\n%s", err, output)
	}

	requireContains(t, output, "Aligning recording: "+video)
	requireContains(t, output, "Deck One (3 pages)")
	requireContains(t, output, "Deck Two (2 pages)")
	requireContains(t, output, "Frames sampled: 6")
	requireContains(t, output, "TIMESTAMP")
	for _, ts := range []string{"00:03", "00:12", "00:20"} {
		requireContains(t, output, ts)
	}
	requireContains(t, output, "3 transition(s)")

	// Sorted order: 00:03 prints before 00:12.
	if strings.Index(output, "00:03") > strings.Index(output, "00:12") {
		t.Fatalf("events not sorted by timestamp:\n%s", output)
	}
}

func TestAlignJSONOutput(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)
	video, deck1, deck2 := writeTestInputs(t)

	oracleContent := `{"transitions":[
		{"timestamp":"00:10","deckId":2,"pageIndex":1,"title":"Part Two","reasoning":"layout switch","confidence":"Low"}
	]}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(completionBody(t, oracleContent))
	}))
	defer server.Close()

	path := writeTestConfig(t, server.URL)
	output, err := runCLI(t, "--config", path, "align", video, deck1, deck2, "--json")
	if err != nil {
		t.Fatalf("align --json failed: %v\n%s", err, output)
	}

	var result align.Result
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, output)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.Deck1.Pages != 3 || result.Deck2.Pages != 2 {
		t.Errorf("deck pages = %d/%d, want 3/2", result.Deck1.Pages, result.Deck2.Pages)
	}
	if result.Frames != 6 {
		t.Errorf("frames = %d, want 6", result.Frames)
	}
	if len(result.Events) != 1 {
		t.Fatalf("events = %d, want 1", len(result.Events))
	}
	if result.Events[0].Timestamp != "00:10" || result.Events[0].DeckID != 2 {
		t.Errorf("unexpected event: %+v", result.Events[0])
	}
	if strings.Contains(output, "🔍") {
		t.Error("json output should not include progress text")
	}
}

func TestAlignSurfacesOracleFailure(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)
	video, deck1, deck2 := writeTestInputs(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model overloaded", http.StatusBadGateway)
	}))
	defer server.Close()

	path := writeTestConfig(t, server.URL)
	output, err := runCLI(t, "--config", path, "align", video, deck1, deck2)
	if err == nil {
		t.Fatalf("expected oracle failure, output:\n%s", output)
	}
	if !strings.Contains(err.Error(), "http 502") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAlignMissingInputFile(t *testing.T) {
	clearKeyEnv(t)
	installStubTools(t)
	video, deck1, _ := writeTestInputs(t)
	missing := filepath.Join(t.TempDir(), "absent.pdf")

	path := writeTestConfig(t, "https://example.invalid")
	_, err := runCLI(t, "--config", path, "align", video, deck1, missing)
	if err == nil {
		t.Fatal("expected missing input error")
	}
	if !strings.Contains(err.Error(), "deck 2") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRootHelpListsCommands(t *testing.T) {
	clearKeyEnv(t)
	output, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, want := range []string{"align", "preflight", "config"} {
		requireContains(t, output, want)
	}
}
