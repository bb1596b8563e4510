package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Inputs names the three source files of an alignment run.
type Inputs struct {
	Video string
	Deck1 string
	Deck2 string
}

// NewInputs creates a placeholder video and two placeholder deck documents
// in a fresh temp directory. The payloads are not real media; tests pair
// them with stubbed binaries.
func NewInputs(t testing.TB) Inputs {
	t.Helper()

	dir := t.TempDir()
	inputs := Inputs{
		Video: filepath.Join(dir, "session.mp4"),
		Deck1: filepath.Join(dir, "deck-one.pdf"),
		Deck2: filepath.Join(dir, "deck-two.pdf"),
	}
	WriteFile(t, inputs.Video, 64)
	WriteFile(t, inputs.Deck1, 64)
	WriteFile(t, inputs.Deck2, 64)
	return inputs
}

// WriteFile fills the target path with the requested number of bytes using a
// simple repeating pattern. A size <= 0 writes a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()

	if size <= 0 {
		size = 1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	const chunkSize = 32 * 1024
	buf := make([]byte, chunkSize)
	for i := range buf {
		buf[i] = 0x42
	}

	remaining := size
	for remaining > 0 {
		toWrite := int64(chunkSize)
		if remaining < toWrite {
			toWrite = remaining
		}
		if _, err := f.Write(buf[:toWrite]); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
		remaining -= toWrite
	}
}
