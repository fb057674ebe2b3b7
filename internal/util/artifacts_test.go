package util

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteJSONAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	if err := WriteJSONAtomic(path, map[string]int{"n": 3}); err != nil {
		t.Fatalf("WriteJSONAtomic: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	var got map[string]int
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got["n"] != 3 {
		t.Fatalf("unexpected payload: %v", got)
	}
}

func TestWriteTextAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "material.txt")
	if err := WriteTextAtomic(path, "hello"); err != nil {
		t.Fatalf("WriteTextAtomic: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("unexpected content: %q", string(b))
	}
}
