package util

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", path, err)
	}
	return nil
}

// SafeJoin joins name under root, stripping any path components from name so
// uploaded filenames cannot escape the data directory.
func SafeJoin(root, name string) string {
	return filepath.Join(root, filepath.Base(name))
}

// SHA256HexFromReader fingerprints a stream, typically while it is being
// copied to disk via an io.TeeReader or io.MultiWriter.
func SHA256HexFromReader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
