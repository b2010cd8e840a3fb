package hashcache

// Package hashcache fingerprints a netlist so a simulation binary is only
// rebuilt when one of its source files changed.

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const chunkSize = 8192

// Digest returns the hex encoded SHA-256 over the contents of files.
// Paths are sorted and deduplicated first, so the order of files never
// affects the result.
func Digest(files []string) (string, error) {
	h := sha256.New()
	buf := make([]byte, chunkSize)
	for _, path := range normalize(files) {
		if err := hashFile(h, path, buf); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Hash is like Digest but reports failures as a descriptive string in
// place of the digest.
func Hash(files []string) string {
	digest, err := Digest(files)
	if err != nil {
		return describe(err)
	}
	return digest
}

func normalize(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, f := range files {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func hashFile(w io.Writer, path string, buf []byte) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := io.CopyBuffer(w, f, buf); err != nil {
		return &fs.PathError{Op: "read", Path: path, Err: err}
	}
	return nil
}

func describe(err error) string {
	path := ""
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		path = pathErr.Path
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return "File not found: " + path
	case errors.Is(err, fs.ErrPermission):
		return "Permission denied: " + path
	}
	return "Read error: " + path
}

// Cache persists the digest of the last netlist seen for one compilation.
type Cache struct {
	// File holding the hex digest
	Path string
}

// New returns a cache stored at path.
func New(path string) *Cache {
	return &Cache{Path: path}
}

// Stored returns the previously persisted digest, or "" if there is none.
func (c *Cache) Stored() string {
	data, err := os.ReadFile(c.Path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// IsSame reports whether files hash to the stored digest. The fresh digest
// replaces the stored one regardless of the outcome. A netlist that cannot be
// hashed never matches.
func (c *Cache) IsSame(files []string) (bool, error) {
	prev := c.Stored()
	digest, digestErr := Digest(files)
	current := digest
	if digestErr != nil {
		current = describe(digestErr)
	}
	if err := c.store(current); err != nil {
		return false, err
	}
	if digestErr != nil || prev == "" {
		return false, nil
	}
	return prev == current, nil
}

// Write persists the digest of files and returns it.
func (c *Cache) Write(files []string) (string, error) {
	current := Hash(files)
	if err := c.store(current); err != nil {
		return "", err
	}
	return current, nil
}

func (c *Cache) store(digest string) error {
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create hash directory: %w", err)
	}
	if err := os.WriteFile(c.Path, []byte(digest), 0o644); err != nil {
		return fmt.Errorf("failed to write hash log %s: %w", c.Path, err)
	}
	return nil
}
