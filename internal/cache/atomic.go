// Package cache provides the atomic-write, corrupt-on-load-resets-empty
// discipline shared by the Index Client cache and the Parse Cache.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// LoadJSON reads path and unmarshals it into v. A missing file is not an
// error: v is left unchanged and ok is false. A present-but-corrupt file
// is reported via corrupt=true; the caller resets that cache to empty
// rather than treating it as fatal.
func LoadJSON(path string, v interface{}) (ok bool, corrupt bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, false
	}
	if len(data) == 0 {
		return false, false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, true
	}
	return true, false
}

// SaveAtomic marshals v and writes it to path by writing to a sibling
// temp file then renaming over the destination, so a crash mid-write
// never leaves a truncated cache file. Sets owner-only permissions
// (0600) before the rename, since cache files may embed index lookup
// results an attacker could use to fingerprint installed packages.
func SaveAtomic(path string, v interface{}) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o600); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}
