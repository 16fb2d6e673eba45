package graph

import (
	"fmt"
	"os"
	"path/filepath"
)

// atomicWriteFile writes the bytes produced by write to a temporary file in
// the same directory as path, then renames it into place. A build that
// fails partway through never leaves a partially-written artefact visible
// under its final name (§4.8, §7).
func atomicWriteFile(path string, write func(f *os.File) error) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-"+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("graph: creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("graph: writing %s: %w", path, err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("graph: syncing %s: %w", path, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("graph: closing %s: %w", path, err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("graph: renaming into place %s: %w", path, err)
	}
	return nil
}
