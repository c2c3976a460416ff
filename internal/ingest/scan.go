// Package ingest discovers report files on disk.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dgallion1/finsight/internal/textextract"
)

// ScanDir returns the supported report files directly inside root, sorted
// by name. Hidden files and subdirectories are ignored.
func ScanDir(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !eligible(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(root, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func eligible(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "~$") {
		return false
	}
	return textextract.IsSupported(name)
}
