package feed

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xyproto/unzip"
)

// ExtractArchive unpacks a daily bar archive (the exchange distributes day
// files zipped) into destDir and returns the path of the first CSV found.
func ExtractArchive(archivePath, destDir string) (string, error) {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}
	if err := unzip.Extract(archivePath, destDir); err != nil {
		return "", fmt.Errorf("extract %s: %w", archivePath, err)
	}

	var found string
	err := filepath.WalkDir(destDir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found == "" && !d.IsDir() && strings.HasSuffix(strings.ToLower(path), ".csv") {
			found = path
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	if found == "" {
		return "", fmt.Errorf("no CSV inside %s", archivePath)
	}
	return found, nil
}

// Open picks the right reader for a path: .zip archives are extracted next
// to the file, .csv and .csv.xz are read directly.
func Open(path string) (Source, error) {
	if strings.HasSuffix(strings.ToLower(path), ".zip") {
		dest := strings.TrimSuffix(path, filepath.Ext(path))
		csvPath, err := ExtractArchive(path, dest)
		if err != nil {
			return nil, err
		}
		return NewCSVFeed(csvPath)
	}
	return NewCSVFeed(path)
}
