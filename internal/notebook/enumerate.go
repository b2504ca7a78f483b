package notebook

import (
	"os"
	"path/filepath"
	"sort"
)

// Enumerate lists the documents in dir whose name ends in ext.
// The result is sorted by name so build order is deterministic.
// Subdirectories and non-matching files are skipped.
func Enumerate(dir, ext string) ([]Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if filepath.Ext(entry.Name()) != ext {
			continue
		}
		docs = append(docs, Document{
			Name: entry.Name(),
			Path: filepath.Join(dir, entry.Name()),
		})
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}
