package questionbank

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

var languagePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)

// FileLoader reads catalogs from questions_<language>.json files in a
// directory.
type FileLoader struct {
	dir string
}

func NewFileLoader(dir string) *FileLoader {
	return &FileLoader{dir: dir}
}

func (l *FileLoader) LoadCatalog(_ context.Context, language string) (Catalog, error) {
	// The language code becomes part of a file path; reject anything that
	// is not a plain locale code.
	if !languagePattern.MatchString(language) {
		return nil, ErrCatalogNotFound
	}

	path := filepath.Join(l.dir, fmt.Sprintf("questions_%s.json", language))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrCatalogNotFound
		}
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return catalog, nil
}

// StaticLoader serves catalogs from an in-memory map (tests/demos).
type StaticLoader struct {
	catalogs map[string]Catalog
}

func NewStaticLoader(catalogs map[string]Catalog) *StaticLoader {
	return &StaticLoader{catalogs: catalogs}
}

func (l *StaticLoader) LoadCatalog(_ context.Context, language string) (Catalog, error) {
	if catalog, ok := l.catalogs[language]; ok {
		return catalog, nil
	}
	return nil, ErrCatalogNotFound
}
