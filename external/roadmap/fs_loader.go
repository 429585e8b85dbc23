package roadmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/miraihr/mirai/internal/roadmap"
)

// Role names map straight to filenames, so only a conservative charset is
// accepted.
var roleNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// FSLoader reads roadmap documents from a directory of <role>.json files.
type FSLoader struct {
	dir string
}

func NewFSLoader(dir string) *FSLoader {
	return &FSLoader{dir: dir}
}

func (l *FSLoader) Load(role string) (*roadmap.Document, error) {
	if !roleNamePattern.MatchString(role) {
		return nil, roadmap.ErrNotFound
	}

	raw, err := os.ReadFile(filepath.Join(l.dir, role+".json"))
	if os.IsNotExist(err) {
		return nil, roadmap.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read roadmap for %q: %w", role, err)
	}

	var doc roadmap.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode roadmap for %q: %w", role, err)
	}
	doc.Role = role
	return &doc, nil
}
