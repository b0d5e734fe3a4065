package signals

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Library reads the file-backed knowledge stores under the mind data root
// (data/mind/<userID>/...). Files are owned by whatever maintains the
// character's narratives; this engine only reads them. A missing or broken
// file yields zero entries, never an error.
type Library struct {
	root string
}

func NewLibrary(root string) *Library {
	if root == "" {
		root = "data/mind"
	}
	return &Library{root: root}
}

func (l *Library) userPath(userID, name string) string {
	return filepath.Join(l.root, userID, name)
}

// loadJSON reads a JSON file into v. Returns false when the file is missing
// or malformed.
func (l *Library) loadJSON(userID, name string, v any) bool {
	b, err := os.ReadFile(l.userPath(userID, name))
	if err != nil {
		return false
	}
	return json.Unmarshal(b, v) == nil
}

// writeJSON is used by seeding tools and tests to populate the stores.
func (l *Library) writeJSON(userID, name string, v any) error {
	path := l.userPath(userID, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Store filenames under data/mind/<userID>/.
const (
	FileUserNarratives      = "user_narratives.json"
	FileCharacterNarratives = "character_narratives.json"
	FileMentalThreads       = "mental_threads.json"
	FileCalendar            = "calendar.json"
)
