// Package seen persists the set of listing ids already processed, so
// alerts fire at most once per listing across runs.
package seen

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"sort"
)

// Set is an in-memory set of listing identifier strings.
type Set map[string]struct{}

// NewSet creates a set from the given ids.
func NewSet(ids ...string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add marks an id as seen.
func (s Set) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether an id has been seen.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the ids in ascending order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// FileStore persists a Set as a JSON array of strings on disk.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger,
	}
}

// Load reads the seen-set from disk. A missing file, a document that
// is not a JSON array, or any parse failure yields an empty set: a
// corrupted seen-file must not stop a scan, only cause some
// re-notification, which is the safer failure direction.
func (f *FileStore) Load() Set {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("Failed to read seen-file, starting empty", "path", f.path, "error", err)
		}
		return NewSet()
	}

	// Decode with numbers preserved so a numeric-looking id written
	// by some other tool still normalizes to the same string form.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw []any
	if err := dec.Decode(&raw); err != nil {
		f.logger.Warn("Seen-file is not a JSON array, starting empty", "path", f.path, "error", err)
		return NewSet()
	}

	set := make(Set, len(raw))
	for _, v := range raw {
		switch id := v.(type) {
		case string:
			set.Add(id)
		case json.Number:
			set.Add(id.String())
		default:
			f.logger.Warn("Ignoring non-string entry in seen-file", "path", f.path)
		}
	}
	return set
}

// Save writes the seen-set as a sorted, indented JSON array, fully
// replacing prior contents. Sorted output keeps the file diffable.
func (f *FileStore) Save(set Set) error {
	data, err := json.MarshalIndent(set.Sorted(), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, append(data, '\n'), 0o600)
}
