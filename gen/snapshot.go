package gen

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"

	"github.com/vmihailenco/msgpack/v5"
)

// Snapshot is a persisted fingerprint of a schema graph. Comparing the
// stored snapshot against the current graph lets callers skip generation
// runs when nothing changed.
type Snapshot struct {
	Nodes []SnapshotNode `msgpack:"nodes"`
}

// SnapshotNode captures one schema.
type SnapshotNode struct {
	Name   string          `msgpack:"name"`
	Table  string          `msgpack:"table"`
	UUID   bool            `msgpack:"uuid"`
	Fields []SnapshotField `msgpack:"fields"`
	// Funcs is the resolved function set, so only/except changes
	// invalidate the snapshot too.
	Funcs []string `msgpack:"funcs"`
}

// SnapshotField captures one field.
type SnapshotField struct {
	Name     string `msgpack:"name"`
	Type     string `msgpack:"type"`
	Optional bool   `msgpack:"optional"`
	Unique   bool   `msgpack:"unique"`
}

// TakeSnapshot fingerprints the graph.
func TakeSnapshot(g *Graph) *Snapshot {
	s := &Snapshot{Nodes: make([]SnapshotNode, 0, len(g.Nodes))}
	for _, t := range g.Nodes {
		n := SnapshotNode{
			Name:  t.Name,
			Table: t.Table(),
			UUID:  t.UUID,
			Funcs: t.Functions(),
		}
		for _, f := range t.Fields {
			n.Fields = append(n.Fields, SnapshotField{
				Name:     f.Name,
				Type:     f.Type,
				Optional: f.Optional,
				Unique:   f.Unique,
			})
		}
		s.Nodes = append(s.Nodes, n)
	}
	return s
}

// Equal reports whether both snapshots describe the same graph.
func (s *Snapshot) Equal(other *Snapshot) bool {
	if s == nil || other == nil {
		return s == other
	}
	return reflect.DeepEqual(s, other)
}

// Store persists snapshots between generator runs.
type Store interface {
	// Load returns the stored snapshot, or nil when none exists.
	Load() (*Snapshot, error)
	// Save replaces the stored snapshot.
	Save(*Snapshot) error
}

// FileStore persists snapshots as a msgpack file.
type FileStore struct {
	Path string
}

// Load implements Store.
func (st *FileStore) Load() (*Snapshot, error) {
	buf, err := os.ReadFile(st.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := &Snapshot{}
	if err := msgpack.Unmarshal(buf, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Save implements Store.
func (st *FileStore) Save(s *Snapshot) error {
	buf, err := msgpack.Marshal(s)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(st.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(st.Path, buf, 0o644)
}

// Changed reports whether the graph differs from the stored snapshot.
func Changed(store Store, g *Graph) (bool, error) {
	prev, err := store.Load()
	if err != nil {
		return false, err
	}
	return !TakeSnapshot(g).Equal(prev), nil
}
