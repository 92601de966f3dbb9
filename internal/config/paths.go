package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths is the on-disk layout under the meshbuilder home:
//
//	config.yaml
//	data/meshbuilder.db
//	logs/
//	reports/<company>.md
type Paths struct {
	Base    string
	Config  string
	Data    string
	Logs    string
	Reports string
}

// ResolvePaths roots the layout at $MESHBUILDER_HOME, or ~/.meshbuilder.
// A leading "~/" in MESHBUILDER_HOME is expanded.
func ResolvePaths() (Paths, error) {
	base, err := homeDir()
	if err != nil {
		return Paths{}, err
	}
	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Data:    filepath.Join(base, "data"),
		Logs:    filepath.Join(base, "logs"),
		Reports: filepath.Join(base, "reports"),
	}, nil
}

func homeDir() (string, error) {
	base := os.Getenv("MESHBUILDER_HOME")
	if base != "" && !strings.HasPrefix(base, "~") {
		return base, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if base == "" {
		return filepath.Join(home, ".meshbuilder"), nil
	}
	return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(base, "~"), "/")), nil
}

// EnsureDirs creates the home and its subdirectories, private to the user.
func (p Paths) EnsureDirs() error {
	for _, d := range []string{p.Base, p.Data, p.Logs, p.Reports} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}

// CacheDB is the SQLite discovery cache.
func (p Paths) CacheDB() string {
	return filepath.Join(p.Data, "meshbuilder.db")
}

// Report is where a mesh report with the given file name is written.
func (p Paths) Report(name string) string {
	return filepath.Join(p.Reports, filepath.Base(name))
}

// GetValueAtPath reads a value from a raw config document.
func GetValueAtPath(root map[string]any, path []string) (any, bool) {
	parent := section(root, path[:len(path)-1], false)
	if parent == nil {
		return nil, false
	}
	v, ok := parent[path[len(path)-1]]
	return v, ok
}

// SetValueAtPath stores value in a raw config document. Missing sections
// are created and scalars in the way are replaced by sections.
func SetValueAtPath(root map[string]any, path []string, value any) {
	section(root, path[:len(path)-1], true)[path[len(path)-1]] = value
}

// UnsetValueAtPath deletes a value and reports whether it was present.
func UnsetValueAtPath(root map[string]any, path []string) bool {
	parent := section(root, path[:len(path)-1], false)
	if parent == nil {
		return false
	}
	last := path[len(path)-1]
	if _, ok := parent[last]; !ok {
		return false
	}
	delete(parent, last)
	return true
}

// section walks to the map at path, or returns nil when it is absent and
// create is false.
func section(root map[string]any, path []string, create bool) map[string]any {
	cur := root
	for _, key := range path {
		next, ok := cur[key].(map[string]any)
		if !ok {
			if !create {
				return nil
			}
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	return cur
}
