package importer

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
)

// Source yields the raw bytes of one block file.
type Source interface {
	Name() string
	ReadAll() ([]byte, error)
}

type fileSource string

// File returns a Source reading path from disk.
func File(path string) Source { return fileSource(path) }

func (f fileSource) Name() string { return filepath.Base(string(f)) }

func (f fileSource) ReadAll() ([]byte, error) {
	raw, err := os.ReadFile(string(f))
	return raw, errors.Wrapf(err, "read %s", string(f))
}

type memSource struct {
	name string
	raw  []byte
}

// Bytes returns a Source over raw bytes already in memory.
func Bytes(name string, raw []byte) Source { return memSource{name, raw} }

func (m memSource) Name() string             { return m.name }
func (m memSource) ReadAll() ([]byte, error) { return m.raw, nil }

// Files expands paths into file sources. Directories contribute their
// regular files with the given extension. The result is ordered by file
// name, which orders zero-padded block files by number.
func Files(ext string, paths ...string) ([]Source, error) {
	var res []Source
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, errors.Wrap(err, "stat")
		}
		if !info.IsDir() {
			res = append(res, File(p))
			continue
		}
		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrapf(err, "list %s", p)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && filepath.Ext(e.Name()) == ext {
				res = append(res, File(filepath.Join(p, e.Name())))
			}
		}
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Name() < res[j].Name() })
	return res, nil
}
