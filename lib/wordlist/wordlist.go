// Package wordlist loads, fingerprints and fetches password lists.
package wordlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/duke-git/lancet/v2/cryptor"
	"github.com/duke-git/lancet/v2/fileutil"
	"github.com/unclesp1d3r/keysmith/lib/candidate"
)

var (
	// ErrUnsupportedEntry is returned when a JSON list holds something other than strings or numbers.
	ErrUnsupportedEntry = errors.New("unsupported wordlist entry")
	// ErrListNotFound is returned when a named list cannot be resolved.
	ErrListNotFound = errors.New("wordlist not found")
)

// Extensions recognized as password lists.
var Extensions = []string{".txt", ".json"} //nolint:gochecknoglobals // Read-only list of supported extensions

// Info describes a list found in the lists directory.
type Info struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Load reads the list at path and returns its normalized entries.
// JSON files must hold an array of strings or numbers; anything else is read one entry per line.
func Load(path string) ([]string, error) {
	var (
		raw []string
		err error
	)

	if strings.EqualFold(filepath.Ext(path), ".json") {
		raw, err = loadJSON(path)
	} else {
		raw, err = fileutil.ReadFileByLine(path)
	}

	if err != nil {
		return nil, fmt.Errorf("reading wordlist %s: %w", path, err)
	}

	return candidate.Normalize(raw), nil
}

func loadJSON(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()

	var entries []any
	if err := dec.Decode(&entries); err != nil {
		return nil, err
	}

	words := make([]string, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case string:
			words = append(words, v)
		case json.Number:
			words = append(words, v.String())
		default:
			return nil, fmt.Errorf("%w at position %d: %T", ErrUnsupportedEntry, i, entry)
		}
	}

	return words, nil
}

// Count returns the number of candidates the list at path yields.
func Count(path string) (int, error) {
	words, err := Load(path)
	if err != nil {
		return 0, err
	}

	return len(words), nil
}

// Checksum returns the hex MD5 of the file at path.
func Checksum(path string) (string, error) {
	sum, err := cryptor.Md5File(path)
	if err != nil {
		return "", fmt.Errorf("checksumming %s: %w", path, err)
	}

	return sum, nil
}

// List returns the password lists found directly in dir, sorted by name.
// A missing directory yields an empty result.
func List(dir string) ([]Info, error) {
	if !fileutil.IsDir(dir) {
		return nil, nil
	}

	names, err := fileutil.ListFileNames(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	lists := make([]Info, 0, len(names))
	for _, name := range names {
		if !slices.Contains(Extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}

		path := filepath.Join(dir, name)
		st, err := os.Stat(path)
		if err != nil || st.IsDir() {
			continue
		}

		lists = append(lists, Info{Name: name, Path: path, Size: st.Size(), ModTime: st.ModTime()})
	}

	slices.SortFunc(lists, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })

	return lists, nil
}

// Resolve turns a list reference into a path: existing paths are used as given,
// bare names are looked up in dir.
func Resolve(dir, ref string) (string, error) {
	if fileutil.IsExist(ref) {
		return filepath.Abs(ref)
	}

	if dir != "" && filepath.Base(ref) == ref {
		path := filepath.Join(dir, ref)
		if fileutil.IsExist(path) {
			return path, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrListNotFound, ref)
}

// Provider serves lists from the filesystem to the attack engine.
type Provider struct{}

// Load implements engine.WordlistProvider.
func (Provider) Load(path string) ([]string, error) { return Load(path) }

// Checksum implements engine.WordlistProvider.
func (Provider) Checksum(path string) (string, error) { return Checksum(path) }
