package config

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const defaultName = "default"

var ErrProfileName = errors.New("invalid profile name")

// Paths helper for default/profile files.
type Paths struct {
	BaseDir string // base directory, e.g., /opt/bitgen/config
}

func (p Paths) ProfileDir() string {
	return filepath.Join(p.BaseDir, "profiles")
}
func (p Paths) DefaultPath() string {
	return filepath.Join(p.ProfileDir(), defaultName+".yaml")
}
func (p Paths) ProfilePath(name string) string {
	return filepath.Join(p.ProfileDir(), name+".yaml")
}

// Loader reads YAML profiles and merges default → profile.
type Loader struct {
	paths Paths

	mu    sync.RWMutex
	cache map[string]Profile // key: profile name, "default" for default only
}

// NewLoader creates a profile loader with the given base directory.
func NewLoader(baseDir string) *Loader {
	return &Loader{
		paths: Paths{BaseDir: baseDir},
		cache: make(map[string]Profile),
	}
}

func (l *Loader) Paths() Paths { return l.paths }

// Load returns the named profile merged over the default profile. An empty
// name or "default" returns the default profile alone. The default file must
// exist; a missing named profile is treated as empty.
func (l *Loader) Load(name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultName
	}
	if err := checkName(name); err != nil {
		return Profile{}, err
	}

	l.mu.RLock()
	if p, ok := l.cache[name]; ok {
		l.mu.RUnlock()
		return p, nil
	}
	l.mu.RUnlock()

	def, err := readYAML(l.paths.DefaultPath(), true)
	if err != nil {
		return Profile{}, errors.Wrap(err, "read default")
	}
	merged := def
	if name != defaultName {
		prof, err := readYAML(l.paths.ProfilePath(name), false)
		if err != nil {
			return Profile{}, errors.Wrapf(err, "read profile %q", name)
		}
		merged = mergeProfile(def, prof)
	}

	l.mu.Lock()
	l.cache[defaultName] = def
	l.cache[name] = merged
	l.mu.Unlock()

	return merged, nil
}

// Names lists the profiles present on disk, sorted, default included.
func (l *Loader) Names() ([]string, error) {
	files, err := l.Files()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, strings.TrimSuffix(filepath.Base(f), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Files lists the profile files present on disk.
func (l *Loader) Files() ([]string, error) {
	files, err := filepath.Glob(filepath.Join(l.paths.ProfileDir(), "*.yaml"))
	if err != nil {
		return nil, errors.Wrap(err, "list profiles")
	}
	return files, nil
}

// Invalidate clears loader's cache. Call after hot-reload detects changes.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]Profile)
}

func checkName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return errors.Wrapf(ErrProfileName, "%q", name)
	}
	return nil
}

// readYAML loads a YAML file into a Profile. A missing file is an error only
// when required.
func readYAML(path string, required bool) (Profile, error) {
	var p Profile
	b, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return Profile{}, nil
		}
		return Profile{}, err
	}
	if err := yaml.Unmarshal(b, &p); err != nil {
		return Profile{}, errors.Wrapf(err, "parse %s", path)
	}
	return p, nil
}

// mergeProfile overlays b on a: every field set in b wins.
func mergeProfile(a, b Profile) Profile {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Algorithm != "" {
		out.Algorithm = b.Algorithm
	}
	if b.Seed != "" {
		out.Seed = b.Seed
	}
	if b.ProgramEntropy != "" {
		out.ProgramEntropy = b.ProgramEntropy
	}
	if b.PoolSize != nil {
		out.PoolSize = b.PoolSize
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// stream
	if b.Stream.Depth != nil {
		out.Stream.Depth = b.Stream.Depth
	}
	if b.Stream.Ply != nil {
		out.Stream.Ply = b.Stream.Ply
	}
	if b.Stream.PerGen != nil {
		out.Stream.PerGen = b.Stream.PerGen
	}
	if b.Stream.Mode != "" {
		out.Stream.Mode = b.Stream.Mode
	}

	return out
}
