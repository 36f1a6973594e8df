package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"plait/interpreter-go/pkg/runtime"
)

// Library is one resolved block library.
type Library struct {
	Manifest *Manifest
	Dir      string
}

// Blocks materializes the library's exports as block handles, in export
// order.
func (l *Library) Blocks() []*runtime.BlockValue {
	out := make([]*runtime.BlockValue, 0, len(l.Manifest.ExportOrder))
	for _, name := range l.Manifest.ExportOrder {
		export := l.Manifest.Exports[name]
		out = append(out, &runtime.BlockValue{
			Name:       name,
			Language:   l.Manifest.Language,
			Source:     export.Code,
			ReturnType: export.ReturnType(),
		})
	}
	return out
}

// Registry resolves a library by name under a version constraint.
type Registry interface {
	Resolve(name, constraint string) (*Library, error)
}

// DirRegistry serves libraries found under a root directory: every
// subdirectory holding a plait.yaml is one candidate.
type DirRegistry struct {
	root      string
	libraries map[string][]*Library
}

// OpenDir scans a directory tree for block libraries. Invalid manifests
// fail the whole open so problems surface early.
func OpenDir(root string) (*DirRegistry, error) {
	r := &DirRegistry{root: root, libraries: make(map[string][]*Library)}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != ManifestFileName {
			return nil
		}
		manifest, err := LoadManifest(path)
		if err != nil {
			return err
		}
		lib := &Library{Manifest: manifest, Dir: filepath.Dir(path)}
		r.libraries[manifest.Name] = append(r.libraries[manifest.Name], lib)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("registry: scan %s: %w", root, err)
	}
	for _, libs := range r.libraries {
		sort.Slice(libs, func(a, b int) bool {
			return semver.Compare(canonical(libs[a].Manifest.Version), canonical(libs[b].Manifest.Version)) > 0
		})
	}
	return r, nil
}

// Names lists the available library names in sorted order.
func (r *DirRegistry) Names() []string {
	names := make([]string, 0, len(r.libraries))
	for name := range r.libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve returns the highest library version satisfying the constraint.
func (r *DirRegistry) Resolve(name, constraint string) (*Library, error) {
	candidates := r.libraries[name]
	if len(candidates) == 0 {
		return nil, fmt.Errorf("registry: no library named %q", name)
	}
	for _, lib := range candidates {
		if Satisfies(lib.Manifest.Version, constraint) {
			return lib, nil
		}
	}
	return nil, fmt.Errorf("registry: no version of %q satisfies %q", name, constraint)
}

// Satisfies reports whether a version meets a constraint. Supported forms:
// empty (any), "^X.Y.Z" (same major, at least given), "~X.Y.Z" (same
// major.minor, at least given), ">=", "<=", ">", "<", "=" and bare exact
// versions. Comma-separated parts must all hold.
func Satisfies(version, constraint string) bool {
	v := canonical(version)
	if !semver.IsValid(v) {
		return false
	}
	constraint = strings.TrimSpace(constraint)
	if constraint == "" {
		return true
	}
	for _, part := range strings.Split(constraint, ",") {
		if !satisfiesOne(v, strings.TrimSpace(part)) {
			return false
		}
	}
	return true
}

func satisfiesOne(v, part string) bool {
	switch {
	case strings.HasPrefix(part, "^"):
		want := canonical(strings.TrimSpace(part[1:]))
		return semver.Major(v) == semver.Major(want) && semver.Compare(v, want) >= 0
	case strings.HasPrefix(part, "~"):
		want := canonical(strings.TrimSpace(part[1:]))
		return semver.MajorMinor(v) == semver.MajorMinor(want) && semver.Compare(v, want) >= 0
	case strings.HasPrefix(part, ">="):
		return semver.Compare(v, canonical(strings.TrimSpace(part[2:]))) >= 0
	case strings.HasPrefix(part, "<="):
		return semver.Compare(v, canonical(strings.TrimSpace(part[2:]))) <= 0
	case strings.HasPrefix(part, ">"):
		return semver.Compare(v, canonical(strings.TrimSpace(part[1:]))) > 0
	case strings.HasPrefix(part, "<"):
		return semver.Compare(v, canonical(strings.TrimSpace(part[1:]))) < 0
	case strings.HasPrefix(part, "="):
		return semver.Compare(v, canonical(strings.TrimSpace(part[1:]))) == 0
	default:
		return semver.Compare(v, canonical(part)) == 0
	}
}

// canonical normalizes "1.2" style versions into the "v1.2.0" form the
// semver package expects.
func canonical(version string) string {
	version = strings.TrimSpace(version)
	if version == "" {
		return ""
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return semver.Canonical(version)
}
