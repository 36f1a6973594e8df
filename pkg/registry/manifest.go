// Package registry loads Plait block libraries: directories of guest-code
// exports described by a plait.yaml manifest, resolvable by name and
// semantic-version constraint from a directory tree or a git repository.
package registry

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"plait/interpreter-go/pkg/ast"
)

// Manifest represents the parsed contents of plait.yaml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Language     string
	Description  string
	Exports      map[string]*ExportSpec
	ExportOrder  []string
	Dependencies map[string]*DependencySpec
}

// ExportSpec describes one named guest-code block.
type ExportSpec struct {
	Name    string
	Code    string
	Returns string
}

// DependencySpec describes a dependency on another block library.
type DependencySpec struct {
	Constraint string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ManifestFileName is the manifest file every block library carries.
const ManifestFileName = "plait.yaml"

// LoadManifest parses plait.yaml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

type manifestFile struct {
	Name         string                `yaml:"name"`
	Version      string                `yaml:"version"`
	Language     string                `yaml:"language"`
	Description  string                `yaml:"description"`
	Exports      map[string]exportFile `yaml:"exports"`
	Dependencies map[string]string     `yaml:"dependencies"`
}

type exportFile struct {
	Code    string `yaml:"code"`
	Returns string `yaml:"returns"`
}

func (f *manifestFile) toManifest(path string) *Manifest {
	m := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(f.Name),
		Version:      strings.TrimSpace(f.Version),
		Language:     strings.TrimSpace(f.Language),
		Description:  strings.TrimSpace(f.Description),
		Exports:      make(map[string]*ExportSpec, len(f.Exports)),
		Dependencies: make(map[string]*DependencySpec, len(f.Dependencies)),
	}
	for name, export := range f.Exports {
		m.Exports[name] = &ExportSpec{
			Name:    name,
			Code:    export.Code,
			Returns: strings.TrimSpace(export.Returns),
		}
		m.ExportOrder = append(m.ExportOrder, name)
	}
	sort.Strings(m.ExportOrder)
	for name, constraint := range f.Dependencies {
		m.Dependencies[name] = &DependencySpec{Constraint: strings.TrimSpace(constraint)}
	}
	return m
}

var knownReturnTypes = map[string]func() *ast.Type{
	"":       func() *ast.Type { return nil },
	"int":    ast.TyInt,
	"float":  ast.TyFloat,
	"bool":   ast.TyBool,
	"string": ast.TyString,
	"list":   func() *ast.Type { return ast.TyList(ast.TyAny()) },
	"dict":   func() *ast.Type { return ast.TyDict(ast.TyString(), ast.TyAny()) },
}

// ReturnType resolves an export's declared return type descriptor.
func (e *ExportSpec) ReturnType() *ast.Type {
	if build, ok := knownReturnTypes[e.Returns]; ok {
		return build()
	}
	return ast.TyStruct(e.Returns)
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version == "" {
		errs.Issues = append(errs.Issues, "version must be provided")
	} else if !validVersion(m.Version) {
		errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
	}
	if m.Language == "" {
		errs.Issues = append(errs.Issues, "language must be provided")
	}
	if len(m.Exports) == 0 {
		errs.Issues = append(errs.Issues, "at least one export must be provided")
	}
	for name, export := range m.Exports {
		if strings.TrimSpace(export.Code) == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("exports.%s: code must not be empty", name))
		}
		if _, known := knownReturnTypes[export.Returns]; !known && !identifierPattern.MatchString(export.Returns) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("exports.%s: invalid return type %q", name, export.Returns))
		}
	}
	for name, dep := range m.Dependencies {
		if dep.Constraint != "" && !isValidVersionConstraint(dep.Constraint) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: invalid version constraint %q", name, dep.Constraint))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

var (
	versionPattern           = regexp.MustCompile(`^[0-9]+(\.[0-9]+){0,2}([\-+][0-9A-Za-z\-\+\.]+)?$`)
	versionConstraintPattern = regexp.MustCompile(`^(>=|<=|>|<|=|\^|~)?\s*[0-9]+(\.[0-9]+){0,2}([\-+][0-9A-Za-z\-\+\.]+)?$`)
	identifierPattern        = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func validVersion(input string) bool {
	return versionPattern.MatchString(strings.TrimSpace(input))
}

func isValidVersionConstraint(input string) bool {
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" || !versionConstraintPattern.MatchString(part) {
			return false
		}
	}
	return true
}
