package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"plait/interpreter-go/pkg/registry"
)

const cliToolVersion = "plait-cli 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		printUsage(stderr)
		return 1
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage(stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(stdout, cliToolVersion)
		return 0
	case "validate":
		return runValidate(args[1:], stdout, stderr)
	case "list":
		return runList(args[1:], stdout, stderr)
	case "resolve":
		return runResolve(args[1:], stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		printUsage(stderr)
		return 1
	}
}

func runValidate(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "plait validate requires exactly one manifest path")
		return 1
	}
	manifest, err := registry.LoadManifest(args[0])
	if err != nil {
		if verr, ok := err.(*registry.ValidationError); ok {
			fmt.Fprintf(stderr, "%s is invalid:\n", args[0])
			for _, issue := range verr.Issues {
				fmt.Fprintf(stderr, "  - %s\n", issue)
			}
			return 1
		}
		fmt.Fprintf(stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s %s (%s): %d exports, %d dependencies\n",
		manifest.Name, manifest.Version, manifest.Language,
		len(manifest.Exports), len(manifest.Dependencies))
	return 0
}

func runList(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "plait list requires exactly one registry directory")
		return 1
	}
	reg, err := openRegistry(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "failed to open registry: %v\n", err)
		return 1
	}
	names := reg.Names()
	if len(names) == 0 {
		fmt.Fprintln(stdout, "registry is empty")
		return 0
	}
	for _, name := range names {
		lib, err := reg.Resolve(name, "")
		if err != nil {
			fmt.Fprintf(stderr, "failed to resolve %s: %v\n", name, err)
			return 1
		}
		exports := make([]string, 0, len(lib.Manifest.ExportOrder))
		exports = append(exports, lib.Manifest.ExportOrder...)
		sort.Strings(exports)
		fmt.Fprintf(stdout, "%s %s (%s): %s\n",
			name, lib.Manifest.Version, lib.Manifest.Language, strings.Join(exports, ", "))
	}
	return 0
}

func runResolve(args []string, stdout, stderr io.Writer) int {
	if len(args) < 2 || len(args) > 3 {
		fmt.Fprintln(stderr, "plait resolve requires a registry directory, a library name and an optional constraint")
		return 1
	}
	constraint := ""
	if len(args) == 3 {
		constraint = args[2]
	}
	reg, err := openRegistry(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "failed to open registry: %v\n", err)
		return 1
	}
	lib, err := reg.Resolve(args[1], constraint)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}
	fmt.Fprintf(stdout, "%s %s -> %s\n", lib.Manifest.Name, lib.Manifest.Version, lib.Dir)
	return 0
}

// openRegistry treats git URLs as clone sources and everything else as a
// local registry root.
func openRegistry(source string) (*registry.DirRegistry, error) {
	if strings.Contains(source, "://") || strings.HasSuffix(source, ".git") {
		return registry.OpenGit(source, "")
	}
	return registry.OpenDir(source)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  plait validate <plait.yaml>")
	fmt.Fprintln(w, "  plait list <registry-dir | git-url>")
	fmt.Fprintln(w, "  plait resolve <registry-dir | git-url> <library> [constraint]")
	fmt.Fprintln(w, "  plait version")
}
