package registry

import (
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
)

// OpenGit materializes a registry from a git repository: the repository is
// cloned into dest (a fresh temporary directory when dest is empty) and
// scanned like a directory registry.
func OpenGit(url, dest string) (*DirRegistry, error) {
	if dest == "" {
		tmp, err := os.MkdirTemp("", "plait-registry-*")
		if err != nil {
			return nil, fmt.Errorf("registry: temp dir: %w", err)
		}
		dest = tmp
	}
	if _, err := git.PlainClone(dest, false, &git.CloneOptions{URL: url}); err != nil {
		return nil, fmt.Errorf("registry: clone %s: %w", url, err)
	}
	return OpenDir(dest)
}
