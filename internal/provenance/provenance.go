// Package provenance resolves the commit a build's sources were taken from.
package provenance

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// ShortHashLen is the number of hex digits kept from the commit hash.
const ShortHashLen = 12

// ErrNoCommit is returned when dir is not inside a git repository or the
// repository has no commits yet.
var ErrNoCommit = errors.New("no commit found")

// Commit returns the short HEAD commit hash of the git repository containing
// dir. Parent directories are searched for the repository root.
func Commit(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%s: %w", dir, ErrNoCommit)
		}
		return "", fmt.Errorf("open repository: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", fmt.Errorf("%s: %w", dir, ErrNoCommit)
		}
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}

	hash := head.Hash().String()
	if len(hash) > ShortHashLen {
		hash = hash[:ShortHashLen]
	}
	return hash, nil
}
