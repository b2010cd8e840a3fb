package cli

// This file contains Git integration utilities for retrieving
// repository information.

import (
	"fmt"
	"path/filepath"

	"github.com/chipfoundry/caravelsim/model"
	"github.com/go-git/go-git/v5"
)

// gitInfo describes the repository dir belongs to.
func gitInfo(dir string) (*model.Git, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("not in a git repository: %w", err)
	}

	info := &model.Git{}
	if wt, err := repo.Worktree(); err == nil {
		info.Repo = filepath.Base(wt.Filesystem.Root())
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get git HEAD: %w", err)
	}
	info.Commit = head.Hash().String()
	if head.Name().IsBranch() {
		info.Branch = head.Name().Short()
	} else {
		info.Branch = "HEAD"
	}

	return info, nil
}
