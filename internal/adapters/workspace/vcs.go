package workspace

import (
	"errors"

	"github.com/go-git/go-git/v5"

	"github.com/0xcro3dile/jarvis-go/internal/domain/entities"
)

// VCS reports the git state of root. A directory outside any repository
// yields IsRepo=false; other git errors yield nil.
func (l *Local) VCS(root string) *entities.VCSInfo {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return &entities.VCSInfo{IsRepo: false}
	}
	if err != nil {
		l.logger.Debug().Err(err).Str("root", root).Msg("git open failed")
		return nil
	}

	info := &entities.VCSInfo{IsRepo: true}
	if head, err := repo.Head(); err == nil {
		info.Branch = head.Name().Short()
	}
	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			info.Clean = status.IsClean()
		}
	}
	return info
}
