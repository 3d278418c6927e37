package filewalker

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

// ChangedSince lists files under dir that differ between the commit base
// and the working tree, plus untracked files. Paths are absolute.
func ChangedSince(ctx context.Context, dir, base string) (map[string]struct{}, error) {
	root, err := gitOutput(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, err
	}
	root = strings.TrimSpace(root)

	diff, err := gitOutput(ctx, dir, "diff", "--name-only", base, "--")
	if err != nil {
		return nil, err
	}
	untracked, err := gitOutput(ctx, dir, "ls-files", "--others", "--exclude-standard", "--full-name")
	if err != nil {
		return nil, err
	}

	changed := make(map[string]struct{})
	for _, out := range []string{diff, untracked} {
		scanner := bufio.NewScanner(strings.NewReader(out))
		for scanner.Scan() {
			if line := strings.TrimSpace(scanner.Text()); line != "" {
				changed[filepath.Join(root, filepath.FromSlash(line))] = struct{}{}
			}
		}
	}

	log.Debug().Str("base", base).Int("files", len(changed)).Msg("files changed in git")
	return changed, nil
}

// KeepChanged filters files down to those present in changed.
func KeepChanged(files []string, changed map[string]struct{}) []string {
	var out []string
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		if _, ok := changed[abs]; ok {
			out = append(out, f)
		}
	}
	return out
}

func gitOutput(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return string(out), nil
}
