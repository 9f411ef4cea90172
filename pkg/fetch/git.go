package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/lingo-build/lingo/pkg/manifest"
)

// GitCloneAndCheckout is the default CloneAndCheckoutFunc. It shells out to
// the git binary with terminal prompts disabled.
func GitCloneAndCheckout(ctx context.Context, url, dst string, lock *manifest.VersionLock) (string, error) {
	switch {
	case lock == nil:
		if err := git(ctx, "", "clone", "--quiet", "--depth", "1", url, dst); err != nil {
			return "", err
		}
	case lock.Kind == manifest.LockTag || lock.Kind == manifest.LockBranch:
		// Shallow clone of the ref, falling back to a full clone.
		if err := git(ctx, "", "clone", "--quiet", "--depth", "1", "--branch", lock.Name, "--single-branch", url, dst); err != nil {
			if err := cloneAndCheckout(ctx, url, dst, lock.Name); err != nil {
				return "", err
			}
		}
	case lock.Kind == manifest.LockRev:
		if err := cloneAndCheckout(ctx, url, dst, lock.Name); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported lock %v", lock)
	}
	return gitRevParse(ctx, dst, "HEAD")
}

func cloneAndCheckout(ctx context.Context, url, dst, ref string) error {
	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := git(ctx, "", "clone", "--quiet", "--no-checkout", url, dst); err != nil {
		return err
	}
	return git(ctx, dst, "checkout", "--quiet", ref)
}

func git(ctx context.Context, dir string, args ...string) error {
	if dir != "" {
		args = append([]string{"-C", dir}, args...)
	}
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("git %s failed: %s: %w", args[0], strings.TrimSpace(string(output)), err)
	}
	return nil
}

func gitRevParse(ctx context.Context, repoDir, rev string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", repoDir, "rev-parse", rev)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git rev-parse %s: %w", rev, err)
	}
	return strings.TrimSpace(string(output)), nil
}
