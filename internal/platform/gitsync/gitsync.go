// Copyright (c) 2026 Echec et Map. All rights reserved.
// Author: app@echec-map.com

/*
Package gitsync pushes mutated data files to the shared git repository.

The flat-file collections (forum CSV, requests CSV, users JSON) live in a git
checkout that doubles as the deployment artifact. After every mutation the
touched files are committed and pushed so other replicas and the maintainers
see the change.

Failure Policy:

  - A sync failure never fails the caller's operation. The in-memory and
    on-disk state already hold the new data; the only degradation is that the
    change is not yet visible remotely.
  - Failed syncs are queued and retried on a cron schedule, so a temporarily
    unreachable remote heals without operator action.

Two processes pushing the same files still race (last writer wins). That is a
known property of the whole flat-file model, accepted for this low-traffic
tool, not something this package attempts to fix.
*/
package gitsync

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// Committer identity used for automated commits.
const (
	commitUserEmail = "app@echec-map.com"
	commitUserName  = "Echec Map Bot"
)

// Syncer is the "persist and sync" collaborator consumed by the stores.
//
// Implementations must be safe for concurrent use.
type Syncer interface {
	// Sync commits and pushes the given paths with the given message.
	// A non-nil error means the remote does not yet have the change; the
	// caller's primary effect still stands.
	Sync(ctx context.Context, message string, paths ...string) error
}

// # Disabled Mode

// Noop is a [Syncer] that does nothing, used when SYNC_ENABLED is off
// and in tests.
type Noop struct{}

// Sync implements [Syncer] by succeeding without side effects.
func (Noop) Sync(context.Context, string, ...string) error { return nil }

// # Git-backed Implementation

// pendingSync is one failed sync awaiting retry.
type pendingSync struct {
	message string
	paths   []string
}

// Git implements [Syncer] by shelling out to the git binary in the data
// repository's working directory.
type Git struct {
	repoDir string
	log     *slog.Logger

	mu      sync.Mutex
	pending []pendingSync
	cron    *cron.Cron
}

// NewGit constructs a [Git] syncer rooted at repoDir.
//
// It verifies the directory is a git work tree up front so misconfiguration
// is reported at startup rather than on the first forum post.
func NewGit(repoDir string, log *slog.Logger) (*Git, error) {
	if _, err := os.Stat(filepath.Join(repoDir, ".git")); err != nil {
		return nil, fmt.Errorf("gitsync: %s is not a git repository: %w", repoDir, err)
	}

	return &Git{repoDir: repoDir, log: log}, nil
}

// StartRetry launches a background cron job that replays failed syncs.
// The schedule uses the robfig/cron syntax (e.g. "@every 5m").
func (g *Git) StartRetry(schedule string) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, g.retryPending)
	if err != nil {
		return fmt.Errorf("gitsync: invalid retry schedule %q: %w", schedule, err)
	}

	c.Start()
	g.cron = c
	return nil
}

// Stop halts the retry scheduler, waiting for a running retry to finish.
func (g *Git) Stop() {
	if g.cron != nil {
		<-g.cron.Stop().Done()
	}
}

// Sync implements [Syncer]. On failure the request is queued for retry
// before the error is returned.
func (g *Git) Sync(ctx context.Context, message string, paths ...string) error {
	if err := g.commitAndPush(ctx, message, paths); err != nil {
		g.mu.Lock()
		g.pending = append(g.pending, pendingSync{message: message, paths: paths})
		g.mu.Unlock()

		g.log.Warn("sync_failed_queued_for_retry",
			slog.String("message", message),
			slog.Any("error", err),
		)
		return err
	}
	return nil
}

// retryPending replays every queued sync; entries that fail again are re-queued.
func (g *Git) retryPending() {
	g.mu.Lock()
	batch := g.pending
	g.pending = nil
	g.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	g.log.Info("retrying_pending_syncs", slog.Int("count", len(batch)))
	for _, p := range batch {
		if err := g.Sync(context.Background(), p.message, p.paths...); err != nil {
			// Sync re-queued it already; stop here so one dead remote
			// doesn't spin through the whole batch every tick.
			return
		}
	}
}

// commitAndPush performs the actual add/commit/push sequence.
func (g *Git) commitAndPush(ctx context.Context, message string, paths []string) error {
	// Local identity config is idempotent and survives fresh clones.
	_ = g.run(ctx, "config", "user.email", commitUserEmail)
	_ = g.run(ctx, "config", "user.name", commitUserName)

	addArgs := append([]string{"add", "--"}, paths...)
	if err := g.run(ctx, addArgs...); err != nil {
		return fmt.Errorf("gitsync: git add: %w", err)
	}

	if err := g.run(ctx, "commit", "-m", message); err != nil {
		// A commit with no changes is not a failure: another mutation in the
		// same process may have already committed these files.
		if strings.Contains(err.Error(), "nothing to commit") {
			return nil
		}
		return fmt.Errorf("gitsync: git commit: %w", err)
	}

	if err := g.run(ctx, "push"); err != nil {
		return fmt.Errorf("gitsync: git push: %w", err)
	}

	return nil
}

// run executes a git subcommand in the repo directory, folding its combined
// output into the returned error.
func (g *Git) run(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoDir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("git %s: %v: %s", args[0], err, strings.TrimSpace(string(output)))
	}
	return nil
}
