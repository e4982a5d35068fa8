package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/memo-cli/memo/internal/core/domain"
	"go.trai.ch/zerr"
)

// Explain prints the cache key, its constituent resolved values and the
// current lookup outcome for the request. It always exits 0.
func (a *App) Explain(req Request) (int, error) {
	key, watches, err := a.key(req)
	if err != nil {
		return 1, err
	}

	var sb strings.Builder
	writeConstituents(&sb, req, watches)
	fmt.Fprintf(&sb, "key: %s\n", key)
	fmt.Fprintln(&sb, describeOutcome(a, key, req.LookBack))

	if _, err := fmt.Fprint(a.stdout, sb.String()); err != nil {
		return 1, zerr.Wrap(err, "failed to print explanation")
	}
	return 0, nil
}

func writeConstituents(sb *strings.Builder, req Request, watches domain.ResolvedWatches) {
	fmt.Fprintf(sb, "cmd: %s", req.Invocation.Program)
	for _, arg := range req.Invocation.Args {
		fmt.Fprintf(sb, " %s", arg)
	}
	fmt.Fprintln(sb)

	if !req.Watch.ExcludeUser {
		fmt.Fprintf(sb, "user: %s\n", req.Invocation.User)
	}
	if !req.Watch.ExcludePwd {
		fmt.Fprintf(sb, "pwd: %s\n", req.Invocation.WorkDir)
	}

	if len(watches.Scopes) > 0 {
		fmt.Fprint(sb, "scope:")
		for _, scope := range watches.Scopes {
			fmt.Fprintf(sb, " %q", scope)
		}
		fmt.Fprintln(sb)
	}

	if len(watches.Paths) > 0 {
		fmt.Fprintln(sb, "paths:")
		for _, ph := range watches.Paths {
			fmt.Fprintf(sb, "  %s: %s\n", ph.Path, ph.Hash)
		}
	}

	if len(watches.Envs) > 0 {
		fmt.Fprintln(sb, "env:")
		for _, env := range watches.Envs {
			if env.Set {
				fmt.Fprintf(sb, "  %s=%s\n", env.Name, env.Value)
			} else {
				fmt.Fprintf(sb, "  %s (unset)\n", env.Name)
			}
		}
	}
}

// describeOutcome reads the store directly so expired and stale entries can
// be reported distinctly instead of collapsing into a plain miss.
func describeOutcome(a *App, key domain.CacheKey, lookBack *time.Duration) string {
	entry, err := a.store.Read(key)
	if err != nil {
		return fmt.Sprintf("Unreadable: %s", err)
	}

	now := a.now()
	switch {
	case entry == nil:
		return "Missing: no entry found in cache"
	case entry.ExpiresAt != nil && !now.Before(*entry.ExpiresAt):
		return fmt.Sprintf("Expired: entry expired %d seconds ago", int(now.Sub(*entry.ExpiresAt).Seconds()))
	case lookBack != nil && now.Sub(entry.CreatedAt) > *lookBack:
		return fmt.Sprintf("Stale: entry created %d seconds ago, beyond the look-back window", int(now.Sub(entry.CreatedAt).Seconds()))
	default:
		return "Fresh: entry available in cache"
	}
}
