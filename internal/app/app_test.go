package app_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/memo-cli/memo/internal/adapters/fs"
	"github.com/memo-cli/memo/internal/adapters/logger"
	"github.com/memo-cli/memo/internal/adapters/store"
	"github.com/memo-cli/memo/internal/app"
	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor stands in for a child process. It writes a scripted result to
// the live writers and counts how often it runs.
type fakeExecutor struct {
	calls    int
	exitCode int
	stdout   string
	stderr   string
}

func (f *fakeExecutor) Capture(_ context.Context, _ domain.Invocation, stdout, stderr io.Writer) (*domain.Capture, error) {
	f.calls++

	var output []domain.Chunk
	if f.stdout != "" {
		_, _ = io.WriteString(stdout, f.stdout)
		output = append(output, domain.Chunk{Stream: domain.StreamStdout, Data: []byte(f.stdout)})
	}
	if f.stderr != "" {
		_, _ = io.WriteString(stderr, f.stderr)
		output = append(output, domain.Chunk{Stream: domain.StreamStderr, Data: []byte(f.stderr)})
	}

	return &domain.Capture{ExitCode: f.exitCode, Output: output}, nil
}

type fixture struct {
	app    *app.App
	exec   *fakeExecutor
	store  *store.Disk
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	now    *time.Time
	env    map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		exec:   &fakeExecutor{stdout: "hello\n"},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		now:    &time.Time{},
		env:    map[string]string{},
	}
	*f.now = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

	log := logger.New(io.Discard, false)
	f.store = store.NewDisk(domain.StoreConfig{Root: t.TempDir()}, log)
	resolver := fs.NewResolver(func(name string) (string, bool) {
		value, ok := f.env[name]
		return value, ok
	})

	f.app = app.New(
		resolver, f.store, f.exec, log, f.stdout, f.stderr,
		app.WithClock(func() time.Time { return *f.now }),
	)
	return f
}

func (f *fixture) advance(d time.Duration) {
	*f.now = f.now.Add(d)
}

func request() app.Request {
	return app.Request{
		Invocation: domain.Invocation{
			Program: "echo",
			Args:    []string{"hello"},
			WorkDir: "/work",
			User:    "tester",
		},
		Policy: domain.DefaultExitCodePolicy(),
	}
}

func TestApp_RunMissThenHit(t *testing.T) {
	f := newFixture(t)

	code, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, f.exec.calls)
	assert.Equal(t, "hello\n", f.stdout.String())

	f.stdout.Reset()
	code, err = f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, f.exec.calls, "hit must not execute the command again")
	assert.Equal(t, "hello\n", f.stdout.String(), "replay must reproduce the recorded output")
}

func TestApp_RunReplaysStderrToStderr(t *testing.T) {
	f := newFixture(t)
	f.exec.stderr = "warning\n"

	_, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)
	f.stdout.Reset()
	f.stderr.Reset()

	_, err = f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, "hello\n", f.stdout.String())
	assert.Equal(t, "warning\n", f.stderr.String())
}

func TestApp_RunRejectedExitStatusIsNotCached(t *testing.T) {
	f := newFixture(t)
	f.exec.exitCode = 3

	code, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 3, code, "the command's real exit status passes through")

	code, err = f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, 2, f.exec.calls, "a rejected status must not produce a cache entry")
}

func TestApp_RunAcceptedNonZeroStatusIsCached(t *testing.T) {
	f := newFixture(t)
	f.exec.exitCode = 3

	policy, err := domain.ParseExitCodePolicy("0-5")
	require.NoError(t, err)
	req := request()
	req.Policy = policy

	code, err := f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, code)

	code, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, code, "replay returns the recorded exit status")
	assert.Equal(t, 1, f.exec.calls)
}

func TestApp_RunExpiredEntryExecutesAgain(t *testing.T) {
	f := newFixture(t)
	cacheFor := time.Hour
	req := request()
	req.CacheFor = &cacheFor

	_, err := f.app.Run(context.Background(), req)
	require.NoError(t, err)

	f.advance(30 * time.Minute)
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.exec.calls, "entry is still fresh before its expiry")

	f.advance(31 * time.Minute)
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, f.exec.calls, "an expired entry is a miss")
}

func TestApp_LookBackFiltersWithoutDeleting(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)

	lookBack := 10 * time.Minute
	req := request()
	req.LookBack = &lookBack

	f.advance(5 * time.Minute)
	code, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 0, code, "entry within the look-back window is a hit")

	f.advance(10 * time.Minute)
	code, err = f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 1, code, "entry beyond the look-back window is a miss")

	// The look-back filter is read-time only; a wider window still sees
	// the entry.
	code, err = f.app.Test(request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestApp_TestNeverExecutes(t *testing.T) {
	f := newFixture(t)

	code, err := f.app.Test(request())
	require.NoError(t, err)
	assert.Equal(t, 1, code)
	assert.Equal(t, 0, f.exec.calls)
}

func TestApp_ReadMissUsesMissCode(t *testing.T) {
	f := newFixture(t)

	code, err := f.app.Read(request(), 42)
	require.NoError(t, err)
	assert.Equal(t, 42, code)
	assert.Equal(t, 0, f.exec.calls)
	assert.Empty(t, f.stdout.String())
}

func TestApp_ReadHitReplays(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)
	f.stdout.Reset()

	code, err := f.app.Read(request(), 42)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", f.stdout.String())
	assert.Equal(t, 1, f.exec.calls)
}

func TestApp_ForceBypassesFreshEntry(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)

	f.exec.stdout = "fresh output\n"
	f.stdout.Reset()
	code, err := f.app.Force(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 2, f.exec.calls)
	assert.Equal(t, "fresh output\n", f.stdout.String())

	// The forced run replaced the entry.
	f.stdout.Reset()
	_, err = f.app.Run(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, 2, f.exec.calls)
	assert.Equal(t, "fresh output\n", f.stdout.String())
}

func TestApp_RemoveThenMiss(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.Run(context.Background(), request())
	require.NoError(t, err)

	code, err := f.app.Remove(request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	code, err = f.app.Test(request())
	require.NoError(t, err)
	assert.Equal(t, 1, code)

	code, err = f.app.Remove(request())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEntryNotFound)
	assert.Equal(t, 1, code)
}

func TestApp_HashPrintsKeyWithoutTouchingStore(t *testing.T) {
	f := newFixture(t)

	code, err := f.app.Hash(request())
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	first := f.stdout.String()
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}\n$`), first)
	assert.Equal(t, 0, f.exec.calls)

	f.stdout.Reset()
	_, err = f.app.Hash(request())
	require.NoError(t, err)
	assert.Equal(t, first, f.stdout.String())
}

func TestApp_MissingWatchPathFailsBeforeExecuting(t *testing.T) {
	f := newFixture(t)
	req := request()
	req.Watch.Paths = []string{filepath.Join(t.TempDir(), "absent")}

	code, err := f.app.Run(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWatchPathNotFound)
	assert.Equal(t, 1, code)
	assert.Equal(t, 0, f.exec.calls)
}

func TestApp_WatchedFileChangeInvalidates(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	req := request()
	req.Watch.Paths = []string{path}

	_, err := f.app.Run(context.Background(), req)
	require.NoError(t, err)
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, f.exec.calls)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, f.exec.calls, "changed watched content must map to a new key")
}

func TestApp_WatchedEnvChangeInvalidates(t *testing.T) {
	f := newFixture(t)
	req := request()
	req.Watch.Envs = []string{"BUILD_MODE"}

	f.env["BUILD_MODE"] = "debug"
	_, err := f.app.Run(context.Background(), req)
	require.NoError(t, err)

	f.env["BUILD_MODE"] = "release"
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, f.exec.calls)

	delete(f.env, "BUILD_MODE")
	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 3, f.exec.calls, "unset differs from every set value")
}

func TestApp_ExplainReportsOutcome(t *testing.T) {
	f := newFixture(t)
	f.env["BUILD_MODE"] = "debug"

	req := request()
	req.Watch.Scopes = []string{"ci"}
	req.Watch.Envs = []string{"BUILD_MODE"}

	code, err := f.app.Explain(req)
	require.NoError(t, err)
	assert.Equal(t, 0, code)

	out := f.stdout.String()
	assert.Contains(t, out, "cmd: echo hello\n")
	assert.Contains(t, out, "user: tester\n")
	assert.Contains(t, out, "pwd: /work\n")
	assert.Contains(t, out, `scope: "ci"`)
	assert.Contains(t, out, "  BUILD_MODE=debug\n")
	assert.Regexp(t, `key: [0-9a-f]{64}\n`, out)
	assert.Contains(t, out, "Missing: no entry found in cache")

	_, err = f.app.Run(context.Background(), req)
	require.NoError(t, err)

	f.stdout.Reset()
	_, err = f.app.Explain(req)
	require.NoError(t, err)
	assert.Contains(t, f.stdout.String(), "Fresh: entry available in cache")
}

func TestApp_ExplainExcludedConstituentsAreOmitted(t *testing.T) {
	f := newFixture(t)
	req := request()
	req.Watch.ExcludePwd = true
	req.Watch.ExcludeUser = true

	_, err := f.app.Explain(req)
	require.NoError(t, err)

	out := f.stdout.String()
	assert.NotContains(t, out, "pwd:")
	assert.NotContains(t, out, "user:")
}

func TestApp_ExplainReportsExpiry(t *testing.T) {
	f := newFixture(t)
	cacheFor := time.Minute
	req := request()
	req.CacheFor = &cacheFor

	_, err := f.app.Run(context.Background(), req)
	require.NoError(t, err)

	f.advance(2 * time.Minute)
	_, err = f.app.Explain(req)
	require.NoError(t, err)
	assert.Contains(t, f.stdout.String(), "Expired: entry expired 60 seconds ago")
}
