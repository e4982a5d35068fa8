package commands

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"time"

	"github.com/memo-cli/memo/internal/app"
	"github.com/memo-cli/memo/internal/core/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.trai.ch/zerr"
)

// Environment variables honored when the corresponding flag is not given.
const (
	envCache           = "MEMO_CACHE"
	envWatchScope      = "MEMO_WATCH_SCOPE"
	envRecordExitCodes = "MEMO_RECORD_EXIT_CODES"
	envCacheFor        = "MEMO_CACHE_FOR"
	envLookBack        = "MEMO_LOOK_BACK"
	envExcludePwd      = "MEMO_EXCLUDE_PWD"
	envExcludeUser     = "MEMO_EXCLUDE_USER"
)

// addCacheFlags registers the cache flags shared by every subcommand.
// Interspersed parsing is disabled so flags following the target command pass
// through to it untouched.
func addCacheFlags(cmd *cobra.Command, withMissCode bool) {
	f := cmd.Flags()
	f.SetInterspersed(false)

	f.StringArray("watch-path", nil, "Include path contents in cache key (repeatable)")
	f.StringArray("watch-scope", nil, "Include given scope string in cache key (repeatable)")
	f.StringArray("watch-env", nil, "Include environment variable value in cache key (repeatable)")
	f.Bool("exclude-pwd", false, "Remove current directory from cache key")
	f.Bool("exclude-user", false, "Remove current user from cache key")
	f.String("cache-for", "", "How long a cached result remains valid (e.g. 30s, 15m, 1h, 5d)")
	f.String("look-back", "", "Only consider cached results created within the given period")
	f.String("record-exit-codes", "", "Exit codes eligible for caching (e.g. 0,10-12,100+)")
	f.String("cache", "", "Directory used as cache root")
	f.Bool("share-cache", false, "Create cache files readable and writable by the group")

	if withMissCode {
		f.Int("cache-miss-exit-code", 1, "Exit code when a cache miss occurs")
	}
}

// collect translates the parsed flags and positional arguments into an
// application request plus the store configuration for this invocation.
func (c *CLI) collect(cmd *cobra.Command, args []string) (app.Request, domain.StoreConfig, error) {
	f := cmd.Flags()

	inv, err := c.invocation(args)
	if err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}

	watch, err := c.watchSpec(f)
	if err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}

	req := app.Request{Invocation: inv, Watch: watch}

	if req.CacheFor, err = durationFlag(f, "cache-for", envCacheFor); err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}
	if req.LookBack, err = durationFlag(f, "look-back", envLookBack); err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}

	if req.Policy, err = c.exitCodePolicy(f); err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}

	cfg, err := c.storeConfig(f)
	if err != nil {
		return app.Request{}, domain.StoreConfig{}, err
	}

	return req, cfg, nil
}

func (c *CLI) invocation(args []string) (domain.Invocation, error) {
	wd, err := os.Getwd()
	if err != nil {
		return domain.Invocation{}, zerr.Wrap(err, "failed to determine working directory")
	}

	return domain.Invocation{
		Program: args[0],
		Args:    args[1:],
		WorkDir: wd,
		User:    username(),
	}, nil
}

func (c *CLI) watchSpec(f *pflag.FlagSet) (domain.WatchSpec, error) {
	paths, _ := f.GetStringArray("watch-path")
	envs, _ := f.GetStringArray("watch-env")

	scopes, _ := f.GetStringArray("watch-scope")
	if len(scopes) == 0 {
		if v, ok := os.LookupEnv(envWatchScope); ok {
			scopes = []string{v}
		} else {
			scopes = c.defaults.WatchScope
		}
	}

	return domain.WatchSpec{
		ExcludePwd:  boolFlag(f, "exclude-pwd", envExcludePwd),
		ExcludeUser: boolFlag(f, "exclude-user", envExcludeUser),
		Paths:       paths,
		Scopes:      scopes,
		Envs:        envs,
	}, nil
}

func (c *CLI) exitCodePolicy(f *pflag.FlagSet) (domain.ExitCodePolicy, error) {
	spec := stringFlag(f, "record-exit-codes", envRecordExitCodes)
	if spec == "" {
		spec = c.defaults.RecordExitCodes
	}
	if spec == "" {
		return domain.DefaultExitCodePolicy(), nil
	}
	return domain.ParseExitCodePolicy(spec)
}

func (c *CLI) storeConfig(f *pflag.FlagSet) (domain.StoreConfig, error) {
	root := stringFlag(f, "cache", envCache)
	if root == "" {
		root = c.defaults.Cache
	}
	if root == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return domain.StoreConfig{}, zerr.Wrap(err, "no cache directory available, pass --cache")
		}
		root = filepath.Join(dir, "memo")
	}

	shared, _ := f.GetBool("share-cache")

	return domain.StoreConfig{
		Root:   root,
		Shared: shared || c.defaults.ShareCache,
	}, nil
}

// missExitCode reads and validates the read-only cache miss exit code.
func missExitCode(f *pflag.FlagSet) (int, error) {
	code, _ := f.GetInt("cache-miss-exit-code")
	if code < 1 || code > 255 {
		return 0, zerr.With(zerr.New("cache-miss-exit-code must be between 1 and 255"), "code", code)
	}
	return code, nil
}

func durationFlag(f *pflag.FlagSet, name, env string) (*time.Duration, error) {
	s := stringFlag(f, name, env)
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseDuration(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// stringFlag returns the flag value when set, falling back to the
// environment variable.
func stringFlag(f *pflag.FlagSet, name, env string) string {
	if f.Changed(name) {
		v, _ := f.GetString(name)
		return v
	}
	if v, ok := os.LookupEnv(env); ok {
		return v
	}
	return ""
}

// boolFlag falls back to the environment variable when the flag itself is
// not given. Values that do not parse as a boolean are ignored.
func boolFlag(f *pflag.FlagSet, name, env string) bool {
	if f.Changed(name) {
		v, _ := f.GetBool(name)
		return v
	}
	if v, ok := os.LookupEnv(env); ok {
		parsed, err := strconv.ParseBool(v)
		return err == nil && parsed
	}
	return false
}

func username() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
