package domain

import (
	"strconv"
	"strings"

	"go.trai.ch/zerr"
)

// maxExitCode is the highest status a process can report on POSIX systems.
const maxExitCode = 255

// ExitCodePolicy is the set of exit statuses eligible for caching.
type ExitCodePolicy struct {
	accept [maxExitCode + 1]bool
}

// DefaultExitCodePolicy accepts only status 0.
func DefaultExitCodePolicy() ExitCodePolicy {
	var p ExitCodePolicy
	p.accept[0] = true
	return p
}

// ParseExitCodePolicy parses a comma-separated acceptance spec. Each token is
// a literal status ("7"), an inclusive range ("10-12") or an open-ended lower
// bound ("100+").
func ParseExitCodePolicy(spec string) (ExitCodePolicy, error) {
	var p ExitCodePolicy

	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if err := p.parseToken(token); err != nil {
			return ExitCodePolicy{}, err
		}
	}

	return p, nil
}

func (p *ExitCodePolicy) parseToken(token string) error {
	switch {
	case strings.HasSuffix(token, "+"):
		start, err := parseCode(strings.TrimSuffix(token, "+"))
		if err != nil {
			return zerr.With(ErrInvalidExitCodeSpec, "token", token)
		}
		for i := start; i <= maxExitCode; i++ {
			p.accept[i] = true
		}
	case strings.Contains(token, "-"):
		low, high, _ := strings.Cut(token, "-")
		start, err := parseCode(low)
		if err != nil {
			return zerr.With(ErrInvalidExitCodeSpec, "token", token)
		}
		end, err := parseCode(high)
		if err != nil || end < start {
			return zerr.With(ErrInvalidExitCodeSpec, "token", token)
		}
		for i := start; i <= end; i++ {
			p.accept[i] = true
		}
	default:
		code, err := parseCode(token)
		if err != nil {
			return zerr.With(ErrInvalidExitCodeSpec, "token", token)
		}
		p.accept[code] = true
	}
	return nil
}

func parseCode(s string) (int, error) {
	code, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if code < 0 || code > maxExitCode {
		return 0, zerr.With(ErrInvalidExitCodeSpec, "code", code)
	}
	return code, nil
}

// Match reports whether the given exit status is accepted for caching.
func (p ExitCodePolicy) Match(status int) bool {
	if status < 0 || status > maxExitCode {
		return false
	}
	return p.accept[status]
}
