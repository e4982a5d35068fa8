package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// keyFormat is folded into every key and bumped whenever the serialization
// below changes, so entries written by an incompatible version are never hit.
const keyFormat = "1"

// Field tags for the key serialization. Each serialized field is written as
// tag, uvarint length, bytes, which keeps adjacent fields from bleeding into
// each other and keeps an absent field distinct from an empty one.
const (
	tagFormat   = 'F'
	tagProgram  = 'c'
	tagArg      = 'a'
	tagWorkDir  = 'p'
	tagUser     = 'u'
	tagPath     = 'w'
	tagScope    = 's'
	tagEnvValue = 'v'
	tagEnvUnset = 'x'
)

// CacheKey is the digest identifying one cached invocation, rendered as
// lowercase hex.
type CacheKey string

func (k CacheKey) String() string { return string(k) }

type keyDigest struct {
	h hash.Hash
}

func (d *keyDigest) field(tag byte, value string) {
	var length [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(length[:], uint64(len(value)))
	_, _ = d.h.Write([]byte{tag})
	_, _ = d.h.Write(length[:n])
	_, _ = d.h.Write([]byte(value))
}

// BuildKey computes the cache key for an invocation under a watch spec. It is
// a pure function of its inputs: identical inputs in identical order always
// produce the same key, and any change of value, order or inclusion produces
// a different one.
func BuildKey(inv Invocation, spec WatchSpec, watches ResolvedWatches) CacheKey {
	d := keyDigest{h: sha256.New()}

	d.field(tagFormat, keyFormat)
	d.field(tagProgram, inv.Program)
	for _, arg := range inv.Args {
		d.field(tagArg, arg)
	}
	if !spec.ExcludePwd {
		d.field(tagWorkDir, inv.WorkDir)
	}
	if !spec.ExcludeUser {
		d.field(tagUser, inv.User)
	}
	for _, ph := range watches.Paths {
		d.field(tagPath, ph.Hash)
	}
	for _, scope := range watches.Scopes {
		d.field(tagScope, scope)
	}
	for _, env := range watches.Envs {
		if env.Set {
			d.field(tagEnvValue, env.Name+"="+env.Value)
		} else {
			d.field(tagEnvUnset, env.Name)
		}
	}

	return CacheKey(hex.EncodeToString(d.h.Sum(nil)))
}
