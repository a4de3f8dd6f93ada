package policy

import (
	"fmt"
	"regexp"
	"time"

	"github.com/gobwas/glob"
)

// Layer identifies where an Opt block sits in the option stack (spec §3,
// §4.7): Default < Global < Role < Task.
type Layer int

const (
	LayerDefault Layer = iota
	LayerGlobal
	LayerRole
	LayerTask
)

func (l Layer) String() string {
	switch l {
	case LayerDefault:
		return "default"
	case LayerGlobal:
		return "global"
	case LayerRole:
		return "role"
	case LayerTask:
		return "task"
	default:
		return "none"
	}
}

// PathBehavior is the PATH policy's default posture (spec §3 path.default).
type PathBehavior int

const (
	PathDelete PathBehavior = iota
	PathKeepSafe
	PathKeepUnsafe
	PathInherit
)

// PathOptions is the `path` option field.
type PathOptions struct {
	Default PathBehavior
	Add     []string // ordered set
	Sub     []string // ordered set
}

// EnvBehavior is the env policy's default posture (spec §3 env.default).
type EnvBehavior int

const (
	EnvDelete EnvBehavior = iota
	EnvKeep
	EnvInherit
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// EnvKey is a validated environment variable name or shell-glob wildcard
// pattern (spec §3 EnvKey).
type EnvKey struct {
	raw      string
	compiled glob.Glob // non-nil only if raw is a wildcard pattern
}

// NewEnvKey validates s as either a POSIX identifier or a wildcard pattern,
// rejecting anything else.
func NewEnvKey(s string) (EnvKey, error) {
	if identRe.MatchString(s) {
		return EnvKey{raw: s}, nil
	}
	g, err := glob.Compile(s)
	if err != nil {
		return EnvKey{}, fmt.Errorf("invalid env key %q: neither an identifier nor a valid wildcard pattern: %w", s, err)
	}
	return EnvKey{raw: s, compiled: g}, nil
}

// String returns the original pattern/identifier text.
func (k EnvKey) String() string { return k.raw }

// IsWildcard reports whether k is a glob pattern rather than a plain
// identifier.
func (k EnvKey) IsWildcard() bool { return k.compiled != nil }

// Matches reports whether k (as an identifier or pattern) matches name.
func (k EnvKey) Matches(name string) bool {
	if k.compiled != nil {
		return k.compiled.Match(name)
	}
	return k.raw == name
}

// EnvOptions is the `env` option field.
type EnvOptions struct {
	Default          EnvBehavior
	Keep             []EnvKey
	Check            []EnvKey
	Delete           []EnvKey
	Set              map[string]string
	OverrideBehavior *bool
}

// RootBehavior controls whether target uid=0 means actual root privileges
// (spec §3 `root`).
type RootBehavior int

const (
	RootUser RootBehavior = iota
	RootPrivileged
	RootInherit
)

func (b RootBehavior) IsPrivileged() bool { return b == RootPrivileged }

// BoundingBehavior controls whether the capability bounding set is strictly
// enforced (spec §3 `bounding`).
type BoundingBehavior int

const (
	BoundingStrict BoundingBehavior = iota
	BoundingIgnore
	BoundingInherit
)

func (b BoundingBehavior) IsStrict() bool { return b == BoundingStrict }

// AuthBehavior controls whether to re-authenticate before exec (spec §3
// `authentication`).
type AuthBehavior int

const (
	AuthPerform AuthBehavior = iota
	AuthSkip
	AuthInherit
)

func (b AuthBehavior) IsSkip() bool { return b == AuthSkip }

// TimeoutType selects what the credential cache's lifetime is keyed on
// (spec §3 `timeout`).
type TimeoutType int

const (
	TimeoutPPID TimeoutType = iota
	TimeoutTTY
	TimeoutUID
)

// Timeout is the credential cache lifetime option.
type Timeout struct {
	Type     TimeoutType
	Duration time.Duration
	MaxUsage uint
}

// Opt is one layer's option block (spec §3 "Opt"); every field is optional,
// meaning "inherit from the surrounding layer".
type Opt struct {
	Layer          Layer
	Path           *PathOptions
	Env            *EnvOptions
	Root           *RootBehavior
	Bounding       *BoundingBehavior
	Authentication *AuthBehavior
	WildcardDenied *string
	Timeout        *Timeout
}
