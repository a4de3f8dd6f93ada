package editor

import (
	"fmt"
	"time"

	"github.com/rootasrole/rar/internal/policy"
)

// optsOf locates the *policy.Opt to mutate for (roleName, taskName): the
// config-wide Global layer when both are empty (the `o` grammar target),
// task scope when taskName is non-empty, else role scope, lazily allocating
// the block (spec §4.9 "set"/"unset" scalar options).
func optsOf(cfg *policy.Config, roleName, taskName string) (**policy.Opt, policy.Layer, error) {
	if roleName == "" {
		return &cfg.Options, policy.LayerGlobal, nil
	}
	role := cfg.FindRole(roleName)
	if role == nil {
		return nil, 0, ErrNotFound
	}
	if taskName == "" {
		return &role.Options, policy.LayerRole, nil
	}
	task := role.FindTask(taskName)
	if task == nil {
		return nil, 0, ErrNotFound
	}
	return &task.Options, policy.LayerTask, nil
}

func ensureOpt(slot **policy.Opt, layer policy.Layer) *policy.Opt {
	if *slot == nil {
		*slot = &policy.Opt{Layer: layer}
	}
	return *slot
}

// SetScalarOption sets one of root/bounding/authentication/wildcard_denied
// on the role (taskName == "") or task option block.
func SetScalarOption(cfg *policy.Config, roleName, taskName, field, value string) (bool, error) {
	slot, layer, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	opt := ensureOpt(slot, layer)

	switch field {
	case "root":
		b, err := parseRootBehavior(value)
		if err != nil {
			return false, err
		}
		opt.Root = &b
	case "bounding":
		b, err := parseBoundingBehavior(value)
		if err != nil {
			return false, err
		}
		opt.Bounding = &b
	case "authentication":
		b, err := parseAuthBehavior(value)
		if err != nil {
			return false, err
		}
		opt.Authentication = &b
	case "wildcard_denied":
		opt.WildcardDenied = &value
	default:
		return false, fmt.Errorf("unknown scalar option %q", field)
	}
	return true, nil
}

// UnsetScalarOption clears a scalar field so it inherits from the
// surrounding layer again.
func UnsetScalarOption(cfg *policy.Config, roleName, taskName, field string) (bool, error) {
	slot, _, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	if *slot == nil {
		return false, nil
	}
	opt := *slot
	switch field {
	case "root":
		if opt.Root == nil {
			return false, nil
		}
		opt.Root = nil
	case "bounding":
		if opt.Bounding == nil {
			return false, nil
		}
		opt.Bounding = nil
	case "authentication":
		if opt.Authentication == nil {
			return false, nil
		}
		opt.Authentication = nil
	case "wildcard_denied":
		if opt.WildcardDenied == nil {
			return false, nil
		}
		opt.WildcardDenied = nil
	default:
		return false, fmt.Errorf("unknown scalar option %q", field)
	}
	return true, nil
}

func parseRootBehavior(s string) (policy.RootBehavior, error) {
	switch s {
	case "user":
		return policy.RootUser, nil
	case "privileged":
		return policy.RootPrivileged, nil
	case "inherit":
		return policy.RootInherit, nil
	default:
		return 0, fmt.Errorf("invalid root value %q", s)
	}
}

func parseBoundingBehavior(s string) (policy.BoundingBehavior, error) {
	switch s {
	case "strict":
		return policy.BoundingStrict, nil
	case "ignore":
		return policy.BoundingIgnore, nil
	case "inherit":
		return policy.BoundingInherit, nil
	default:
		return 0, fmt.Errorf("invalid bounding value %q", s)
	}
}

func parseAuthBehavior(s string) (policy.AuthBehavior, error) {
	switch s {
	case "perform":
		return policy.AuthPerform, nil
	case "skip":
		return policy.AuthSkip, nil
	case "inherit":
		return policy.AuthInherit, nil
	default:
		return 0, fmt.Errorf("invalid authentication value %q", s)
	}
}

// PathListKind selects which side of an Opt's PATH policy a mutation
// targets (spec §4.9 whitelist/blacklist qualifiers for the `path` list).
type PathListKind int

const (
	PathAdd PathListKind = iota
	PathSub
)

func ensurePath(opt *policy.Opt) *policy.PathOptions {
	if opt.Path == nil {
		opt.Path = &policy.PathOptions{Default: policy.PathInherit}
	}
	return opt.Path
}

func pathListFor(p *policy.PathOptions, kind PathListKind) *[]string {
	if kind == PathSub {
		return &p.Sub
	}
	return &p.Add
}

// AddPath appends value to the Add or Sub list of (roleName, taskName)'s
// path option block, allocating the role/task/global option block and its
// Path field as needed.
func AddPath(cfg *policy.Config, roleName, taskName string, kind PathListKind, value string) (bool, error) {
	slot, layer, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	list := pathListFor(ensurePath(ensureOpt(slot, layer)), kind)
	for _, p := range *list {
		if p == value {
			return false, nil
		}
	}
	*list = append(*list, value)
	return true, nil
}

// DelPath removes value from the chosen path list, a no-op if it isn't
// present.
func DelPath(cfg *policy.Config, roleName, taskName string, kind PathListKind, value string) (bool, error) {
	slot, _, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	if *slot == nil || (*slot).Path == nil {
		return false, nil
	}
	list := pathListFor((*slot).Path, kind)
	for i, p := range *list {
		if p == value {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// EnvListKind selects which of an Opt's env lists a mutation targets: Keep
// (whitelist), Delete (blacklist), or Check (checklist, spec §4.9's
// checklist qualifier).
type EnvListKind int

const (
	EnvKeepList EnvListKind = iota
	EnvDeleteList
	EnvCheckList
)

func ensureEnv(opt *policy.Opt) *policy.EnvOptions {
	if opt.Env == nil {
		opt.Env = &policy.EnvOptions{Default: policy.EnvInherit}
	}
	return opt.Env
}

func envListFor(e *policy.EnvOptions, kind EnvListKind) *[]policy.EnvKey {
	switch kind {
	case EnvDeleteList:
		return &e.Delete
	case EnvCheckList:
		return &e.Check
	default:
		return &e.Keep
	}
}

// AddEnv validates name as an environment variable identifier or wildcard
// pattern and appends it to the chosen env list.
func AddEnv(cfg *policy.Config, roleName, taskName string, kind EnvListKind, name string) (bool, error) {
	key, err := policy.NewEnvKey(name)
	if err != nil {
		return false, err
	}
	slot, layer, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	list := envListFor(ensureEnv(ensureOpt(slot, layer)), kind)
	for _, k := range *list {
		if k.String() == key.String() {
			return false, nil
		}
	}
	*list = append(*list, key)
	return true, nil
}

// DelEnv removes name from the chosen env list, a no-op if it isn't present.
func DelEnv(cfg *policy.Config, roleName, taskName string, kind EnvListKind, name string) (bool, error) {
	slot, _, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	if *slot == nil || (*slot).Env == nil {
		return false, nil
	}
	list := envListFor((*slot).Env, kind)
	for i, k := range *list {
		if k.String() == name {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// SetTimeout sets the credential cache timeout of (roleName, taskName)'s
// option block (spec §3 `timeout`).
func SetTimeout(cfg *policy.Config, roleName, taskName string, timeoutType policy.TimeoutType, duration time.Duration, maxUsage uint) (bool, error) {
	slot, layer, err := optsOf(cfg, roleName, taskName)
	if err != nil {
		return false, err
	}
	opt := ensureOpt(slot, layer)
	next := policy.Timeout{Type: timeoutType, Duration: duration, MaxUsage: maxUsage}
	if opt.Timeout != nil && *opt.Timeout == next {
		return false, nil
	}
	opt.Timeout = &next
	return true, nil
}

// ParseTimeoutType parses the `type` argument of a set-timeout mutation.
func ParseTimeoutType(s string) (policy.TimeoutType, error) {
	switch s {
	case "ppid":
		return policy.TimeoutPPID, nil
	case "tty":
		return policy.TimeoutTTY, nil
	case "uid":
		return policy.TimeoutUID, nil
	default:
		return 0, fmt.Errorf("invalid timeout type %q: expected ppid, tty or uid", s)
	}
}
