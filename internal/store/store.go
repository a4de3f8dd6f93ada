package store

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"gopkg.in/yaml.v3"

	"github.com/rootasrole/rar/internal/logger"
	"github.com/rootasrole/rar/internal/policy"
)

// ErrPolicyLoad wraps any failure to read, parse, or validate the policy
// document (spec §2.1 sentinel family).
var ErrPolicyLoad = fmt.Errorf("failed to load policy document")

// Load reads path, parses it as a policy document, and validates every
// invariant of spec §3 before returning the tree (spec §6.1).
func Load(path string) (*policy.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}

	var doc docConfig
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrPolicyLoad, path, err)
	}

	cfg, err := toPolicy(&doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPolicyLoad, err)
	}

	logger.Debug().Str("path", path).Int("roles", len(cfg.Roles)).Msg("policy document loaded")
	return cfg, nil
}

// Save validates cfg, then writes it to path atomically: a temp file in the
// same directory, held under an advisory exclusive flock for the duration
// of the write, renamed into place on success (spec §4.9, §5, §7).
func Save(path string, cfg *policy.Config) error {
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("refusing to persist invalid policy document: %w", err)
	}

	doc := fromPolicy(cfg)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling policy document: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".rootasrole-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("creating temp policy file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if err := unix.Flock(int(tmp.Fd()), unix.LOCK_EX); err != nil {
		tmp.Close()
		return fmt.Errorf("locking temp policy file: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		unix.Flock(int(tmp.Fd()), unix.LOCK_UN)
		tmp.Close()
		return fmt.Errorf("writing policy document: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		unix.Flock(int(tmp.Fd()), unix.LOCK_UN)
		tmp.Close()
		return fmt.Errorf("setting policy file mode: %w", err)
	}

	unix.Flock(int(tmp.Fd()), unix.LOCK_UN)
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp policy file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("finalizing policy document: %w", err)
	}

	logger.Debug().Str("path", path).Msg("policy document saved")
	return nil
}

// Clone returns a deep copy of cfg by round-tripping it through the same
// document schema as Load/Save, so batch editing (internal/editor) can try a
// set of mutations against a scratch copy and discard it on failure. Like
// Save, it does not carry over an Unknown-kind actor's body (see
// docActor.Body).
func Clone(cfg *policy.Config) (*policy.Config, error) {
	doc := fromPolicy(cfg)
	data, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("cloning policy document: %w", err)
	}
	var roundTripped docConfig
	if err := yaml.Unmarshal(data, &roundTripped); err != nil {
		return nil, fmt.Errorf("cloning policy document: %w", err)
	}
	return toPolicy(&roundTripped)
}

// Validate enforces spec §3's Invariants over cfg: unique role names,
// unique explicit task names within a role, and well-formed GroupSets.
func Validate(cfg *policy.Config) error {
	seenRoles := make(map[string]struct{}, len(cfg.Roles))
	for _, role := range cfg.Roles {
		if _, dup := seenRoles[role.Name]; dup {
			return fmt.Errorf("duplicate role name %q", role.Name)
		}
		seenRoles[role.Name] = struct{}{}

		seenTasks := make(map[string]struct{}, len(role.Tasks))
		for _, task := range role.Tasks {
			if !task.Explicit {
				continue
			}
			if _, dup := seenTasks[task.Name]; dup {
				return fmt.Errorf("role %q: duplicate task name %q", role.Name, task.Name)
			}
			seenTasks[task.Name] = struct{}{}
		}

		for _, a := range role.Actors {
			if a.Kind == policy.ActorKindGroup && a.Groups.Len() == 0 {
				return fmt.Errorf("role %q: group actor has an empty GroupSet", role.Name)
			}
		}
	}
	return nil
}
