// Package matcher implements the command matcher and command-set evaluator
// of spec §4.1 and §4.2: scoring a single argv against a single policy
// command pattern, and folding a task's allow/deny command lists into a
// single CmdMin or a rejection.
package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
	"github.com/google/shlex"

	"github.com/rootasrole/rar/internal/logger"
	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/score"
)

// ParseCommand splits a policy.Command into the argv it expands to. Simple
// commands are split with POSIX shell-word rules; Complex commands are
// rejected here, and EvaluateCommandList skips them. Nothing in this module
// expands them through plugin.Hooks.ParseComplexCommand.
func ParseCommand(cmd policy.Command) ([]string, error) {
	switch cmd.Kind {
	case policy.CommandSimple:
		words, err := shlex.Split(cmd.Simple)
		if err != nil {
			return nil, fmt.Errorf("invalid command pattern %q: %w", cmd.Simple, err)
		}
		return words, nil
	default:
		return nil, fmt.Errorf("complex command requires a plugin hook")
	}
}

// finalPath canonicalizes path: resolve symlinks/`.`/`..` if it exists on
// disk, else look it up on PATH, else leave it as given (spec §4.1 step 2).
func finalPath(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			return abs
		}
		return resolved
	}
	if found := lookupOnPath(path); found != "" {
		return found
	}
	return path
}

func lookupOnPath(name string) string {
	pathEnv := os.Getenv("PATH")
	for _, dir := range filepath.SplitList(pathEnv) {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// matchPath scores argv[0] against pattern[0] (spec §4.1 steps 1-3).
func matchPath(inputPath, patternPath string) score.CmdMin {
	if patternPath == "**" {
		return score.FullWildcardPath
	}
	newPath := finalPath(inputPath)
	rolePath := finalPath(patternPath)
	if newPath == rolePath {
		return score.Match
	}
	if g, err := glob.Compile(rolePath, '/'); err == nil {
		if g.Match(newPath) {
			return score.WildcardPath
		}
	}
	return score.CmdMinReject()
}

// matchArgs scores argv[1:] against pattern[1:] (spec §4.1 steps 5-6).
func matchArgs(inputArgs, patternArgs []string) (score.CmdMin, error) {
	if len(patternArgs) > 0 && patternArgs[0] == ".*" {
		return score.FullRegexArgs, nil
	}
	commandLine := strings.Join(inputArgs, " ")
	patternLine := strings.Join(patternArgs, " ")
	if commandLine == patternLine {
		return score.Match, nil
	}
	re, err := regexp.Compile("^(?:" + patternLine + ")$")
	if err != nil {
		logger.Warn().Err(err).Str("pattern", patternLine).Msg("malformed command pattern, treating as non-match")
		return score.CmdMinReject(), nil
	}
	if re.MatchString(commandLine) {
		return score.RegexArgs, nil
	}
	return score.CmdMinReject(), nil
}

// MatchCommand implements spec §4.1's match_command operation.
func MatchCommand(argv, pattern []string) score.CmdMin {
	if len(pattern) == 1 && pattern[0] == "**" {
		return score.FullWildcardPath
	}
	if len(argv) == 0 || len(pattern) == 0 {
		return score.CmdMinReject()
	}

	result := matchPath(argv[0], pattern[0])
	if result.IsReject() {
		return score.CmdMinReject()
	}
	if len(pattern) == 1 {
		return result
	}

	var inputArgs []string
	if len(argv) > 1 {
		inputArgs = argv[1:]
	}
	argsResult, err := matchArgs(inputArgs, pattern[1:])
	if err != nil || argsResult.IsReject() {
		return score.CmdMinReject()
	}
	return result | argsResult
}

// EvaluateCommandList implements spec §4.2's evaluate operation: the
// command-set evaluator folding a task's CommandList against argv.
func EvaluateCommandList(argv []string, list policy.CommandList) (score.CmdMin, error) {
	for _, pattern := range list.Sub {
		words, err := patternWords(pattern)
		if err != nil {
			continue
		}
		if !MatchCommand(argv, words).IsReject() {
			return score.CmdMinReject(), ErrForbidden
		}
	}

	if list.Default == policy.SetBehaviorAll {
		return score.CmdMinAll(), nil
	}

	min := score.CmdMinReject()
	found := false
	for _, pattern := range list.Add {
		words, err := patternWords(pattern)
		if err != nil {
			continue
		}
		m := MatchCommand(argv, words)
		if m.IsReject() {
			continue
		}
		if !found || m.Compare(min) < 0 {
			min = m
			found = true
		}
	}
	if !found {
		return score.CmdMinReject(), ErrNoMatch
	}
	return min, nil
}

func patternWords(cmd policy.Command) ([]string, error) {
	words, err := ParseCommand(cmd)
	if err != nil {
		logger.Warn().Err(err).Msg("skipping malformed command pattern")
		return nil, err
	}
	return words, nil
}

// ResolveExec resolves argv[0] against PATH for exec, falling back to
// /bin/sh -c with the re-quoted argv when it can't be found (spec §4.2).
func ResolveExec(argv []string) (execPath string, execArgs []string, usedShell bool) {
	if len(argv) == 0 {
		return "/bin/sh", nil, true
	}
	if found := lookupOnPath(argv[0]); found != "" {
		return found, argv[1:], false
	}
	return "/bin/sh", []string{"-c", shellJoin(argv)}, true
}

func shellJoin(argv []string) string {
	quoted := make([]string, len(argv))
	for i, a := range argv {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

func shellQuote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\n'\"\\$`!*?[]{}()<>|;&~#") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// ErrNoMatch and ErrForbidden distinguish the evaluator's two rejection
// causes; both collapse to a reject CmdMin for the caller's score, but the
// distinct sentinels let callers log why.
var (
	ErrNoMatch  = fmt.Errorf("no command pattern matched")
	ErrForbidden = fmt.Errorf("command matched an absolute deny pattern")
)
