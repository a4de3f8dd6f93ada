package matcher

import (
	"testing"

	"github.com/rootasrole/rar/internal/policy"
	"github.com/rootasrole/rar/internal/score"
)

func simple(s string) policy.Command { return policy.Command{Kind: policy.CommandSimple, Simple: s} }

func TestMatchCommandFullWildcard(t *testing.T) {
	got := MatchCommand([]string{"/bin/ls"}, []string{"**"})
	if got != score.FullWildcardPath {
		t.Fatalf("got %v, want FullWildcardPath", got)
	}
}

func TestMatchCommandFullRegexArgs(t *testing.T) {
	got := MatchCommand([]string{"/usr/bin/chsr", "show"}, []string{"/usr/bin/chsr", ".*"})
	if !got.Has(score.FullRegexArgs) {
		t.Fatalf("expected FullRegexArgs bit set, got %v", got)
	}
}

func TestMatchCommandFullRegexArgsBareInvocation(t *testing.T) {
	got := MatchCommand([]string{"/usr/bin/chsr"}, []string{"/usr/bin/chsr", ".*"})
	if !got.Has(score.FullRegexArgs) {
		t.Fatalf("a bare invocation must still satisfy a .* pattern, got %v", got)
	}
}

func TestMatchCommandExact(t *testing.T) {
	got := MatchCommand([]string{"/bin/true"}, []string{"/bin/true"})
	if got != score.Match {
		t.Fatalf("got %v, want Match", got)
	}
}

func TestMatchCommandNoMatch(t *testing.T) {
	got := MatchCommand([]string{"/bin/rm", "-rf", "/"}, []string{"/bin/ls"})
	if !got.IsReject() {
		t.Fatalf("expected reject, got %v", got)
	}
}

func TestEvaluateCommandListDefaultNoneEmptyAdd(t *testing.T) {
	// spec §8 boundary: empty add + default=None + empty sub => NoMatch for any argv.
	_, err := EvaluateCommandList([]string{"/bin/ls"}, policy.CommandList{Default: policy.SetBehaviorNone})
	if err != ErrNoMatch {
		t.Fatalf("expected ErrNoMatch, got %v", err)
	}
}

func TestEvaluateCommandListDefaultAllMatchesAnything(t *testing.T) {
	// spec §8 boundary: empty add + default=All => match any argv, weakest cmd_min.
	got, err := EvaluateCommandList([]string{"/bin/anything", "weird", "args"}, policy.CommandList{Default: policy.SetBehaviorAll})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != score.CmdMinAll() {
		t.Fatalf("got %v, want CmdMinAll", got)
	}
}

func TestEvaluateCommandListSubAlwaysWins(t *testing.T) {
	// spec §8: a sub match rejects the task regardless of add/default.
	list := policy.CommandList{
		Default: policy.SetBehaviorAll,
		Sub:     []policy.Command{simple("/bin/rm -rf /")},
	}
	_, err := EvaluateCommandList([]string{"/bin/rm", "-rf", "/"}, list)
	if err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEvaluateCommandListPicksMinimum(t *testing.T) {
	list := policy.CommandList{
		Default: policy.SetBehaviorNone,
		Add: []policy.Command{
			simple("/bin/ls"),
			simple("**"),
		},
	}
	got, err := EvaluateCommandList([]string{"/bin/ls"}, list)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != score.Match {
		t.Fatalf("expected the more specific Match to win over FullWildcardPath, got %v", got)
	}
}
