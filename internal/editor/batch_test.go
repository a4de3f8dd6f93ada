package editor

import "testing"

func TestApplyBatchCommitsAllOnSuccess(t *testing.T) {
	cfg := freshConfig()
	b := Batch{Edits: []BatchEdit{
		{Role: "r_ops", Verb: "create"},
		{Role: "r_ops", Task: "t_a", Verb: "create"},
		{Role: "r_ops", Verb: "grant", Args: []string{"user:0"}},
	}}

	result, err := ApplyBatch(cfg, b)
	if err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}
	if len(result.Changed) != 3 {
		t.Fatalf("expected 3 results, got %d", len(result.Changed))
	}
	for i, c := range result.Changed {
		if !c {
			t.Fatalf("expected edit %d to report changed", i)
		}
	}

	role := cfg.FindRole("r_ops")
	if role == nil {
		t.Fatal("expected r_ops to exist after batch")
	}
	if len(role.Tasks) != 1 || len(role.Actors) != 1 {
		t.Fatalf("unexpected role state: %+v", role)
	}
}

func TestApplyBatchRollsBackOnFailure(t *testing.T) {
	cfg := freshConfig()
	b := Batch{Edits: []BatchEdit{
		{Role: "r_ops", Verb: "create"},
		{Role: "r_ops", Verb: "grant", Args: []string{"bogus-spec"}},
	}}

	if _, err := ApplyBatch(cfg, b); err == nil {
		t.Fatal("expected an error from the malformed second edit")
	}
	if len(cfg.Roles) != 0 {
		t.Fatalf("expected cfg untouched after a failed batch, got %d roles", len(cfg.Roles))
	}
}

func TestParseBatchRoundTrips(t *testing.T) {
	data := []byte(`{"edits":[{"role":"r_ops","verb":"create"}]}`)
	b, err := ParseBatch(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(b.Edits) != 1 || b.Edits[0].Role != "r_ops" || b.Edits[0].Verb != "create" {
		t.Fatalf("unexpected batch: %+v", b)
	}
}

func TestParseBatchRejectsMalformedJSON(t *testing.T) {
	if _, err := ParseBatch([]byte(`{not json`)); err == nil {
		t.Fatal("expected an error for malformed JSON")
	}
}
