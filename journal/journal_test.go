package journal

import "testing"

func TestModifiedConfigsDedupesInFirstSeenOrder(t *testing.T) {
	j := New()
	j.Append(Record{Action: ActionMergeConfig, Config: "network"})
	j.Append(Record{Action: ActionSaveConfig, Config: "network"})
	j.Append(Record{Action: ActionMergeConfig, Config: "firewall"})
	j.Append(Record{Action: ActionSaveConfig, Config: "firewall"})
	j.Append(Record{Action: ActionSaveConfig, Config: "network"})

	got := j.ModifiedConfigs()
	want := []string{"network", "firewall"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestAllConflictsFlattensInOrder(t *testing.T) {
	j := New()
	j.Append(Record{Action: ActionMergeConfig, Conflicts: []Conflict{{Option: "a"}}})
	j.Append(Record{Action: ActionMergeConfig, Conflicts: []Conflict{{Option: "b"}, {Option: "c"}}})

	got := j.AllConflicts()
	if len(got) != 3 {
		t.Fatalf("expected 3 conflicts, got %d", len(got))
	}
	if got[0].Option != "a" || got[1].Option != "b" || got[2].Option != "c" {
		t.Errorf("unexpected order: %+v", got)
	}
}
