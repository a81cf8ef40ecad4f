package progress

import "testing"

func TestDerive(t *testing.T) {
	tests := []struct {
		pre, post bool
		want      State
	}{
		{false, false, NotStarted},
		{true, false, PreTestDone},
		{true, true, Complete},
		{false, true, NotStarted},
	}
	for _, tc := range tests {
		got := Derive(tc.pre, tc.post)
		if got != tc.want {
			t.Errorf("Derive(%v,%v) = %s, want %s", tc.pre, tc.post, got, tc.want)
		}
		if again := Derive(tc.pre, tc.post); again != got {
			t.Errorf("Derive(%v,%v) not stable: %s then %s", tc.pre, tc.post, got, again)
		}
	}
}

func TestStateGates(t *testing.T) {
	if NotStarted.TopicsUnlocked() || NotStarted.PostTestUnlocked() {
		t.Fatal("nothing is unlocked before the pre-test")
	}
	if !PreTestDone.TopicsUnlocked() || !PreTestDone.PostTestUnlocked() {
		t.Fatal("pre-test unlocks topics and the post-test")
	}
	if !Complete.TopicsUnlocked() || Complete.PostTestUnlocked() {
		t.Fatal("complete keeps topics open and closes the post-test")
	}
}

func TestNewView(t *testing.T) {
	pre := 7
	v := NewView("s1", &pre, nil)
	if v.State != PreTestDone || !v.PreTestCompleted || v.PostTestCompleted {
		t.Fatalf("unexpected view %+v", v)
	}
	if v.PreTestScore == nil || *v.PreTestScore != 7 || v.PostTestScore != nil {
		t.Fatalf("scores not carried: %+v", v)
	}

	post := 9
	v = NewView("s1", &pre, &post)
	if v.State != Complete || v.PostTestUnlocked {
		t.Fatalf("unexpected view %+v", v)
	}
}
