package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", 1) || !m.Enabled("c", 1) || !m.Enabled("e", 1) {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", 1) || m.Enabled("d", 1) || m.Enabled("f", 1) {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", 1) {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", 1) {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", 42)
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", 42); got != first {
			t.Fatal("rollout evaluation must be deterministic per user")
		}
	}

	if m.Enabled("canary", 0) {
		t.Fatal("percentage rollout requires non-zero userID")
	}
}

func TestEnabled_ParsingAndDefaults(t *testing.T) {
	m := NewManager(" bad , Public_State_Filter = ON ,z=off,=on,w=")

	if !m.Enabled(PublicStateFilter, 0) {
		t.Fatal("flag names and values should be normalized")
	}
	if m.Enabled("bad", 0) || m.Enabled("w", 0) || m.Enabled("missing", 0) {
		t.Fatal("malformed or unknown flags must be disabled")
	}

	var nilManager *Manager
	if nilManager.Enabled(PublicStateFilter, 1) {
		t.Fatal("nil manager must report every flag disabled")
	}
}
