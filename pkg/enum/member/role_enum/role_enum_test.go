package role_enum

import "testing"

func TestIsValid(t *testing.T) {
	for _, r := range []int8{MEMBER, OFFICER, LEADER} {
		if !IsValid(r) {
			t.Errorf("IsValid(%d) = false, want true", r)
		}
	}
	for _, r := range []int8{0, -1, 4, 100} {
		if IsValid(r) {
			t.Errorf("IsValid(%d) = true, want false", r)
		}
	}
}

func TestRoleSetPermits(t *testing.T) {
	cases := []struct {
		name string
		set  RoleSet
		role int8
		want bool
	}{
		{"all permits member", ALL, MEMBER, true},
		{"all permits officer", ALL, OFFICER, true},
		{"all permits leader", ALL, LEADER, true},
		{"officer_up denies member", OFFICER_UP, MEMBER, false},
		{"officer_up permits officer", OFFICER_UP, OFFICER, true},
		{"officer_up permits leader", OFFICER_UP, LEADER, true},
		{"leader_set denies member", LEADER_SET, MEMBER, false},
		{"leader_set denies officer", LEADER_SET, OFFICER, false},
		{"leader_set permits leader", LEADER_SET, LEADER, true},
		{"empty set denies leader", Of(), LEADER, false},
		{"invalid role denied", ALL, 0, false},
		{"invalid role denied high", ALL, 4, false},
	}
	for _, c := range cases {
		if got := c.set.Permits(c.role); got != c.want {
			t.Errorf("%s: Permits(%d) = %v, want %v", c.name, c.role, got, c.want)
		}
	}
}

func TestOfIgnoresInvalidRoles(t *testing.T) {
	s := Of(MEMBER, 0, 4, -1)
	if !s.Permits(MEMBER) {
		t.Error("expected MEMBER in set")
	}
	if s != Of(MEMBER) {
		t.Errorf("invalid roles should not change the set, got %b", s)
	}
}

func TestWith(t *testing.T) {
	s := Of(MEMBER).With(LEADER)
	if !s.Permits(MEMBER) || !s.Permits(LEADER) {
		t.Error("With should add the role and keep existing ones")
	}
	if s.Permits(OFFICER) {
		t.Error("With should not add unrelated roles")
	}
	// 重复加入幂等
	if s.With(LEADER) != s {
		t.Error("With should be idempotent")
	}
}
