package domain

import "testing"

var orderedRoles = []Role{
	RolePartiallyLoggedIn,
	RoleUser,
	RoleSupportModerator,
	RoleAdmin,
	RoleRootAdmin,
}

func TestRoleAtLeastAndExactFullMatrix(t *testing.T) {
	for i, actor := range orderedRoles {
		for j, target := range orderedRoles {
			if got, want := actor.AtLeast(target), i >= j; got != want {
				t.Errorf("AtLeast(%s, %s) = %v, want %v", actor, target, got, want)
			}
			if got, want := actor.Exact(target), i == j; got != want {
				t.Errorf("Exact(%s, %s) = %v, want %v", actor, target, got, want)
			}
		}
	}
}

func TestUnknownRoleNeverPasses(t *testing.T) {
	bogus := Role("SUPERUSER")
	if bogus.Valid() {
		t.Fatal("unknown role reported valid")
	}
	for _, target := range orderedRoles {
		if bogus.AtLeast(target) || bogus.Exact(target) {
			t.Errorf("unknown role passed a check against %s", target)
		}
		if target.AtLeast(bogus) || target.Exact(bogus) {
			t.Errorf("%s passed a check against an unknown role", target)
		}
	}
}

func TestCanAssign(t *testing.T) {
	tests := []struct {
		name          string
		actor         Role
		targetCurrent Role
		targetNew     Role
		want          bool
	}{
		{"admin promotes user to moderator", RoleAdmin, RoleUser, RoleSupportModerator, true},
		{"admin cannot promote above own rank", RoleAdmin, RoleUser, RoleRootAdmin, false},
		{"admin cannot touch root admin", RoleAdmin, RoleRootAdmin, RoleUser, false},
		{"root admin demotes admin", RoleRootAdmin, RoleAdmin, RoleUser, true},
		{"admin demotes peer admin", RoleAdmin, RoleAdmin, RoleUser, true},
		{"moderator cannot assign roles above self", RoleSupportModerator, RoleUser, RoleAdmin, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.actor.CanAssign(tt.targetCurrent, tt.targetNew); got != tt.want {
				t.Errorf("CanAssign(%s, %s, %s) = %v, want %v",
					tt.actor, tt.targetCurrent, tt.targetNew, got, tt.want)
			}
		})
	}
}
