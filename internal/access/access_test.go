package access

import "testing"

func TestGuard(t *testing.T) {
	guard := NewGuard(100, []int64{200, 300})

	cases := []struct {
		userId int64
		admin  bool
	}{
		{100, true},  // owner
		{200, true},  // listed admin
		{300, true},  // listed admin
		{400, false}, // stranger
		{0, false},
	}
	for _, c := range cases {
		if got := guard.IsAdmin(c.userId); got != c.admin {
			t.Errorf("IsAdmin(%d) = %v, want %v", c.userId, got, c.admin)
		}
	}

	if !guard.IsOwner(100) {
		t.Error("IsOwner(100) = false")
	}
	if guard.IsOwner(200) {
		t.Error("IsOwner(200) = true, admins are not owners")
	}
}

func TestGuardEmptyAdminSet(t *testing.T) {
	guard := NewGuard(1, nil)
	if !guard.IsAdmin(1) {
		t.Error("owner must pass with an empty admin set")
	}
	if guard.IsAdmin(2) {
		t.Error("stranger must not pass with an empty admin set")
	}
}
