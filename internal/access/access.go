// Package access implements the admin registry guard: only the configured
// owner and the admin set may mutate the channel registry, broadcast, or
// open the admin panel. Banning is a separate axis enforced by the bot at
// message entry, not here.
package access

// Guard answers the single question "may this user act as an admin".
type Guard struct {
	ownerId int64
	admins  map[int64]struct{}
}

func NewGuard(ownerId int64, adminIds []int64) *Guard {
	admins := make(map[int64]struct{}, len(adminIds))
	for _, id := range adminIds {
		admins[id] = struct{}{}
	}
	return &Guard{ownerId: ownerId, admins: admins}
}

func (g *Guard) IsAdmin(userId int64) bool {
	if userId == g.ownerId {
		return true
	}
	_, ok := g.admins[userId]
	return ok
}

func (g *Guard) IsOwner(userId int64) bool {
	return userId == g.ownerId
}
