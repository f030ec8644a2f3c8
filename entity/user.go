package entity

import "time"

// User is anyone who has talked to the bot. Records are written with upsert
// semantics: JoinedAt is set once on first contact and never overwritten,
// LastActive and TotalRequests move on every interaction.
// Users exist for stats and ban enforcement only; they do not own links.
type User struct {
	UserId        int64     `json:"user_id" bson:"user_id"`
	Username      string    `json:"username" bson:"username"`
	FirstName     string    `json:"first_name" bson:"first_name"`
	IsBanned      bool      `json:"is_banned" bson:"is_banned"`
	JoinedAt      time.Time `json:"joined_at" bson:"joined_at"`
	LastActive    time.Time `json:"last_active" bson:"last_active"`
	TotalRequests int64     `json:"total_requests" bson:"total_requests"`
}
