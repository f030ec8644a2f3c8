package entity

// Stats is the aggregate snapshot shown by /stats and the admin dashboard.
type Stats struct {
	TotalUsers    int64 `json:"total_users" bson:"total_users"`
	ActiveUsers   int64 `json:"active_users" bson:"active_users"`
	TotalChannels int64 `json:"total_channels" bson:"total_channels"`
	ActiveLinks   int64 `json:"active_links" bson:"active_links"`
	TotalJoins    int64 `json:"total_joins" bson:"total_joins"`
}
