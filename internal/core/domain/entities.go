package domain

import "time"

// Entities owned by the transactional poll service. This service only
// ever reads them.

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Poll struct {
	ID        int64     `json:"id"`
	Question  string    `json:"question"`
	OwnerID   int64     `json:"owner_id"`
	ViewCount int       `json:"view_count"`
	CreatedAt time.Time `json:"created_at"`
}

type Option struct {
	ID     int64  `json:"id"`
	PollID int64  `json:"poll_id"`
	Text   string `json:"text"`
}

type Vote struct {
	ID        int64     `json:"id"`
	OptionID  int64     `json:"option_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
