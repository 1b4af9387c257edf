package dto

import "time"

type User struct {
	ID        string
	Username  string
	Email     string
	CreatedAt time.Time
}

type UserSummary struct {
	ID        string
	Username  string
	CreatedAt time.Time
}
