package domain

import "time"

type User struct {
	ID           int64
	OpaqueID     string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Summary struct {
	ID        int64
	OpaqueID  string
	Username  string
	CreatedAt time.Time
}
