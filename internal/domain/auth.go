package domain

import "time"

const TokenTypeBearer = "bearer"

// AuthToken is the authorization block handed to clients after login or refresh.
type AuthToken struct {
	Token     string    `json:"token"`
	Type      string    `json:"type"`
	ExpiresIn int64     `json:"expires_in"`
	ExpiresAt time.Time `json:"-"`
}

type LoginResult struct {
	User          *User     `json:"user"`
	Authorization AuthToken `json:"authorization"`
}
