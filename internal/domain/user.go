package domain

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type User struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Label renders the user the way sales reports display it.
func (u *User) Label() string {
	return fmt.Sprintf("%d - %s", u.ID, u.Name)
}

type UpdateUserRequest struct {
	ID       int
	Name     *string
	Email    *string
	Password *string
}

type Claims struct {
	UserID    int
	UserName  string
	UserEmail string
	jwt.RegisteredClaims
}
