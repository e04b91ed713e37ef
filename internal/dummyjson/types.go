package dummyjson

import (
	"strings"

	"github.com/five82/shelf/internal/product"
)

// ProductListResponse mirrors the list endpoints.
type ProductListResponse struct {
	Products []product.Product `json:"products"`
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
}

// LoginRequest is the /auth/login body.
type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	ExpiresInMins int    `json:"expiresInMins,omitempty"`
}

// User is the public profile returned by the auth and user endpoints.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Image     string `json:"image,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// LoginResponse carries the profile plus tokens. Older API versions send
// "token", newer ones "accessToken".
type LoginResponse struct {
	User
	Token        string `json:"token,omitempty"`
	AccessToken  string `json:"accessToken,omitempty"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// SessionToken returns whichever token field the server populated.
func (r LoginResponse) SessionToken() string {
	if t := strings.TrimSpace(r.AccessToken); t != "" {
		return t
	}
	return strings.TrimSpace(r.Token)
}

// UserListResponse mirrors /users.
type UserListResponse struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}
