package auth

import (
	"errors"
	"time"
)

// Roles. Every account registers as a plain user; admins are promoted
// directly in the database.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrNotAuthenticated   = errors.New("authentication required")
	ErrAdminOnly          = errors.New("admin role required")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// ============================
// 🔷 User Model (profiles)
type User struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FullName     *string   `json:"full_name,omitempty"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	Role         string    `gorm:"size:20;not null;default:user" json:"role"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "profiles"
}

// Session is the caller identity snapshot passed explicitly into every
// gated operation. The zero value is an anonymous session. It is built by
// the auth middleware and re-evaluated on each request; nothing caches a
// previously rendered permission.
type Session struct {
	User *User
}

// IsAuthenticated reports whether a user is signed in.
func (s Session) IsAuthenticated() bool {
	return s.User != nil
}

// IsAdmin reports whether the signed-in user holds the admin role.
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated() && s.User.Role == RoleAdmin
}

// UserID returns the signed-in user's id, or "" for anonymous sessions.
func (s Session) UserID() string {
	if s.User == nil {
		return ""
	}
	return s.User.ID
}

// ============================
// Request / Response DTOs

type RegisterInput struct {
	Email     string  `json:"email" binding:"required,email"`
	Password  string  `json:"password" binding:"required,min=8"`
	FullName  *string `json:"full_name"`
	AvatarURL *string `json:"avatar_url"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
