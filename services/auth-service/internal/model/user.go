package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Role governs authorization decisions made by the other platform services.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User represents a reader account on the platform. PasswordHash is never
// serialized to JSON.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty"            json:"id"`
	Email         string        `bson:"email"                    json:"email"`
	Username      string        `bson:"username"                 json:"username"`
	Name          string        `bson:"name,omitempty"           json:"name,omitempty"`
	PasswordHash  string        `bson:"password_hash"            json:"-"`
	Role          Role          `bson:"role"                     json:"role"`
	EmailVerified bool          `bson:"email_verified"           json:"emailVerified"`
	LastLoginAt   time.Time     `bson:"last_login_at,omitempty"  json:"-"`
	CreatedAt     time.Time     `bson:"created_at"               json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updated_at"               json:"-"`
}
