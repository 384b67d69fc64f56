package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session is one entry in the refresh-token registry: a refresh token that
// has been issued and not yet rotated, revoked, or expired. Only a sha256
// fingerprint of the token is stored; the token itself stays with the
// client. A refresh token absent from the registry is invalid regardless of
// its cryptographic validity, which is what makes revocation work.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	UserID    string        `bson:"user_id"`
	JTI       string        `bson:"jti"`
	TokenHash string        `bson:"token_hash"`
	ExpiresAt time.Time     `bson:"expires_at"`
	CreatedAt time.Time     `bson:"created_at"`
}
