package models

import "time"

// RefreshToken anchors a server-side session. Access tokens are stateless
// JWTs; deleting the refresh token row is what revokes a session.
type RefreshToken struct {
	UserID  string
	Token   string
	Expires time.Time
}
