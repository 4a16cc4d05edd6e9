package token

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/archiveone/panchat/pkg/errcode"
)

// Claims represents the session token claims issued by the auth service
type Claims struct {
	UserId     string `json:"user_id"`
	PlatformId int    `json:"platform_id"`
	jwt.RegisteredClaims
}

// Parse extracts claims from a session token without verifying the
// signature. The backend verifies every request; the client only needs
// the subject to key its local state.
func Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(tokenString, claims)
	if err != nil {
		return nil, errcode.ErrTokenInvalid.Wrap(err)
	}
	if claims.UserId == "" {
		return nil, errcode.ErrTokenInvalid
	}
	return claims, nil
}

// Session backs session.AuthSession with a parsed token
type Session struct {
	token  string
	userId string
}

// NewSession parses tokenString and returns a session bound to its subject
func NewSession(tokenString string) (*Session, error) {
	claims, err := Parse(tokenString)
	if err != nil {
		return nil, err
	}
	return &Session{token: tokenString, userId: claims.UserId}, nil
}

// CurrentUserID returns the signed-in user id, false when absent
func (s *Session) CurrentUserID() (string, bool) {
	if s == nil || s.userId == "" {
		return "", false
	}
	return s.userId, true
}

// Token returns the raw bearer token
func (s *Session) Token() string {
	return s.token
}
