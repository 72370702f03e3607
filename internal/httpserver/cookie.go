// internal/httpserver/cookie.go
//
// Session cookies.
//
// The cookie carries an HS256 JWT whose subject is the opaque session id.
// The signing key is derived from SESSION_SECRET with HKDF so the raw secret
// is never used directly as a MAC key. Tampered, expired or foreign tokens
// are treated as "no session" and a fresh one is issued.

package httpserver

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/hkdf"
)

const cookieIssuer = "spellquiz"

// cookieCodec signs and verifies session tokens.
type cookieCodec struct {
	key    []byte
	name   string
	secure bool
	ttl    time.Duration
	now    func() time.Time
}

func newCookieCodec(secret, name string, secure bool, ttl time.Duration) (*cookieCodec, error) {
	if secret == "" {
		return nil, errors.New("httpserver: empty session secret")
	}
	key := make([]byte, 32)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte("spellquiz session cookie v1"))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("httpserver: derive cookie key: %w", err)
	}
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &cookieCodec{key: key, name: name, secure: secure, ttl: ttl, now: time.Now}, nil
}

// sign returns a token for sid and its expiry.
func (c *cookieCodec) sign(sid string) (string, time.Time, error) {
	now := c.now()
	exp := now.Add(c.ttl)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    cookieIssuer,
		Subject:   sid,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString(c.key)
	return ss, exp, err
}

// verify returns the session id in token, or an error if it is not ours.
func (c *cookieCodec) verify(token string) (string, *jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(cookieIssuer),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return "", nil, err
	}
	if claims.Subject == "" {
		return "", nil, errors.New("httpserver: token without subject")
	}
	return claims.Subject, claims, nil
}

// write sets the session cookie for sid.
func (c *cookieCodec) write(w http.ResponseWriter, sid string) error {
	tok, exp, err := c.sign(sid)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    tok,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
	return nil
}

// ctxSessionKey is the context key for the request's session id.
type ctxSessionKey struct{}

// sessionID returns the id placed in the context by withSession.
func sessionID(ctx context.Context) string {
	sid, _ := ctx.Value(ctxSessionKey{}).(string)
	return sid
}

// genID creates a 22-char URL-safe, crypto-random identifier (no padding).
func genID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
