package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/securecookie"

	"fitdash/internal/domain/account"
)

// Cookie names and lifetime of a persisted session.
const (
	SessionCookieName = "session"
	TokenCookieName   = "token"
	sessionMaxAge     = 7 * 24 * 60 * 60
)

// ErrEmptyCredential is returned when asked to persist a session without a token.
var ErrEmptyCredential = errors.New("credential is empty")

// ErrNoSessionCodec is returned when a store without a codec is asked to write.
var ErrNoSessionCodec = errors.New("session codec not configured")

// SessionCodec signs and verifies the profile carried in the session cookie.
// The value is HMAC-signed JSON, not encrypted: the profile is readable but cannot be altered.
type SessionCodec struct {
	sc *securecookie.SecureCookie
}

// NewSessionCodec creates a codec signing with hashKey.
// PRE: len(hashKey) >= 32
func NewSessionCodec(hashKey []byte) *SessionCodec {
	sc := securecookie.New(hashKey, nil)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(sessionMaxAge)
	return &SessionCodec{sc: sc}
}

// Encode returns the signed cookie value for profile.
func (c *SessionCodec) Encode(profile account.UserProfile) (string, error) {
	return c.sc.Encode(SessionCookieName, profile)
}

// Decode verifies value and returns the profile it carries.
// A bad signature, an expired timestamp or malformed JSON is an error.
func (c *SessionCodec) Decode(value string) (account.UserProfile, error) {
	var profile account.UserProfile
	if err := c.sc.Decode(SessionCookieName, value, &profile); err != nil {
		return account.UserProfile{}, err
	}
	return profile, nil
}

// CookieStore is the credential store for one request.
// It owns the session and token cookies; nothing else reads or writes them.
// INVARIANT: both cookies are set or cleared together; one without the other reads as no session.
type CookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	codec  *SessionCodec
	secure bool

	// After a write or clear, reads reflect the new state rather than the request.
	overridden bool
	session    account.Session
	present    bool
}

// NewCookieStore creates a store bound to a request/response pair.
// Cookies are marked Secure when secure is true or the request arrived over TLS.
// A nil codec verifies nothing, so every request reads as no session.
func NewCookieStore(w http.ResponseWriter, r *http.Request, codec *SessionCodec, secure bool) *CookieStore {
	return &CookieStore{w: w, r: r, codec: codec, secure: secure || r.TLS != nil}
}

// ReadSession returns the caller's session.
// A missing cookie or a profile failing verification reads as "no session", never as an error.
func (s *CookieStore) ReadSession() (account.Session, bool) {
	if s.overridden {
		return s.session, s.present
	}
	return sessionFromRequest(s.r, s.codec)
}

// ReadCredential returns the bearer token of a complete session.
func (s *CookieStore) ReadCredential() (string, bool) {
	session, ok := s.ReadSession()
	if !ok {
		return "", false
	}
	return session.Token, true
}

// WriteSession persists profile and token, replacing any prior session.
// PRE: token is non-empty
// POST: Both cookies are set, or neither is when an error is returned
func (s *CookieStore) WriteSession(profile account.UserProfile, token string) error {
	if token == "" {
		return ErrEmptyCredential
	}
	if s.codec == nil {
		return ErrNoSessionCodec
	}
	encoded, err := s.codec.Encode(profile)
	if err != nil {
		return fmt.Errorf("encode session profile: %w", err)
	}

	http.SetCookie(s.w, s.cookie(SessionCookieName, encoded, sessionMaxAge))
	http.SetCookie(s.w, s.cookie(TokenCookieName, token, sessionMaxAge))

	s.overridden = true
	s.session = account.Session{User: profile, Token: token}
	s.present = true
	return nil
}

// ClearSession removes both cookies. Clearing an absent session is a no-op for the caller.
// POST: ReadSession reports no session
func (s *CookieStore) ClearSession() {
	http.SetCookie(s.w, s.cookie(SessionCookieName, "", -1))
	http.SetCookie(s.w, s.cookie(TokenCookieName, "", -1))

	s.overridden = true
	s.session = account.Session{}
	s.present = false
}

func (s *CookieStore) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// CookieStoreFactory builds per-request stores sharing one codec and Secure policy.
type CookieStoreFactory struct {
	Codec  *SessionCodec
	Secure bool
}

// NewCookieStoreFactory returns a factory signing sessions with hashKey.
func NewCookieStoreFactory(hashKey []byte, secure bool) CookieStoreFactory {
	return CookieStoreFactory{Codec: NewSessionCodec(hashKey), Secure: secure}
}

// For returns the store for one request.
func (f CookieStoreFactory) For(w http.ResponseWriter, r *http.Request) *CookieStore {
	return NewCookieStore(w, r, f.Codec, f.Secure)
}

func sessionFromRequest(r *http.Request, codec *SessionCodec) (account.Session, bool) {
	if codec == nil {
		return account.Session{}, false
	}
	profileCookie, err := r.Cookie(SessionCookieName)
	if err != nil || profileCookie.Value == "" {
		return account.Session{}, false
	}
	tokenCookie, err := r.Cookie(TokenCookieName)
	if err != nil || tokenCookie.Value == "" {
		return account.Session{}, false
	}
	profile, err := codec.Decode(profileCookie.Value)
	if err != nil {
		return account.Session{}, false
	}
	return account.Session{User: profile, Token: tokenCookie.Value}, true
}
