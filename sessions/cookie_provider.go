package sessions

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/hkdf"
)

const (
	signingKeyInfo   = "storefront session signing key"
	signingKeyLength = 32
	sessionIssuer    = "storefront"
)

// sessionClaims is the payload carried by the session cookie.
type sessionClaims struct {
	jwtlib.RegisteredClaims
	User         *users.User `json:"user,omitempty"`
	LaravelToken string      `json:"laravelToken"`
}

// CookieProvider stores the session as an HS256-signed JWT in a cookie.
// The signing key is derived from the configured secret with HKDF.
type CookieProvider struct {
	cookieName string
	key        []byte
	maxAge     time.Duration
	nowTime    func() time.Time
}

// CookieProviderOption defines a function type to modify the CookieProvider instance.
type CookieProviderOption func(*CookieProvider)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CookieProviderOption {
	return func(p *CookieProvider) {
		p.nowTime = nowFunc
	}
}

func NewCookieProvider(secret, cookieName string, maxAge time.Duration, options ...CookieProviderOption) (*CookieProvider, error) {
	if secret == "" {
		return nil, fmt.Errorf("[NewCookieProvider] session secret is required")
	}
	if cookieName == "" {
		return nil, fmt.Errorf("[NewCookieProvider] cookie name is required")
	}
	if maxAge <= 0 {
		return nil, fmt.Errorf("[NewCookieProvider] max age must be positive")
	}

	key := make([]byte, signingKeyLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(signingKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("[NewCookieProvider] failed to derive signing key: %w", err)
	}

	p := &CookieProvider{
		cookieName: cookieName,
		key:        key,
		maxAge:     maxAge,
		nowTime:    time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p, nil
}

func (p *CookieProvider) CookieName() string {
	return p.cookieName
}

// NewSession builds a session for user with a fresh identity and the provider's max age.
func (p *CookieProvider) NewSession(user *users.User, laravelToken string) *Session {
	return &Session{
		ID:           uuid.New().String(),
		User:         user,
		LaravelToken: laravelToken,
		Expires:      p.nowTime().Add(p.maxAge),
	}
}

// Encode signs the session into a compact JWT.
func (p *CookieProvider) Encode(s *Session) (string, error) {
	if s == nil {
		return "", fmt.Errorf("[CookieProvider Encode] %w", sferrors.ErrNoSession)
	}
	now := p.nowTime()
	expires := s.Expires
	if expires.IsZero() {
		expires = now.Add(p.maxAge)
	}
	claims := sessionClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    sessionIssuer,
			ID:        s.ID,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(expires),
		},
		User:         s.User,
		LaravelToken: s.LaravelToken,
	}
	if s.User != nil && s.User.ID != 0 {
		claims.Subject = fmt.Sprintf("%d", s.User.ID)
	}

	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(p.key)
	if err != nil {
		return "", fmt.Errorf("[CookieProvider Encode] failed to sign session: %w", err)
	}
	return signed, nil
}

// Decode verifies a session token and returns the session it carries.
func (p *CookieProvider) Decode(raw string) (*Session, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, sferrors.ErrNoSession
	}

	claims := &sessionClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(*jwtlib.Token) (interface{}, error) {
		return p.key, nil
	},
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(sessionIssuer),
		jwtlib.WithExpirationRequired(),
		jwtlib.WithTimeFunc(p.nowTime),
	)
	if err != nil {
		if sferrors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, sferrors.Wrapf(sferrors.ErrSessionExpired, "[CookieProvider Decode]")
		}
		return nil, fmt.Errorf("[CookieProvider Decode] %w: %v", sferrors.ErrInvalidSession, err)
	}
	if claims.LaravelToken == "" {
		return nil, fmt.Errorf("[CookieProvider Decode] %w: missing backend token", sferrors.ErrInvalidSession)
	}

	return &Session{
		ID:           claims.ID,
		User:         claims.User,
		LaravelToken: claims.LaravelToken,
		Expires:      claims.ExpiresAt.Time,
	}, nil
}

// Load resolves the request's session from the session cookie, falling back to an
// Authorization bearer header carrying the session token. Invalid tokens count as no session.
func (p *CookieProvider) Load(r *http.Request) (Status, *Session) {
	raw := ""
	if cookie, err := r.Cookie(p.cookieName); err == nil {
		raw = cookie.Value
	} else if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			raw = strings.TrimSpace(parts[1])
		}
	}
	if raw == "" {
		return StatusUnauthenticated, nil
	}

	session, err := p.Decode(raw)
	if err != nil {
		log.Debug().Err(err).Str("path", r.URL.Path).Msg("rejected session token")
		return StatusUnauthenticated, nil
	}
	return StatusAuthenticated, session
}

// Issue writes the session cookie, filling in identity and expiry when absent.
func (p *CookieProvider) Issue(w http.ResponseWriter, r *http.Request, s *Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Expires.IsZero() {
		s.Expires = p.nowTime().Add(p.maxAge)
	}
	token, err := p.Encode(s)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  s.Expires,
		MaxAge:   int(s.Expires.Sub(p.nowTime()).Seconds()),
	})
	return nil
}

// Clear expires the session cookie.
func (p *CookieProvider) Clear(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     p.cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

// Updater returns the update capability for current, bound to this response.
// The re-issued session keeps the identity, token and expiry of current.
func (p *CookieProvider) Updater(w http.ResponseWriter, r *http.Request, current *Session) Updater {
	return func(_ context.Context, user *users.User) (*Session, error) {
		if current == nil {
			return nil, sferrors.ErrNoSession
		}
		updated := *current
		updated.User = user
		if err := p.Issue(w, r, &updated); err != nil {
			return nil, fmt.Errorf("[CookieProvider Update] %w", err)
		}
		return &updated, nil
	}
}

func isSecureRequest(r *http.Request) bool {
	if r == nil {
		return false
	}
	if r.TLS != nil {
		return true
	}
	return r.Header.Get("X-Forwarded-Proto") == "https"
}
