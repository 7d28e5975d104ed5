package sessions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	sferrors "github.com/jrsteele09/go-storefront/internal/errors"
	"github.com/jrsteele09/go-storefront/sessions"
	"github.com/jrsteele09/go-storefront/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret     = "test-session-secret"
	testCookieName = "storefront.session-token"
	testToken      = "laravel-bearer-token"
)

var testNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestProvider(t *testing.T, now func() time.Time) *sessions.CookieProvider {
	t.Helper()
	p, err := sessions.NewCookieProvider(testSecret, testCookieName, time.Hour, sessions.WithNowTime(now))
	require.NoError(t, err)
	return p
}

func fixedNow() time.Time { return testNow }

func TestNewCookieProvider_Validation(t *testing.T) {
	_, err := sessions.NewCookieProvider("", testCookieName, time.Hour)
	require.Error(t, err)

	_, err = sessions.NewCookieProvider(testSecret, "", time.Hour)
	require.Error(t, err)

	_, err = sessions.NewCookieProvider(testSecret, testCookieName, 0)
	require.Error(t, err)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	session := p.NewSession(&users.User{ID: 42, Name: "Jane Doe", Email: "jane@example.com"}, testToken)

	raw, err := p.Encode(session)
	require.NoError(t, err)

	decoded, err := p.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, session.ID, decoded.ID)
	assert.Equal(t, testToken, decoded.LaravelToken)
	assert.Equal(t, int64(42), decoded.User.ID)
	assert.Equal(t, "Jane Doe", decoded.User.Name)
	assert.True(t, session.Expires.Equal(decoded.Expires))
}

func TestDecode_RejectsOtherSecret(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	other, err := sessions.NewCookieProvider("another-secret", testCookieName, time.Hour, sessions.WithNowTime(fixedNow))
	require.NoError(t, err)

	raw, err := other.Encode(other.NewSession(&users.User{ID: 1}, testToken))
	require.NoError(t, err)

	_, err = p.Decode(raw)
	require.ErrorIs(t, err, sferrors.ErrInvalidSession)
}

func TestDecode_Expired(t *testing.T) {
	now := testNow
	p := newTestProvider(t, func() time.Time { return now })

	raw, err := p.Encode(p.NewSession(&users.User{ID: 1}, testToken))
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	_, err = p.Decode(raw)
	require.ErrorIs(t, err, sferrors.ErrSessionExpired)
}

func TestDecode_Empty(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	_, err := p.Decode("  ")
	require.ErrorIs(t, err, sferrors.ErrNoSession)
}

func TestLoad(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	raw, err := p.Encode(p.NewSession(&users.User{ID: 5}, testToken))
	require.NoError(t, err)

	t.Run("no cookie", func(t *testing.T) {
		status, s := p.Load(httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, sessions.StatusUnauthenticated, status)
		assert.Nil(t, s)
	})

	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.AddCookie(&http.Cookie{Name: testCookieName, Value: raw})
		status, s := p.Load(r)
		assert.Equal(t, sessions.StatusAuthenticated, status)
		require.NotNil(t, s)
		assert.Equal(t, testToken, s.LaravelToken)
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.Header.Set("Authorization", "Bearer "+raw)
		status, s := p.Load(r)
		assert.Equal(t, sessions.StatusAuthenticated, status)
		require.NotNil(t, s)
	})

	t.Run("tampered cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", nil)
		r.AddCookie(&http.Cookie{Name: testCookieName, Value: raw + "x"})
		status, s := p.Load(r)
		assert.Equal(t, sessions.StatusUnauthenticated, status)
		assert.Nil(t, s)
	})
}

func TestIssueAndUpdater(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	r := httptest.NewRequest(http.MethodPost, "https://shop.example.com/", nil)
	w := httptest.NewRecorder()

	session := &sessions.Session{User: &users.User{ID: 9, Name: "Old"}, LaravelToken: testToken}
	require.NoError(t, p.Issue(w, r, session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, testNow.Add(time.Hour), session.Expires)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.True(t, cookies[0].Secure)

	w2 := httptest.NewRecorder()
	updated, err := p.Updater(w2, r, session)(context.Background(), &users.User{ID: 9, Name: "New"})
	require.NoError(t, err)
	assert.Equal(t, session.ID, updated.ID)
	assert.Equal(t, "New", updated.User.Name)
	assert.Equal(t, "Old", session.User.Name)

	reissued := w2.Result().Cookies()
	require.Len(t, reissued, 1)
	decoded, err := p.Decode(reissued[0].Value)
	require.NoError(t, err)
	assert.Equal(t, "New", decoded.User.Name)
}

func TestClear(t *testing.T) {
	p := newTestProvider(t, fixedNow)
	w := httptest.NewRecorder()
	p.Clear(w, httptest.NewRequest(http.MethodPost, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionExpired(t *testing.T) {
	var nilSession *sessions.Session
	assert.True(t, nilSession.Expired(testNow))
	assert.False(t, (&sessions.Session{}).Expired(testNow))
	assert.True(t, (&sessions.Session{Expires: testNow}).Expired(testNow))
	assert.False(t, (&sessions.Session{Expires: testNow.Add(time.Second)}).Expired(testNow))
}
