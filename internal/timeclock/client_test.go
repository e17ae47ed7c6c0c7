package timeclock

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonathan/timeclock/internal/punchhistory"
	"github.com/jonathan/timeclock/internal/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "correct horse"
	testSession  = "s3cr3t"
)

const historyTemplate = `<html><body>
<form><input name="year" value="%s"><input name="month" value="%s"></form>
<p>Time Worked: 1d 2h 30m</p>
<p>Work Days: 21</p>
<table class="punch_history">
<tr><td>Punch In</td><td>Punch Out</td><td>Time Logged</td><td>Client</td></tr>
<tr><td>2015-03-02 09:00:00</td><td>2015-03-02 18:00:00</td><td>09:00:00</td><td>Acme</td></tr>
</table>
</body></html>`

// fakeClock serves a minimal time clock under /clock.
type fakeClock struct {
	server      *httptest.Server
	homePath    string
	historyHits atomic.Int32
	lastQuery   url.Values
	expire      atomic.Bool
}

func newFakeClock(t *testing.T) *fakeClock {
	t.Helper()
	fc := &fakeClock{homePath: "/clock/home"}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /clock/login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "visitor", Value: "1", Path: "/"})
		if r.PostForm.Get("email_address") != testEmail || r.PostForm.Get("password") != testPassword {
			http.Redirect(w, r, "/clock/login?failed=1", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: testSession, Path: "/"})
		http.Redirect(w, r, fc.homePath, http.StatusFound)
	})
	mux.HandleFunc("GET /clock/login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body><form>login</form></body></html>"))
	})
	mux.HandleFunc("GET /clock/home", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>home</body></html>"))
	})
	mux.HandleFunc("GET /clock/dashboard", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html><body>dashboard</body></html>"))
	})
	mux.HandleFunc("GET /clock/punch_history", func(w http.ResponseWriter, r *http.Request) {
		fc.historyHits.Add(1)
		cookie, err := r.Cookie("session")
		if err != nil || cookie.Value != testSession || fc.expire.Load() {
			http.Redirect(w, r, "/clock/login", http.StatusFound)
			return
		}
		fc.lastQuery = r.URL.Query()
		month := r.URL.Query().Get("month")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = fmt.Fprintf(w, historyTemplate, r.URL.Query().Get("year"), month)
	})

	fc.server = httptest.NewServer(mux)
	t.Cleanup(fc.server.Close)
	return fc
}

func (fc *fakeClock) newClient(t *testing.T) *Client {
	t.Helper()
	opts := DefaultOptions()
	opts.BaseURL = fc.server.URL + "/clock"
	opts.Timeout = 5 * time.Second
	opts.Now = func() time.Time { return time.Date(2015, time.March, 14, 10, 0, 0, 0, time.UTC) }
	c, err := New(opts)
	require.NoError(t, err)
	return c
}

func validCreds() types.Credentials {
	return types.Credentials{Email: testEmail, Password: testPassword}
}

func TestAuthenticate_Success(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	ok, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.Authenticated())
	assert.Equal(t, Authenticated, c.State())

	page, err := c.FetchPunchHistoryPage(ctx, 2015, 3)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, page.StatusCode)
	assert.Contains(t, page.ContentType, "text/html")
	assert.Contains(t, page.HTML, "punch_history")
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	ok, err := c.Authenticate(ctx, types.Credentials{Email: testEmail, Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, c.Authenticated())

	_, err = c.FetchPunchHistoryPage(ctx, 2015, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.True(t, IsPrecondition(err))
	assert.Equal(t, int32(0), fc.historyHits.Load())
}

func TestAuthenticate_RedirectElsewhereFails(t *testing.T) {
	fc := newFakeClock(t)
	fc.homePath = "/clock/dashboard"
	c := fc.newClient(t)

	ok, err := c.Authenticate(context.Background(), validCreds())
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = c.FetchPunchHistoryPage(context.Background(), 0, 0)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestAuthenticate_FailedLoginDiscardsCookies(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	ok, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Authenticate(ctx, types.Credentials{Email: testEmail, Password: "wrong"})
	require.NoError(t, err)
	assert.False(t, ok)

	base, err := url.Parse(fc.server.URL)
	require.NoError(t, err)
	assert.Empty(t, c.http.Jar.Cookies(base))
}

func TestAuthenticate_InvalidCredentials(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)

	ok, err := c.Authenticate(context.Background(), types.Credentials{Email: "nope"})
	assert.False(t, ok)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "credentials", reqErr.Field)
}

func TestAuthenticate_PlainLoginNameReachesServer(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)

	ok, err := c.Authenticate(context.Background(), types.Credentials{Email: "jane", Password: testPassword})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Unauthenticated, c.State())
}

func TestAuthenticate_ServerDown(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	fc.server.Close()

	ok, err := c.Authenticate(context.Background(), validCreds())
	assert.False(t, ok)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Contains(t, transportErr.URL, "/clock/login")
}

func TestAuthenticate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	c, err := New(opts)
	require.NoError(t, err)

	ok, err := c.Authenticate(context.Background(), validCreds())
	assert.False(t, ok)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusBadGateway, transportErr.StatusCode)
}

func TestFetch_WithoutAuthenticationNeverTouchesNetwork(t *testing.T) {
	opts := DefaultOptions()
	// nothing listens here; a network attempt would surface as a transport error
	opts.BaseURL = "http://127.0.0.1:1/clock"
	c, err := New(opts)
	require.NoError(t, err)

	page, err := c.FetchPunchHistoryPage(context.Background(), 2015, 3)
	assert.Nil(t, page)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	var stateErr *StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, Unauthenticated, stateErr.State)
}

func TestFetch_QueryParameters(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)

	_, err = c.FetchPunchHistoryPage(ctx, 2014, 7)
	require.NoError(t, err)
	assert.Equal(t, "Show History", fc.lastQuery.Get("show"))
	assert.Equal(t, "2014", fc.lastQuery.Get("year"))
	assert.Equal(t, "07", fc.lastQuery.Get("month"))
}

func TestFetch_DefaultsToCurrentMonth(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)

	_, err = c.FetchPunchHistoryPage(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "2015", fc.lastQuery.Get("year"))
	assert.Equal(t, "03", fc.lastQuery.Get("month"))
}

func TestFetch_InvalidMonth(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)

	_, err = c.FetchPunchHistoryPage(ctx, 2015, 14)
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, "month", reqErr.Field)
}

func TestFetch_SessionExpired(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)

	fc.expire.Store(true)
	page, err := c.FetchPunchHistoryPage(ctx, 2015, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, errors.Is(err, ErrNotAuthenticated))
	require.NotNil(t, page)
	assert.Contains(t, page.FinalURL, "/clock/login")
	assert.False(t, c.Authenticated())
}

func TestFetch_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			http.Redirect(w, r, "/home", http.StatusSeeOther)
			return
		}
		if r.URL.Path == "/home" {
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("maintenance"))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	c, err := New(opts)
	require.NoError(t, err)

	ok, err := c.Authenticate(context.Background(), validCreds())
	require.NoError(t, err)
	require.True(t, ok)

	page, err := c.FetchPunchHistoryPage(context.Background(), 2015, 3)
	require.Error(t, err)
	require.NotNil(t, page)
	assert.Equal(t, "maintenance", page.HTML)

	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, http.StatusServiceUnavailable, transportErr.StatusCode)
}

func TestPunchHistory_EchoedValues(t *testing.T) {
	fc := newFakeClock(t)
	c := fc.newClient(t)
	ctx := context.Background()

	_, err := c.Authenticate(ctx, validCreds())
	require.NoError(t, err)

	summary, err := c.PunchHistory(ctx, 2015, 3)
	require.NoError(t, err)
	assert.Equal(t, 2015, summary.Year)
	assert.Equal(t, "03", summary.Month)
	assert.Equal(t, "1d 2h 30m", summary.TimeWorked)
	assert.Equal(t, 21, summary.WorkDays)
	require.Len(t, summary.Entries, 1)
	assert.Equal(t, "Acme", summary.Entries[0].Client)
}

func TestPunchHistory_ExtractionErrorPropagates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			http.Redirect(w, r, "/home", http.StatusFound)
		case "/home":
		default:
			_, _ = w.Write([]byte(`<html><body><input name="year" value="2015"></body></html>`))
		}
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.BaseURL = server.URL
	c, err := New(opts)
	require.NoError(t, err)

	_, err = c.Authenticate(context.Background(), validCreds())
	require.NoError(t, err)

	summary, err := c.PunchHistory(context.Background(), 2015, 3)
	assert.Nil(t, summary)

	var structErr *punchhistory.StructureError
	assert.ErrorAs(t, err, &structErr)
}

func TestNew_InvalidBaseURL(t *testing.T) {
	opts := DefaultOptions()
	opts.BaseURL = "not a url"
	_, err := New(opts)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
}

func TestNew_Defaults(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.http.Timeout)
	assert.Equal(t, Unauthenticated, c.State())
}

func TestNew_LoggerIsUsed(t *testing.T) {
	opts := DefaultOptions()
	opts.Logger = zerolog.New(zerolog.NewTestWriter(t))
	opts.InsecureSkipVerify = true
	_, err := New(opts)
	require.NoError(t, err)
}

func TestSessionState_String(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
