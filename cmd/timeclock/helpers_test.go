package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "correct horse"
)

// resetFlags restores every flag to its default so commands can be executed
// repeatedly within one test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// executeCommand runs the root command with args and returns what it wrote to
// stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

// isolateEnv clears the environment variables config.Load reads.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"TIMECLOCK_BASE_URL", "TIMECLOCK_TIMEOUT_SECONDS", "TIMECLOCK_USER_AGENT",
		"TIMECLOCK_INSECURE_SKIP_VERIFY", "TIMECLOCK_EMAIL", "TIMECLOCK_PASSWORD",
		"DATABASE_URL", "TIMECLOCK_LOG_LEVEL", "TIMECLOCK_LOG_PRETTY",
	} {
		// Setenv registers the restore; the variable itself must be absent.
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
}

// newFakeTimeclock serves a login endpoint and a history page echoing the
// requested month.
func newFakeTimeclock(t *testing.T, historyPage string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil || r.PostForm.Get("email_address") != testEmail || r.PostForm.Get("password") != testPassword {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		http.Redirect(w, r, "/home", http.StatusFound)
	})
	mux.HandleFunc("GET /login", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>login</body></html>")
	})
	mux.HandleFunc("GET /home", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, "<html><body>home</body></html>")
	})
	mux.HandleFunc("GET /punch_history", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err != nil || c.Value != "ok" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		_, _ = fmt.Fprint(w, historyPage)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}
