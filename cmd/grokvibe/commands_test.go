package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/grokvibe/internal/vibe"
)

// isolateConfig points every config source at an empty temp dir and clears
// the environment the loader reads.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("GROKVIBE_CONFIG", filepath.Join(dir, "config.yaml"))
	for _, k := range []string{
		"PORT", "SLACK_BOT_TOKEN", "SLACK_SIGNING_SECRET", "GROK_API_KEY", "GROK_API_URL",
		"GROK_MODEL", "REDIS_URL", "GROKVIBE_PREFERENCES_DB", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.Execute()
	return out.String(), err
}

func TestVibeList(t *testing.T) {
	out, err := execute(t, "vibe", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "pro (default)\n")
	for _, v := range vibe.All() {
		assert.Contains(t, out, string(v))
	}
}

func TestVibeSetGet_SQLite(t *testing.T) {
	dir := isolateConfig(t)
	t.Setenv("GROKVIBE_PREFERENCES_DB", filepath.Join(dir, "prefs.db"))

	_, err := execute(t, "vibe", "set", "U1", "Nerdy")
	require.NoError(t, err)

	out, err := execute(t, "vibe", "get", "U1")
	require.NoError(t, err)
	assert.Equal(t, "nerdy\n", out)

	out, err = execute(t, "vibe", "get", "U2")
	require.NoError(t, err)
	assert.Equal(t, "pro\n", out, "unset users get the default")

	out, err = execute(t, "vibe", "users")
	require.NoError(t, err)
	assert.Equal(t, "U1\tnerdy\n", out)
}

func TestVibeUnset_SQLite(t *testing.T) {
	dir := isolateConfig(t)
	t.Setenv("GROKVIBE_PREFERENCES_DB", filepath.Join(dir, "prefs.db"))

	_, err := execute(t, "vibe", "set", "U1", "cyberpunk")
	require.NoError(t, err)

	_, err = execute(t, "vibe", "unset", "U1")
	require.NoError(t, err)

	out, err := execute(t, "vibe", "get", "U1")
	require.NoError(t, err)
	assert.Equal(t, "pro\n", out)

	_, err = execute(t, "vibe", "unset", "U1")
	assert.NoError(t, err, "unsetting a missing vibe only warns")
}

func TestVibeUnset_NoBackend(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "vibe", "unset", "U1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestVibeSet_Redis(t *testing.T) {
	isolateConfig(t)
	mr := miniredis.RunT(t)
	t.Setenv("REDIS_URL", "redis://"+mr.Addr())

	_, err := execute(t, "vibe", "set", "U9", "cyberpunk")
	require.NoError(t, err)

	got, err := mr.Get("user:U9")
	require.NoError(t, err)
	assert.Equal(t, "cyberpunk", got)
}

func TestVibeSet_InvalidVibe(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "vibe", "set", "U1", "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vibe")
}

func TestVibeSet_NoBackend(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "vibe", "set", "U1", "nerdy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "none")
}

func TestVibeGet_NoBackendFallsBackToDefault(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, "vibe", "get", "U1")
	require.NoError(t, err)
	assert.Equal(t, "pro\n", out)
}

func TestPrompt_DryRun(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, "prompt", "--vibe", "nerdy", "the", "build", "is", "green")
	require.NoError(t, err)
	assert.Equal(t, vibe.BuildPrompt("the build is green", vibe.Nerdy, false)+"\n", out)
}

func TestPrompt_DefaultsToPro(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, "prompt", "hello")
	require.NoError(t, err)
	assert.Equal(t, vibe.BuildPrompt("hello", vibe.Pro, false)+"\n", out)
}

func TestPrompt_Reverse(t *testing.T) {
	isolateConfig(t)

	out, err := execute(t, "prompt", "--reverse", "innit bruv")
	require.NoError(t, err)
	assert.Equal(t, vibe.BuildPrompt("innit bruv", vibe.Pro, true)+"\n", out)
}

func TestPrompt_UnknownVibe(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "prompt", "--vibe", "pirate", "ahoy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown vibe")
}

func TestPrompt_Send(t *testing.T) {
	isolateConfig(t)

	var gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"  beep boop  "}}]}`)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("GROK_API_URL", srv.URL)
	t.Setenv("GROK_API_KEY", "test-key")
	t.Setenv("GROK_MODEL", "grok-test")

	out, err := execute(t, "prompt", "--vibe", "nerdy", "--send", "hello")
	require.NoError(t, err)
	assert.Equal(t, "beep boop\n", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "grok-test", gotBody["model"])
}

func TestPrompt_SendFailure(t *testing.T) {
	isolateConfig(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("GROK_API_URL", srv.URL)

	_, err := execute(t, "prompt", "--send", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "completion unavailable")
}

func TestConfigSetAndShow(t *testing.T) {
	dir := isolateConfig(t)

	_, err := execute(t, "config", "set", "grok.model", "grok-file")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "grok-file")

	out, err := execute(t, "--no-color", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "grok.model = grok-file  (GROK_MODEL)")
	assert.NotContains(t, out, "slack.signing_secret")
}

func TestConfigUnset(t *testing.T) {
	dir := isolateConfig(t)

	_, err := execute(t, "config", "set", "grok.model", "grok-file")
	require.NoError(t, err)
	_, err = execute(t, "config", "unset", "grok.model")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "grok-file")

	out, err := execute(t, "--no-color", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "grok.model = grok-2-1212")
}

func TestConfigSet_SecretRejected(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "config", "set", "slack.signing_secret", "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_SIGNING_SECRET")
}

func TestServe_RequiresSigningSecret(t *testing.T) {
	isolateConfig(t)

	_, err := execute(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SLACK_SIGNING_SECRET")
}

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func TestRunServer_ServesAndShutsDown(t *testing.T) {
	isolateConfig(t)
	port := freePort(t)
	t.Setenv("PORT", fmt.Sprint(port))
	t.Setenv("SLACK_SIGNING_SECRET", "secret")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServer(ctx) }()

	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Get(base + "/")
	require.NoError(t, err)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Equal(t, "GrokVibe is running", body["message"])

	resp, err = http.Post(base+"/slack/events", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestSetupLogging(t *testing.T) {
	orig := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(orig) })

	setupLogging("DEBUG")
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	setupLogging("warn")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	setupLogging("chatty")
	assert.Equal(t, zerolog.InfoLevel, zerolog.GlobalLevel())
}
