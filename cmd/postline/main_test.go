package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pevans/postline/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv isolates a run from the real home directory and environment
func testEnv(t *testing.T, extra map[string]string) func(string) string {
	t.Helper()
	values := map[string]string{"POSTLINE_HOME": t.TempDir()}
	for k, v := range extra {
		values[k] = v
	}
	return func(key string) string {
		return values[key]
	}
}

func runCLI(t *testing.T, env func(string) string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, env)
	return code, stdout.String(), stderr.String()
}

func TestRun_NoArguments(t *testing.T) {
	code, stdout, _ := runCLI(t, testEnv(t, nil))

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: No URL supplied.\n", stdout)
}

func TestRun_TooManyArguments(t *testing.T) {
	code, stdout, _ := runCLI(t, testEnv(t, nil), "https://a.example/", "https://b.example/")

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: No URL supplied.\n", stdout)
}

func TestRun_BadFlag(t *testing.T) {
	code, stdout, _ := runCLI(t, testEnv(t, nil), "-nope", "https://a.example/")

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "Error: "))
}

func TestRun_BadTimeoutFlag(t *testing.T) {
	code, stdout, _ := runCLI(t, testEnv(t, nil), "-timeout", "0s", "https://a.example/")

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "Error: "))
}

func TestRun_Help(t *testing.T) {
	code, stdout, stderr := runCLI(t, testEnv(t, nil), "-h")

	assert.Equal(t, 0, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "postline [flags] <url>")
}

// TestRun_Success verifies one record line for a generic page
func TestRun_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>A\nTitle</title></head></html>")
	}))
	defer srv.Close()

	code, stdout, _ := runCLI(t, testEnv(t, nil), srv.URL+"/article")
	require.Equal(t, 0, code)

	assert.True(t, strings.HasSuffix(stdout, "\n"))
	assert.Equal(t, 1, strings.Count(stdout, "\n"), "exactly one line")

	fields := strings.Split(strings.TrimSuffix(stdout, "\n"), "\t")
	require.Len(t, fields, 5)
	assert.Len(t, fields[0], len("2006-01-02 15:04:05"))
	assert.Equal(t, srv.URL+"/article", fields[1])
	assert.Equal(t, "", fields[2])
	assert.Equal(t, "Article", fields[3])
	assert.Equal(t, "A Title", fields[4])
}

// TestRun_TitleFlag verifies -title adds the title field
func TestRun_TitleFlag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>Hi</title></head></html>")
	}))
	defer srv.Close()

	code, stdout, _ := runCLI(t, testEnv(t, nil), "-title", srv.URL)
	require.Equal(t, 0, code)

	fields := strings.Split(strings.TrimSuffix(stdout, "\n"), "\t")
	require.Len(t, fields, 6)
	assert.Equal(t, "Hi", fields[4])
	assert.Equal(t, "Hi", fields[5])
}

// TestRun_TitleFromEnvironment verifies env settings reach the formatter
func TestRun_TitleFromEnvironment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>Hi</title></head></html>")
	}))
	defer srv.Close()

	env := testEnv(t, map[string]string{"POSTLINE_INCLUDE_TITLE": "true"})
	code, stdout, _ := runCLI(t, env, srv.URL)
	require.Equal(t, 0, code)

	assert.Len(t, strings.Split(strings.TrimSuffix(stdout, "\n"), "\t"), 6)
}

// TestRun_UserAgentFromSettingsStore verifies the persisted store is read
func TestRun_UserAgentFromSettingsStore(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		io.WriteString(w, "<html><head><title>Hi</title></head></html>")
	}))
	defer srv.Close()

	home := t.TempDir()
	store, err := config.NewSettingsStore(filepath.Join(home, "settings.db"))
	require.NoError(t, err)
	require.NoError(t, store.Set(config.KeyUserAgent, "stored-agent/1.0"))
	require.NoError(t, store.Close())

	env := func(key string) string {
		if key == "POSTLINE_HOME" {
			return home
		}
		return ""
	}

	code, _, _ := runCLI(t, env, srv.URL)
	require.Equal(t, 0, code)
	assert.Equal(t, "stored-agent/1.0", gotUA)
}

// TestRun_Timeout verifies a slow server ends in an error line and exit 1
func TestRun_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	code, stdout, _ := runCLI(t, testEnv(t, nil), "-timeout", "50ms", srv.URL)

	assert.Equal(t, 1, code)
	assert.True(t, strings.HasPrefix(stdout, "Error:"))
	assert.Equal(t, "Error: Failed to send request to address.\n", stdout)
}

// TestRun_HTTPError verifies non-2xx statuses are reported with their code
func TestRun_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	code, stdout, _ := runCLI(t, testEnv(t, nil), srv.URL)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Request failed with code 403\n", stdout)
}

// TestRun_ParseError verifies extraction failures are reported
func TestRun_ParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><body>no title</body></html>")
	}))
	defer srv.Close()

	code, stdout, _ := runCLI(t, testEnv(t, nil), srv.URL)

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error: Failed to parse the webpage: node not found: title\n", stdout)
}

// TestRun_BrokenConfigIsWarned verifies a bad config file does not stop a run
func TestRun_BrokenConfigIsWarned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html><head><title>Hi</title></head></html>")
	}))
	defer srv.Close()

	home := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(home, "config.yaml"), []byte("fetch: [oops"), 0o600))
	env := func(key string) string {
		if key == "POSTLINE_HOME" {
			return home
		}
		return ""
	}

	code, stdout, stderr := runCLI(t, env, srv.URL)

	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "\tArticle\tHi\n")
	assert.Contains(t, stderr, "ignoring part of the configuration")
}
