package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	binaryPath := buildBinary(t)

	stdout, stderr, err := runHNS(t, binaryPath, nil, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "dev")

	var sinkHits int
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sinkHits++
		w.WriteHeader(http.StatusOK)
	}))
	defer sink.Close()

	hevy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "1" {
			_, _ = w.Write([]byte(`{"workouts":[{"id":"w-1","title":"Push","start_time":"2024-06-01T08:00:00Z"}],"total":1}`))
			return
		}
		_, _ = w.Write([]byte(`{"workouts":[],"total":1}`))
	}))
	defer hevy.Close()

	env := []string{
		"HNS_CONFIG=" + filepath.Join(t.TempDir(), "absent.toml"),
		"HEVY_API_KEY=smoke-key",
		"HEVY_BASE_URL=" + hevy.URL,
		"WEBHOOK_URL=" + sink.URL,
		"SYNC_START_DATE=2024-01-01",
		"SYNC_DELAY=1ms",
	}

	stdout, stderr, err = runHNS(t, binaryPath, env, "sync", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"Total\": 1")
	assert.Contains(t, stdout, "\"Succeeded\": 1")
	assert.Equal(t, 1, sinkHits)
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "hns-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/hns")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build hns binary: %s", string(output))
	return binaryPath
}

func runHNS(t *testing.T, binaryPath string, env []string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), env...)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
