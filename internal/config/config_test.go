package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "0.0.0.0:2233", cfg.Server.Addr)
	assert.Equal(t, 2, cfg.Server.MaxConns)
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Equal(t, 5*time.Second, cfg.Server.SleepDelay)
	assert.Equal(t, 4, cfg.Pool.Workers)
	assert.Empty(t, cfg.Metrics.Addr)
	require.NoError(t, cfg.Validate())
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	path := writeFile(t, "hellopool.yaml", `
server:
  addr: 127.0.0.1:9000
  sleep_delay: 250ms
pool:
  workers: 8
  lock_os_thread: true
metrics:
  addr: 127.0.0.1:9100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.SleepDelay)
	assert.Equal(t, 8, cfg.Pool.Workers)
	assert.True(t, cfg.Pool.LockOSThread)
	assert.Equal(t, "127.0.0.1:9100", cfg.Metrics.Addr)

	// untouched by the file
	assert.Equal(t, 1024, cfg.Server.ReadBufferSize)
	assert.Equal(t, 2, cfg.Server.MaxConns)
	assert.Equal(t, "hellopool", cfg.Metrics.Namespace)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "hellopool.yaml", `
pool:
  workers: 8
server:
  max_conns: 10
`)
	t.Setenv("HELLOPOOL_POOL_WORKERS", "16")
	t.Setenv("HELLOPOOL_SERVER_SLEEP_DELAY", "1s")
	t.Setenv("HELLOPOOL_METRICS_ADDR", ":9100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 16, cfg.Pool.Workers)
	assert.Equal(t, time.Second, cfg.Server.SleepDelay)
	assert.Equal(t, ":9100", cfg.Metrics.Addr)
	assert.Equal(t, 10, cfg.Server.MaxConns)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    func(t *testing.T) string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing file",
			path:    func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.yaml") },
			wantErr: "failed to read config file",
		},
		{
			name:    "malformed yaml",
			path:    func(t *testing.T) string { return writeFile(t, "bad.yaml", "server: [") },
			wantErr: "failed to parse YAML",
		},
		{
			name:    "bad env value",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"HELLOPOOL_POOL_WORKERS": "many"},
			wantErr: "failed to parse environment",
		},
		{
			name:    "zero workers",
			path:    func(t *testing.T) string { return "" },
			env:     map[string]string{"HELLOPOOL_POOL_WORKERS": "0"},
			wantErr: "pool.workers must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(tt.path(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	cfg := Default()
	cfg.Server.Addr = ""
	cfg.Server.ReadBufferSize = 0
	cfg.Pool.Workers = -1

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(unwrapOnce(err)), 3)
}

func unwrapOnce(err error) error {
	if u, ok := err.(interface{ Unwrap() error }); ok {
		return u.Unwrap()
	}
	return err
}
