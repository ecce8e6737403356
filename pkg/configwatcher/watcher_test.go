package configwatcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"quiz_app_backend/internal/config"

	"github.com/stretchr/testify/require"
)

func TestWatchConfigReloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cors:\n  allowed_origins: [\"http://a.example.com\"]\n"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- WatchConfig(ctx, path, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	// 等待 watcher 就绪后再修改文件
	time.Sleep(200 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("cors:\n  allowed_origins: [\"http://b.example.com\"]\n"), 0o644))

	select {
	case cfg := <-reloaded:
		require.Equal(t, []string{"http://b.example.com"}, cfg.CORS.AllowedOrigins)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
