package httpserver_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lllypuk/imghost/internal/infrastructure/httpserver"
)

func TestDefaultServerConfig(t *testing.T) {
	config := httpserver.DefaultServerConfig()

	assert.Equal(t, httpserver.DefaultHost, config.Host)
	assert.Equal(t, httpserver.DefaultPort, config.Port)
	assert.Equal(t, httpserver.DefaultShutdownTimeout, config.ShutdownTimeout)
}

func TestNewServer(t *testing.T) {
	config := httpserver.DefaultServerConfig()
	config.ReadTimeout = 5 * time.Second

	s := httpserver.NewServer(config, nil)

	require.NotNil(t, s.Echo())
	assert.Equal(t, 5*time.Second, s.Echo().Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0:8080", s.Address())
}

func TestServer_StartAndShutdown(t *testing.T) {
	config := httpserver.DefaultServerConfig()
	config.Host = "127.0.0.1"
	config.Port = 0
	s := httpserver.NewServer(config, nil)

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	require.Eventually(t, func() bool { return s.Echo().ListenerAddr() != nil }, time.Second, 10*time.Millisecond)
	require.NoError(t, s.Shutdown(context.Background()))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}
