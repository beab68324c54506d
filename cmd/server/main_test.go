package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"larder/internal/config"
	"larder/internal/server"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

// stubRuntime swaps every injectable dependency of run for the test's
// duration. Dependencies a test does not expect to be reached fail it.
func stubRuntime(t *testing.T, cfg config.Config) {
	t.Helper()
	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalSetLogFormat := setLogFormatFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig
	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		setLogFormatFunc = originalSetLogFormat
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	setLogFormatFunc = func(string) error { return nil }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Error("mock database should not be used")
		return nil, errors.New("unexpected mock database")
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Error("configureDatabase should not be called")
		return nil, errors.New("unexpected database configuration")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Error("server should not be built")
		return nil, errors.New("unexpected server")
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	stubRuntime(t, config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Costing:  config.CostingConfig{Journal: true},
	})

	var mockCalled bool
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		mockCalled = true
		return &gorm.DB{}, nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	var got server.Config
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		got = cfg
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}
	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	require.Equal(t, 0, run(context.Background()))
	assert.True(t, mockCalled, "mock database is used")
	assert.True(t, serverStub.startCalled)
	assert.True(t, serverStub.stopCalled)
	assert.Equal(t, ":8080", got.Addr)
	assert.True(t, got.Journal, "journal setting reaches the server")
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	stubRuntime(t, config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "info"},
	})
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }

	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}

	assert.Equal(t, 1, run(context.Background()))
	assert.False(t, serverStub.stopCalled, "stop is not called after a start error")
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	stubRuntime(t, config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{URL: "postgres://example"},
		Logging:  config.LoggingConfig{Level: "info"},
	})
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("db connection refused")
	}

	assert.Equal(t, 1, run(context.Background()))
}

func TestRunReturnsErrorWhenLogLevelInvalid(t *testing.T) {
	stubRuntime(t, config.Config{Logging: config.LoggingConfig{Level: "invalid"}})
	setLogLevelFunc = func(string) error { return errors.New("invalid level") }

	assert.Equal(t, 1, run(context.Background()))
}

func TestRunReturnsErrorWhenLogFormatInvalid(t *testing.T) {
	stubRuntime(t, config.Config{Logging: config.LoggingConfig{Level: "info", Format: "xml"}})
	setLogFormatFunc = func(string) error { return errors.New("unknown format") }

	assert.Equal(t, 1, run(context.Background()))
}
