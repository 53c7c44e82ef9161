package clickhouse

import (
	"context"
	"errors"
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AnomalyLens/pkg/config"
)

func TestBuildOptions_Native(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []ClientOption{
		WithHost("ch.local"),
		WithDatabase("market"),
		WithCredentials("reader", "secret"),
		WithTimeouts(2*time.Second, 0),
		WithMaxExecutionTime(30 * time.Second),
	} {
		opt(&cfg)
	}

	opt := buildOptions(cfg)
	assert.Equal(t, []string{"ch.local:9000"}, opt.Addr)
	assert.Equal(t, "market", opt.Auth.Database)
	assert.Equal(t, "reader", opt.Auth.Username)
	assert.Equal(t, ch.Native, opt.Protocol)
	assert.Equal(t, 2*time.Second, opt.DialTimeout)
	assert.Equal(t, ch.CompressionLZ4, opt.Compression.Method)
	assert.Equal(t, 30, opt.Settings["max_execution_time"])
}

func TestBuildOptions_HTTP(t *testing.T) {
	opt := buildOptions(ClientConfig{Host: "h", Port: 8123, Database: "d", User: "u", UseHTTP: true})
	assert.Equal(t, []string{"h:8123"}, opt.Addr)
	assert.Equal(t, ch.HTTP, opt.Protocol)
	assert.Equal(t, ch.CompressionGZIP, opt.Compression.Method)
	assert.Nil(t, opt.Settings)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range OptionsFromConfig(config.ClickHouseConfig{
		Host: "h", Port: 9440, Database: "market", User: "u",
		MaxOpenConns: 1, ReadTimeout: 30 * time.Second,
	}) {
		opt(&cfg)
	}
	assert.Equal(t, "h", cfg.Host)
	assert.Equal(t, 9440, cfg.Port)
	assert.Equal(t, 1, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Second, cfg.MaxExecTime)
}

func TestNewClient_RequiresHost(t *testing.T) {
	_, err := NewClient(WithHost(""))
	assert.Error(t, err)
}

func TestInitSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	c := NewClientFromDB(db)
	t.Cleanup(func() { _ = c.Close() })

	mock.ExpectExec("CREATE DATABASE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("syntax error"))

	err = c.InitSchema(context.Background(), []string{"CREATE DATABASE IF NOT EXISTS market", "CREATE TABLE x"})
	assert.ErrorContains(t, err, "statement 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}
