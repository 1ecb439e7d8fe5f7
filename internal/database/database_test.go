package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emilythestrangee/eliza-news/backend/internal/logger"
)

func TestHealth(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	svc, err := FromConn(sqlDB, "eliza", logger.Discard().WithField("component", "database"))
	require.NoError(t, err)

	mock.ExpectPing()
	stats := svc.Health(context.Background())
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "eliza", stats["database"])
	assert.Equal(t, "healthy", stats["message"])
	assert.Contains(t, stats, "open_connections")

	mock.ExpectPing().WillReturnError(errors.New("connection reset"))
	stats = svc.Health(context.Background())
	assert.Equal(t, "down", stats["status"])
	assert.Contains(t, stats["error"], "connection reset")

	mock.ExpectClose()
	require.NoError(t, svc.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
