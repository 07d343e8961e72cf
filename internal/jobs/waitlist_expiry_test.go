package jobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExpirer struct {
	mock.Mock
}

func (m *mockExpirer) ExpireStaleWaitlist(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, nil)), &buf
}

func TestRunWaitlistExpiry_LogsCount(t *testing.T) {
	expirer := new(mockExpirer)
	expirer.On("ExpireStaleWaitlist", mock.Anything).Return(int64(3), nil).Once()
	logger, buf := bufferLogger()

	RunWaitlistExpiry(context.Background(), expirer, logger)

	expirer.AssertExpectations(t)
	assert.Contains(t, buf.String(), `"count":3`)
}

func TestRunWaitlistExpiry_QuietWhenNothingExpired(t *testing.T) {
	expirer := new(mockExpirer)
	expirer.On("ExpireStaleWaitlist", mock.Anything).Return(int64(0), nil).Once()
	logger, buf := bufferLogger()

	RunWaitlistExpiry(context.Background(), expirer, logger)

	assert.Empty(t, buf.String())
}

func TestRunWaitlistExpiry_LogsFailure(t *testing.T) {
	expirer := new(mockExpirer)
	expirer.On("ExpireStaleWaitlist", mock.Anything).Return(int64(0), errors.New("mongo down")).Once()
	logger, buf := bufferLogger()

	RunWaitlistExpiry(context.Background(), expirer, logger)

	assert.Contains(t, buf.String(), "mongo down")
}

func TestScheduler_AddWaitlistExpiry(t *testing.T) {
	logger, _ := bufferLogger()
	s := NewScheduler(logger)

	require.NoError(t, s.AddWaitlistExpiry("@every 15m", new(mockExpirer)))
	require.NoError(t, s.AddWaitlistExpiry("", new(mockExpirer)))
	assert.Error(t, s.AddWaitlistExpiry("not a schedule", new(mockExpirer)))
	assert.Len(t, s.cron.Entries(), 1)

	s.Start()
	s.Stop(context.Background())
}
