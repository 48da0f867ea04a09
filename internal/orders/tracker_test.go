package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestTrack_Found(t *testing.T) {
	tracker := NewTracker(newSeededMemory(), zap.NewNop())

	res := tracker.Track(context.Background(), "  ORD-2345-6789 ")
	require.True(t, res.IsOk())
	assert.Equal(t, domain.OrderStatusShipped, res.Value.Status)
	assert.Equal(t, 3, CompletedSteps(res.Value.Status))
}

func TestTrack_BlankID(t *testing.T) {
	tracker := NewTracker(newSeededMemory(), zap.NewNop())

	for _, id := range []string{"", "   "} {
		res := tracker.Track(context.Background(), id)
		require.False(t, res.IsOk())
		assert.Equal(t, apperr.KindValidation, res.Err.Kind)
		assert.Equal(t, []string{"order_id"}, res.Err.Fields)
	}
}

func TestTrack_NotFound(t *testing.T) {
	tracker := NewTracker(newSeededMemory(), zap.NewNop())

	res := tracker.Track(context.Background(), "ORD-0000-0000")
	require.False(t, res.IsOk())
	assert.Equal(t, apperr.KindNotFound, res.Err.Kind)
	assert.False(t, res.Err.Retryable())
	assert.ErrorIs(t, res.Err, ErrOrderNotFound)
}

func TestTrack_ServiceFailure(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	next := &mockService{getErrs: []error{errors.New("timeout")}}
	tracker := NewTracker(next, zap.New(core))

	res := tracker.Track(context.Background(), "ORD-1")
	require.False(t, res.IsOk())
	assert.Equal(t, apperr.KindService, res.Err.Kind)
	assert.True(t, res.Err.Retryable())
	assert.Equal(t, 1, logs.Len())
}

func TestTrack_UnknownStatusIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	next := &mockService{order: &domain.Order{ID: "ORD-1", Status: "returned"}}
	tracker := NewTracker(next, zap.New(core))

	res := tracker.Track(context.Background(), "ORD-1")
	require.True(t, res.IsOk())
	assert.Equal(t, 1, logs.FilterMessage("order has unknown status, showing as pending").Len())
}
