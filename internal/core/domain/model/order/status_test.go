package order_test

import (
	"testing"

	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_StartProcessing(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		want    order.Status
		wantErr bool
	}{
		{name: "from_placed", from: order.Placed, want: order.Processing},
		{name: "from_processing_is_idempotent", from: order.Processing, want: order.Processing},
		{name: "from_done_is_invalid", from: order.Done, wantErr: true},
		{name: "from_unknown_is_invalid", from: order.Unknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.StartProcessing()

			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_Complete(t *testing.T) {
	tests := []struct {
		name    string
		from    order.Status
		want    order.Status
		wantErr bool
	}{
		{name: "from_processing", from: order.Processing, want: order.Done},
		{name: "from_done_is_idempotent", from: order.Done, want: order.Done},
		{name: "from_placed_skips_processing", from: order.Placed, wantErr: true},
		{name: "from_unknown_is_invalid", from: order.Unknown, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.from.Complete()

			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrValueIsInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStatus_Validate(t *testing.T) {
	for _, s := range []order.Status{order.Placed, order.Processing, order.Done} {
		require.NoError(t, s.Validate(), "status %s", s)
	}

	require.Error(t, order.Unknown.Validate())
	require.Error(t, order.Status(42).Validate())
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "placed", order.Placed.String())
	assert.Equal(t, "processing", order.Processing.String())
	assert.Equal(t, "done", order.Done.String())
	assert.Equal(t, "unknown", order.Unknown.String())
	assert.Equal(t, "unknown", order.Status(42).String())
}

func TestStatusFromString(t *testing.T) {
	t.Run("valid_values_round_trip", func(t *testing.T) {
		for _, s := range []order.Status{order.Placed, order.Processing, order.Done} {
			got, err := order.StatusFromString(s.String())
			require.NoError(t, err)
			assert.Equal(t, s, got)
		}
	})

	t.Run("invalid_values_are_rejected", func(t *testing.T) {
		for _, s := range []string{"", "unknown", "cooking", "PLACED"} {
			_, err := order.StatusFromString(s)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, "input %q", s)
		}
	})
}

func TestStatus_IsFinal(t *testing.T) {
	assert.True(t, order.Done.IsFinal())
	assert.False(t, order.Placed.IsFinal())
	assert.False(t, order.Processing.IsFinal())
}
