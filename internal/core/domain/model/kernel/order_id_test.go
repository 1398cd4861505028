package kernel_test

import (
	"testing"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderIDFromInt64(t *testing.T) {
	t.Run("positive_value_is_valid", func(t *testing.T) {
		id, err := kernel.OrderIDFromInt64(42)

		require.NoError(t, err)
		require.NoError(t, id.Validate())
		assert.Equal(t, int64(42), id.Int64())
		assert.Equal(t, "42", id.String())
	})

	t.Run("zero_and_negative_values_are_rejected", func(t *testing.T) {
		for _, v := range []int64{0, -1, -42} {
			_, err := kernel.OrderIDFromInt64(v)
			require.ErrorIs(t, err, errs.ErrValueIsRequired)
		}
	})

	t.Run("zero_value_fails_validation", func(t *testing.T) {
		var id kernel.OrderID
		require.ErrorIs(t, id.Validate(), errs.ErrValueIsRequired)
	})
}

func TestOrderIDFromString(t *testing.T) {
	t.Run("decimal_string_round_trips", func(t *testing.T) {
		id, err := kernel.OrderIDFromString("999999")

		require.NoError(t, err)
		assert.Equal(t, int64(999999), id.Int64())
	})

	t.Run("garbage_is_rejected", func(t *testing.T) {
		for _, s := range []string{"", "abc", "12.5", "1e3"} {
			_, err := kernel.OrderIDFromString(s)
			require.ErrorIs(t, err, errs.ErrValueIsInvalid, "input %q", s)
		}
	})

	t.Run("non_positive_strings_are_rejected", func(t *testing.T) {
		_, err := kernel.OrderIDFromString("0")
		require.Error(t, err)
	})
}

func TestOrderID_IsEqual(t *testing.T) {
	a, _ := kernel.OrderIDFromInt64(7)
	b, _ := kernel.OrderIDFromInt64(7)
	c, _ := kernel.OrderIDFromInt64(8)

	assert.True(t, a.IsEqual(b))
	assert.False(t, a.IsEqual(c))
}
