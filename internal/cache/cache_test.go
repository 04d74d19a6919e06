package cache

import (
	"context"
	"testing"
	"time"

	"zawawiya-store/internal/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	m := NewMemory(clk)

	require.NoError(t, m.Set(ctx, "provinces", []byte(`[{"code":"32"}]`), time.Hour))

	got, err := m.Get(ctx, "provinces")
	require.NoError(t, err)
	assert.Equal(t, `[{"code":"32"}]`, string(got))

	clk.Advance(59 * time.Minute)
	_, err = m.Get(ctx, "provinces")
	assert.NoError(t, err)

	clk.Advance(time.Minute)
	_, err = m.Get(ctx, "provinces")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemory_ZeroTTLNeverExpires(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewManual(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	m := NewMemory(clk)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 0))
	clk.Advance(365 * 24 * time.Hour)

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))
}

func TestMemory_MissAndDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(clock.Real{})

	_, err := m.Get(ctx, "absent")
	assert.ErrorIs(t, err, ErrMiss)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), time.Minute))
	require.NoError(t, m.Delete(ctx, "k"))
	require.NoError(t, m.Delete(ctx, "k"))

	_, err = m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrMiss)
}
