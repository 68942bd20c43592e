package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrelwm/xflash/internal/display"
	"github.com/kestrelwm/xflash/internal/host"
	"github.com/kestrelwm/xflash/internal/host/memory"
)

func TestRegistry_FindByName(t *testing.T) {
	h := memory.New()
	id := h.AddFrame("Scratch", host.Visible)
	h.AddFrame("Other", host.Hidden)

	reg := display.NewRegistry(h)

	info, found, err := reg.FindByName("Scratch")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, id, info.ID)
	assert.Equal(t, "Scratch", info.Name)
}

func TestRegistry_FindByNameIdempotent(t *testing.T) {
	h := memory.New()
	h.AddFrame("Scratch", host.Visible)

	reg := display.NewRegistry(h)

	first, found, err := reg.FindByName("Scratch")
	require.NoError(t, err)
	require.True(t, found)

	second, found, err := reg.FindByName("Scratch")
	require.NoError(t, err)
	require.True(t, found)

	assert.Equal(t, first.ID, second.ID, "repeated lookups must resolve to the same frame")
}

func TestRegistry_Miss(t *testing.T) {
	h := memory.New()
	h.AddFrame("Scratch", host.Visible)

	reg := display.NewRegistry(h)

	info, found, err := reg.FindByName("Missing")
	require.NoError(t, err, "a miss is not an error")
	assert.False(t, found)
	assert.Nil(t, info)
}

func TestRegistry_EmptyName(t *testing.T) {
	reg := display.NewRegistry(memory.New())

	_, _, err := reg.FindByName("")
	assert.ErrorIs(t, err, display.ErrInvalidArgument)
}
