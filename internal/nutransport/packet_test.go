package nutransport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFateStringAndTerminal(t *testing.T) {
	cases := []struct {
		f Fate
		s string
		terminal bool
	}{
		{Moving, "moving", false},
		{Escaped, "escaped", true},
		{Absorbed, "absorbed", true},
		{Rouletted, "rouletted", true},
	}
	for _, c := range cases {
		assert.Equal(t, c.s, c.f.String())
		assert.Equal(t, c.terminal, c.f.Terminal())
	}
}

func TestFateStringUnknown(t *testing.T) {
	assert.Equal(t, "unknown", Fate(99).String())
}

func TestPacketAlive(t *testing.T) {
	pk := Packet{N: 1, Fate: Moving}
	assert.True(t, pk.Alive())

	pk.N = 0
	assert.False(t, pk.Alive())

	pk.N = 1
	pk.Fate = Escaped
	assert.False(t, pk.Alive())
}
