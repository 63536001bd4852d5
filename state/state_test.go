package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNames(t *testing.T) {
	for _, id := range All() {
		assert.True(t, id.Valid())
		got, ok := Parse(id.String())
		assert.True(t, ok, id.String())
		assert.Equal(t, id, got)
	}
	assert.Len(t, All(), 8)
	assert.Equal(t, "hitstun", Hitstun.String())

	unknown := ID(42)
	assert.False(t, unknown.Valid())
	assert.Equal(t, "state(42)", unknown.String())
	_, ok := Parse("dizzy")
	assert.False(t, ok)
}
