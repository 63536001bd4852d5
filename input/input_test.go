package input

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

func TestMaskString(t *testing.T) {
	assert.Equal(t, "none", Mask(0).String())
	assert.Equal(t, "down|right|light", MaskOf(Light, Down, Right).String())
}

func TestParseAction(t *testing.T) {
	a, ok := ParseAction(" Special2 ")
	require.True(t, ok)
	assert.Equal(t, Special2, a)

	_, ok = ParseAction("punch")
	assert.False(t, ok)
}

func TestKeyMapValidate(t *testing.T) {
	_, err := NewKeyMap(DefaultKeyMap(1))
	require.NoError(t, err)

	partial := DefaultKeyMap(1)
	delete(partial, Light)
	partial[Grab] = "  "
	_, err = NewKeyMap(partial)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmapped))
	assert.Contains(t, err.Error(), "light")
	assert.Contains(t, err.Error(), "grab")

	_, err = NewCapture(partial)
	assert.Error(t, err)
}

func TestLoadKeyMap(t *testing.T) {
	f, err := ini.Load([]byte(`
[p1.keys]
up = w
down = s
left = a
right = d
light = j
heavy = k
special1 = u
special2 = i
special3 = o
dash = l
grab = h
evade = space
`))
	require.NoError(t, err)

	km, err := LoadKeyMap(f.Section("p1.keys"))
	require.NoError(t, err)
	assert.Equal(t, DefaultKeyMap(1), km)

	bad, err := ini.Load([]byte("[p2.keys]\nkick = x\nup = w\n"))
	require.NoError(t, err)
	_, err = LoadKeyMap(bad.Section("p2.keys"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kick")
}

func TestCaptureHeld(t *testing.T) {
	c, err := NewCapture(DefaultKeyMap(1))
	require.NoError(t, err)

	src := NewHeldSet("s", "d", "j", "unbound")
	assert.Equal(t, MaskOf(Down, Right, Light), c.Held(src))

	src.Release("d")
	assert.Equal(t, MaskOf(Down, Light), c.Held(src))

	src.Clear()
	assert.Equal(t, Mask(0), c.Held(src))
	assert.Equal(t, Mask(0), c.Held(nil))
}

func TestEdgeDetector(t *testing.T) {
	var e EdgeDetector
	assert.Equal(t, MaskOf(Light), e.Next(MaskOf(Light)))
	// 按住不再触发
	assert.Equal(t, Mask(0), e.Next(MaskOf(Light)))
	assert.Equal(t, MaskOf(Heavy), e.Next(MaskOf(Light, Heavy)))
	assert.Equal(t, Mask(0), e.Next(0))
	assert.Equal(t, MaskOf(Light), e.Next(MaskOf(Light)))

	e.Reset()
	assert.Equal(t, MaskOf(Light), e.Next(MaskOf(Light)))
}

func TestEdgeDetectorPressedIsSubsetOfHeld(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var e EdgeDetector
	var prev Mask
	all := MaskOf(Actions...)
	for i := 0; i < 2000; i++ {
		held := Mask(rng.Uint32()) & all
		pressed := e.Next(held)
		require.True(t, pressed.Subset(held), "tick %d", i)
		require.Equal(t, held&^prev, pressed, "tick %d", i)
		prev = held
	}
}

func TestScript(t *testing.T) {
	s, err := ParseScript("2:s,d 1: 1:j")
	require.NoError(t, err)
	c, err := NewCapture(DefaultKeyMap(1))
	require.NoError(t, err)

	want := []Mask{MaskOf(Down, Right), MaskOf(Down, Right), 0, MaskOf(Light), 0}
	for i, w := range want {
		assert.Equal(t, w, c.Held(s), "frame %d", i)
		assert.Equal(t, i >= 4, s.Done(), "frame %d", i)
		s.Advance()
	}
	assert.EqualValues(t, 5, s.Frame())

	s.Rewind()
	assert.True(t, s.IsHeld("s"))

	for _, bad := range []string{"3", "x:j", "0:j", "-1:j"} {
		_, err := ParseScript(bad)
		assert.Error(t, err, bad)
	}
	empty, err := ParseScript("")
	require.NoError(t, err)
	assert.True(t, empty.Done())
}
