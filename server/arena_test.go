package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"duelarena/character"
	"duelarena/config"
)

func newTestArena(t *testing.T) *Arena {
	t.Helper()
	roster := character.Training()
	a, err := NewArena("test", config.Default(), [2]*character.Data{roster, roster})
	require.NoError(t, err)
	return a
}

func testConn() *ClientConn { return &ClientConn{send: make(chan []byte, 64)} }

func TestSeatApplySeq(t *testing.T) {
	s := newSeat(1, nil)
	assert.True(t, s.apply(PadInput{Seat: 1, Held: []string{"j"}, Seq: 2}))
	assert.True(t, s.Source.IsHeld("j"))

	assert.False(t, s.apply(PadInput{Seat: 1, Held: []string{"k"}, Seq: 2}))
	assert.False(t, s.apply(PadInput{Seat: 1, Held: []string{"k"}, Seq: 1}))
	assert.False(t, s.Source.IsHeld("k"))

	// 不带序列号的消息总是生效
	assert.True(t, s.apply(PadInput{Seat: 1, Held: []string{"k"}}))
	assert.True(t, s.Source.IsHeld("k"))
	assert.False(t, s.Source.IsHeld("j"))

	s.release()
	assert.False(t, s.Source.IsHeld("k"))
	assert.True(t, s.apply(PadInput{Seat: 1, Held: []string{"j"}, Seq: 1}))
}

func TestArenaTickDetectsCommand(t *testing.T) {
	a := newTestArena(t)
	a.OnInput(PadInput{Seat: 1, Held: []string{"j"}, Seq: 1})
	a.Tick()

	m := a.Metrics().Snapshot()
	assert.EqualValues(t, 1, m["tick_count"])
	assert.EqualValues(t, 1, m["inputs_accepted"])
	assert.EqualValues(t, 1, m["commands_detected"])

	// 持续按住不会重复触发
	a.Tick()
	assert.EqualValues(t, 1, a.Metrics().Snapshot()["commands_detected"])

	st := a.LatestState()
	require.NotNil(t, st)
	assert.Equal(t, "state", gjson.GetBytes(st, "type").String())
	assert.Equal(t, "test", gjson.GetBytes(st, "match").String())
	assert.EqualValues(t, 2, gjson.GetBytes(st, "frame").Int())
	assert.True(t, gjson.GetBytes(st, "running").Bool())
	players := gjson.GetBytes(st, "players").Array()
	require.Len(t, players, 2)
	assert.EqualValues(t, 1, players[0].Get("player_id").Int())
	assert.EqualValues(t, 2, players[1].Get("player_id").Int())
	assert.False(t, gjson.GetBytes(st, "result").Exists())
}

func TestArenaInputOrdering(t *testing.T) {
	a := newTestArena(t)
	a.OnInput(PadInput{Seat: 2, Held: []string{"kp1"}, Seq: 5})
	a.OnInput(PadInput{Seat: 2, Held: []string{}, Seq: 4})
	a.OnInput(PadInput{Seat: 3, Held: []string{"kp1"}, Seq: 6})
	a.Tick()

	m := a.Metrics().Snapshot()
	assert.EqualValues(t, 1, m["inputs_accepted"])
	assert.EqualValues(t, 1, m["old_seq_ignored"])
	assert.True(t, a.seats[1].Source.IsHeld("kp1"))
}

func TestArenaInputChannelFull(t *testing.T) {
	a := newTestArena(t)
	for i := 0; i < cap(a.inputChan)+3; i++ {
		a.OnInput(PadInput{Seat: 1, Seq: int64(i + 1)})
	}
	assert.EqualValues(t, 3, a.Metrics().Snapshot()["chan_full_dropped"])
	a.Tick()
	assert.EqualValues(t, cap(a.inputChan), a.Metrics().Snapshot()["inputs_accepted"])
}

func TestArenaSeats(t *testing.T) {
	a := newTestArena(t)
	c1, c2, watcher := testConn(), testConn(), testConn()

	require.NoError(t, a.JoinSeat(1, c1))
	assert.ErrorIs(t, a.JoinSeat(1, c2), ErrSeatTaken)
	assert.ErrorIs(t, a.JoinSeat(3, c2), ErrInvalidSeat)
	a.JoinSpectator(watcher)

	a.OnInput(PadInput{Seat: 1, Held: []string{"s"}, Seq: 1})
	a.Tick()
	assert.Len(t, c1.send, 1)
	assert.Len(t, watcher.send, 1)
	assert.Len(t, c2.send, 0)

	a.RequestLeave(c1)
	a.Tick()
	assert.Nil(t, a.seats[0].Conn)
	assert.False(t, a.seats[0].Source.IsHeld("s"))
	require.NoError(t, a.JoinSeat(1, c2))

	a.RequestLeave(watcher)
	a.Tick()
	assert.Len(t, watcher.send, 0)
	assert.Len(t, c2.send, 1)
}

func TestArenaRestartsAfterKO(t *testing.T) {
	a := newTestArena(t)
	a.Tick()
	a.match.P2().Snapshot().Health = 0
	a.Tick()

	st := a.LatestState()
	assert.False(t, gjson.GetBytes(st, "running").Bool())
	assert.EqualValues(t, 1, gjson.GetBytes(st, "result.winner").Int())
	assert.EqualValues(t, 2, gjson.GetBytes(st, "result.frame").Int())
	assert.Equal(t, "ko", gjson.GetBytes(st, "result.reason").String())
	assert.EqualValues(t, 1, a.Metrics().Snapshot()["matches_finished"])

	for i := 0; i < restartDelayTicks-1; i++ {
		a.Tick()
	}
	assert.False(t, a.match.Running())
	a.Tick()
	assert.True(t, a.match.Running())
	assert.Equal(t, a.match.P2().Snapshot().MaxHealth, a.match.P2().Snapshot().Health)
	assert.False(t, gjson.GetBytes(a.LatestState(), "result").Exists())
}

func TestArenaSetBufferWindow(t *testing.T) {
	a := newTestArena(t)
	a.SetBufferWindow(3)
	assert.EqualValues(t, 3, a.BufferWindow())
	assert.EqualValues(t, 8, a.match.Config().BufferWindow)
	a.Tick()
	assert.EqualValues(t, 3, a.match.Config().BufferWindow)
	assert.EqualValues(t, 3, a.match.P1().Controller().Window())

	a.SetBufferWindow(-2)
	assert.EqualValues(t, 0, a.BufferWindow())
}

func TestArenaScriptedSeat(t *testing.T) {
	cfg := config.Default()
	cfg.Players[1].Script = "1:kp1 2:"
	roster := character.Training()
	a, err := NewArena("dummy", cfg, [2]*character.Data{roster, roster})
	require.NoError(t, err)

	detected := func() any { return a.Metrics().Snapshot()["commands_detected"] }
	a.Tick()
	assert.EqualValues(t, 1, detected())
	a.Tick()
	a.Tick()
	a.Tick()
	assert.EqualValues(t, 2, detected(), "script loops")

	// 手柄接管后脚本不再生效
	a.OnInput(PadInput{Seat: 2, Seq: 1})
	for i := 0; i < 3; i++ {
		a.Tick()
	}
	assert.EqualValues(t, 2, detected())

	cfg.Players[0].Script = "oops"
	_, err = NewArena("bad", cfg, [2]*character.Data{roster, roster})
	assert.Error(t, err)
}
