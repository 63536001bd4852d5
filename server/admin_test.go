package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"duelarena/character"
	"duelarena/config"
)

// newTestManager 返回 Tick 循环已停止的管理器，测试中手动 Tick
func newTestManager(t *testing.T) (*MatchManager, *Arena) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	roster := character.Training()
	mm := NewMatchManager(ctx, config.Default(), [2]*character.Data{roster, roster})
	a, err := mm.GetOrCreate(DefaultMatchID)
	require.NoError(t, err)
	return mm, a
}

func do(h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestAdminConfig(t *testing.T) {
	mm, a := newTestManager(t)

	rec := do(mm.HandleAdminConfig, http.MethodGet, "/admin/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 8, gjson.Get(rec.Body.String(), "buffer_window").Int())
	assert.EqualValues(t, 60, gjson.Get(rec.Body.String(), "tick_rate").Int())

	rec = do(mm.HandleAdminConfig, http.MethodPost, "/admin/config?match="+DefaultMatchID, `{"buffer_window":4}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gjson.Get(rec.Body.String(), "ok").Bool())
	a.Tick()
	assert.EqualValues(t, 4, a.match.Config().BufferWindow)

	rec = do(mm.HandleAdminConfig, http.MethodGet, "/admin/config", "")
	assert.EqualValues(t, 4, gjson.Get(rec.Body.String(), "buffer_window").Int())

	cases := []struct {
		name   string
		method string
		target string
		body   string
		code   int
	}{
		{"negative window", http.MethodPost, "/admin/config", `{"buffer_window":-1}`, http.StatusBadRequest},
		{"tick rate read only", http.MethodPost, "/admin/config", `{"tick_rate":30}`, http.StatusBadRequest},
		{"bad json", http.MethodPost, "/admin/config", `{`, http.StatusBadRequest},
		{"unknown match", http.MethodGet, "/admin/config?match=nope", "", http.StatusNotFound},
		{"method", http.MethodDelete, "/admin/config", "", http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, do(mm.HandleAdminConfig, tc.method, tc.target, tc.body).Code)
		})
	}
}

func TestMetricsAndSnapshot(t *testing.T) {
	mm, a := newTestManager(t)

	rec := do(mm.HandleSnapshot, http.MethodGet, "/snapshot", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	a.OnInput(PadInput{Seat: 1, Held: []string{"k"}, Seq: 1})
	a.Tick()

	rec = do(mm.HandleMetrics, http.MethodGet, "/metrics?match="+DefaultMatchID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Match   string             `json:"match"`
		Metrics map[string]float64 `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, DefaultMatchID, payload.Match)
	assert.EqualValues(t, 1, payload.Metrics["tick_count"])
	assert.EqualValues(t, 1, payload.Metrics["commands_detected"])

	rec = do(mm.HandleSnapshot, http.MethodGet, "/snapshot", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.EqualValues(t, 1, gjson.Get(rec.Body.String(), "frame").Int())
	assert.Len(t, gjson.Get(rec.Body.String(), "players").Array(), 2)

	assert.Equal(t, http.StatusNotFound, do(mm.HandleMetrics, http.MethodGet, "/metrics?match=nope", "").Code)
}

func TestMatches(t *testing.T) {
	mm, _ := newTestManager(t)

	rec := do(mm.HandleMatches, http.MethodPost, "/matches", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := gjson.Get(rec.Body.String(), "match").String()
	assert.Len(t, id, 36)
	_, ok := mm.Get(id)
	assert.True(t, ok)

	rec = do(mm.HandleMatches, http.MethodPost, "/matches?match=arcade", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "arcade", gjson.Get(rec.Body.String(), "match").String())

	rec = do(mm.HandleMatches, http.MethodGet, "/matches", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Matches []string `json:"matches"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Matches, 3)
	assert.Contains(t, list.Matches, DefaultMatchID)
	assert.Contains(t, list.Matches, "arcade")
	assert.IsIncreasing(t, list.Matches)

	same, err := mm.GetOrCreate("arcade")
	require.NoError(t, err)
	again, _ := mm.Get("arcade")
	assert.Same(t, same, again)
}

func TestParseSeatAndPad(t *testing.T) {
	for in, want := range map[string]int{"": 0, "spectate": 0, "SPECTATE": 0, "1": 1, "2": 2} {
		got, err := parseSeat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, in := range []string{"0", "3", "p1"} {
		_, err := parseSeat(in)
		assert.ErrorIs(t, err, ErrInvalidSeat, in)
	}

	in, ok := parsePad([]byte(`{"type":"pad","held":["s","d"],"seq":9}`), 2)
	require.True(t, ok)
	assert.Equal(t, PadInput{Seat: 2, Held: []string{"s", "d"}, Seq: 9}, in)

	_, ok = parsePad([]byte(`{"type":"pad","held":["s"]}`), 0)
	assert.False(t, ok)
	_, ok = parsePad([]byte(`{"type":"chat"}`), 1)
	assert.False(t, ok)
	_, ok = parsePad([]byte(`not json`), 1)
	assert.False(t, ok)
}

func TestHandleWSRejects(t *testing.T) {
	mm, a := newTestManager(t)
	require.NoError(t, a.JoinSeat(1, testConn()))

	rec := do(mm.HandleWS, http.MethodGet, "/ws?seat=1", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(mm.HandleWS, http.MethodGet, "/ws?seat=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// 未知对局不会被隐式创建
	rec = do(mm.HandleWS, http.MethodGet, "/ws?match=ghost&seat=2", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	_, ok := mm.Get("ghost")
	assert.False(t, ok)
	assert.Equal(t, []string{DefaultMatchID}, mm.List())
}
