package server

import (
	"encoding/json"
	"net/http"
)

// arenaFromQuery 按 ?match= 查找对局，缺省为 DefaultMatchID
func (m *MatchManager) arenaFromQuery(w http.ResponseWriter, r *http.Request) (*Arena, bool) {
	id := r.URL.Query().Get("match")
	if id == "" {
		id = DefaultMatchID
	}
	a, ok := m.Get(id)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return nil, false
	}
	return a, true
}

// HandleAdminConfig 提供对局配置的读取与更新（热更新缓冲窗口）
// GET /admin/config?match=match-1  返回当前配置
// POST /admin/config?match=match-1 以 JSON 载荷更新部分字段
func (m *MatchManager) HandleAdminConfig(w http.ResponseWriter, r *http.Request) {
	a, ok := m.arenaFromQuery(w, r)
	if !ok {
		return
	}

	type cfg struct {
		BufferWindow *int64 `json:"buffer_window,omitempty"`
		TickRate     *int   `json:"tick_rate,omitempty"`
	}

	switch r.Method {
	case http.MethodGet:
		window := a.BufferWindow()
		rate := a.tickRate
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(cfg{BufferWindow: &window, TickRate: &rate})
	case http.MethodPost:
		var body cfg
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if body.TickRate != nil {
			http.Error(w, "tick_rate is read-only", http.StatusBadRequest)
			return
		}
		if body.BufferWindow != nil {
			if *body.BufferWindow < 0 {
				http.Error(w, "buffer_window must be >= 0", http.StatusBadRequest)
				return
			}
			a.SetBufferWindow(*body.BufferWindow)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
		Log.Infow("config updated", "match", a.ID, "buffer_window", a.BufferWindow())
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMetrics 输出指定对局的运行指标
// GET /metrics?match=match-1
func (m *MatchManager) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	a, ok := m.arenaFromQuery(w, r)
	if !ok {
		return
	}
	payload := map[string]any{
		"match":   a.ID,
		"metrics": a.metrics.Snapshot(),
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

// HandleSnapshot 输出最近一次广播的状态帧
// GET /snapshot?match=match-1
func (m *MatchManager) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	a, ok := m.arenaFromQuery(w, r)
	if !ok {
		return
	}
	state := a.LatestState()
	if state == nil {
		http.Error(w, "no state yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(state)
}

// HandleMatches 列出或新建对局
// GET /matches 返回对局 id 列表；POST /matches 新建（uuid）
func (m *MatchManager) HandleMatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"matches": m.List()})
	case http.MethodPost:
		a, err := m.Create(r.URL.Query().Get("match"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{"match": a.ID})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
