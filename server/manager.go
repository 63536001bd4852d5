package server

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"duelarena/character"
	"duelarena/config"
)

// DefaultMatchID 启动时预创建的对局
const DefaultMatchID = "match-1"

// MatchManager 管理多个对局的生命周期
type MatchManager struct {
	ctx    context.Context
	cfg    *config.Config
	chars  [2]*character.Data
	mu     sync.RWMutex
	arenas map[string]*Arena
}

// NewMatchManager 创建管理器；ctx 取消时所有对局的 Tick 循环退出
func NewMatchManager(ctx context.Context, cfg *config.Config, chars [2]*character.Data) *MatchManager {
	return &MatchManager{
		ctx:    ctx,
		cfg:    cfg,
		chars:  chars,
		arenas: make(map[string]*Arena),
	}
}

// Create 新建对局；id 为空时生成 uuid
func (m *MatchManager) Create(id string) (*Arena, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return m.GetOrCreate(id)
}

// GetOrCreate 获取或创建对局，并确保开始 Tick
func (m *MatchManager) GetOrCreate(id string) (*Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.arenas[id]
	if ok {
		return a, nil
	}
	a, err := NewArena(id, m.cfg, m.chars)
	if err != nil {
		return nil, err
	}
	m.arenas[id] = a
	a.StartTicker(m.ctx)
	Log.Infow("match created", "match", id)
	return a, nil
}

// Get 查找已有对局
func (m *MatchManager) Get(id string) (*Arena, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.arenas[id]
	return a, ok
}

// List 返回所有对局 id（有序）
func (m *MatchManager) List() []string {
	m.mu.RLock()
	ids := make([]string, 0, len(m.arenas))
	for id := range m.arenas {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
