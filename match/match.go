package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"duelarena/character"
	"duelarena/command"
	"duelarena/fixed"
	"duelarena/input"
	"duelarena/player"
	"duelarena/state"
)

var (
	// ErrInvalidPlayer 玩家编号不是 1 或 2
	ErrInvalidPlayer = errors.New("match: invalid player index")
	// ErrNotRunning 对局未开始或已结束
	ErrNotRunning = errors.New("match: not running")
)

// TicksPerSecond 固定仿真频率
const TicksPerSecond = 60

// Config 对局参数
type Config struct {
	BufferWindow   int64 // 指令缓冲窗口（帧）
	BufferCapacity int
	SpawnDistance  fixed.Scalar // 开局两人间距
}

// DefaultConfig 默认参数
func DefaultConfig() Config {
	return Config{
		BufferWindow:   8,
		BufferCapacity: command.DefaultCapacity,
		SpawnDistance:  fixed.FromInt(300),
	}
}

// Setup 外部传入的单个玩家配置
type Setup struct {
	Keys      input.KeyMap
	Source    input.Source
	Character *character.Data
	Logic     Logic // 为空时使用默认状态机
}

// Hooks 观测回调，全部可为空；在 Tick 线程上同步调用
type Hooks struct {
	OnCommand       func(playerID int, c command.Command)
	OnExpired       func(playerID int, expired []command.Command)
	OnEvicted       func(playerID int, c command.Command)
	OnStateFallback func(playerID int, missed state.ID)
	OnFinish        func(r Result)
}

// Result 胜负结果；Winner 为 0 表示双方同时倒地
type Result struct {
	Winner int
	Frame  int64
	Reason string
}

// Option 可选项
type Option func(*Match)

// WithLogger 设置日志
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Match) {
		if l != nil {
			m.log = l
		}
	}
}

// WithHooks 设置观测回调
func WithHooks(h Hooks) Option { return func(m *Match) { m.hooks = h } }

// Match 对局编排：持有全局帧计数与两个 PlayerContext，单线程锁步推进
type Match struct {
	cfg      Config
	log      *zap.SugaredLogger
	hooks    Hooks
	frames   int64
	running  bool
	result   *Result
	contexts [2]*PlayerContext
	views    [2]*player.Snapshot // 上一帧结束时的只读视图
}

// New 构造对局；任何配置错误（按键、角色数据）都在这里直接返回
func New(cfg Config, p1, p2 Setup, opts ...Option) (*Match, error) {
	m := &Match{cfg: cfg, log: zap.NewNop().Sugar()}
	for _, o := range opts {
		o(m)
	}
	if cfg.BufferWindow < 0 {
		return nil, fmt.Errorf("match: negative buffer window %d", cfg.BufferWindow)
	}

	half := cfg.SpawnDistance / 2
	spawns := [2]fixed.Vec2{{X: -half}, {X: half}}
	var err error
	for i, setup := range [2]Setup{p1, p2} {
		pc, e := m.newContext(i+1, setup, spawns[i], i == 0)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		m.contexts[i] = pc
	}
	if err != nil {
		return nil, err
	}
	m.contexts[0].opponent = 1
	m.contexts[1].opponent = 0
	m.captureViews()
	return m, nil
}

func (m *Match) newContext(id int, s Setup, spawn fixed.Vec2, facingRight bool) (*PlayerContext, error) {
	if s.Character == nil {
		return nil, fmt.Errorf("player %d: missing character data", id)
	}
	if err := s.Character.Validate(); err != nil {
		return nil, fmt.Errorf("player %d: %w", id, err)
	}
	ctrl, err := NewController(id, s.Keys, s.Source, m.cfg.BufferWindow, m.cfg.BufferCapacity)
	if err != nil {
		return nil, err
	}
	pc := &PlayerContext{
		id:          id,
		match:       m,
		controller:  ctrl,
		character:   s.Character,
		logic:       s.Logic,
		spawn:       spawn,
		spawnFacing: facingRight,
	}
	pc.tracker = player.NewTracker(player.NewSnapshot(id, s.Character.Stats, spawn, facingRight), s.Character.Stats)
	if pc.logic == nil {
		pc.logic = NewMachine(nil, m.stateFallback)
	}
	return pc, nil
}

// Start 重置帧计数、运行标记、双方快照与输入管线
func (m *Match) Start() {
	m.frames = 0
	m.result = nil
	for _, pc := range m.contexts {
		pc.reset()
	}
	m.captureViews()
	m.running = true
	m.log.Infow("match started", "p1", m.contexts[0].character.ID, "p2", m.contexts[1].character.ID)
}

// Stop 停止推进
func (m *Match) Stop() { m.running = false }

// Running 是否在推进中
func (m *Match) Running() bool { return m.running }

// FramesElapsed 已推进帧数
func (m *Match) FramesElapsed() int64 { return m.frames }

// Result 对局结果，未结束时为 nil
func (m *Match) Result() *Result { return m.result }

// Config 当前参数
func (m *Match) Config() Config { return m.cfg }

// SetBufferWindow 调整双方缓冲窗口；只能在 Tick 线程调用
func (m *Match) SetBufferWindow(w int64) {
	if w < 0 {
		w = 0
	}
	m.cfg.BufferWindow = w
	for _, pc := range m.contexts {
		pc.controller.SetWindow(w)
	}
}

// Context 按玩家编号（1/2）取上下文
func (m *Match) Context(playerID int) (*PlayerContext, error) {
	if playerID < 1 || playerID > 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPlayer, playerID)
	}
	return m.contexts[playerID-1], nil
}

// P1 / P2 便捷访问
func (m *Match) P1() *PlayerContext { return m.contexts[0] }
func (m *Match) P2() *PlayerContext { return m.contexts[1] }

// Snapshots 双方当前快照的深拷贝
func (m *Match) Snapshots() [2]*player.Snapshot {
	return [2]*player.Snapshot{m.contexts[0].Snapshot().Clone(), m.contexts[1].Snapshot().Clone()}
}

// Step 推进一帧：帧号先 +1，再依次结算 P1、P2；随后固化对手视图并清除单帧标记
func (m *Match) Step() error {
	if !m.running {
		return ErrNotRunning
	}
	m.frames++
	frame := m.frames
	for _, pc := range m.contexts {
		if err := pc.Tick(frame); err != nil {
			m.running = false
			return fmt.Errorf("match: frame %d player %d: %w", frame, pc.id, err)
		}
	}
	m.checkKO(frame)
	m.captureViews()
	for _, pc := range m.contexts {
		pc.tracker.EndFrame()
	}
	if m.log.Desugar().Core().Enabled(zap.DebugLevel) {
		for _, pc := range m.contexts {
			if pc.Buffer().Len() > 0 {
				m.log.Debugw("buffered commands", "frame", frame, "player", pc.id, "commands", pc.Buffer().Commands())
			}
		}
	}
	return nil
}

// Run 以固定频率推进，直到 ctx 结束或对局结束
func (m *Match) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second / TicksPerSecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !m.running {
				return nil
			}
			if err := m.Step(); err != nil {
				return err
			}
		}
	}
}

func (m *Match) captureViews() {
	for i, pc := range m.contexts {
		m.views[i] = pc.Snapshot().Clone()
	}
}

func (m *Match) checkKO(frame int64) {
	ko1, ko2 := m.contexts[0].Snapshot().IsKO(), m.contexts[1].Snapshot().IsKO()
	if !ko1 && !ko2 {
		return
	}
	r := Result{Frame: frame, Reason: "ko"}
	switch {
	case ko1 && ko2:
		r.Reason = "double ko"
	case ko1:
		r.Winner = 2
	default:
		r.Winner = 1
	}
	m.result = &r
	m.running = false
	m.log.Infow("match finished", "winner", r.Winner, "frame", r.Frame, "reason", r.Reason)
	if m.hooks.OnFinish != nil {
		m.hooks.OnFinish(r)
	}
}

func (m *Match) report(pc *PlayerContext, res ControllerResult) {
	if res.Command != nil {
		m.log.Debugw("command detected", "player", pc.id, "command", res.Command.String(), "held", res.Sample.Held.String())
		if m.hooks.OnCommand != nil {
			m.hooks.OnCommand(pc.id, *res.Command)
		}
	}
	if res.Evicted != nil {
		m.log.Warnw("command buffer overflow", "player", pc.id, "dropped", res.Evicted.String())
		if m.hooks.OnEvicted != nil {
			m.hooks.OnEvicted(pc.id, *res.Evicted)
		}
	}
	if len(res.Expired) > 0 && m.hooks.OnExpired != nil {
		m.hooks.OnExpired(pc.id, res.Expired)
	}
}

func (m *Match) stateFallback(pc *PlayerContext, missed state.ID) {
	m.log.Warnw("unresolved state id, falling back to idle", "player", pc.id, "state", missed.String(), "frame", m.frames)
	if m.hooks.OnStateFallback != nil {
		m.hooks.OnStateFallback(pc.id, missed)
	}
}
