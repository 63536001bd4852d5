package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/tidwall/sjson"
	"go.uber.org/zap"

	"duelarena/character"
	"duelarena/command"
	"duelarena/config"
	"duelarena/input"
	"duelarena/match"
	"duelarena/player"
	"duelarena/state"
)

var (
	ErrSeatTaken   = errors.New("server: seat already taken")
	ErrInvalidSeat = errors.New("server: invalid seat")
)

// 对局结束后等待多少帧自动重开（3 秒）
const restartDelayTicks = 3 * match.TicksPerSecond

// Arena 承载一场对局：权威状态在内存中，由单一 Tick 线程锁步推进
type Arena struct {
	ID string

	match      *match.Match
	seats      [2]*Seat
	spectators map[*ClientConn]struct{}

	inputChan   chan PadInput
	leaveChan   chan *ClientConn
	controlChan chan func(*Arena)

	metrics    *MatchMetrics
	log        *zap.SugaredLogger
	tickRate   int
	tickSeq    int64
	finishedAt int64

	// mu 保护 seats[i].Conn、spectators 以及对外发布的只读数据
	mu            sync.RWMutex
	published     []byte
	window        int64
	tickerStarted bool
}

// NewArena 按配置创建对局并立即 Start
func NewArena(id string, cfg *config.Config, chars [2]*character.Data) (*Arena, error) {
	a := &Arena{
		ID:          id,
		spectators:  make(map[*ClientConn]struct{}),
		inputChan:   make(chan PadInput, 256), // 足够缓冲，避免网络读阻塞影响 Tick
		leaveChan:   make(chan *ClientConn, 64),
		controlChan: make(chan func(*Arena), 16),
		metrics:     &MatchMetrics{},
		log:         Log.With("match", id),
		tickRate:    cfg.TickRate,
		window:      cfg.Match.BufferWindow,
	}
	for i := range a.seats {
		var script *input.Script
		if text := cfg.Players[i].Script; text != "" {
			sc, err := input.ParseScript(text)
			if err != nil {
				return nil, fmt.Errorf("arena %s: seat %d: %w", id, i+1, err)
			}
			script = sc
		}
		a.seats[i] = newSeat(i+1, script)
	}

	hooks := match.Hooks{
		OnCommand:       func(int, command.Command) { a.metrics.IncDetected() },
		OnExpired:       func(_ int, cs []command.Command) { a.metrics.AddExpired(len(cs)) },
		OnEvicted:       func(int, command.Command) { a.metrics.IncEvicted() },
		OnStateFallback: func(int, state.ID) { a.metrics.IncStateFallback() },
		OnFinish: func(match.Result) {
			a.metrics.IncMatchesFinished()
			a.finishedAt = a.tickSeq
		},
	}
	m, err := match.New(cfg.Match,
		match.Setup{Keys: cfg.Players[0].Keys, Source: a.seats[0], Character: chars[0]},
		match.Setup{Keys: cfg.Players[1].Keys, Source: a.seats[1], Character: chars[1]},
		match.WithLogger(a.log), match.WithHooks(hooks),
	)
	if err != nil {
		return nil, fmt.Errorf("arena %s: %w", id, err)
	}
	a.match = m
	a.match.Start()
	return a, nil
}

// JoinSeat 占用席位（1 或 2）
func (a *Arena) JoinSeat(seat int, conn *ClientConn) error {
	if seat < 1 || seat > len(a.seats) {
		return fmt.Errorf("%w: %d", ErrInvalidSeat, seat)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	s := a.seats[seat-1]
	if s.Conn != nil {
		return fmt.Errorf("%w: %d", ErrSeatTaken, seat)
	}
	s.Conn = conn
	a.log.Infow("seat joined", "seat", seat)
	return nil
}

// JoinSpectator 加入观战
func (a *Arena) JoinSpectator(conn *ClientConn) {
	a.mu.Lock()
	a.spectators[conn] = struct{}{}
	a.mu.Unlock()
}

// RequestLeave 请求在 Tick 线程中移除连接，避免并发改动输入源
func (a *Arena) RequestLeave(conn *ClientConn) {
	// 为保证移除一定生效，这里采用阻塞式写入（通道有容量，避免死锁）
	a.leaveChan <- conn
}

// OnInput 入站手柄状态（不立即生效），等下一次 Tick 处理
func (a *Arena) OnInput(in PadInput) {
	select {
	case a.inputChan <- in:
	default:
		// 丢弃：为了实时性，避免背压影响世界推进
		a.metrics.IncChanFullDropped()
	}
}

// SetBufferWindow 热更新缓冲窗口，在下一次 Tick 生效
func (a *Arena) SetBufferWindow(w int64) {
	if w < 0 {
		w = 0
	}
	a.mu.Lock()
	a.window = w
	a.mu.Unlock()
	a.controlChan <- func(a *Arena) { a.match.SetBufferWindow(w) }
}

// BufferWindow 当前（已发布的）缓冲窗口
func (a *Arena) BufferWindow() int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.window
}

// Metrics 运行指标
func (a *Arena) Metrics() *MatchMetrics { return a.metrics }

// LatestState 最近一次广播的状态帧（JSON），尚未推进时为空
func (a *Arena) LatestState() []byte {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.published
}

// ProcessInputs 处理当前帧的所有离开、控制与输入（非阻塞 drain）
func (a *Arena) ProcessInputs() {
	for {
		select {
		case conn := <-a.leaveChan:
			a.leave(conn)
		case fn := <-a.controlChan:
			fn(a)
		case in := <-a.inputChan:
			if in.Seat < 1 || in.Seat > len(a.seats) {
				continue
			}
			if a.seats[in.Seat-1].apply(in) {
				a.metrics.IncAccepted()
			} else {
				a.metrics.IncOldSeqIgnored()
			}
		default:
			return
		}
	}
}

// UpdateWorld 推进对局；结束后等待 restartDelayTicks 自动重开
func (a *Arena) UpdateWorld() {
	if a.match.Running() {
		if err := a.match.Step(); err != nil {
			a.log.Errorw("match step failed", "err", err)
			a.finishedAt = a.tickSeq
		}
		for _, s := range a.seats {
			s.advance()
		}
		return
	}
	if a.tickSeq-a.finishedAt >= restartDelayTicks {
		a.match.Start()
	}
}

// Broadcast 将当前状态编码为 JSON 推送给席位与观战者
func (a *Arena) Broadcast() {
	payload, err := a.encodeState()
	if err != nil {
		a.log.Errorw("encode state failed", "err", err)
		return
	}
	a.mu.Lock()
	a.published = payload
	conns := make([]*ClientConn, 0, len(a.spectators)+len(a.seats))
	for _, s := range a.seats {
		if s.Conn != nil {
			conns = append(conns, s.Conn)
		}
	}
	for c := range a.spectators {
		conns = append(conns, c)
	}
	a.mu.Unlock()

	for _, c := range conns {
		c.Enqueue(payload)
	}
}

func (a *Arena) encodeState() ([]byte, error) {
	buf := []byte(`{"type":"state"}`)
	var err error
	set := func(path string, v any) {
		if err == nil {
			buf, err = sjson.SetBytes(buf, path, v)
		}
	}
	set("match", a.ID)
	set("frame", a.match.FramesElapsed())
	set("running", a.match.Running())
	if err == nil {
		buf, err = sjson.SetRawBytes(buf, "players", []byte(`[]`))
	}
	for _, s := range a.match.Snapshots() {
		raw, e := player.EncodeJSON(s)
		if e != nil {
			return nil, e
		}
		if err == nil {
			buf, err = sjson.SetRawBytes(buf, "players.-1", raw)
		}
	}
	if r := a.match.Result(); r != nil {
		set("result.winner", r.Winner)
		set("result.frame", r.Frame)
		set("result.reason", r.Reason)
	}
	return buf, err
}

func (a *Arena) leave(conn *ClientConn) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, s := range a.seats {
		if s.Conn == conn {
			s.release()
			a.log.Infow("seat left", "seat", s.ID)
		}
	}
	delete(a.spectators, conn)
	conn.Close()
}
