package server

import (
	"sync/atomic"
)

// MatchMetrics 对局运行期指标（Tick 线程写，HTTP 读）
type MatchMetrics struct {
	TickCount        int64 // 推进的帧数
	CommandsDetected int64 // 映射出的指令数
	CommandsExpired  int64 // 超出缓冲窗口被丢弃的指令数
	CommandsEvicted  int64 // 缓冲溢出被挤掉的指令数
	StateFallbacks   int64 // 未知状态 id 回退到 idle 的次数
	InputsAccepted   int64 // 被接受的手柄输入消息
	OldSeqIgnored    int64 // 因旧序列被忽略的输入
	ChanFullDropped  int64 // 因通道满被丢弃的输入
	MatchesFinished  int64
	TotalTickNs      int64 // Tick 累计耗时（纳秒）
}

func (m *MatchMetrics) IncDetected()        { atomic.AddInt64(&m.CommandsDetected, 1) }
func (m *MatchMetrics) AddExpired(n int)    { atomic.AddInt64(&m.CommandsExpired, int64(n)) }
func (m *MatchMetrics) IncEvicted()         { atomic.AddInt64(&m.CommandsEvicted, 1) }
func (m *MatchMetrics) IncStateFallback()   { atomic.AddInt64(&m.StateFallbacks, 1) }
func (m *MatchMetrics) IncAccepted()        { atomic.AddInt64(&m.InputsAccepted, 1) }
func (m *MatchMetrics) IncOldSeqIgnored()   { atomic.AddInt64(&m.OldSeqIgnored, 1) }
func (m *MatchMetrics) IncChanFullDropped() { atomic.AddInt64(&m.ChanFullDropped, 1) }
func (m *MatchMetrics) IncMatchesFinished() { atomic.AddInt64(&m.MatchesFinished, 1) }
func (m *MatchMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *MatchMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":        tick,
		"commands_detected": atomic.LoadInt64(&m.CommandsDetected),
		"commands_expired":  atomic.LoadInt64(&m.CommandsExpired),
		"commands_evicted":  atomic.LoadInt64(&m.CommandsEvicted),
		"state_fallbacks":   atomic.LoadInt64(&m.StateFallbacks),
		"inputs_accepted":   atomic.LoadInt64(&m.InputsAccepted),
		"old_seq_ignored":   atomic.LoadInt64(&m.OldSeqIgnored),
		"chan_full_dropped": atomic.LoadInt64(&m.ChanFullDropped),
		"matches_finished":  atomic.LoadInt64(&m.MatchesFinished),
		"avg_tick_ms":       avgMs,
	}
}
