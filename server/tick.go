package server

import (
	"context"
	"time"
)

func tickInterval(rate int) time.Duration {
	if rate <= 0 {
		rate = 60
	}
	return time.Second / time.Duration(rate)
}

// StartTicker 启动对局的 Tick 循环（单线程推进世界），ctx 取消后退出
func (a *Arena) StartTicker(ctx context.Context) {
	a.mu.Lock()
	if a.tickerStarted {
		a.mu.Unlock()
		return
	}
	a.tickerStarted = true
	a.mu.Unlock()

	go func() {
		ticker := time.NewTicker(tickInterval(a.tickRate))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				a.log.Infow("ticker stopped")
				return
			case <-ticker.C:
				a.Tick()
			}
		}
	}()
}

// Tick 推进一帧：处理输入 → 推进对局 → 广播结果
func (a *Arena) Tick() {
	start := time.Now()
	a.tickSeq++
	a.ProcessInputs()
	a.UpdateWorld()
	a.Broadcast()
	a.metrics.AddTick(time.Since(start).Nanoseconds())
}
