package match

import (
	"fmt"

	"duelarena/command"
	"duelarena/input"
)

// Controller 单个玩家的输入管线：采样 → 边沿检测 → 指令映射 → 指令缓冲
type Controller struct {
	player  int
	source  input.Source
	capture *input.Capture
	edges   input.EdgeDetector
	mapper  *command.Mapper
	buffer  *command.Buffer
	window  int64
}

// ControllerResult 一次 Tick 的输出
type ControllerResult struct {
	Sample  input.Sample
	Command *command.Command // 本帧映射出的指令（可能为空）
	Evicted *command.Command // 缓冲溢出被挤掉的最旧指令
	Expired []command.Command
}

// NewController 按键映射不完整时返回构造期错误
func NewController(player int, keys input.KeyMap, src input.Source, window int64, capacity int) (*Controller, error) {
	capture, err := input.NewCapture(keys)
	if err != nil {
		return nil, fmt.Errorf("player %d: %w", player, err)
	}
	if window < 0 {
		return nil, fmt.Errorf("player %d: negative buffer window %d", player, window)
	}
	return &Controller{
		player:  player,
		source:  src,
		capture: capture,
		mapper:  command.NewMapper(),
		buffer:  command.NewBuffer(capacity),
		window:  window,
	}, nil
}

// Tick 轮询输入并更新缓冲。锁定中照常映射入缓冲，是否执行由消费方判断。
func (c *Controller) Tick(frame int64, facingRight, canAct bool) (ControllerResult, error) {
	held := c.capture.Held(c.source)
	pressed := c.edges.Next(held)
	res := ControllerResult{
		Sample: input.Sample{PlayerID: c.player, Frame: frame, Held: held, Pressed: pressed},
	}

	t := c.mapper.Map(command.Input{Held: held, Pressed: pressed, FacingRight: facingRight, CanAct: canAct})
	if t != command.None {
		cmd := command.Command{Type: t, Frame: frame}
		evicted, err := c.buffer.Push(cmd)
		if err != nil {
			return res, err
		}
		res.Command = &cmd
		res.Evicted = evicted
	}
	res.Expired = c.buffer.DrainExpired(frame, c.window)
	return res, nil
}

// Buffer 供招式执行系统消费（Peek/Pop/Take）
func (c *Controller) Buffer() *command.Buffer { return c.buffer }

// Source 当前输入源
func (c *Controller) Source() input.Source { return c.source }

// SetSource 替换输入源（如手柄重连）
func (c *Controller) SetSource(src input.Source) { c.source = src }

// Window 缓冲窗口（帧）
func (c *Controller) Window() int64 { return c.window }

// SetWindow 调整缓冲窗口，负值按 0 处理
func (c *Controller) SetWindow(w int64) {
	if w < 0 {
		w = 0
	}
	c.window = w
}

// Reset 清空边沿状态与缓冲
func (c *Controller) Reset() {
	c.edges.Reset()
	c.buffer.Clear()
}
