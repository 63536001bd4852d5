package command

import (
	"errors"
	"fmt"
)

// ErrOutOfOrder 新指令的帧号早于缓冲尾部
var ErrOutOfOrder = errors.New("command: frame out of order")

// DefaultCapacity 默认缓冲容量
const DefaultCapacity = 16

// Buffer 有界、按帧号非递减排列的指令队列。
// 同帧指令保持插入顺序（即映射顺序），消费者按此顺序执行，不得按类型重排。
type Buffer struct {
	items    []Command
	capacity int
}

// NewBuffer capacity <= 0 时使用 DefaultCapacity
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{items: make([]Command, 0, capacity), capacity: capacity}
}

// Push 追加指令；满时丢弃最旧的一条并返回它
func (b *Buffer) Push(c Command) (*Command, error) {
	if n := len(b.items); n > 0 && c.Frame < b.items[n-1].Frame {
		return nil, fmt.Errorf("%w: %s after frame %d", ErrOutOfOrder, c, b.items[n-1].Frame)
	}
	var evicted *Command
	if len(b.items) >= b.capacity {
		old := b.items[0]
		evicted = &old
		copy(b.items, b.items[1:])
		b.items = b.items[:len(b.items)-1]
	}
	b.items = append(b.items, c)
	return evicted, nil
}

// DrainExpired 移除并返回 Frame < current-window 的指令，其余保持相对顺序
func (b *Buffer) DrainExpired(current, window int64) []Command {
	cutoff := current - window
	n := 0
	for n < len(b.items) && b.items[n].Frame < cutoff {
		n++
	}
	if n == 0 {
		return nil
	}
	expired := make([]Command, n)
	copy(expired, b.items[:n])
	b.items = append(b.items[:0], b.items[n:]...)
	return expired
}

// Peek 队首指令
func (b *Buffer) Peek() (Command, bool) {
	if len(b.items) == 0 {
		return Command{}, false
	}
	return b.items[0], true
}

// Pop 取出队首指令
func (b *Buffer) Pop() (Command, bool) {
	c, ok := b.Peek()
	if ok {
		b.items = append(b.items[:0], b.items[1:]...)
	}
	return c, ok
}

// Take 按缓冲顺序取出第一条满足 pred 的指令
func (b *Buffer) Take(pred func(Command) bool) (Command, bool) {
	for i, c := range b.items {
		if pred(c) {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return c, true
		}
	}
	return Command{}, false
}

func (b *Buffer) Len() int      { return len(b.items) }
func (b *Buffer) Capacity() int { return b.capacity }

// Commands 当前内容副本
func (b *Buffer) Commands() []Command {
	out := make([]Command, len(b.items))
	copy(out, b.items)
	return out
}

// Clear 清空
func (b *Buffer) Clear() { b.items = b.items[:0] }
