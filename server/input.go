package server

// PadInput 远程手柄的当前按住状态（物理输入名称），由 Tick 线程写入席位输入源
type PadInput struct {
	Seat int
	Held []string
	Seq  int64 // 客户端本地序列号，旧序列直接丢弃
}

// 入站消息的 JSON 结构（WebSocket 文本消息）
// 示例：{"type":"pad","held":["s","d","j"],"seq":42}
type InputMessage struct {
	Type string   `json:"type"`
	Held []string `json:"held"`
	Seq  int64    `json:"seq,omitempty"`
}
