package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 负责发送（写）数据到客户端的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将要发送的消息压入队列（非阻塞，满则丢弃）
func (c *ClientConn) Enqueue(b []byte) {
	select {
	case c.send <- b:
	default:
		// 为了实时性，丢弃旧消息（防止阻塞 Tick）
	}
}

// Close 关闭底层连接与发送队列；只在 Tick 线程中调用
func (c *ClientConn) Close() {
	if c.send != nil {
		// 关闭发送通道以结束写协程
		close(c.send)
		c.send = nil
	}
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// writePump 独立协程，负责从 send 队列写出到 WS
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// readPump 读取客户端手柄状态，注入对局；观战连接 seat 为 0，只读不写
func (c *ClientConn) readPump(arena *Arena, seat int) {
	defer c.ws.Close()
	// 读泵退出时，通知对局在 Tick 线程中移除该连接
	defer arena.RequestLeave(c)
	c.ws.SetReadLimit(1 << 16)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error { c.ws.SetReadDeadline(time.Now().Add(60 * time.Second)); return nil })

	for {
		_, payload, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		in, ok := parsePad(payload, seat)
		if !ok {
			continue
		}
		arena.OnInput(in)
	}
}

// parsePad 解析 {"type":"pad",...} 消息；观战席位或其他类型返回 false
func parsePad(payload []byte, seat int) (PadInput, bool) {
	if seat == 0 {
		return PadInput{}, false
	}
	var im InputMessage
	if err := json.Unmarshal(payload, &im); err != nil {
		return PadInput{}, false
	}
	if strings.ToLower(im.Type) != "pad" {
		return PadInput{}, false
	}
	return PadInput{Seat: seat, Held: im.Held, Seq: im.Seq}, true
}

// parseSeat "1"/"2" 为席位，"spectate" 或空为观战（0）
func parseSeat(s string) (int, error) {
	switch strings.ToLower(s) {
	case "", "spectate":
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 2 {
		return 0, ErrInvalidSeat
	}
	return n, nil
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 演示环境：允许所有来源（生产环境需严格限制）
		return true
	},
}

// HandleWS WebSocket 接入：?match=match-1&seat=1|2|spectate
func (m *MatchManager) HandleWS(w http.ResponseWriter, r *http.Request) {
	matchID := r.URL.Query().Get("match")
	if matchID == "" {
		matchID = DefaultMatchID
	}
	seat, err := parseSeat(r.URL.Query().Get("seat"))
	if err != nil {
		http.Error(w, "seat must be 1, 2 or spectate", http.StatusBadRequest)
		return
	}
	// 只加入已有对局；新建走 POST /matches
	arena, ok := m.Get(matchID)
	if !ok {
		http.Error(w, "match not found", http.StatusNotFound)
		return
	}

	// 先占座再升级，冲突时仍能返回普通 HTTP 状态码
	client := &ClientConn{send: make(chan []byte, 64)}
	if seat > 0 {
		if err := arena.JoinSeat(seat, client); err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, ErrSeatTaken) {
				status = http.StatusConflict
			}
			http.Error(w, err.Error(), status)
			return
		}
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		Log.Warnw("upgrade error", "err", err)
		if seat > 0 {
			arena.RequestLeave(client)
		}
		return
	}
	client.ws = ws
	if seat == 0 {
		arena.JoinSpectator(client)
	}

	go client.writePump()
	go client.readPump(arena, seat)
}
