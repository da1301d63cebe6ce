package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"library-admin/internal/apiserver/stats"
	"library-admin/internal/shared/cache"
)

// upgrader WebSocket 升级器
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatsMessage 统计推送消息
type StatsMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// StatsWS 统计 WebSocket 推送器
type StatsWS struct {
	store   stats.Store
	cache   cache.Cache
	metrics *Metrics

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex
}

// NewStatsWS 创建统计推送器并启动广播循环
func NewStatsWS(store stats.Store, c cache.Cache, m *Metrics) *StatsWS {
	ws := &StatsWS{
		store:   store,
		cache:   c,
		metrics: m,
		clients: make(map[*websocket.Conn]bool),
	}
	go ws.broadcastLoop()
	return ws
}

// HandleWebSocket 处理 WebSocket 连接
func (ws *StatsWS) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	ws.clientsMu.Lock()
	ws.clients[conn] = true
	count := len(ws.clients)
	ws.clientsMu.Unlock()
	if ws.metrics != nil {
		ws.metrics.WSConnectionsActive.Set(float64(count))
	}
	log.Printf("[ws] client connected, total: %d", count)

	ws.sendSnapshot(conn)

	go ws.readPump(conn)
}

// readPump 读取客户端消息，主要用于检测断开
func (ws *StatsWS) readPump(conn *websocket.Conn) {
	defer ws.removeClient(conn)

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}
	}
}

// removeClient 移除客户端并关闭连接
func (ws *StatsWS) removeClient(conn *websocket.Conn) {
	ws.clientsMu.Lock()
	delete(ws.clients, conn)
	count := len(ws.clients)
	ws.clientsMu.Unlock()
	conn.Close()
	if ws.metrics != nil {
		ws.metrics.WSConnectionsActive.Set(float64(count))
	}
	log.Printf("[ws] client disconnected, total: %d", count)
}

// sendSnapshot 向单个客户端发送当前统计快照
func (ws *StatsWS) sendSnapshot(conn *websocket.Conn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snapshot, err := stats.Collect(ctx, ws.store, ws.cache)
	if err != nil {
		log.Printf("[ws] collect error: %v", err)
		return
	}
	ws.sendToClient(conn, StatsMessage{
		Type:      "stats",
		Data:      snapshot,
		Timestamp: time.Now(),
	})
}

// sendToClient 向单个客户端发送消息
func (ws *StatsWS) sendToClient(conn *websocket.Conn, msg StatsMessage) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(msg); err != nil {
		log.Printf("[ws] write error: %v", err)
		ws.removeClient(conn)
	}
}

// broadcast 向所有客户端广播消息
func (ws *StatsWS) broadcast(msg StatsMessage) {
	ws.clientsMu.RLock()
	conns := make([]*websocket.Conn, 0, len(ws.clients))
	for conn := range ws.clients {
		conns = append(conns, conn)
	}
	ws.clientsMu.RUnlock()

	for _, conn := range conns {
		ws.sendToClient(conn, msg)
	}
}

// broadcastLoop 定时向所有客户端推送统计快照
func (ws *StatsWS) broadcastLoop() {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ws.clientsMu.RLock()
		clientCount := len(ws.clients)
		ws.clientsMu.RUnlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		snapshot, err := stats.Collect(ctx, ws.store, ws.cache)
		cancel()
		if err != nil {
			log.Printf("[ws] collect error: %v", err)
			continue
		}
		if ws.metrics != nil {
			ws.metrics.UpdateLibraryGauges(snapshot)
		}

		// 无客户端时只刷新指标，不广播
		if clientCount == 0 {
			continue
		}

		ws.broadcast(StatsMessage{
			Type:      "stats",
			Data:      snapshot,
			Timestamp: time.Now(),
		})

		// 心跳，触发客户端 pong 以维持读超时
		ws.clientsMu.RLock()
		for conn := range ws.clients {
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			conn.WriteMessage(websocket.PingMessage, nil)
		}
		ws.clientsMu.RUnlock()
	}
}
