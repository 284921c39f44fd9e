// Package observer 通过 websocket 向调试客户端广播背景滚动快照
package observer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/chuyi0414/qlmt/pkg/bgscroll"
)

const (
	clientBuffer = 8
	writeTimeout = 5 * time.Second
	readTimeout  = 60 * time.Second
)

// Hub 快照广播中心
//
// Publish 在游戏主循环中调用，每个连接有独立的写协程；客户端跟不上时丢弃帧。
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]chan []byte
	nextID  uint64
	latest  []byte
	closed  bool
}

// NewHub 创建广播中心
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // 只接受本机连接
		},
		clients: make(map[uint64]chan []byte),
	}
}

// Publish 广播一帧快照
func (h *Hub) Publish(snap bgscroll.Snapshot) {
	b, err := json.Marshal(snap)
	if err != nil {
		log.Printf("[Observer] Warning: failed to encode snapshot: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.latest = b
	for _, ch := range h.clients {
		select {
		case ch <- b:
		default:
			// 客户端积压，丢弃本帧
		}
	}
}

// ClientCount 当前连接数
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close 断开全部客户端，之后的 Publish 是空操作
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.clients {
		close(ch)
		delete(h.clients, id)
	}
}

// Handler 返回 /snapshot 与 /ws 路由
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/snapshot", h.SnapshotHandler())
	mux.HandleFunc("/ws", h.WSHandler())
	return mux
}

// SnapshotHandler 返回最近一帧快照，尚无快照时返回 204
func (h *Hub) SnapshotHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			rw.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		h.mu.Lock()
		latest := h.latest
		h.mu.Unlock()
		if latest == nil {
			rw.WriteHeader(http.StatusNoContent)
			return
		}
		rw.Header().Set("Content-Type", "application/json")
		_, _ = rw.Write(latest)
	}
}

// WSHandler 升级为 websocket 并持续推送快照
func (h *Hub) WSHandler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, ok := h.register()
		if !ok {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "observer closed"), time.Now().Add(time.Second))
			return
		}
		defer h.unregister(id)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		writeErr := make(chan error, 1)
		go func() {
			for {
				select {
				case <-ctx.Done():
					writeErr <- ctx.Err()
					return
				case b, ok := <-out:
					if !ok {
						writeErr <- nil
						_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "observer closed"), time.Now().Add(time.Second))
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// 读循环只用于发现断开
		for {
			_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		cancel()
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

// register 登记客户端，并先推送最近一帧
func (h *Hub) register() (uint64, chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0, nil, false
	}
	h.nextID++
	ch := make(chan []byte, clientBuffer)
	if h.latest != nil {
		ch <- h.latest
	}
	h.clients[h.nextID] = ch
	return h.nextID, ch, true
}

func (h *Hub) unregister(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ch, ok := h.clients[id]; ok {
		close(ch)
		delete(h.clients, id)
	}
}

// Serve 在 addr 上提供观察服务，ctx 结束时关闭
func Serve(ctx context.Context, addr string, hub *Hub) error {
	srv := &http.Server{Addr: addr, Handler: hub.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[Observer] Listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
