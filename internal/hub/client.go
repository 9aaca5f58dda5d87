package hub

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartparking/backend/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

// Client is one dashboard connection. Only the transport handle and its outbound buffer are kept.
type Client struct {
	id     uint64
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	open   atomic.Bool
	done   chan struct{}
	closer sync.Once
}

func NewClient(h *Hub, conn *websocket.Conn) *Client {
	c := &Client{
		id:   clientIDCounter.Add(1),
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	c.open.Store(true)
	return c
}

func (c *Client) ID() uint64 { return c.id }

// IsOpen reports whether the connection is still in the open state.
func (c *Client) IsOpen() bool { return c.open.Load() }

// enqueue hands data to the write pump. Closed clients and clients whose
// buffer is full are skipped.
func (c *Client) enqueue(data []byte) bool {
	if !c.open.Load() {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *Client) markClosed() {
	c.open.Store(false)
	c.closer.Do(func() { close(c.done) })
}

// Close marks the client closed and tears down the transport.
func (c *Client) Close() {
	c.markClosed()
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// readPump only watches for close and pong frames; dashboards never send data.
func (c *Client) readPump() {
	defer func() {
		c.hub.Remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn().Err(err).Uint64("client_id", c.id).Msg("realtime connection error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.hub.Remove(c)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.hub.Remove(c)
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}

// Serve upgrades the request and registers the connection until it closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, upgrader *websocket.Upgrader) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := NewClient(h, conn)
	h.Add(c)
	go c.writePump()
	go c.readPump()
	return nil
}
