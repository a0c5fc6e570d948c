package intake

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muurk/contactform/internal/logging"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Watchers only send control frames
	maxMessageSize = 512

	// Leads buffered per watcher before it is dropped as too slow
	sendBuffer = 16
)

type watcher struct {
	conn   *websocket.Conn
	send   chan Lead
	remote string
}

// Feed fans new leads out to connected websocket watchers.
type Feed struct {
	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[*watcher]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewFeed creates a feed accepting upgrades from the given origins.
// "*" or an empty list accepts any origin.
func NewFeed(allowedOrigins []string) *Feed {
	f := &Feed{watchers: make(map[*watcher]struct{})}
	f.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return f
}

func originChecker(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// ServeHTTP upgrades the request and streams leads until the peer goes away.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn("Websocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	wt := &watcher{conn: conn, send: make(chan Lead, sendBuffer), remote: r.RemoteAddr}
	if !f.register(wt) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	logging.LogConnection(wt.remote, "websocket_upgraded")

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.writeLoop(wt)
	}()
	f.readLoop(wt)
}

// readLoop only services control frames; it returns when the peer closes.
func (f *Feed) readLoop(wt *watcher) {
	defer func() {
		f.unregister(wt)
		logging.LogConnection(wt.remote, "websocket_closed")
	}()

	wt.conn.SetReadLimit(maxMessageSize)
	_ = wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	wt.conn.SetPongHandler(func(string) error {
		return wt.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := wt.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Info("Watcher connection error",
					zap.String("remote_addr", wt.remote),
					zap.Error(err),
				)
			}
			return
		}
	}
}

func (f *Feed) writeLoop(wt *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = wt.conn.Close()
	}()

	for {
		select {
		case lead, ok := <-wt.send:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = wt.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := wt.conn.WriteJSON(lead); err != nil {
				return
			}
		case <-ticker.C:
			_ = wt.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wt.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (f *Feed) register(wt *watcher) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.watchers[wt] = struct{}{}
	return true
}

func (f *Feed) unregister(wt *watcher) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.watchers[wt]; ok {
		delete(f.watchers, wt)
		close(wt.send)
	}
}

// Publish queues a lead for every watcher. Watchers whose buffer is full
// are disconnected.
func (f *Feed) Publish(l Lead) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for wt := range f.watchers {
		select {
		case wt.send <- l:
		default:
			logging.Warn("Dropping slow watcher", zap.String("remote_addr", wt.remote))
			delete(f.watchers, wt)
			close(wt.send)
		}
	}
}

// Count returns the number of connected watchers.
func (f *Feed) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.watchers)
}

// Close disconnects every watcher and refuses new ones.
func (f *Feed) Close() {
	f.mu.Lock()
	f.closed = true
	for wt := range f.watchers {
		logging.Info("Closing watcher", zap.String("remote_addr", wt.remote))
		delete(f.watchers, wt)
		close(wt.send)
	}
	f.mu.Unlock()
	f.wg.Wait()
}
