package network

import (
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// PeerID uniquely identifies a subscriber
type PeerID uint32

// peer is one websocket subscriber with its own send queue
type peer struct {
	id     PeerID
	conn   *websocket.Conn
	sendCh chan []byte

	closeCh   chan struct{}
	closeOnce sync.Once
}

func (p *peer) close() {
	p.closeOnce.Do(func() {
		close(p.closeCh)
		p.conn.Close()
	})
}

// Hub fans snapshots out to subscribers
// Broadcast never blocks the frame loop: a peer with a full queue misses that snapshot
type Hub struct {
	cfg *Config

	mu     sync.RWMutex
	peers  map[PeerID]*peer
	nextID atomic.Uint32

	sent    atomic.Int64
	dropped atomic.Int64
}

// NewHub creates an empty hub
func NewHub(cfg *Config) *Hub {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Hub{
		cfg:   cfg,
		peers: make(map[PeerID]*peer),
	}
}

// PeerCount returns the number of connected subscribers
func (h *Hub) PeerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Sent returns the number of queued snapshot deliveries
func (h *Hub) Sent() int64 {
	return h.sent.Load()
}

// Dropped returns the number of deliveries skipped on full queues
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Subscribe takes ownership of conn and starts its writer
// Returns false when the hub is full, conn is then closed with a policy message
func (h *Hub) Subscribe(conn *websocket.Conn) (PeerID, bool) {
	h.mu.Lock()
	if h.cfg.MaxPeers > 0 && len(h.peers) >= h.cfg.MaxPeers {
		h.mu.Unlock()
		msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "too many subscribers")
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteTimeout))
		conn.Close()
		return 0, false
	}
	p := &peer{
		id:      PeerID(h.nextID.Add(1)),
		conn:    conn,
		sendCh:  make(chan []byte, h.cfg.SendQueueSize),
		closeCh: make(chan struct{}),
	}
	h.peers[p.id] = p
	h.mu.Unlock()

	go h.writeLoop(p)
	go h.readLoop(p)

	slog.Debug("snapshot subscriber connected", "peer", p.id, "addr", conn.RemoteAddr().String())
	return p.id, true
}

// Unsubscribe closes and forgets a subscriber
func (h *Hub) Unsubscribe(id PeerID) {
	h.mu.Lock()
	p, ok := h.peers[id]
	delete(h.peers, id)
	h.mu.Unlock()

	if ok {
		p.close()
		slog.Debug("snapshot subscriber disconnected", "peer", id)
	}
}

// Broadcast encodes snap once and queues it for every subscriber
func (h *Hub) Broadcast(snap Snapshot) error {
	h.mu.RLock()
	if len(h.peers) == 0 {
		h.mu.RUnlock()
		return nil
	}
	peers := make([]*peer, 0, len(h.peers))
	for _, p := range h.peers {
		peers = append(peers, p)
	}
	h.mu.RUnlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	for _, p := range peers {
		select {
		case p.sendCh <- data:
			h.sent.Add(1)
		default:
			h.dropped.Add(1)
		}
	}
	return nil
}

// Close disconnects every subscriber
func (h *Hub) Close() {
	h.mu.Lock()
	peers := h.peers
	h.peers = make(map[PeerID]*peer)
	h.mu.Unlock()

	for _, p := range peers {
		msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
		p.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(h.cfg.WriteTimeout))
		p.close()
	}
}

func (h *Hub) writeLoop(p *peer) {
	heartbeat := time.NewTicker(h.cfg.HeartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-p.closeCh:
			return
		case data := <-p.sendCh:
			p.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("snapshot write failed", "peer", p.id, "error", err)
				h.Unsubscribe(p.id)
				return
			}
		case <-heartbeat.C:
			if err := p.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(h.cfg.WriteTimeout)); err != nil {
				h.Unsubscribe(p.id)
				return
			}
		}
	}
}

// readLoop only watches for the peer going away, subscribers send nothing
func (h *Hub) readLoop(p *peer) {
	for {
		if _, _, err := p.conn.ReadMessage(); err != nil {
			h.Unsubscribe(p.id)
			return
		}
	}
}
