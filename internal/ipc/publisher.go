package ipc

import (
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"battlecore/internal/combat"
)

// pubClient tracks one connected subscriber and the combat it asked for.
type pubClient struct {
	conn     net.Conn
	combatID string
}

// CombatSource resolves a combat id to its authoritative log (for
// resume-from-seq replay) and a live consumer (for ongoing delivery).
// Satisfied by api.Registry without this package importing api.
type CombatSource interface {
	EventsSince(combatID string, since uint64) ([]combat.Event, bool)
	Subscribe(combatID string, bufferSize int) (*combat.Consumer, bool)
}

// Publisher fans dispatched combat events out to connected Unix-socket
// clients, replaying each client's backlog from its requested sequence
// number before switching to live delivery — grounded on the teacher's
// snapshot broadcast publisher, generalized from one shared game state
// to many independently resumable combat event streams.
type Publisher struct {
	socketPath string
	listener   net.Listener
	source     CombatSource

	clients   map[net.Conn]*pubClient
	clientsMu sync.RWMutex

	clientCount   int32
	eventsSent    int64
	droppedWrites int64

	running int32
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPublisher creates a publisher bound to source, which it consults
// for backlog replay and live subscriptions as clients connect.
func NewPublisher(socketPath string, source CombatSource) *Publisher {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Publisher{
		socketPath: socketPath,
		source:     source,
		clients:    make(map[net.Conn]*pubClient),
		stopCh:     make(chan struct{}),
	}
}

// Start opens the listener and begins accepting subscriber connections.
func (p *Publisher) Start() error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return nil
	}

	listener, err := CreatePlatformListener(p.socketPath)
	if err != nil {
		atomic.StoreInt32(&p.running, 0)
		return err
	}
	p.listener = listener

	p.wg.Add(1)
	go p.acceptLoop()

	log.Printf("ipc publisher listening on %s", GetPlatformAddress(p.socketPath))
	return nil
}

// Stop closes the listener and every connected client.
func (p *Publisher) Stop() {
	if !atomic.CompareAndSwapInt32(&p.running, 1, 0) {
		return
	}

	close(p.stopCh)

	if p.listener != nil {
		p.listener.Close()
	}

	p.clientsMu.Lock()
	for conn := range p.clients {
		conn.Close()
	}
	p.clients = make(map[net.Conn]*pubClient)
	p.clientsMu.Unlock()

	p.wg.Wait()
	CleanupSocket(p.socketPath)
	log.Println("ipc publisher stopped")
}

// GetStats returns publisher statistics.
func (p *Publisher) GetStats() (clients int, sent int64, dropped int64) {
	return int(atomic.LoadInt32(&p.clientCount)),
		atomic.LoadInt64(&p.eventsSent),
		atomic.LoadInt64(&p.droppedWrites)
}

func (p *Publisher) acceptLoop() {
	defer p.wg.Done()

	for atomic.LoadInt32(&p.running) == 1 {
		conn, err := p.listener.Accept()
		if err != nil {
			if atomic.LoadInt32(&p.running) == 0 {
				return
			}
			log.Printf("ipc accept error: %v", err)
			continue
		}

		p.wg.Add(1)
		go p.handleClient(conn)
	}
}

// handleClient reads the client's ResumeRequest, subscribes it to live
// events, replays its backlog from the log, then streams the live events
// past the last replayed sequence number for the rest of the connection.
func (p *Publisher) handleClient(conn net.Conn) {
	defer p.wg.Done()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	msgType, body, err := ReadMessage(conn)
	if err != nil || msgType != MsgTypeResumeRequest {
		conn.Close()
		return
	}
	req, err := DecodeResumeRequest(body)
	if err != nil {
		conn.Close()
		return
	}

	consumer, ok := p.source.Subscribe(req.CombatID, 256)
	if !ok {
		conn.Close()
		return
	}

	backlog, ok := p.source.EventsSince(req.CombatID, req.Since)
	if !ok {
		conn.Close()
		return
	}

	lastSeq := req.Since
	conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
	for _, e := range backlog {
		if err := WriteMessage(conn, MsgTypeEvent, EventMessage{CombatID: req.CombatID, Event: e}); err != nil {
			conn.Close()
			return
		}
		lastSeq = e.Seq
	}

	client := &pubClient{conn: conn, combatID: req.CombatID}
	p.clientsMu.Lock()
	p.clients[conn] = client
	p.clientsMu.Unlock()
	atomic.AddInt32(&p.clientCount, 1)
	log.Printf("ipc subscriber connected for combat %s (total: %d)", req.CombatID, atomic.LoadInt32(&p.clientCount))

	defer p.removeClient(conn)

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			for {
				e, ok := consumer.TryNext()
				if !ok {
					break
				}
				if e.Seq <= lastSeq {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
				if err := WriteMessage(conn, MsgTypeEvent, EventMessage{CombatID: req.CombatID, Event: e}); err != nil {
					atomic.AddInt64(&p.droppedWrites, 1)
					return
				}
				atomic.AddInt64(&p.eventsSent, 1)
			}
		}
	}
}

func (p *Publisher) removeClient(conn net.Conn) {
	p.clientsMu.Lock()
	if _, ok := p.clients[conn]; ok {
		delete(p.clients, conn)
		conn.Close()
		p.clientsMu.Unlock()
		count := atomic.AddInt32(&p.clientCount, -1)
		log.Printf("ipc subscriber disconnected (remaining: %d)", count)
	} else {
		p.clientsMu.Unlock()
	}
}
