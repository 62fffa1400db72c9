package ipc

import (
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"battlecore/internal/combat"
)

// Subscriber connects to a Publisher and streams one combat's events,
// resuming from the last sequence number it saw across reconnects.
type Subscriber struct {
	socketPath string
	combatID   string

	conn   net.Conn
	connMu sync.Mutex

	lastSeq uint64 // atomic via mutex below since it's read/written from two goroutines
	seqMu   sync.Mutex

	eventsReceived int64
	reconnects     int64
	errors         int64

	running int32
	stopCh  chan struct{}
	wg      sync.WaitGroup

	onEvent      func(combat.Event)
	onConnect    func()
	onDisconnect func()
}

// NewSubscriber creates a subscriber for one combat id, starting replay
// from sequence 0 unless Resume is called first.
func NewSubscriber(socketPath, combatID string) *Subscriber {
	if socketPath == "" {
		socketPath = DefaultSocketPath
	}
	return &Subscriber{
		socketPath: socketPath,
		combatID:   combatID,
		stopCh:     make(chan struct{}),
	}
}

// Resume sets the sequence number to resume from on the next (re)connect,
// for a subscriber restarting after a crash that remembers its progress.
func (s *Subscriber) Resume(lastSeq uint64) {
	s.seqMu.Lock()
	s.lastSeq = lastSeq
	s.seqMu.Unlock()
}

// OnEvent sets the callback invoked for every received event, in order.
func (s *Subscriber) OnEvent(fn func(combat.Event)) { s.onEvent = fn }

// OnConnect sets a callback invoked when a connection is established.
func (s *Subscriber) OnConnect(fn func()) { s.onConnect = fn }

// OnDisconnect sets a callback invoked when the connection is lost.
func (s *Subscriber) OnDisconnect(fn func()) { s.onDisconnect = fn }

// Start begins the connection-and-read loop in the background.
func (s *Subscriber) Start() error {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return nil
	}
	s.wg.Add(1)
	go s.connectionLoop()
	log.Printf("ipc subscriber started, connecting to %s for combat %s", s.socketPath, s.combatID)
	return nil
}

// Stop ends the subscriber and closes any open connection.
func (s *Subscriber) Stop() {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return
	}
	close(s.stopCh)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	log.Println("ipc subscriber stopped")
}

// GetStats returns subscriber statistics.
func (s *Subscriber) GetStats() (received int64, reconnects int64, errors int64) {
	return atomic.LoadInt64(&s.eventsReceived),
		atomic.LoadInt64(&s.reconnects),
		atomic.LoadInt64(&s.errors)
}

// IsConnected reports whether the subscriber currently holds a live connection.
func (s *Subscriber) IsConnected() bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn != nil
}

func (s *Subscriber) connectionLoop() {
	defer s.wg.Done()

	for atomic.LoadInt32(&s.running) == 1 {
		conn, err := Connect(s.socketPath)
		if err != nil {
			select {
			case <-s.stopCh:
				return
			case <-time.After(ReconnectDelay):
				continue
			}
		}

		s.seqMu.Lock()
		since := s.lastSeq
		s.seqMu.Unlock()

		conn.SetWriteDeadline(time.Now().Add(WriteTimeout))
		if err := WriteMessage(conn, MsgTypeResumeRequest, ResumeRequest{CombatID: s.combatID, Since: since}); err != nil {
			conn.Close()
			atomic.AddInt64(&s.errors, 1)
			select {
			case <-s.stopCh:
				return
			case <-time.After(ReconnectDelay):
				continue
			}
		}

		s.connMu.Lock()
		s.conn = conn
		s.connMu.Unlock()

		if s.onConnect != nil {
			s.onConnect()
		}

		s.readLoop(conn)

		s.connMu.Lock()
		s.conn = nil
		s.connMu.Unlock()

		if s.onDisconnect != nil {
			s.onDisconnect()
		}
		atomic.AddInt64(&s.reconnects, 1)

		select {
		case <-s.stopCh:
			return
		case <-time.After(ReconnectDelay):
		}
	}
}

func (s *Subscriber) readLoop(conn net.Conn) {
	for atomic.LoadInt32(&s.running) == 1 {
		conn.SetReadDeadline(time.Now().Add(ReadTimeout))

		msgType, data, err := ReadMessage(conn)
		if err != nil {
			if err == io.EOF {
				log.Println("ipc publisher closed connection")
				return
			}
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			log.Printf("ipc read error: %v", err)
			atomic.AddInt64(&s.errors, 1)
			return
		}

		if msgType != MsgTypeEvent {
			continue
		}
		s.handleEvent(data)
	}
}

func (s *Subscriber) handleEvent(data []byte) {
	msg, err := DecodeEvent(data)
	if err != nil {
		log.Printf("ipc decode error: %v", err)
		atomic.AddInt64(&s.errors, 1)
		return
	}

	s.seqMu.Lock()
	if msg.Event.Seq > s.lastSeq {
		s.lastSeq = msg.Event.Seq
	}
	s.seqMu.Unlock()

	atomic.AddInt64(&s.eventsReceived, 1)
	if s.onEvent != nil {
		s.onEvent(msg.Event)
	}
}
