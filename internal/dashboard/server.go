// Package dashboard provides an HTTP API and real-time WebSocket feed over
// the family graph.
//
// The WebSocket feed broadcasts coarse-grained change notifications;
// clients refetch the parts of the graph they care about rather than
// applying diffs.
package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/GreedyA1/obsidian-family-tree/internal/notes"
	"github.com/GreedyA1/obsidian-family-tree/internal/tree"
)

// MessageType tags a WebSocket message.
type MessageType string

const (
	// MessageTypeGraphUpdate tells clients the graph changed and they
	// should refetch what they display.
	MessageTypeGraphUpdate MessageType = "graph_update"

	// MessageTypeStats carries person and relationship counts.
	MessageTypeStats MessageType = "stats"
)

// Message is one WebSocket broadcast.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// StatsData is the payload of a stats message.
type StatsData struct {
	Persons       int `json:"persons"`
	Relationships int `json:"relationships"`
}

// Server serves the graph over HTTP and pushes change notifications to
// WebSocket clients. Mutations go through the note manager so the notes on
// disk stay the source of truth.
type Server struct {
	addr     string
	listener net.Listener
	server   *http.Server

	store *tree.Store
	mgr   *notes.Manager

	clients   map[*websocket.Conn]bool
	clientsMu sync.RWMutex

	broadcast chan Message

	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	unsubStore func()

	logger *log.Logger
}

// Config holds server settings.
type Config struct {
	// Port to listen on. 0 picks a free port.
	Port int

	// Logger for connection and lifecycle events. Nil means log.Default.
	Logger *log.Logger
}

// DefaultConfig returns the standard dashboard settings.
func DefaultConfig() *Config {
	return &Config{
		Port:   8571,
		Logger: log.Default(),
	}
}

// NewServer builds a dashboard over the given store and note manager.
func NewServer(store *tree.Store, mgr *notes.Manager, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	if config.Logger == nil {
		config.Logger = log.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr:      fmt.Sprintf(":%d", config.Port),
		store:     store,
		mgr:       mgr,
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Message, 100),
		ctx:       ctx,
		cancel:    cancel,
		logger:    config.Logger,
	}
}

// Start binds the listener, subscribes to store changes, and begins
// serving.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = ln

	mux := http.NewServeMux()
	mux.HandleFunc("/api/graph", s.handleGraph)
	mux.HandleFunc("/api/persons", s.handlePersons)
	mux.HandleFunc("/api/persons/", s.handlePerson)
	mux.HandleFunc("/api/relationships", s.handleRelationships)
	mux.HandleFunc("/api/relationships/", s.handleRelationship)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleRoot)

	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Every store change becomes one coarse broadcast
	s.unsubStore = s.store.Subscribe(func() {
		s.Broadcast(Message{Type: MessageTypeGraphUpdate})
	})

	s.wg.Add(1)
	go s.broadcastLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.logger.Printf("Dashboard listening on %s", ln.Addr())
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Printf("Dashboard serve error: %v", err)
		}
	}()

	return nil
}

// Stop unsubscribes from the store, closes all clients, and shuts the
// HTTP server down.
func (s *Server) Stop() error {
	s.logger.Println("Stopping dashboard")

	if s.unsubStore != nil {
		s.unsubStore()
		s.unsubStore = nil
	}

	s.cancel()

	s.clientsMu.Lock()
	for conn := range s.clients {
		_ = conn.Close(websocket.StatusGoingAway, "shutting down")
		delete(s.clients, conn)
	}
	s.clientsMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("dashboard shutdown: %w", err)
	}

	s.wg.Wait()

	s.logger.Println("Dashboard stopped")
	return nil
}

// Broadcast queues a message for all connected clients. A full queue drops
// the message; graph updates carry no payload so a dropped one is
// recovered by the next.
func (s *Server) Broadcast(msg Message) {
	select {
	case s.broadcast <- msg:
	case <-s.ctx.Done():
		return
	default:
		s.logger.Println("Broadcast queue full, dropping update")
	}
}

func (s *Server) broadcastLoop() {
	defer s.wg.Done()

	for {
		select {
		case <-s.ctx.Done():
			return

		case msg := <-s.broadcast:
			if msg.Timestamp.IsZero() {
				msg.Timestamp = time.Now()
			}

			data, err := json.Marshal(msg)
			if err != nil {
				s.logger.Printf("Dropping unmarshalable message: %v", err)
				continue
			}

			s.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(s.clients))
			for conn := range s.clients {
				clients = append(clients, conn)
			}
			s.clientsMu.RUnlock()

			// Write outside the read lock so a slow client cannot stall
			// new subscriptions
			for _, conn := range clients {
				if err := s.writeTimed(conn, data); err != nil {
					s.logger.Printf("Dropping client: %v", err)
					s.removeClient(conn)
				}
			}
		}
	}
}

// writeTimed sends one frame with a write deadline.
func (s *Server) writeTimed(conn *websocket.Conn, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		s.logger.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	s.clientsMu.Lock()
	s.clients[conn] = true
	total := len(s.clients)
	s.clientsMu.Unlock()

	s.logger.Printf("Client connected (%d total)", total)

	// Initial stats so clients can render without waiting for a change
	stats, _ := json.Marshal(StatsData{
		Persons:       len(s.store.Persons()),
		Relationships: len(s.store.Relationships()),
	})
	welcome, _ := json.Marshal(Message{
		Type:      MessageTypeStats,
		Timestamp: time.Now(),
		Data:      stats,
	})
	_ = s.writeTimed(conn, welcome)

	go s.readLoop(conn)
}

// readLoop drains the connection until the client goes away. Client
// messages are not processed, the feed is one-way.
func (s *Server) readLoop(conn *websocket.Conn) {
	defer s.removeClient(conn)

	for {
		if _, _, err := conn.Read(s.ctx); err != nil {
			return
		}
	}
}

func (s *Server) removeClient(conn *websocket.Conn) {
	s.clientsMu.Lock()
	_, exists := s.clients[conn]
	if exists {
		delete(s.clients, conn)
	}
	total := len(s.clients)
	s.clientsMu.Unlock()

	if exists {
		_ = conn.Close(websocket.StatusNormalClosure, "")
		s.logger.Printf("Client disconnected (%d total)", total)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"clients": s.ClientCount(),
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	_, _ = fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Family Tree Dashboard</title>
</head>
<body>
    <h1>Family Tree Dashboard</h1>
    <p>Graph API: <a href="/api/graph">/api/graph</a></p>
    <p>WebSocket endpoint: <code>ws://%s/ws</code></p>
    <p>Health check: <a href="/health">/health</a></p>
</body>
</html>`, r.Host)
}

// Addr returns the bound listen address, useful when Port was 0.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// ClientCount returns the number of connected WebSocket clients.
func (s *Server) ClientCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
