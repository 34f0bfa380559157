// Package live is a thin websocket push layer over a sheet.Sheet: it
// broadcasts the cells affected by each mutation to every connected client.
// It sits outside the engine core; the engine never imports it.
package live

import (
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"

	"liveledger/sheet"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Server owns a sheet and broadcasts every affected cell to all connected
// websocket clients after a mutation.
type Server struct {
	Sheet *sheet.Sheet

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

func NewServer(s *sheet.Sheet) *Server {
	return &Server{Sheet: s, clients: make(map[*websocket.Conn]bool)}
}

// CellMessage is the wire shape of a single cell's current state.
type CellMessage struct {
	Type    string `json:"type"`
	Ref     string `json:"ref"`
	Display string `json:"display"`
	Kind    string `json:"kind"`
	Raw     string `json:"raw,omitempty"`
	Error   string `json:"error,omitempty"`
}

// inboundMessage is the wire shape of a client's request.
type inboundMessage struct {
	Type  string `json:"type"`
	Ref   string `json:"ref"`
	Value string `json:"value"`
}

func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("live: upgrade failed: %v", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = true
	s.mu.Unlock()

	s.sendInitialState(conn)

	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.handleInbound(msg)
	}
}

func (s *Server) sendInitialState(conn *websocket.Conn) {
	for r := 0; r < s.Sheet.Rows(); r++ {
		for c := 0; c < s.Sheet.Cols(); c++ {
			ref := sheet.Ref{Row: r, Col: c}
			cell := s.Sheet.Get(ref)
			if cell.Kind == sheet.KindEmpty {
				continue
			}
			if err := conn.WriteJSON(cellMessageFor(s.Sheet, ref)); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleInbound(msg inboundMessage) {
	ref, err := sheet.ParseRef(msg.Ref)
	if err != nil {
		log.Printf("live: bad ref %q: %v", msg.Ref, err)
		return
	}

	var affected []sheet.Ref
	switch msg.Type {
	case "clear":
		s.Sheet.Clear(ref)
		affected = append([]sheet.Ref{ref}, s.Sheet.CollectAffected(ref)...)
	case "set_cell":
		if len(msg.Value) > 0 && msg.Value[0] == '=' {
			if err := s.Sheet.SetFormula(ref, msg.Value); err != nil {
				log.Printf("live: set_cell %s: %v", ref, err)
				return
			}
		} else if v, ok := parseNumber(msg.Value); ok {
			_ = s.Sheet.SetNumber(ref, v)
		} else {
			_ = s.Sheet.SetText(ref, msg.Value)
		}
		affected = append([]sheet.Ref{ref}, s.Sheet.CollectAffected(ref)...)
	default:
		log.Printf("live: unknown message type %q", msg.Type)
		return
	}

	s.Sheet.Recalculate()
	s.broadcastCells(dedupeRefs(affected))
}

func parseNumber(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func dedupeRefs(refs []sheet.Ref) []sheet.Ref {
	seen := map[sheet.Ref]bool{}
	out := refs[:0]
	for _, r := range refs {
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func (s *Server) broadcastCells(refs []sheet.Ref) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ref := range refs {
		msg := cellMessageFor(s.Sheet, ref)
		for conn := range s.clients {
			if err := conn.WriteJSON(msg); err != nil {
				conn.Close()
				delete(s.clients, conn)
			}
		}
	}
}

func cellMessageFor(s *sheet.Sheet, ref sheet.Ref) CellMessage {
	cell := s.Get(ref)
	msg := CellMessage{
		Type:    "cell_updated",
		Ref:     ref.String(),
		Display: s.Display(ref),
	}
	switch cell.Kind {
	case sheet.KindEmpty:
		msg.Kind = "empty"
	case sheet.KindNumber:
		msg.Kind = "number"
	case sheet.KindText:
		msg.Kind = "text"
	case sheet.KindFormula:
		msg.Kind = "formula"
		msg.Raw = cell.Text
		if cell.Err != sheet.ErrorNone {
			msg.Error = cell.Err.String()
		}
	}
	return msg
}

// Start serves static assets from dir and the websocket endpoint at /ws.
func (s *Server) Start(addr, staticDir string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWebSocket)
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	log.Printf("live: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
