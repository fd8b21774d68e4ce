package realtime

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/gorilla/websocket"
)

// Client — одно websocket-соединение. Room заполняется после интента join,
// Role — если соединение открыто с токеном оператора.
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	ID       string
	Room     string
	Role     models.UserRole
	IsClosed bool
	Mu       sync.Mutex
}

// Message — конверт событий в обе стороны.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
	RoomID  string      `json:"room_id,omitempty"`
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// IntentHandler вызывается на интент клиента. Выполняется вне цикла хаба,
// поэтому может ходить в БД.
type IntentHandler func(c *Client, payload json.RawMessage)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

type Hub struct {
	clients    map[*Client]bool
	rooms      map[string]map[*Client]bool
	Register   chan *Client
	Unregister chan *Client

	handlers      map[string]IntentHandler
	adminHandlers map[string]IntentHandler
	mu            sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Register:      make(chan *Client),
		Unregister:    make(chan *Client),
		clients:       make(map[*Client]bool),
		rooms:         make(map[string]map[*Client]bool),
		handlers:      make(map[string]IntentHandler),
		adminHandlers: make(map[string]IntentHandler),
	}
}

// Handle регистрирует обработчик интента. Вызывать до Run.
func (h *Hub) Handle(event string, fn IntentHandler) {
	h.handlers[event] = fn
}

// HandleAdmin регистрирует обработчик, доступный только соединениям
// с ролью admin; интенты остальных молча игнорируются.
func (h *Hub) HandleAdmin(event string, fn IntentHandler) {
	h.adminHandlers[event] = fn
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			log.Printf("Client %s registered. Total clients: %d", client.ID, len(h.clients))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				client.Mu.Lock()
				if !client.IsClosed {
					close(client.Send)
					client.IsClosed = true
				}
				client.Mu.Unlock()
				delete(h.clients, client)
				h.leaveRoomLocked(client)
				log.Printf("Client %s unregistered. Total clients: %d", client.ID, len(h.clients))
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) deliver(client *Client, message []byte) {
	client.Mu.Lock()
	defer client.Mu.Unlock()
	if client.IsClosed {
		return
	}
	select {
	case client.Send <- message:
	default:
		// Канал клиента переполнен, сообщение пропускается.
		log.Printf("Client %s send channel full. Skipping.", client.ID)
	}
}

func (h *Hub) leaveRoomLocked(client *Client) {
	if client.Room == "" {
		return
	}
	if room, ok := h.rooms[client.Room]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.Room)
		}
	}
}

// JoinRoom привязывает клиента к комнате (одной команде), заменяя
// предыдущую привязку, если она была.
func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveRoomLocked(client)
	client.Room = roomID
	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	log.Printf("Client %s joined room %s. Clients in room: %d", client.ID, roomID, len(h.rooms[roomID]))
}

// BroadcastEvent отправляет событие всем подключённым клиентам.
func (h *Hub) BroadcastEvent(event string, payload interface{}) {
	messageBytes, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshalling %s event: %v", event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		h.deliver(client, messageBytes)
	}
}

// BroadcastToRoom отправляет событие всем клиентам комнаты.
func (h *Hub) BroadcastToRoom(roomID string, event string, payload interface{}) {
	messageBytes, err := json.Marshal(Message{Type: event, Payload: payload, RoomID: roomID})
	if err != nil {
		log.Printf("Error marshalling %s event for room %s: %v", event, roomID, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	roomClients, ok := h.rooms[roomID]
	if !ok {
		return
	}
	for client := range roomClients {
		h.deliver(client, messageBytes)
	}
}

// SendEvent отправляет событие одному клиенту.
func (h *Hub) SendEvent(client *Client, event string, payload interface{}) {
	messageBytes, err := json.Marshal(Message{Type: event, Payload: payload})
	if err != nil {
		log.Printf("Error marshalling %s event: %v", event, err)
		return
	}
	h.deliver(client, messageBytes)
}

func (h *Hub) dispatch(c *Client, raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		log.Printf("Client %s sent malformed message: %v", c.ID, err)
		return
	}

	if fn, ok := h.adminHandlers[msg.Type]; ok {
		if c.Role != models.RoleAdmin {
			log.Printf("Client %s attempted admin intent %q without admin role", c.ID, msg.Type)
			return
		}
		fn(c, msg.Payload)
		return
	}

	if fn, ok := h.handlers[msg.Type]; ok {
		fn(c, msg.Payload)
		return
	}

	log.Printf("Client %s sent unknown intent %q", c.ID, msg.Type)
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("Client %s read error: %v", c.ID, err)
			}
			break
		}
		c.Hub.dispatch(c, message)
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
