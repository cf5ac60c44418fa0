package live

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Dosada05/prediction-league/models"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Message — кадр live-ленты.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Hub рассылает подписчикам свежую таблицу лидеров. Лента одна на всех,
// комнаты не нужны. Новый подписчик сразу получает последний снимок таблицы.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	clients  map[*Client]bool
	snapshot []byte
	mu       sync.RWMutex

	logger *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			snapshot := h.snapshot
			h.mu.Unlock()

			h.logger.Info("standings subscriber connected", slog.Int("subscribers", h.subscriberCount()))
			if snapshot != nil {
				client.trySend(snapshot)
			}

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("standings subscriber disconnected", slog.Int("subscribers", h.subscriberCount()))
		}
	}
}

// PublishStandings сериализует таблицу и рассылает её всем подписчикам.
// Реализует services.StandingsPublisher.
func (h *Hub) PublishStandings(entries []models.StandingsEntry) {
	message, err := json.Marshal(Message{
		Type:    "STANDINGS_UPDATED",
		Payload: entries,
	})
	if err != nil {
		h.logger.Error("failed to marshal standings update", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	h.snapshot = message
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		client.trySend(message)
	}
}

func (h *Hub) subscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	Send chan []byte

	closed bool
	mu     sync.Mutex
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		Hub:  hub,
		Conn: conn,
		Send: make(chan []byte, 8),
	}
}

func (c *Client) trySend(message []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- message:
	default:
		// Подписчик не успевает читать: кадр пропускается, следующий
		// PublishStandings принесёт актуальное состояние.
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// ReadPump вычитывает входящие кадры только ради контроля соединения:
// содержимое от клиентов игнорируется.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("unexpected websocket close", slog.Any("error", err))
			}
			return
		}
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
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
