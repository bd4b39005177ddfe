package api

import (
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
)

const (
	eventBuffer  = 256
	pingInterval = 30 * time.Second
	writeTimeout = 5 * time.Second
)

// EventMessage — событие мира в JSON для подписчиков /ws/events
type EventMessage struct {
	Type           string         `json:"type"`
	Time           int64          `json:"time"`
	Position       *vec.Vec4Int   `json:"position,omitempty"`
	Old            *block.BlockID `json:"old,omitempty"`
	New            *block.BlockID `json:"new,omitempty"`
	EntityID       uint64         `json:"entity_id,omitempty"`
	EntityType     string         `json:"entity_type,omitempty"`
	EntityPosition *vec.Vec4      `json:"entity_position,omitempty"`
	Chunk          *vec.Vec4Int   `json:"chunk,omitempty"`
}

// NewEventMessage переводит событие мира в сообщение
func NewEventMessage(e world.Event) EventMessage {
	msg := EventMessage{Type: e.GetType().String(), Time: time.Now().UnixMilli()}
	switch ev := e.(type) {
	case world.BlockEvent:
		msg.Position, msg.Old, msg.New = &ev.Position, &ev.Old, &ev.New
	case world.EntityEvent:
		msg.EntityID = ev.EntityID
		msg.EntityType = ev.EntityType.String()
		msg.EntityPosition = &ev.Position
	case world.ChunkEvent:
		msg.Chunk = &ev.Coords
	}
	return msg
}

type subscriber struct {
	ch    chan EventMessage
	types map[string]bool // пусто — все типы
}

// EventStream раздаёт события мира подписчикам WebSocket.
// Publish вызывается в потоке тика и никогда не блокируется:
// медленный подписчик теряет события.
type EventStream struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
	closed      bool
	dropped     atomic.Uint64

	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewEventStream создаёт поток событий
func NewEventStream(logger *logging.Logger) *EventStream {
	if logger == nil {
		logger = logging.Default()
	}
	return &EventStream{
		subscribers: make(map[uint64]*subscriber),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Publish рассылает событие; подходит как world.EventListener
func (s *EventStream) Publish(e world.Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.subscribers) == 0 {
		return
	}

	msg := NewEventMessage(e)
	for _, sub := range s.subscribers {
		if len(sub.types) > 0 && !sub.types[msg.Type] {
			continue
		}
		select {
		case sub.ch <- msg:
		default:
			s.dropped.Add(1)
		}
	}
}

// Subscribe регистрирует подписчика на указанные типы событий
func (s *EventStream) Subscribe(buffer int, types ...string) (uint64, <-chan EventMessage) {
	sub := &subscriber{ch: make(chan EventMessage, buffer), types: make(map[string]bool)}
	for _, t := range types {
		sub.types[t] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(sub.ch)
		return 0, sub.ch
	}
	s.nextID++
	s.subscribers[s.nextID] = sub
	return s.nextID, sub.ch
}

// Unsubscribe удаляет подписчика и закрывает его канал
func (s *EventStream) Unsubscribe(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sub, ok := s.subscribers[id]; ok {
		delete(s.subscribers, id)
		close(sub.ch)
	}
}

// Subscribers возвращает число подписчиков
func (s *EventStream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subscribers)
}

// Dropped возвращает число событий, потерянных из-за переполнения
func (s *EventStream) Dropped() uint64 { return s.dropped.Load() }

// Close отключает всех подписчиков
func (s *EventStream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, sub := range s.subscribers {
		delete(s.subscribers, id)
		close(sub.ch)
	}
}

// Handler обслуживает GET /ws/events?types=block_change,chunk_load
func (s *EventStream) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var types []string
		if raw := c.Query("types"); raw != "" {
			for _, t := range strings.Split(raw, ",") {
				if t = strings.TrimSpace(t); t != "" {
					types = append(types, t)
				}
			}
		}

		// подписка до ответа 101: клиент не пропустит события после рукопожатия
		id, events := s.Subscribe(eventBuffer, types...)
		conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			s.Unsubscribe(id)
			return
		}
		defer conn.Close()
		defer s.Unsubscribe(id)

		s.logger.Debug("[WS] подписчик %d подключён (%s), типы=%v", id, c.ClientIP(), types)
		s.serve(conn, events)
		s.logger.Debug("[WS] подписчик %d отключён", id)
	}
}

// serve пишет события в соединение, пока клиент на связи
func (s *EventStream) serve(conn *websocket.Conn, events <-chan EventMessage) {
	// читатель нужен для обработки close/pong от клиента
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-gone:
			return
		case msg, ok := <-events:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"),
					time.Now().Add(time.Second))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
