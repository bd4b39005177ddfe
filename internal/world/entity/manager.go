package entity

import (
	"sort"
	"sync"
)

// Manager хранит все сущности мира и выдаёт им идентификаторы.
// Идентификаторы монотонно растут и никогда не переиспользуются.
type Manager struct {
	entities     map[uint64]*Entity // Хранилище всех сущностей
	players      map[uint64]*Player // Игроки (их сущности тоже лежат в entities)
	nextEntityID uint64             // Следующий свободный ID
	mu           sync.RWMutex
}

// NewManager создаёт пустой менеджер; первый ID равен 1
func NewManager() *Manager {
	return &Manager{
		entities:     make(map[uint64]*Entity),
		players:      make(map[uint64]*Player),
		nextEntityID: 1,
	}
}

// NextID выдаёт новый уникальный ID
func (m *Manager) NextID() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextEntityID
	m.nextEntityID++
	return id
}

// PeekNextID возвращает ID, который будет выдан следующим
func (m *Manager) PeekNextID() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nextEntityID
}

// EnsureNextID поднимает счётчик не ниже next (после загрузки сохранения)
func (m *Manager) EnsureNextID(next uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if next > m.nextEntityID {
		m.nextEntityID = next
	}
}

// Add регистрирует сущность. Сущность без ID получает новый;
// сущность с ID (загруженная) сдвигает счётчик за свой ID.
// Возвращает false, если ID уже занят.
func (m *Manager) Add(e *Entity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e.ID == 0 {
		e.ID = m.nextEntityID
		m.nextEntityID++
	} else if e.ID >= m.nextEntityID {
		m.nextEntityID = e.ID + 1
	}

	if _, exists := m.entities[e.ID]; exists {
		return false
	}
	m.entities[e.ID] = e
	return true
}

// AddPlayer регистрирует игрока и его сущность
func (m *Manager) AddPlayer(p *Player) bool {
	if !m.Add(p.Entity) {
		return false
	}
	m.mu.Lock()
	m.players[p.ID] = p
	m.mu.Unlock()
	return true
}

// Remove удаляет сущность и возвращает её
func (m *Manager) Remove(id uint64) (*Entity, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, exists := m.entities[id]
	if !exists {
		return nil, false
	}
	delete(m.entities, id)
	delete(m.players, id)
	return e, true
}

// Get возвращает сущность по ID
func (m *Manager) Get(id uint64) (*Entity, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, exists := m.entities[id]
	return e, exists
}

// Player возвращает игрока по ID
func (m *Manager) Player(id uint64) (*Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, exists := m.players[id]
	return p, exists
}

// All возвращает все сущности, отсортированные по ID
func (m *Manager) All() []*Entity {
	m.mu.RLock()
	result := make([]*Entity, 0, len(m.entities))
	for _, e := range m.entities {
		result = append(result, e)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Players возвращает всех игроков, отсортированных по ID
func (m *Manager) Players() []*Player {
	m.mu.RLock()
	result := make([]*Player, 0, len(m.players))
	for _, p := range m.players {
		result = append(result, p)
	}
	m.mu.RUnlock()

	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

// Len возвращает количество сущностей
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entities)
}
