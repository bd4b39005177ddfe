package api

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/app"
	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/entity"
)

func TestNewEventMessage(t *testing.T) {
	msg := NewEventMessage(world.BlockEvent{Position: vec.Vec4Int{X: 1, W: -2}, Old: block.AirBlockID, New: block.StoneBlockID})
	assert.Equal(t, "block_change", msg.Type)
	require.NotNil(t, msg.Position)
	assert.Equal(t, vec.Vec4Int{X: 1, W: -2}, *msg.Position)
	assert.Equal(t, block.StoneBlockID, *msg.New)

	msg = NewEventMessage(world.EntityEvent{EventType: world.EventTypeEntitySpawn, EntityID: 7, EntityType: entity.EntityTypeItem})
	assert.Equal(t, "entity_spawn", msg.Type)
	assert.Equal(t, uint64(7), msg.EntityID)
	assert.Nil(t, msg.Position)

	msg = NewEventMessage(world.ChunkEvent{EventType: world.EventTypeChunkLoad, Coords: vec.Vec4Int{Y: 3}})
	assert.Equal(t, "chunk_load", msg.Type)
	assert.Equal(t, vec.Vec4Int{Y: 3}, *msg.Chunk)
}

func TestEventStream_FilterAndDrop(t *testing.T) {
	s := NewEventStream(logging.NewWriterLogger("test", io.Discard, logging.ERROR))

	id, blocks := s.Subscribe(1, "block_change")
	_, all := s.Subscribe(8)
	assert.Equal(t, 2, s.Subscribers())

	s.Publish(world.ChunkEvent{EventType: world.EventTypeChunkGenerate})
	s.Publish(world.BlockEvent{New: block.DirtBlockID})
	s.Publish(world.BlockEvent{New: block.StoneBlockID})

	assert.Len(t, all, 3)
	require.Len(t, blocks, 1)
	assert.Equal(t, block.DirtBlockID, *(<-blocks).New)
	assert.Equal(t, uint64(1), s.Dropped(), "второе событие блока не поместилось")

	s.Unsubscribe(id)
	_, open := <-blocks
	assert.False(t, open)

	s.Close()
	assert.Equal(t, 0, s.Subscribers())
}

func TestEventStream_WebSocket(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.SavesDir = t.TempDir()
	logger := logging.NewWriterLogger("test", io.Discard, logging.ERROR)

	stream := NewEventStream(logger)
	session, err := app.Open(cfg, "ws world", "alex", app.WithLogger(logger), app.WithEventListener(stream.Publish))
	require.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	srv := httptest.NewServer(NewRestServer(Config{Game: session, Events: stream, Logger: logger}).Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/events?types=block_change"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	pos := vec.Vec4Int{X: 40, Y: 3, Z: -1, W: 2}
	require.True(t, session.World().SetBlock(pos, block.StoneBlockID))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg EventMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, "block_change", msg.Type, "генерация чанка отфильтрована")
	require.NotNil(t, msg.Position)
	assert.Equal(t, pos, *msg.Position)
	assert.Equal(t, block.AirBlockID, *msg.Old)
	assert.Equal(t, block.StoneBlockID, *msg.New)

	stream.Close()
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "ожидается закрытие: %v", err)
}
