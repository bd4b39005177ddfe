package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/voxel4d/internal/app"
	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/metrics"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

type testEnv struct {
	session *app.Session
	handler http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := config.Default()
	cfg.Storage.SavesDir = t.TempDir()
	logger := logging.NewWriterLogger("test", io.Discard, logging.ERROR)

	m := metrics.New()
	s, err := app.Open(cfg, "api world", "alex", app.WithMetrics(m), app.WithLogger(logger))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	rs := NewRestServer(Config{Game: s, Metrics: m, Logger: logger})
	return &testEnv{session: s, handler: rs.Handler()}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, GenericResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)

	var resp GenericResponse
	if w.Body.Len() > 0 && w.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestWorldSnapshot(t *testing.T) {
	env := newTestEnv(t)
	w, resp := env.do(t, http.MethodGet, "/api/world", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	var snap struct {
		Data app.Snapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "alex", snap.Data.Player.Username)
	assert.NotEmpty(t, snap.Data.UUID)
}

func TestGetBlock(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodGet, "/api/blocks?x=3&y=0&z=-2&w=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data app.BlockView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, block.GrassBlockID, body.Data.ID)
	assert.Equal(t, vec.Vec4Int{X: 3, Z: -2, W: 5}, body.Data.Position)

	w, resp := env.do(t, http.MethodGet, "/api/blocks?x=1&y=oops&z=0&w=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
}

func TestPlaceAndBreakBlock(t *testing.T) {
	env := newTestEnv(t)
	target := PositionRequest{X: 1, Y: 1}

	w, _ := env.do(t, http.MethodPost, "/api/blocks/place", target)
	assert.Equal(t, http.StatusConflict, w.Code, "пустой слот")

	env.session.Player().Inventory.Slots[0] = block.NewStack(block.DirtBlockID, 1)
	w, _ = env.do(t, http.MethodPost, "/api/blocks/place", target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, block.DirtBlockID, env.session.Block(target.vec()).ID)

	w, _ = env.do(t, http.MethodPost, "/api/blocks/break", target)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, block.AirBlockID, env.session.Block(target.vec()).ID)

	w, _ = env.do(t, http.MethodPost, "/api/blocks/break", map[string]string{"x": "bad"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSmelterEndpoint(t *testing.T) {
	env := newTestEnv(t)
	pos := PositionRequest{X: 1, Y: 1}
	require.True(t, env.session.World().SetBlock(pos.vec(), block.PoweredSmelterBlockID))
	env.session.Player().Inventory.Slots[0] = block.NewStack(block.GoldOreBlockID, 2)

	w, _ := env.do(t, http.MethodPost, "/api/blocks/smelter", map[string]interface{}{"x": 1, "y": 1, "action": "insert", "slot": "output"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = env.do(t, http.MethodPost, "/api/blocks/smelter", map[string]interface{}{"x": 1, "y": 1, "action": "melt"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/blocks/smelter", SmelterRequest{PositionRequest: pos, Action: "insert", Slot: "fuel"})
	assert.Equal(t, http.StatusConflict, w.Code, "запитанной плавильне топливо не нужно")

	w, resp := env.do(t, http.MethodPost, "/api/blocks/smelter", SmelterRequest{PositionRequest: pos, Action: "insert", Slot: "input"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Contains(t, w.Body.String(), `"moved":2`)

	for i := 0; i < 40; i++ {
		env.session.Tick(0.05)
	}

	w, _ = env.do(t, http.MethodPost, "/api/blocks/smelter", SmelterRequest{PositionRequest: pos, Action: "take"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.session.Player().Inventory.Count(block.GoldIngotItemID))

	w, _ = env.do(t, http.MethodPost, "/api/blocks/smelter", SmelterRequest{PositionRequest: PositionRequest{Y: -1}, Action: "take"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestEntities(t *testing.T) {
	env := newTestEnv(t)
	item := env.session.World().SpawnItem(vec.Vec4{X: 2.5, Y: 1, Z: 0.5, W: 0.5}, block.NewStack(block.CoalItemID, 2))

	w, _ := env.do(t, http.MethodGet, "/api/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Data []app.EntityView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Data, 2, "игрок и предмет")

	w, _ = env.do(t, http.MethodGet, "/api/entities/"+strconv.FormatUint(item.ID, 10), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var one struct {
		Data app.EntityView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &one))
	require.NotNil(t, one.Data.Item)
	assert.Equal(t, 2, one.Data.Item.Count)

	w, _ = env.do(t, http.MethodGet, "/api/entities/424242", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/entities/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlayerInputAndSelect(t *testing.T) {
	env := newTestEnv(t)

	w, _ := env.do(t, http.MethodPost, "/api/player/input", InputRequest{Forward: true, Up: true})
	require.Equal(t, http.StatusOK, w.Code)
	p := env.session.PlayerSnapshot()
	assert.True(t, p.Input.Forward)
	assert.True(t, p.Input.Up)
	assert.False(t, p.Input.Left)

	w, _ = env.do(t, http.MethodPost, "/api/player/select", map[string]int{"slot": 4})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 4, env.session.PlayerSnapshot().Selected)

	w, _ = env.do(t, http.MethodPost, "/api/player/select", map[string]int{"slot": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/api/player/select", map[string]int{})
	assert.Equal(t, http.StatusBadRequest, w.Code, "slot обязателен")
}

func TestSaveAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	require.True(t, env.session.World().SetBlock(vec.Vec4Int{X: 1, Y: 2}, block.DirtBlockID))
	require.NotEmpty(t, env.session.World().DirtyChunks())

	w, resp := env.do(t, http.MethodPost, "/api/save", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Empty(t, env.session.World().DirtyChunks())

	w, _ = env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "voxel4d_saves_total 1")
	assert.Contains(t, w.Body.String(), "voxel4d_http_request_duration_seconds")
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)
	w, _ := env.do(t, http.MethodOptions, "/api/world", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
