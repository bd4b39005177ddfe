package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/annel0/voxel4d/internal/metrics"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block/implementations"
	"github.com/annel0/voxel4d/internal/world/entity"
)

// GenericResponse — общий конверт ответа
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PositionRequest — координаты клетки в теле запроса
type PositionRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
	W int `json:"w"`
}

func (p PositionRequest) vec() vec.Vec4Int {
	return vec.Vec4Int{X: p.X, Y: p.Y, Z: p.Z, W: p.W}
}

// InputRequest — флаги движения игрока
type InputRequest struct {
	Left    bool `json:"left"`
	Right   bool `json:"right"`
	Forward bool `json:"forward"`
	Back    bool `json:"back"`
	Up      bool `json:"up"`
	Down    bool `json:"down"`
	Jump    bool `json:"jump"`
}

// SmelterRequest — действие с плавильней: insert кладёт выбранный стак
// в слот input или fuel, take забирает результат
type SmelterRequest struct {
	PositionRequest
	Action string `json:"action" binding:"required,oneof=insert take"`
	Slot   string `json:"slot"`
}

// SelectRequest — выбор слота хотбара
type SelectRequest struct {
	Slot *int `json:"slot" binding:"required"`
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, GenericResponse{Success: false, Message: message})
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: message, Data: data})
}

// handleHealth проверка состояния сервера
func (rs *RestServer) handleHealth(c *gin.Context) {
	body := gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
		"tick":   rs.game.CurrentTick(),
	}
	if rs.sampler != nil {
		body["uptime"] = rs.sampler.Uptime()
	}
	c.JSON(http.StatusOK, body)
}

// handleServerInfo возвращает показатели процесса
func (rs *RestServer) handleServerInfo(c *gin.Context) {
	info := map[string]interface{}{
		"name":   "voxel4d",
		"status": "running",
		"tick":   rs.game.CurrentTick(),
	}
	if rs.sampler != nil {
		cpuPercent, _ := rs.sampler.CPUPercent()
		rss, _ := rs.sampler.RSS()
		info["uptime"] = rs.sampler.Uptime()
		info["cpu_percent"] = fmt.Sprintf("%.1f", cpuPercent)
		info["memory_mb"] = fmt.Sprintf("%.1f", float64(rss)/1024/1024)
	}
	info["memory_details"] = metrics.MemoryStats()

	ok(c, "Информация о сервере", info)
}

func (rs *RestServer) handleWorld(c *gin.Context) {
	ok(c, "Сводка мира", rs.game.Snapshot())
}

func (rs *RestServer) handleChunks(c *gin.Context) {
	ok(c, "Загруженные чанки", rs.game.Chunks())
}

func (rs *RestServer) handlePlayer(c *gin.Context) {
	ok(c, "Игрок", rs.game.PlayerSnapshot())
}

func (rs *RestServer) handleEntities(c *gin.Context) {
	ok(c, "Сущности", rs.game.Entities())
}

func (rs *RestServer) handleEntity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Неверный ID сущности")
		return
	}

	view, err := rs.game.Entity(id)
	if errors.Is(err, world.ErrEntityNotFound) {
		fail(c, http.StatusNotFound, "Сущность не найдена")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, "Сущность", view)
}

// handleGetBlock читает клетку по координатам из query
func (rs *RestServer) handleGetBlock(c *gin.Context) {
	var coords [4]int
	for i, name := range []string{"x", "y", "z", "w"} {
		v, err := strconv.Atoi(c.Query(name))
		if err != nil {
			fail(c, http.StatusBadRequest, "Неверная координата "+name)
			return
		}
		coords[i] = v
	}
	pos := vec.Vec4Int{X: coords[0], Y: coords[1], Z: coords[2], W: coords[3]}
	ok(c, "Блок", rs.game.Block(pos))
}

func (rs *RestServer) handlePlaceBlock(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if !rs.game.PlaceBlock(req.vec()) {
		fail(c, http.StatusConflict, "Блок не может быть установлен")
		return
	}
	ok(c, "Блок установлен", rs.game.Block(req.vec()))
}

func (rs *RestServer) handleBreakBlock(c *gin.Context) {
	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	drops, broken := rs.game.BreakBlock(req.vec())
	if !broken {
		fail(c, http.StatusConflict, "Блок не может быть разрушен")
		return
	}
	ok(c, "Блок разрушен", gin.H{"drops": drops})
}

func (rs *RestServer) handleSmelter(c *gin.Context) {
	var req SmelterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	pos := req.vec()

	if req.Action == "take" {
		out, err := rs.game.SmelterTake(pos)
		if err != nil {
			smelterError(c, err)
			return
		}
		ok(c, "Результат забран", gin.H{"taken": out})
		return
	}

	slot, valid := implementations.ParseSmelterSlot(req.Slot)
	if !valid {
		fail(c, http.StatusBadRequest, "Слот должен быть input или fuel")
		return
	}
	moved, err := rs.game.SmelterInsert(pos, slot)
	if err != nil {
		smelterError(c, err)
		return
	}
	ok(c, "Предметы загружены", gin.H{"moved": moved, "block": rs.game.Block(pos)})
}

func smelterError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, world.ErrNotSmelter):
		fail(c, http.StatusNotFound, err.Error())
	default:
		fail(c, http.StatusConflict, err.Error())
	}
}

func (rs *RestServer) handleInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	rs.game.SetInput(entity.Input{
		Left:    req.Left,
		Right:   req.Right,
		Forward: req.Forward,
		Back:    req.Back,
		Up:      req.Up,
		Down:    req.Down,
		Jump:    req.Jump,
	})
	ok(c, "Ввод принят", nil)
}

func (rs *RestServer) handleSelect(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Неверный формат запроса")
		return
	}
	if !rs.game.SelectSlot(*req.Slot) {
		fail(c, http.StatusBadRequest, "Слот вне хотбара")
		return
	}
	ok(c, "Слот выбран", gin.H{"slot": *req.Slot})
}

// handleSave сохраняет мир; частичные ошибки возвращаются как 500
func (rs *RestServer) handleSave(c *gin.Context) {
	if err := rs.game.Save(c.Request.Context()); err != nil {
		rs.logger.Error("Сохранение по запросу API не удалось: %v", err)
		fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	ok(c, "Мир сохранён", nil)
}
