package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/voxel4d/internal/app"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/metrics"
	"github.com/annel0/voxel4d/internal/middleware"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world"
	"github.com/annel0/voxel4d/internal/world/block"
	"github.com/annel0/voxel4d/internal/world/block/implementations"
	"github.com/annel0/voxel4d/internal/world/entity"
)

// Game — операции сессии, доступные через API
type Game interface {
	Snapshot() app.Snapshot
	PlayerSnapshot() app.PlayerView
	Entities() []app.EntityView
	Entity(id uint64) (app.EntityView, error)
	Chunks() []world.ChunkInfo
	Block(pos vec.Vec4Int) app.BlockView
	CurrentTick() uint64

	SetInput(in entity.Input)
	SelectSlot(slot int) bool
	PlaceBlock(pos vec.Vec4Int) bool
	BreakBlock(pos vec.Vec4Int) ([]block.ItemStack, bool)
	SmelterInsert(pos vec.Vec4Int, slot implementations.SmelterSlot) (int, error)
	SmelterTake(pos vec.Vec4Int) (block.ItemStack, error)
	Save(ctx context.Context) error
}

// RestServer представляет REST API сервер
type RestServer struct {
	router  *gin.Engine
	game    Game
	port    string
	metrics *metrics.Metrics
	sampler *metrics.ProcessSampler
	events  *EventStream
	logger  *logging.Logger

	httpServer *http.Server
}

// Config содержит конфигурацию для REST сервера
type Config struct {
	Port    string                  // адрес вида ":8089"
	Game    Game                    // сессия мира
	Metrics *metrics.Metrics        // nil — без /metrics и HTTP-метрик
	Sampler *metrics.ProcessSampler // nil — без показателей процесса
	Events  *EventStream            // nil — без /ws/events
	Logger  *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8089"
	}
	if config.Logger == nil {
		config.Logger = logging.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New() // без стандартного logger/recovery
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware("voxel4d-api"))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	var reg prometheus.Registerer = prometheus.NewRegistry()
	if config.Metrics != nil {
		reg = config.Metrics.Registry()
	}
	router.Use(middleware.NewPrometheusMiddleware("voxel4d", reg).Handler())

	server := &RestServer{
		router:  router,
		game:    config.Game,
		port:    config.Port,
		metrics: config.Metrics,
		sampler: config.Sampler,
		events:  config.Events,
		logger:  config.Logger,
	}
	server.setupRoutes()
	return server
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	// CORS
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)
		api.GET("/world", rs.handleWorld)
		api.GET("/chunks", rs.handleChunks)
		api.GET("/entities", rs.handleEntities)
		api.GET("/entities/:id", rs.handleEntity)
		api.GET("/blocks", rs.handleGetBlock)
		api.POST("/blocks/place", rs.handlePlaceBlock)
		api.POST("/blocks/break", rs.handleBreakBlock)
		api.POST("/blocks/smelter", rs.handleSmelter)
		api.POST("/save", rs.handleSave)

		player := api.Group("/player")
		player.GET("", rs.handlePlayer)
		player.POST("/input", rs.handleInput)
		player.POST("/select", rs.handleSelect)
	}

	rs.router.GET("/health", rs.handleHealth)
	if rs.metrics != nil {
		rs.router.GET("/metrics", gin.WrapH(rs.metrics.Handler()))
	}
	if rs.events != nil {
		rs.router.GET("/ws/events", rs.events.Handler())
	}
}

// Handler возвращает http.Handler сервера (для тестов и встраивания)
func (rs *RestServer) Handler() http.Handler { return rs.router }

// Start запускает HTTP сервер в отдельной горутине
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rs.logger.Error("❌ Ошибка REST API сервера: %v", err)
		}
	}()

	rs.logger.Info("✅ REST API сервер запущен на http://localhost%s", rs.port)
	rs.logger.Info("📋 Доступные эндпоинты:")
	rs.logger.Info("   GET  /health            - Проверка состояния")
	rs.logger.Info("   GET  /api/world         - Сводка мира и игрока")
	rs.logger.Info("   GET  /api/blocks        - Клетка по ?x=&y=&z=&w=")
	rs.logger.Info("   POST /api/blocks/smelter - Загрузка и выгрузка плавильни")
	rs.logger.Info("   POST /api/player/input  - Ввод игрока")
	rs.logger.Info("   POST /api/save          - Сохранить мир")
	if rs.events != nil {
		rs.logger.Info("   GET  /ws/events         - Поток событий мира (WebSocket)")
	}
	return nil
}

// Stop выполняет graceful shutdown сервера
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	rs.logger.Info("🛑 Остановка REST API сервера...")
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := rs.httpServer.Shutdown(ctx); err != nil {
		rs.logger.Error("❌ Ошибка при остановке HTTP сервера: %v", err)
		return err
	}
	return nil
}
