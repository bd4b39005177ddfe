package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/voxel4d/internal/world"
)

const namespace = "voxel4d"

// Metrics инкапсулирует Prometheus-метрики мира и сохранений.
// Используется собственный регистр, чтобы несколько экземпляров
// (например, в тестах) не конфликтовали в глобальном.
type Metrics struct {
	registry *prometheus.Registry

	ticks         prometheus.Counter
	tickDuration  prometheus.Histogram
	liquidUpdates prometheus.Counter
	blockTicks    prometheus.Counter

	blockChanges prometheus.Counter
	chunkEvents  *prometheus.CounterVec
	entityEvents *prometheus.CounterVec

	loadedChunks prometheus.Gauge
	dirtyChunks  prometheus.Gauge
	entities     prometheus.Gauge

	saves        prometheus.Counter
	saveErrors   prometheus.Counter
	chunksSaved  prometheus.Counter
	saveDuration prometheus.Histogram

	processCPU prometheus.Gauge
	processRSS prometheus.Gauge
}

// New создаёт метрики и регистрирует их вместе со стандартными коллекторами Go-рантайма
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Общее число обработанных тиков симуляции.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Длительность одного тика симуляции.",
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
		}),
		liquidUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "liquid_updates_total",
			Help:      "Обновлений жидких клеток.",
		}),
		blockTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_ticks_total",
			Help:      "Тиков блоков с состоянием (плавильни).",
		}),
		blockChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "block_changes_total",
			Help:      "Изменений материала блоков.",
		}),
		chunkEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunk_events_total",
			Help:      "События жизненного цикла чанков.",
		}, []string{"event"}),
		entityEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entity_events_total",
			Help:      "Появления и исчезновения сущностей.",
		}, []string{"event", "type"}),
		loadedChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "loaded_chunks",
			Help:      "Чанков в памяти.",
		}),
		dirtyChunks: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dirty_chunks",
			Help:      "Чанков с несохранёнными изменениями.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Сущностей в мире, включая игроков.",
		}),
		saves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Выполненных сохранений мира.",
		}),
		saveErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_errors_total",
			Help:      "Сохранений, завершившихся хотя бы одной ошибкой.",
		}),
		chunksSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chunks_saved_total",
			Help:      "Записанных чанков.",
		}),
		saveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "save_duration_seconds",
			Help:      "Длительность сохранения мира.",
			Buckets:   prometheus.DefBuckets,
		}),
		processCPU: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_cpu_percent",
			Help:      "Загрузка CPU процессом (gopsutil).",
		}),
		processRSS: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "process_rss_bytes",
			Help:      "Резидентная память процесса (gopsutil).",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.ticks, m.tickDuration, m.liquidUpdates, m.blockTicks,
		m.blockChanges, m.chunkEvents, m.entityEvents,
		m.loadedChunks, m.dirtyChunks, m.entities,
		m.saves, m.saveErrors, m.chunksSaved, m.saveDuration,
		m.processCPU, m.processRSS,
	)
	return m
}

// Registry возвращает регистр метрик
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler возвращает HTTP-обработчик /metrics для этого регистра
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// OnWorldEvent — подписчик событий мира (world.WithEventListener)
func (m *Metrics) OnWorldEvent(e world.Event) {
	switch ev := e.(type) {
	case world.BlockEvent:
		m.blockChanges.Inc()
	case world.ChunkEvent:
		m.chunkEvents.WithLabelValues(ev.EventType.String()).Inc()
	case world.EntityEvent:
		m.entityEvents.WithLabelValues(ev.EventType.String(), ev.EntityType.String()).Inc()
	}
}

// ObserveTick учитывает один тик симуляции
func (m *Metrics) ObserveTick(d time.Duration, liquidUpdates, blockTicks int) {
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	m.liquidUpdates.Add(float64(liquidUpdates))
	m.blockTicks.Add(float64(blockTicks))
}

// ObserveSave учитывает одно сохранение
func (m *Metrics) ObserveSave(d time.Duration, chunks int, err error) {
	m.saves.Inc()
	m.chunksSaved.Add(float64(chunks))
	m.saveDuration.Observe(d.Seconds())
	if err != nil {
		m.saveErrors.Inc()
	}
}

// UpdateWorld обновляет gauge по сводке мира
func (m *Metrics) UpdateWorld(info world.Info) {
	m.loadedChunks.Set(float64(info.LoadedChunks))
	m.dirtyChunks.Set(float64(info.DirtyChunks))
	m.entities.Set(float64(info.Entities))
}
