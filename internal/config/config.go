package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigEnv — переменная окружения с путём к YAML-файлу конфигурации
const ConfigEnv = "VOXEL_CONFIG"

// Config корневая структура конфигурации приложения.
type Config struct {
	World   WorldConfig   `yaml:"world"`
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Tracing TracingConfig `yaml:"tracing"`
}

type WorldConfig struct {
	Name            string `yaml:"name"`
	Seed            int64  `yaml:"seed"`
	Player          string `yaml:"player"`
	TickRate        int    `yaml:"tick_rate"`        // тиков в секунду
	LiquidInterval  int    `yaml:"liquid_interval"`  // тиков между обновлениями жидкости
	AutosaveSeconds int    `yaml:"autosave_seconds"` // 0 — автосохранение выключено
	RetentionRadius int    `yaml:"retention_radius"` // в чанках
}

type StorageConfig struct {
	SavesDir    string `yaml:"saves_dir"`
	Backend     string `yaml:"backend"`     // file | badger | leveldb | sqlite
	Compression string `yaml:"compression"` // gzip | zstd | none
}

type ServerConfig struct {
	RESTPort       int  `yaml:"rest_port"`
	MetricsEnabled bool `yaml:"metrics_enabled"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
	Dir   string `yaml:"dir"`
	File  bool   `yaml:"file"` // писать ли лог в файл
}

type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// Default возвращает конфигурацию по умолчанию.
// Пути пустые: их значения берутся из окружения или GetSavesDir/GetLogDir.
func Default() *Config {
	return &Config{
		World: WorldConfig{
			Name:            "world",
			Player:          "player",
			TickRate:        20,
			LiquidInterval:  5,
			AutosaveSeconds: 60,
			RetentionRadius: 8,
		},
		Storage: StorageConfig{
			Backend:     "file",
			Compression: "gzip",
		},
		Server: ServerConfig{
			MetricsEnabled: true,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Tracing: TracingConfig{
			Endpoint:    "localhost:4318",
			ServiceName: "voxel4d",
			SampleRatio: 1,
		},
	}
}

// GetRESTPort возвращает порт REST API с поддержкой fallback значений
func (s *ServerConfig) GetRESTPort() int {
	return getPortWithEnvFallback(s.RESTPort, "VOXEL_REST_PORT", 8089)
}

// GetSavesDir возвращает корень сохранений: config -> env -> default
func (s *StorageConfig) GetSavesDir() string {
	return getStringWithEnvFallback(s.SavesDir, "VOXEL_SAVES_DIR", "saves")
}

// GetLogDir возвращает каталог логов: config -> env -> default
func (l *LoggingConfig) GetLogDir() string {
	return getStringWithEnvFallback(l.Dir, "VOXEL_LOG_DIR", "logs")
}

// TickInterval возвращает длительность одного тика
func (w *WorldConfig) TickInterval() time.Duration {
	return time.Second / time.Duration(w.TickRate)
}

// AutosaveInterval возвращает период автосохранения (0 — выключено)
func (w *WorldConfig) AutosaveInterval() time.Duration {
	return time.Duration(w.AutosaveSeconds) * time.Second
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	// Если порт задан в конфиге и больше 0, используем его
	if configPort > 0 {
		return configPort
	}

	// Пробуем прочитать из environment variable
	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

func getStringWithEnvFallback(configVal, envVar, defaultVal string) string {
	if configVal != "" {
		return configVal
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return defaultVal
}

// Load читает YAML файл конфигурации поверх значений по умолчанию.
// Если path == "", пытается прочитать путь из ENV VOXEL_CONFIG;
// если и он пуст, возвращаются значения по умолчанию.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(ConfigEnv)
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("чтение конфигурации %s: %w", path, err)
	}

	if err := ValidateDocument(data); err != nil {
		return nil, fmt.Errorf("проверка конфигурации %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate проверяет диапазоны значений
func (c *Config) Validate() error {
	switch {
	case c.World.TickRate <= 0:
		return fmt.Errorf("world.tick_rate должен быть положительным, получено %d", c.World.TickRate)
	case c.World.LiquidInterval <= 0:
		return fmt.Errorf("world.liquid_interval должен быть положительным, получено %d", c.World.LiquidInterval)
	case c.World.AutosaveSeconds < 0:
		return fmt.Errorf("world.autosave_seconds не может быть отрицательным")
	case c.World.RetentionRadius < 0:
		return fmt.Errorf("world.retention_radius не может быть отрицательным")
	case c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1:
		return fmt.Errorf("tracing.sample_ratio должен быть в диапазоне [0, 1]")
	}
	switch c.Storage.Backend {
	case "", "file", "badger", "leveldb", "sqlite":
	default:
		return fmt.Errorf("неизвестный storage.backend: %q", c.Storage.Backend)
	}
	return nil
}
