package logging

import (
	"errors"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"
)

// Компоненты с собственными файлами логов
const (
	ComponentWorld   = "world"
	ComponentStorage = "storage"
	ComponentAPI     = "api"
)

// LoggerManager раздаёт логгеры компонентов, каждый со своим файлом
// в директории SetLogDir. Все логгеры менеджера живут на одном уровне.
type LoggerManager struct {
	mu      sync.Mutex
	loggers map[string]*Logger
	level   LogLevel
}

var (
	globalManager *LoggerManager
	managerOnce   sync.Once
)

// NewLoggerManager создаёт менеджер с уровнем консольного вывода level
func NewLoggerManager(level LogLevel) *LoggerManager {
	return &LoggerManager{
		loggers: make(map[string]*Logger),
		level:   level,
	}
}

// GetLoggerManager возвращает глобальный менеджер логгеров
func GetLoggerManager() *LoggerManager {
	managerOnce.Do(func() {
		globalManager = NewLoggerManager(INFO)
	})
	return globalManager
}

// fileLevel — в файл пишется не меньше, чем DEBUG
func fileLevel(level LogLevel) LogLevel {
	return min(level, DEBUG)
}

// SetLevel меняет уровень уже созданных и будущих логгеров
func (lm *LoggerManager) SetLevel(level LogLevel) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	lm.level = level
	for _, logger := range lm.loggers {
		logger.SetLevels(level, fileLevel(level))
	}
}

// GetLogger возвращает логгер компонента, открывая его файл при первом обращении
func (lm *LoggerManager) GetLogger(component string) (*Logger, error) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	if logger, exists := lm.loggers[component]; exists {
		return logger, nil
	}

	logger, err := NewLogger(component)
	if err != nil {
		return nil, fmt.Errorf("логгер компонента %s: %w", component, err)
	}
	logger.SetLevels(lm.level, fileLevel(lm.level))
	lm.loggers[component] = logger
	return logger, nil
}

// MustGetLogger возвращает логгер компонента. Если файл не открылся,
// отдаётся консольный логгер; он не кешируется, следующий вызов попробует снова.
func (lm *LoggerManager) MustGetLogger(component string) *Logger {
	logger, err := lm.GetLogger(component)
	if err == nil {
		return logger
	}

	lm.mu.Lock()
	level := lm.level
	lm.mu.Unlock()

	fallback := &Logger{
		component:       component,
		consoleLogger:   log.New(os.Stdout, "", log.LstdFlags),
		minConsoleLevel: level,
		minFileLevel:    ERROR + 1,
	}
	fallback.Warn("Файл логов недоступен, пишем только в консоль: %v", err)
	return fallback
}

// Components возвращает отсортированные имена открытых компонентов
func (lm *LoggerManager) Components() []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	components := make([]string, 0, len(lm.loggers))
	for component := range lm.loggers {
		components = append(components, component)
	}
	sort.Strings(components)
	return components
}

// CloseAll закрывает файлы всех логгеров и забывает их
func (lm *LoggerManager) CloseAll() error {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	var errs []error
	for component, logger := range lm.loggers {
		if err := logger.Close(); err != nil {
			errs = append(errs, fmt.Errorf("закрытие логгера %s: %w", component, err))
		}
	}
	lm.loggers = make(map[string]*Logger)
	return errors.Join(errs...)
}

func GetComponentLogger(component string) *Logger {
	return GetLoggerManager().MustGetLogger(component)
}

// GetWorldLogger — логгер мира и сессии
func GetWorldLogger() *Logger { return GetComponentLogger(ComponentWorld) }

// GetStorageLogger — логгер сохранений
func GetStorageLogger() *Logger { return GetComponentLogger(ComponentStorage) }

// GetAPILogger — логгер REST API и потока событий
func GetAPILogger() *Logger { return GetComponentLogger(ComponentAPI) }
