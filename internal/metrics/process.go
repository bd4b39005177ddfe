package metrics

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/annel0/voxel4d/internal/logging"
)

// ProcessSampler снимает показатели процесса через gopsutil
type ProcessSampler struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessSampler создаёт сэмплер текущего процесса
func NewProcessSampler() (*ProcessSampler, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть процесс: %w", err)
	}
	return &ProcessSampler{StartTime: time.Now(), proc: proc}, nil
}

// Uptime возвращает время работы в виде «1д 2ч 3м 4с»
func (s *ProcessSampler) Uptime() string {
	return FormatUptime(time.Since(s.StartTime))
}

// FormatUptime форматирует длительность работы
func FormatUptime(uptime time.Duration) string {
	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	default:
		return fmt.Sprintf("%dс", seconds)
	}
}

// CPUPercent возвращает загрузку CPU процессом; при ошибке — системную
func (s *ProcessSampler) CPUPercent() (float64, error) {
	cpuPercent, err := s.proc.CPUPercent()
	if err != nil {
		cpuPercents, err := cpu.Percent(100*time.Millisecond, false)
		if err != nil || len(cpuPercents) == 0 {
			return 0, err
		}
		return cpuPercents[0], nil
	}
	return cpuPercent, nil
}

// RSS возвращает резидентную память процесса в байтах
func (s *ProcessSampler) RSS() (uint64, error) {
	info, err := s.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return info.RSS, nil
}

// MemoryStats возвращает статистику памяти рантайма Go
func MemoryStats() map[string]interface{} {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return map[string]interface{}{
		"alloc_mb":      float64(m.Alloc) / 1024 / 1024,
		"sys_mb":        float64(m.Sys) / 1024 / 1024,
		"heap_alloc_mb": float64(m.HeapAlloc) / 1024 / 1024,
		"num_gc":        m.NumGC,
		"goroutines":    runtime.NumGoroutine(),
	}
}

// Sample обновляет gauge процесса
func (m *Metrics) Sample(s *ProcessSampler) error {
	cpuPercent, err := s.CPUPercent()
	if err != nil {
		return err
	}
	rss, err := s.RSS()
	if err != nil {
		return err
	}
	m.processCPU.Set(cpuPercent)
	m.processRSS.Set(float64(rss))
	return nil
}

// RunSampler периодически снимает показатели процесса до отмены контекста
func (m *Metrics) RunSampler(ctx context.Context, s *ProcessSampler, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sample(s); err != nil {
				logging.Debug("Не удалось снять показатели процесса: %v", err)
			}
		}
	}
}
