package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/annel0/voxel4d/internal/config"
	"github.com/annel0/voxel4d/internal/logging"
	"github.com/annel0/voxel4d/internal/storage"
	"github.com/annel0/voxel4d/internal/vec"
	"github.com/annel0/voxel4d/internal/world/block"
)

const timeFormat = "2006-01-02 15:04:05"

func main() {
	var (
		configPath = flag.String("config", "", "путь к YAML-конфигурации")
		command    = flag.String("cmd", "list", "Команда: list, info, chunks, chunk")
		worldName  = flag.String("world", "", "Имя мира")
		x          = flag.Int("x", 0, "Координата чанка X")
		y          = flag.Int("y", 0, "Координата чанка Y")
		z          = flag.Int("z", 0, "Координата чанка Z")
		w          = flag.Int("w", 0, "Координата чанка W")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Конфигурация: %v", err)
	}
	logger := logging.NewWriterLogger("world-cli", os.Stderr, logging.WARN)
	root := cfg.Storage.GetSavesDir()

	if *command == "list" {
		if err := listWorlds(root, logger); err != nil {
			log.Fatalf("❌ List failed: %v", err)
		}
		return
	}

	if *worldName == "" {
		*worldName = cfg.World.Name
	}
	saves, err := openWorld(cfg, *worldName, logger)
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	defer saves.Close()

	switch *command {
	case "info":
		err = showInfo(saves)
	case "chunks":
		err = listChunks(saves)
	case "chunk":
		err = showChunk(saves, vec.Vec4Int{X: *x, Y: *y, Z: *z, W: *w})
	default:
		fmt.Printf("❌ Неизвестная команда: %s\n", *command)
		fmt.Println("Доступные команды: list, info, chunks, chunk")
		os.Exit(1)
	}
	if err != nil {
		log.Fatalf("❌ %s failed: %v", *command, err)
	}
}

// openWorld открывает только существующий мир
func openWorld(cfg *config.Config, name string, logger *logging.Logger) (*storage.SaveManager, error) {
	compression, err := storage.ParseCompression(cfg.Storage.Compression)
	if err != nil {
		return nil, err
	}
	saves, err := storage.Open(cfg.Storage.GetSavesDir(), name, storage.Options{
		Backend:     cfg.Storage.Backend,
		Compression: compression,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}
	if _, err := saves.LoadWorldInfo(); err != nil {
		saves.Close()
		return nil, fmt.Errorf("мир %q: %w", name, err)
	}
	return saves, nil
}

// listWorlds выводит миры, начиная с последнего сыгранного
func listWorlds(root string, logger *logging.Logger) error {
	worlds, err := storage.ListWorlds(root, logger)
	if err != nil {
		return err
	}
	fmt.Printf("🌍 Миры в %s: %d\n", root, len(worlds))
	for _, info := range worlds {
		fmt.Printf("  %-20s seed=%-12d last=%s uuid=%s\n",
			info.Name, info.Seed, time.Unix(info.LastPlayed, 0).Format(timeFormat), info.UUID)
	}
	return nil
}

func showInfo(saves *storage.SaveManager) error {
	info, err := saves.LoadWorldInfo()
	if err != nil {
		return err
	}
	chunks, err := saves.Store().ListChunks()
	if err != nil {
		return err
	}

	fmt.Printf("🌍 %s\n", info.Name)
	fmt.Printf("  Каталог:      %s\n", saves.Dir())
	fmt.Printf("  UUID:         %s\n", info.UUID)
	fmt.Printf("  Seed:         %d\n", info.Seed)
	lastPlayed := time.Unix(info.LastPlayed, 0)
	fmt.Printf("  Создан:       %s\n", time.Unix(info.CreatedAt, 0).Format(timeFormat))
	fmt.Printf("  Сыгран:       %s (%s назад)\n", lastPlayed.Format(timeFormat), time.Since(lastPlayed).Round(time.Second))
	fmt.Printf("  Тик:          %d\n", info.Tick)
	fmt.Printf("  След. ID:     %d\n", info.NextEntityID)
	fmt.Printf("  Чанков:       %d\n", len(chunks))

	if p, err := saves.LoadPlayer(); err == nil {
		fmt.Printf("  Игрок:        %s (ID %d) %v, здоровье %d\n", p.Username, p.ID, p.Position, p.Health)
	}
	return nil
}

func listChunks(saves *storage.SaveManager) error {
	chunks, err := saves.Store().ListChunks()
	if err != nil {
		return err
	}
	for _, pos := range chunks {
		fmt.Printf("  %s\n", storage.ChunkFileName(pos))
	}
	fmt.Printf("\n📊 Всего чанков: %d\n", len(chunks))
	return nil
}

// showChunk декодирует чанк и печатает гистограмму материалов
func showChunk(saves *storage.SaveManager, pos vec.Vec4Int) error {
	c, found, err := saves.Loader().LoadChunk(pos)
	if err != nil {
		return err
	}
	if !found {
		if saves.Loader().Stats().Corrupt > 0 {
			return fmt.Errorf("чанк %v повреждён", pos)
		}
		return fmt.Errorf("чанк %v не сохранён", pos)
	}

	counts := make(map[block.BlockID]int)
	for _, id := range c.Blocks() {
		counts[id]++
	}
	ids := make([]block.BlockID, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return counts[ids[i]] > counts[ids[j]] })

	fmt.Printf("🧊 Чанк %v\n", pos)
	for _, id := range ids {
		fmt.Printf("  %-16s %6d\n", block.PropertiesOf(id).Name, counts[id])
	}

	states := c.States()
	fmt.Printf("  Состояний: %d\n", len(states))
	for _, e := range c.Entities() {
		fmt.Printf("  Сущность %d (%s) %v\n", e.ID, e.Type, e.Position)
	}
	return nil
}
