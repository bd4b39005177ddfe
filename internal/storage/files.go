package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/annel0/voxel4d/internal/vec"
)

// Раскладка каталога мира
const (
	WorldFileName  = "world.dat"
	PlayerFileName = "player.dat"
	ChunksDirName  = "chunks"

	chunkFilePrefix = "chunk_"
	defaultName     = "world"
)

// SanitizeWorldName оставляет в имени только [A-Za-z0-9_-], остальное заменяется на '_'
func SanitizeWorldName(name string) string {
	if name == "" {
		return defaultName
	}
	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			sb.WriteRune(r)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}

// ChunkFileName возвращает имя файла чанка вида chunk_x_y_z_w
func ChunkFileName(pos vec.Vec4Int) string {
	return fmt.Sprintf("%s%d_%d_%d_%d", chunkFilePrefix, pos.X, pos.Y, pos.Z, pos.W)
}

// ParseChunkFileName разбирает имя файла чанка.
// Некорректное имя — ошибка программиста, поэтому паника.
func ParseChunkFileName(name string) vec.Vec4Int {
	pos, ok := TryParseChunkFileName(name)
	if !ok {
		panic(fmt.Sprintf("storage: некорректное имя файла чанка %q", name))
	}
	return pos
}

// TryParseChunkFileName разбирает имя файла чанка без паники (для обхода каталога)
func TryParseChunkFileName(name string) (vec.Vec4Int, bool) {
	rest, found := strings.CutPrefix(name, chunkFilePrefix)
	if !found {
		return vec.Vec4Int{}, false
	}
	parts := strings.Split(rest, "_")
	if len(parts) != 4 {
		return vec.Vec4Int{}, false
	}

	var coords [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return vec.Vec4Int{}, false
		}
		coords[i] = n
	}
	return vec.Vec4Int{X: coords[0], Y: coords[1], Z: coords[2], W: coords[3]}, true
}

// writeFileAtomic пишет во временный файл рядом с целевым и переименовывает его
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка синхронизации %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка закрытия %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка переименования в %s: %w", path, err)
	}
	return nil
}
