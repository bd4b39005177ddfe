package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/annel0/voxel4d/internal/vec"
)

// SQLiteChunkStore хранит чанки в одной таблице SQLite (chunks.db)
type SQLiteChunkStore struct {
	db     *sql.DB
	path   string
	closed atomic.Bool
}

// NewSQLiteChunkStore открывает (или создаёт) базу чанков
func NewSQLiteChunkStore(path string) (*SQLiteChunkStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть SQLite %s: %w", path, err)
	}
	// один писатель: SQLite не любит параллельные транзакции записи
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	stmts := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		`CREATE TABLE IF NOT EXISTS chunks (
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			z INTEGER NOT NULL,
			w INTEGER NOT NULL,
			data BLOB NOT NULL,
			PRIMARY KEY (x, y, z, w)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("инициализация SQLite %s: %w", path, err)
		}
	}
	return &SQLiteChunkStore{db: db, path: path}, nil
}

// ReadChunk читает данные чанка
func (s *SQLiteChunkStore) ReadChunk(pos vec.Vec4Int) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	var data []byte
	err := s.db.QueryRow(
		`SELECT data FROM chunks WHERE x = ? AND y = ? AND z = ? AND w = ?`,
		pos.X, pos.Y, pos.Z, pos.W,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrChunkNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения из SQLite: %w", err)
	}
	return data, nil
}

// WriteChunk заменяет строку чанка
func (s *SQLiteChunkStore) WriteChunk(pos vec.Vec4Int, data []byte) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	_, err := s.db.Exec(
		`INSERT INTO chunks (x, y, z, w, data) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (x, y, z, w) DO UPDATE SET data = excluded.data`,
		pos.X, pos.Y, pos.Z, pos.W, data,
	)
	if err != nil {
		return fmt.Errorf("ошибка сохранения в SQLite: %w", err)
	}
	return nil
}

// ListChunks перечисляет координаты сохранённых чанков
func (s *SQLiteChunkStore) ListChunks() ([]vec.Vec4Int, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	rows, err := s.db.Query(`SELECT x, y, z, w FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода SQLite: %w", err)
	}
	defer rows.Close()

	var result []vec.Vec4Int
	for rows.Next() {
		var pos vec.Vec4Int
		if err := rows.Scan(&pos.X, &pos.Y, &pos.Z, &pos.W); err != nil {
			return nil, err
		}
		result = append(result, pos)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortPositions(result)
	return result, nil
}

// Close закрывает базу; повторный вызов ничего не делает
func (s *SQLiteChunkStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.db.Close()
}
