package storage

import "errors"

var (
	// ErrChunkNotFound — чанк ещё не сохранялся
	ErrChunkNotFound = errors.New("чанк не найден")
	// ErrCorruptRecord — запись не удалось разобрать
	ErrCorruptRecord = errors.New("повреждённая запись")
	// ErrWorldNotFound — в каталоге нет world.dat
	ErrWorldNotFound = errors.New("мир не найден")
	// ErrWorldExists — мир с таким именем уже создан
	ErrWorldExists = errors.New("мир уже существует")
	// ErrPlayerNotFound — игрок ещё не сохранялся
	ErrPlayerNotFound = errors.New("игрок не найден")
	// ErrStoreClosed — хранилище закрыто
	ErrStoreClosed = errors.New("хранилище не готово")
)
