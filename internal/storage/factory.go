package storage

import "fmt"

const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
	KindBadger = "badger"
)

// DefaultStoreKind prefers sqlite when the binary was built with it.
func DefaultStoreKind() string {
	if sqliteAvailable {
		return KindSQLite
	}
	return KindBadger
}

// NewStore builds an uninitialized store. path is the sqlite file or the
// badger directory and is ignored for memory stores.
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(path)
	case KindBadger:
		return NewBadgerStore(BadgerOptions{Path: path}), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
