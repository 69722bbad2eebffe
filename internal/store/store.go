package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketKV = []byte("kv")
)

const dbFileName = "marquee.db"

// KVStore implements domain.KeyValueStore using BoltDB.
type KVStore struct {
	db     *bolt.DB
	mu     sync.RWMutex // Protects memory cache and closed
	closed bool

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string]string
}

// NewKVStore opens (or creates) the store under dir.
// An empty dir yields a memory-only store with no persistence.
func NewKVStore(dir string) (*KVStore, error) {
	if dir == "" {
		return &KVStore{cache: make(map[string]string)}, nil
	}

	dir = expandHome(dir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create data directory: %v", domain.ErrPersistence, err)
	}

	dbPath := filepath.Join(dir, dbFileName)
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("%w: open bolt db: %v", domain.ErrPersistence, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketKV)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: create buckets: %v", domain.ErrPersistence, err)
	}

	return &KVStore{db: db, cache: make(map[string]string)}, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// Get returns the value for key; ok is false when the key is absent.
func (s *KVStore) Get(key string) (string, bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return "", false, domain.ErrStoreClosed
	}
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v, true, nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return "", false, nil
	}

	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketKV)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			value = string(v) // copies out of the mmap
			found = true
		}
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("%w: read %q: %v", domain.ErrPersistence, key, err)
	}
	if !found {
		return "", false, nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	return value, true, nil
}

// Set stores value under key.
func (s *KVStore) Set(key, value string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return domain.ErrStoreClosed
	}
	s.cache[key] = value
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketKV).Put([]byte(key), []byte(value))
	})
	if err != nil {
		// The cache must not claim a value the disk never saw.
		s.mu.Lock()
		delete(s.cache, key)
		s.mu.Unlock()
		return fmt.Errorf("%w: write %q: %v", domain.ErrPersistence, key, err)
	}
	return nil
}

// Close releases the database. Close is idempotent.
func (s *KVStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.cache = make(map[string]string)
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
