// Package store persists campaigns and posts in a local SQLite
// database. The layout is a small key/value table holding one JSON
// document per collection, which keeps reads and writes whole-document
// atomic the way the UI expects.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"socialstudio/internal/logging"
	"socialstudio/internal/types"
)

const (
	keyCampaigns = "campaigns"
	keyPosts     = "posts"
)

// Store is the durable local store. Safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Open")
	defer timer.Stop()

	logging.Store("Opening store at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to create directory %s: %v", dir, err)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Store schema ready")
	return s, nil
}

func (s *Store) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS app_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create app_state table: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// LoadCampaigns returns the persisted campaigns. When no record
// exists, the seed campaign is returned (and persisted) so a first run
// is never empty. A corrupt record is discarded with a warning rather
// than aborting startup.
func (s *Store) LoadCampaigns() ([]types.Campaign, error) {
	raw, found, err := s.get(keyCampaigns)
	if err != nil {
		return nil, err
	}
	if !found {
		seed := []types.Campaign{types.SeedCampaign()}
		logging.Store("No campaigns found; seeding demo campaign %q", seed[0].CompanyName)
		if err := s.SaveCampaigns(seed); err != nil {
			return nil, err
		}
		return seed, nil
	}

	var campaigns []types.Campaign
	if err := json.Unmarshal([]byte(raw), &campaigns); err != nil {
		logging.StoreWarn("Discarding corrupt campaigns record: %v", err)
		seed := []types.Campaign{types.SeedCampaign()}
		if err := s.SaveCampaigns(seed); err != nil {
			return nil, err
		}
		return seed, nil
	}
	logging.StoreDebug("Loaded %d campaigns", len(campaigns))
	return campaigns, nil
}

// LoadPosts returns the persisted posts. Missing or corrupt records
// yield an empty slice; corruption is logged and the record replaced.
func (s *Store) LoadPosts() ([]types.Post, error) {
	raw, found, err := s.get(keyPosts)
	if err != nil {
		return nil, err
	}
	if !found {
		return []types.Post{}, nil
	}

	var posts []types.Post
	if err := json.Unmarshal([]byte(raw), &posts); err != nil {
		logging.StoreWarn("Discarding corrupt posts record: %v", err)
		if err := s.SavePosts([]types.Post{}); err != nil {
			return nil, err
		}
		return []types.Post{}, nil
	}
	logging.StoreDebug("Loaded %d posts", len(posts))
	return posts, nil
}

// SaveCampaigns overwrites the campaigns collection.
func (s *Store) SaveCampaigns(campaigns []types.Campaign) error {
	data, err := json.Marshal(campaigns)
	if err != nil {
		return fmt.Errorf("failed to marshal campaigns: %w", err)
	}
	return s.put(keyCampaigns, string(data))
}

// SavePosts overwrites the posts collection.
func (s *Store) SavePosts(posts []types.Post) error {
	data, err := json.Marshal(posts)
	if err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}
	return s.put(keyPosts, string(data))
}

func (s *Store) get(key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, fmt.Errorf("store is closed")
	}

	var value string
	err := s.db.QueryRow("SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return value, true, nil
}

func (s *Store) put(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.Exec(`
		INSERT INTO app_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}
