package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// Namespaces used by the client. Clearing a namespace never touches another.
const (
	SessionNamespace = "booking_app_session"
	DeviceNamespace  = "booking_app_device"
)

// Prefs is a named key-value store holding string values, in the manner of
// the platform "shared preferences" primitive. A missing key is reported as
// ("", false, nil).
type Prefs interface {
	GetString(key string) (string, bool, error)
	PutString(key, value string) error
	// Clear removes every key in the store. Clearing an empty store is not an error.
	Clear() error
}

// SQLiteStore keeps preference namespaces in a single SQLite database file.
// Values are encrypted with AES-GCM when an encryption key is configured.
type SQLiteStore struct {
	db            *sql.DB
	encryptionKey []byte
	mu            sync.RWMutex
}

// NewSQLiteStore opens (creating if needed) the database at dbPath.
// A nil encryptionKey stores values in plain text.
func NewSQLiteStore(dbPath string, encryptionKey []byte) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Configure SQLite with WAL mode and busy timeout for better concurrency
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := NewSQLiteStoreWithDB(db, encryptionKey)
	if err != nil {
		db.Close()
		return nil, err
	}

	// The file exists once the schema has been created.
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("dbPath", dbPath).Msg("failed to restrict database file permissions")
	}

	return store, nil
}

// NewSQLiteStoreWithDB wraps an already opened database handle and ensures
// the schema exists.
func NewSQLiteStoreWithDB(db *sql.DB, encryptionKey []byte) (*SQLiteStore, error) {
	if encryptionKey != nil {
		switch len(encryptionKey) {
		case 16, 24, 32:
		default:
			return nil, fmt.Errorf("invalid encryption key length %d", len(encryptionKey))
		}
	}

	store := &SQLiteStore{
		db:            db,
		encryptionKey: encryptionKey,
	}

	if err := store.init(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) init() error {
	query := `
	CREATE TABLE IF NOT EXISTS preferences (
		namespace TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (namespace, key)
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

// Prefs returns the preference store for one namespace.
func (s *SQLiteStore) Prefs(namespace string) Prefs {
	return &sqlitePrefs{store: s, namespace: namespace}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) get(namespace, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stored string
	err := s.db.QueryRow(
		"SELECT value FROM preferences WHERE namespace = ? AND key = ?",
		namespace, key,
	).Scan(&stored)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query preference: %w", err)
	}

	if s.encryptionKey == nil {
		return stored, true, nil
	}

	plaintext, err := Decrypt(stored, s.encryptionKey)
	if err != nil {
		return "", false, fmt.Errorf("failed to decrypt preference: %w", err)
	}
	return string(plaintext), true, nil
}

func (s *SQLiteStore) put(namespace, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := value
	if s.encryptionKey != nil {
		encrypted, err := Encrypt([]byte(value), s.encryptionKey)
		if err != nil {
			return fmt.Errorf("failed to encrypt preference: %w", err)
		}
		stored = encrypted
	}

	_, err := s.db.Exec(`
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, namespace, key, stored, time.Now())

	if err != nil {
		return fmt.Errorf("failed to save preference: %w", err)
	}
	return nil
}

func (s *SQLiteStore) clear(namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM preferences WHERE namespace = ?", namespace)
	if err != nil {
		return fmt.Errorf("failed to clear preferences: %w", err)
	}
	return nil
}

type sqlitePrefs struct {
	store     *SQLiteStore
	namespace string
}

func (p *sqlitePrefs) GetString(key string) (string, bool, error) {
	return p.store.get(p.namespace, key)
}

func (p *sqlitePrefs) PutString(key, value string) error {
	return p.store.put(p.namespace, key, value)
}

func (p *sqlitePrefs) Clear() error {
	return p.store.clear(p.namespace)
}
