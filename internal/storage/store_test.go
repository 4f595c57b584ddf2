package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, key []byte) (*SQLiteStore, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	store, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, dbPath
}

func TestSQLitePrefs_MissingKey(t *testing.T) {
	store, _ := newTestStore(t, nil)
	prefs := store.Prefs(SessionNamespace)

	v, ok, err := prefs.GetString("access_token")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", v)
}

func TestSQLitePrefs_PutOverwrites(t *testing.T) {
	store, _ := newTestStore(t, nil)
	prefs := store.Prefs(SessionNamespace)

	require.NoError(t, prefs.PutString("access_token", "first"))
	require.NoError(t, prefs.PutString("access_token", "second"))

	v, ok, err := prefs.GetString("access_token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestSQLitePrefs_ClearIsScopedToNamespace(t *testing.T) {
	store, _ := newTestStore(t, nil)
	sessionPrefs := store.Prefs(SessionNamespace)
	devicePrefs := store.Prefs(DeviceNamespace)

	require.NoError(t, sessionPrefs.PutString("access_token", "tok"))
	require.NoError(t, sessionPrefs.PutString("other", "x"))
	require.NoError(t, devicePrefs.PutString("installation_id", "abc"))

	require.NoError(t, sessionPrefs.Clear())
	require.NoError(t, sessionPrefs.Clear())

	_, ok, err := sessionPrefs.GetString("access_token")
	assert.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = sessionPrefs.GetString("other")
	assert.NoError(t, err)
	assert.False(t, ok)

	v, ok, err := devicePrefs.GetString("installation_id")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)
}

func TestSQLitePrefs_SurvivesReopen(t *testing.T) {
	key, err := DeriveKey("correct horse battery staple")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	store, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	require.NoError(t, store.Prefs(SessionNamespace).PutString("access_token", "a.b.c"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	defer reopened.Close()

	v, ok, err := reopened.Prefs(SessionNamespace).GetString("access_token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a.b.c", v)
}

func TestSQLitePrefs_EncryptsValues(t *testing.T) {
	key, err := DeriveKey("secret")
	require.NoError(t, err)
	store, _ := newTestStore(t, key)

	require.NoError(t, store.Prefs(SessionNamespace).PutString("access_token", "plain-token"))

	var raw string
	err = store.db.QueryRow("SELECT value FROM preferences WHERE namespace = ? AND key = ?",
		SessionNamespace, "access_token").Scan(&raw)
	require.NoError(t, err)
	assert.NotContains(t, raw, "plain-token")

	v, ok, err := store.Prefs(SessionNamespace).GetString("access_token")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "plain-token", v)
}

func TestSQLitePrefs_WrongKeyFails(t *testing.T) {
	key, err := DeriveKey("one")
	require.NoError(t, err)
	other, err := DeriveKey("two")
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "prefs.db")
	store, err := NewSQLiteStore(dbPath, key)
	require.NoError(t, err)
	require.NoError(t, store.Prefs(SessionNamespace).PutString("access_token", "tok"))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(dbPath, other)
	require.NoError(t, err)
	defer reopened.Close()

	_, _, err = reopened.Prefs(SessionNamespace).GetString("access_token")
	assert.Error(t, err)
}

func TestNewSQLiteStoreWithDB_InvalidKeyLength(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLiteStoreWithDB(db, []byte("short"))
	assert.Error(t, err)
}

func TestSQLitePrefs_StorageFaultsPropagate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS preferences").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT value FROM preferences").
		WithArgs(SessionNamespace, "access_token").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectExec("INSERT INTO preferences").
		WillReturnError(errors.New("database is locked"))
	mock.ExpectExec("DELETE FROM preferences").
		WithArgs(SessionNamespace).
		WillReturnError(errors.New("database is locked"))

	store, err := NewSQLiteStoreWithDB(db, nil)
	require.NoError(t, err)
	prefs := store.Prefs(SessionNamespace)

	_, _, err = prefs.GetString("access_token")
	assert.ErrorContains(t, err, "disk I/O error")

	err = prefs.PutString("access_token", "tok")
	assert.ErrorContains(t, err, "failed to save preference")

	err = prefs.Clear()
	assert.ErrorContains(t, err, "failed to clear preferences")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStore_SchemaFault(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS preferences").
		WillReturnError(errors.New("read-only file system"))

	_, err = NewSQLiteStoreWithDB(db, nil)
	assert.ErrorContains(t, err, "failed to create preferences table")
}
