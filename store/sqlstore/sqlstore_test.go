package sqlstore

import (
	"path/filepath"
	"testing"

	"github.com/supi-pay/supi/errors"
	"github.com/supi-pay/supi/weavetest/assert"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(DriverSQLite, filepath.Join(t.TempDir(), "supi.db"))
	assert.Nil(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetSetDelete(t *testing.T) {
	s := openTestStore(t)

	val, err := s.Get([]byte("missing"))
	assert.Nil(t, err)
	assert.Nil(t, val)

	assert.Nil(t, s.Set([]byte("k"), []byte("v1")))
	assert.Nil(t, s.Set([]byte("k"), []byte("v2")))
	val, err = s.Get([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("v2"), val)

	has, err := s.Has([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)

	assert.Nil(t, s.Delete([]byte("k")))
	has, err = s.Has([]byte("k"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
}

func TestCacheWrapWriteAndDiscard(t *testing.T) {
	s := openTestStore(t)

	cache := s.CacheWrap()
	assert.Nil(t, cache.Set([]byte("a"), []byte("1")))
	assert.Nil(t, cache.Set([]byte("b"), []byte("2")))

	// Nothing reaches the database before Write.
	has, err := s.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)

	assert.Nil(t, cache.Write())
	val, err := s.Get([]byte("b"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("2"), val)

	discarded := s.CacheWrap()
	assert.Nil(t, discarded.Set([]byte("c"), []byte("3")))
	assert.Nil(t, discarded.Delete([]byte("a")))
	discarded.Discard()

	has, err = s.Has([]byte("c"))
	assert.Nil(t, err)
	assert.Equal(t, false, has)
	has, err = s.Has([]byte("a"))
	assert.Nil(t, err)
	assert.Equal(t, true, has)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "durable.db")
	s, err := Open(DriverSQLite, path)
	assert.Nil(t, err)
	assert.Nil(t, s.Set([]byte("payment"), []byte("record")))
	assert.Nil(t, s.Close())

	s, err = Open(DriverSQLite, path)
	assert.Nil(t, err)
	defer s.Close()
	val, err := s.Get([]byte("payment"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("record"), val)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	cases := map[string]struct {
		driver string
		dsn    string
	}{
		"unknown driver": {driver: "mysql", dsn: "x"},
		"empty sqlite":   {driver: DriverSQLite, dsn: ""},
		"empty postgres": {driver: DriverPostgres, dsn: ""},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			_, err := Open(tc.driver, tc.dsn)
			if !errors.ErrInvalidInput.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
		})
	}
}

func TestPostgresPlaceholders(t *testing.T) {
	s := &Store{driver: DriverPostgres}
	got := s.query("INSERT INTO kv (k, v) VALUES (?, ?)")
	assert.Equal(t, "INSERT INTO kv (k, v) VALUES ($1, $2)", got)

	lite := &Store{driver: DriverSQLite}
	assert.Equal(t, "SELECT v FROM kv WHERE k = ?", lite.query("SELECT v FROM kv WHERE k = ?"))
}
