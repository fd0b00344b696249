package intentcache

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()

	cache, err := New(filepath.Join(t.TempDir(), "intent_cache.jsonl"))
	require.NoError(t, err)

	return cache
}

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Please add Luigi's to my wishlist!", "add luigi s to my wishlist"},
		{"Find me a table for 2 in NYC", "find me a table for num in nyc"},
		{"  HELLO   there  ", "hello there"},
		{"just kindly please", ""},
		{"", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Canonicalize(tc.in), "input %q", tc.in)
	}
}

func TestCanonicalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Please find sushi for 4 people in Los Angeles!",
		"heyyy",
		"add Luigi's Pizza to my wishlist",
		"1234",
	}

	for _, in := range inputs {
		once := Canonicalize(in)
		assert.Equal(t, once, Canonicalize(once), "input %q", in)
	}
}

func TestKeyStable(t *testing.T) {
	k1 := Key("Find sushi in LA")
	k2 := Key("Find sushi in LA")
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, 40)

	// Same canonical form, same key.
	assert.Equal(t, Key("please find sushi in la"), Key("Find sushi in LA!!"))
}

func TestInsertLookupRoundTrip(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Insert("find sushi in LA", "find sushi in los angeles", "rewrote location", "search"))

	entry, err := cache.Lookup("Find sushi in LA!")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "search", entry.Intent)
	assert.Equal(t, "find sushi in los angeles", entry.Canonical)
}

func TestLookupMiss(t *testing.T) {
	cache := newTestCache(t)

	entry, err := cache.Lookup("never seen before")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestLookupFirstMatchWins(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Insert("show my wishlist", "show my wishlist", "A", "wishlist_view"))
	require.NoError(t, cache.Insert("show my wishlist", "show my wishlist", "B", "smalltalk"))

	entry, err := cache.Lookup("show my wishlist")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "A", entry.Analysis)
	assert.Equal(t, "wishlist_view", entry.Intent)
}

func TestLookupHitBookkeepingNotPersisted(t *testing.T) {
	cache := newTestCache(t)

	require.NoError(t, cache.Insert("hello there", "hello there", "", "smalltalk"))

	entry, err := cache.Lookup("hello there")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 2, entry.Hits)
	assert.NotZero(t, entry.LastUsed)

	// A second lookup re-reads the log: the increment never reached disk.
	again, err := cache.Lookup("hello there")
	require.NoError(t, err)
	require.NotNil(t, again)
	assert.Equal(t, 2, again.Hits)

	f, err := os.Open(cache.path)
	require.NoError(t, err)
	defer f.Close()

	scanner := bufio.NewScanner(f)
	require.True(t, scanner.Scan())

	var stored Entry
	require.NoError(t, json.Unmarshal(scanner.Bytes(), &stored))
	assert.Equal(t, 1, stored.Hits)
}

func TestLookupStorageError(t *testing.T) {
	cache := newTestCache(t)
	require.NoError(t, os.Remove(cache.path))

	_, err := cache.Lookup("anything")
	require.Error(t, err)

	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}
