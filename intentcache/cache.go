package intentcache

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Entry is one record of the intent cache log. The persisted record is
// immutable after insert; Hits and LastUsed are annotated on the copy a
// lookup returns and are never written back.
type Entry struct {
	Key       string  `json:"key"`
	Canonical string  `json:"canonical"`
	Analysis  string  `json:"analysis"`
	Intent    string  `json:"intent"`
	Hits      int     `json:"hits"`
	LastUsed  float64 `json:"last_used"`
}

// StorageError reports that the cache log could not be read or written.
// Callers must not treat it as a cache miss.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("intent cache %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// Cache is an append-only log of resolved intents, one JSON record per
// line. Each insert is a single atomic append, so concurrent writers never
// corrupt each other. Duplicate keys are allowed; lookup returns the first
// match in file order.
type Cache struct {
	path string
	mu   sync.Mutex
}

func New(path string) (*Cache, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}
	if err := f.Close(); err != nil {
		return nil, &StorageError{Op: "open", Err: err}
	}

	return &Cache{path: path}, nil
}

// Lookup scans the log in storage order for the key of rawText and returns
// the first matching entry, or nil when absent. The returned entry carries
// in-memory hit bookkeeping only.
func (c *Cache) Lookup(rawText string) (*Entry, error) {
	k := Key(rawText)

	f, err := os.Open(c.path)
	if err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, &StorageError{Op: "decode", Err: err}
		}

		if entry.Key == k {
			entry.Hits++
			entry.LastUsed = float64(time.Now().UnixNano()) / float64(time.Second)
			return &entry, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, &StorageError{Op: "read", Err: err}
	}

	return nil, nil
}

// Insert appends a new entry for rawText. Existing entries with the same
// key are never overwritten or deduplicated.
func (c *Cache) Insert(rawText, canonical, analysis, intent string) error {
	entry := Entry{
		Key:       Key(rawText),
		Canonical: canonical,
		Analysis:  analysis,
		Intent:    intent,
		Hits:      1,
		LastUsed:  float64(time.Now().UnixNano()) / float64(time.Second),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return &StorageError{Op: "encode", Err: err}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.OpenFile(c.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &StorageError{Op: "append", Err: err}
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return &StorageError{Op: "append", Err: err}
	}

	return nil
}
