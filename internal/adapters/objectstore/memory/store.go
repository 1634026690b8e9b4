// Package memory es un object store en memoria para modo dev y tests.
package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-lost-found/internal/ports/objectstore"
)

type object struct {
	data        []byte
	contentType string
}

type Store struct {
	mu      sync.RWMutex
	baseURL string
	objects map[string]object
}

// New usa baseURL como prefijo de las URLs devueltas (default "memory://local").
func New(baseURL string) *Store {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "memory://local"
	}
	return &Store{baseURL: baseURL, objects: make(map[string]object)}
}

func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", errors.New("object key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = object{data: append([]byte(nil), data...), contentType: contentType}
	return s.URL(key), nil
}

func (s *Store) URL(key string) string {
	return s.baseURL + "/" + key
}

func (s *Store) List(ctx context.Context, prefix string, limit int) ([]objectstore.Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0)
	for k := range s.objects {
		if strings.HasPrefix(k, prefix) && !strings.HasSuffix(k, "/") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	if limit > 0 && len(keys) > limit {
		keys = keys[:limit]
	}

	out := make([]objectstore.Object, 0, len(keys))
	for _, k := range keys {
		out = append(out, objectstore.Object{Key: k, Size: int64(len(s.objects[k].data))})
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.objects[key]
	if !ok {
		return nil, "", errors.New("object not found: " + key)
	}
	return append([]byte(nil), o.data...), o.contentType, nil
}

// Len devuelve la cantidad de objetos (tests).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
