package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local development and tests.
// Values are normalized through JSON so reads observe exactly what the
// database would return.
type MemoryStore struct {
	mu   sync.Mutex
	root map[string]interface{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: make(map[string]interface{})}
}

type memoryNode struct {
	raw []byte
}

func (n memoryNode) Unmarshal(v interface{}) error {
	return json.Unmarshal(n.raw, v)
}

func segments(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func normalize(v interface{}) (interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MemoryStore) lookup(path string) interface{} {
	var cur interface{} = s.root
	for _, seg := range segments(path) {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil
		}
		cur, ok = m[seg]
		if !ok {
			return nil
		}
	}
	return cur
}

// write replaces the node at path with v. A nil v removes the node and any
// parents left empty.
func (s *MemoryStore) write(path string, v interface{}) {
	segs := segments(path)
	if len(segs) == 0 {
		if m, ok := v.(map[string]interface{}); ok {
			s.root = m
		} else {
			s.root = make(map[string]interface{})
		}
		return
	}

	if v == nil {
		s.remove(s.root, segs)
		return
	}

	cur := s.root
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			cur[seg] = next
		}
		cur = next
	}
	cur[segs[len(segs)-1]] = v
}

func (s *MemoryStore) remove(m map[string]interface{}, segs []string) {
	if len(segs) == 1 {
		delete(m, segs[0])
		return
	}
	child, ok := m[segs[0]].(map[string]interface{})
	if !ok {
		return
	}
	s.remove(child, segs[1:])
	if len(child) == 0 {
		delete(m, segs[0])
	}
}

func (s *MemoryStore) Get(ctx context.Context, path string, v interface{}) error {
	s.mu.Lock()
	b, err := json.Marshal(s.lookup(path))
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	return json.Unmarshal(b, v)
}

func (s *MemoryStore) Set(ctx context.Context, path string, v interface{}) error {
	val, err := normalize(v)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(path, val)
	return nil
}

func (s *MemoryStore) Push(ctx context.Context, path string, v interface{}) (string, error) {
	val, err := normalize(v)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	key := id.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(path+"/"+key, val)
	return key, nil
}

func (s *MemoryStore) Update(ctx context.Context, path string, fields map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range fields {
		val, err := normalize(v)
		if err != nil {
			return fmt.Errorf("update %s: %w", path, err)
		}
		s.write(path+"/"+k, val)
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(path, nil)
	return nil
}

// Transaction holds the store lock while fn runs, which gives the same
// outcome as the database's optimistic retry loop.
func (s *MemoryStore) Transaction(ctx context.Context, path string, fn UpdateFn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := json.Marshal(s.lookup(path))
	if err != nil {
		return fmt.Errorf("transaction %s: %w", path, err)
	}

	next, err := fn(memoryNode{raw: b})
	if err != nil {
		return err
	}

	val, err := normalize(next)
	if err != nil {
		return fmt.Errorf("transaction %s: %w", path, err)
	}
	s.write(path, val)
	return nil
}
