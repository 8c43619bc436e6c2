package settings

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
)

// ErrReadOnly is returned when writing through a read-only session.
var ErrReadOnly = errors.New("settings session is read-only")

// Backend persists a flat string map. Implementations must make Save atomic
// with respect to Load.
type Backend interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, set map[string]string, deleted []string) error
}

// Store hands out scoped sessions over a Backend.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// Begin opens a session. Reads see the backend as of Begin; writes are held
// until End.
func (s *Store) Begin(ctx context.Context, readOnly bool) (*Preferences, error) {
	values, err := s.backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if values == nil {
		values = make(map[string]string)
	}
	return &Preferences{
		backend:  s.backend,
		values:   values,
		readOnly: readOnly,
		set:      make(map[string]string),
		deleted:  make(map[string]struct{}),
	}, nil
}

// Preferences is one open/close scope over the store.
type Preferences struct {
	backend  Backend
	values   map[string]string
	readOnly bool
	set      map[string]string
	deleted  map[string]struct{}
	ended    bool
}

func (p *Preferences) lookup(key string) (string, bool) {
	if v, ok := p.set[key]; ok {
		return v, true
	}
	if _, ok := p.deleted[key]; ok {
		return "", false
	}
	v, ok := p.values[key]
	return v, ok
}

// Has reports whether key holds a non-empty value.
func (p *Preferences) Has(key string) bool {
	v, ok := p.lookup(key)
	return ok && v != ""
}

func (p *Preferences) String(key, def string) string {
	if v, ok := p.lookup(key); ok {
		return v
	}
	return def
}

func (p *Preferences) Int(key string, def int) int {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func (p *Preferences) Bool(key string, def bool) bool {
	v, ok := p.lookup(key)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// Float returns the parsed value and whether it was present and parsable.
func (p *Preferences) Float(key string) (float64, bool) {
	v, ok := p.lookup(key)
	if !ok || v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func (p *Preferences) PutString(key, value string) error {
	if p.readOnly {
		return ErrReadOnly
	}
	delete(p.deleted, key)
	p.set[key] = value
	return nil
}

func (p *Preferences) PutInt(key string, value int) error {
	return p.PutString(key, strconv.Itoa(value))
}

func (p *Preferences) PutBool(key string, value bool) error {
	return p.PutString(key, strconv.FormatBool(value))
}

func (p *Preferences) PutFloat(key string, value float64) error {
	return p.PutString(key, strconv.FormatFloat(value, 'f', -1, 64))
}

func (p *Preferences) Remove(key string) error {
	if p.readOnly {
		return ErrReadOnly
	}
	delete(p.set, key)
	p.deleted[key] = struct{}{}
	return nil
}

// End closes the session, flushing pending writes. Calling End twice is a no-op.
func (p *Preferences) End(ctx context.Context) error {
	if p.ended {
		return nil
	}
	p.ended = true
	if p.readOnly || (len(p.set) == 0 && len(p.deleted) == 0) {
		return nil
	}

	deleted := make([]string, 0, len(p.deleted))
	for k := range p.deleted {
		deleted = append(deleted, k)
	}
	if err := p.backend.Save(ctx, p.set, deleted); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// MemoryBackend keeps settings in process memory.
type MemoryBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryBackend(initial map[string]string) *MemoryBackend {
	values := make(map[string]string, len(initial))
	for k, v := range initial {
		values[k] = v
	}
	return &MemoryBackend{values: values}
}

func (m *MemoryBackend) Load(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out, nil
}

func (m *MemoryBackend) Save(ctx context.Context, set map[string]string, deleted []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range deleted {
		delete(m.values, k)
	}
	for k, v := range set {
		m.values[k] = v
	}
	return nil
}

var _ Backend = (*MemoryBackend)(nil)
