package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kdramahub/kdramahub/internal/store"
)

// Store is an in-process implementation of store.Store backed by a nested
// map tree. Values are normalized through JSON on the way in, so reads
// observe plain JSON shapes regardless of the Go type written.
//
// Change notification is in-process: a subscription at path P fires when
// a mutation touches P, anything beneath P, or an ancestor of P.
type Store struct {
	mu   sync.RWMutex
	root map[string]any
	subs map[string]map[string]func(json.RawMessage)
	push *pushIDGenerator
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the push-id time source, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.push = newPushIDGenerator(now)
	}
}

// New creates an empty in-memory store.
func New(opts ...Option) *Store {
	s := &Store{
		root: make(map[string]any),
		subs: make(map[string]map[string]func(json.RawMessage)),
		push: newPushIDGenerator(time.Now),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get reads the value at path once.
func (s *Store) Get(ctx context.Context, path string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := getAtPath(s.root, splitPath(path))
	if !ok {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value at %s: %w", path, err)
	}
	return data, nil
}

// Set writes value at path, replacing the previous value.
func (s *Store) Set(ctx context.Context, path string, value any) error {
	norm, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", path, err)
	}

	s.mu.Lock()
	if norm == nil {
		deleteAtPath(s.root, splitPath(path))
	} else {
		setAtPath(s.root, splitPath(path), norm)
	}
	pending := s.snapshotSubscribers(path)
	s.mu.Unlock()

	dispatch(pending)
	return nil
}

// Update applies every path in values as one change event.
func (s *Store) Update(ctx context.Context, values map[string]any) error {
	normalized := make(map[string]any, len(values))
	for path, value := range values {
		norm, err := normalize(value)
		if err != nil {
			return fmt.Errorf("failed to encode value for %s: %w", path, err)
		}
		normalized[path] = norm
	}

	s.mu.Lock()
	for path, norm := range normalized {
		if norm == nil {
			deleteAtPath(s.root, splitPath(path))
		} else {
			setAtPath(s.root, splitPath(path), norm)
		}
	}
	pending := s.snapshotSubscribers(collectPaths(normalized)...)
	s.mu.Unlock()

	dispatch(pending)
	return nil
}

// Delete removes path and everything beneath it.
func (s *Store) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	deleteAtPath(s.root, splitPath(path))
	pending := s.snapshotSubscribers(path)
	s.mu.Unlock()

	dispatch(pending)
	return nil
}

// Push appends value under a generated child key of path.
func (s *Store) Push(ctx context.Context, path string, value any) (string, error) {
	key := s.push.next()
	if err := s.Set(ctx, path+"/"+key, value); err != nil {
		return "", err
	}
	return key, nil
}

// Subscribe registers fn at path and delivers the current snapshot before
// returning.
func (s *Store) Subscribe(path string, fn func(json.RawMessage)) (func(), error) {
	id := uuid.NewString()

	s.mu.Lock()
	if s.subs[path] == nil {
		s.subs[path] = make(map[string]func(json.RawMessage))
	}
	s.subs[path][id] = fn
	snapshot := s.snapshotAt(path)
	s.mu.Unlock()

	fn(snapshot)

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if m, ok := s.subs[path]; ok {
			delete(m, id)
			if len(m) == 0 {
				delete(s.subs, path)
			}
		}
	}
	return unsubscribe, nil
}

var _ store.Store = (*Store)(nil)

// notification carries one callback invocation prepared under the lock.
type notification struct {
	fn       func(json.RawMessage)
	snapshot json.RawMessage
}

// snapshotSubscribers collects, for every subscription affected by a
// mutation of the given paths, the callback plus its fresh snapshot.
// Must be called with the write lock held.
func (s *Store) snapshotSubscribers(changed ...string) []notification {
	var pending []notification
	for subPath, fns := range s.subs {
		affected := false
		for _, c := range changed {
			if pathsOverlap(subPath, c) {
				affected = true
				break
			}
		}
		if !affected {
			continue
		}
		snapshot := s.snapshotAt(subPath)
		for _, fn := range fns {
			pending = append(pending, notification{fn: fn, snapshot: snapshot})
		}
	}
	return pending
}

// snapshotAt renders the current value at path, nil when absent. Must be
// called with at least the read lock held.
func (s *Store) snapshotAt(path string) json.RawMessage {
	v, ok := getAtPath(s.root, splitPath(path))
	if !ok {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// dispatch runs prepared notifications outside the lock so callbacks may
// call back into the store.
func dispatch(pending []notification) {
	for _, n := range pending {
		n.fn(n.snapshot)
	}
}

// pathsOverlap reports whether a mutation at changed affects a
// subscription at sub: equal paths, changed beneath sub, or sub beneath
// changed.
func pathsOverlap(sub, changed string) bool {
	return sub == changed ||
		strings.HasPrefix(changed, sub+"/") ||
		strings.HasPrefix(sub, changed+"/")
}

func collectPaths(values map[string]any) []string {
	paths := make([]string, 0, len(values))
	for p := range values {
		paths = append(paths, p)
	}
	return paths
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}

// normalize round-trips value through JSON so the tree only ever holds
// maps, slices, and JSON scalar types.
func normalize(value any) (any, error) {
	if value == nil {
		return nil, nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var norm any
	if err := json.Unmarshal(data, &norm); err != nil {
		return nil, err
	}
	return norm, nil
}

func getAtPath(node map[string]any, segments []string) (any, bool) {
	if len(segments) == 1 && segments[0] == "" {
		if len(node) == 0 {
			return nil, false
		}
		return node, true
	}
	var current any = node
	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

func setAtPath(node map[string]any, segments []string, value any) {
	for i, seg := range segments {
		if i == len(segments)-1 {
			node[seg] = value
			return
		}
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
}

// deleteAtPath removes the leaf and prunes ancestors left empty, so an
// emptied container reads as absent rather than as an empty object.
func deleteAtPath(node map[string]any, segments []string) {
	if len(segments) == 0 {
		return
	}
	if len(segments) == 1 {
		delete(node, segments[0])
		return
	}
	child, ok := node[segments[0]].(map[string]any)
	if !ok {
		return
	}
	deleteAtPath(child, segments[1:])
	if len(child) == 0 {
		delete(node, segments[0])
	}
}
