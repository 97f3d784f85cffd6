package registry

import (
	"hash/fnv"
	"sync"

	"github.com/angeloszaimis/api-gateway/internal/service"
)

const shardCount = 32

type shard struct {
	mutex    sync.RWMutex
	handlers map[string]service.Handler
}

// Registry maps service names to their currently active handlers.
// Names are hashed across a fixed set of shards so registrations and
// lookups of independent names do not contend on one lock.
type Registry struct {
	shards  [shardCount]*shard
	onEvict func(name string)
}

// New creates an empty registry. onEvict, if non-nil, is called when a
// name is unregistered, serialized with registrations of that name; it
// must not call back into the registry. Replacing a handler does not
// evict.
func New(onEvict func(name string)) *Registry {
	r := &Registry{onEvict: onEvict}
	for i := range r.shards {
		r.shards[i] = &shard{handlers: make(map[string]service.Handler)}
	}
	return r
}

func (r *Registry) shardFor(name string) *shard {
	h := fnv.New32a()
	h.Write([]byte(name))
	return r.shards[h.Sum32()%shardCount]
}

// Register inserts or replaces the handler for name. Registration is
// last-write-wins; a concurrent lookup sees either the old or the new
// handler, never a torn entry.
func (r *Registry) Register(name string, handler service.Handler) error {
	if name == "" {
		return &service.ValidationError{Service: name, Reason: "name must not be empty"}
	}

	s := r.shardFor(name)
	s.mutex.Lock()
	s.handlers[name] = handler
	s.mutex.Unlock()

	return nil
}

// Unregister removes the entry for name. Removing an absent name is a
// no-op, not an error.
func (r *Registry) Unregister(name string) {
	s := r.shardFor(name)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	_, existed := s.handlers[name]
	delete(s.handlers, name)

	// The hook runs under the shard lock so a concurrent Register of the
	// same name cannot interleave between the delete and the eviction.
	if existed && r.onEvict != nil {
		r.onEvict(name)
	}
}

// Lookup returns the handler registered under name. It never blocks on
// handler execution and reports absence rather than erroring.
func (r *Registry) Lookup(name string) (service.Handler, bool) {
	s := r.shardFor(name)
	s.mutex.RLock()
	h, ok := s.handlers[name]
	s.mutex.RUnlock()
	return h, ok
}

// Len returns the number of registered services.
func (r *Registry) Len() int {
	total := 0
	for _, s := range r.shards {
		s.mutex.RLock()
		total += len(s.handlers)
		s.mutex.RUnlock()
	}
	return total
}

// Names returns the currently registered service names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0)
	for _, s := range r.shards {
		s.mutex.RLock()
		for name := range s.handlers {
			names = append(names, name)
		}
		s.mutex.RUnlock()
	}
	return names
}
