// Package ecs is a small entity/component store with a component-init event bus.
//
// Components are plain Go structs stored by pointer in typed stores. Adding a
// component fires ComponentInit synchronously to every subscriber for that
// component type, in subscription order, on the caller's goroutine. The World
// is safe for concurrent use, but event delivery is only serialized when all
// mutations come from one goroutine (the server event loop).
package ecs

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// EntityID identifies an entity within one World. Zero is never allocated.
type EntityID uint32

// ErrNoEntity is returned for operations on an unknown entity.
var ErrNoEntity = errors.New("entity does not exist")

// Bus is the subscription side of the component event bus.
// Systems depend on Bus, not on World, so tests can substitute a stub.
type Bus interface {
	Subscribe(componentType reflect.Type, fn func(uid EntityID, component any)) (unsubscribe func())
}

// SubscribeComponentInit registers a typed ComponentInit handler for components of type C.
func SubscribeComponentInit[C any](bus Bus, fn func(uid EntityID, component *C)) (unsubscribe func()) {
	return bus.Subscribe(reflect.TypeFor[C](), func(uid EntityID, component any) {
		fn(uid, component.(*C))
	})
}

// removable is implemented by every component store so RemoveEntity can
// drop an entity's data from all stores.
type removable interface {
	remove(uid EntityID)
	len() int
}

type componentStore[C any] struct {
	data map[EntityID]*C
}

func (s *componentStore[C]) remove(uid EntityID) {
	delete(s.data, uid)
}

func (s *componentStore[C]) len() int {
	return len(s.data)
}

type initSubscriber struct {
	id int
	fn func(EntityID, any)
}

// World owns entities, their components and the init subscribers.
type World struct {
	mu       sync.RWMutex
	nextID   EntityID
	entities map[EntityID]struct{}
	stores   map[reflect.Type]removable

	subMu   sync.Mutex
	subs    map[reflect.Type][]initSubscriber
	nextSub int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		entities: make(map[EntityID]struct{}, 256),
		stores:   make(map[reflect.Type]removable, 8),
		subs:     make(map[reflect.Type][]initSubscriber, 8),
	}
}

// NewEntity allocates a fresh entity id.
func (w *World) NewEntity() EntityID {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.nextID++
	w.entities[w.nextID] = struct{}{}
	return w.nextID
}

// Exists reports whether uid is alive.
func (w *World) Exists(uid EntityID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	_, ok := w.entities[uid]
	return ok
}

// EntityCount returns the number of live entities.
func (w *World) EntityCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entities)
}

// RemoveEntity deletes uid and all of its components.
func (w *World) RemoveEntity(uid EntityID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.entities, uid)
	for _, s := range w.stores {
		s.remove(uid)
	}
}

// Subscribe implements Bus.
func (w *World) Subscribe(componentType reflect.Type, fn func(EntityID, any)) (unsubscribe func()) {
	w.subMu.Lock()
	id := w.nextSub
	w.nextSub++
	w.subs[componentType] = append(w.subs[componentType], initSubscriber{id: id, fn: fn})
	w.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.subMu.Lock()
			defer w.subMu.Unlock()
			w.subs[componentType] = slices.DeleteFunc(w.subs[componentType], func(s initSubscriber) bool {
				return s.id == id
			})
		})
	}
}

// SubscriberCount returns how many init handlers are registered for componentType.
func (w *World) SubscriberCount(componentType reflect.Type) int {
	w.subMu.Lock()
	defer w.subMu.Unlock()
	return len(w.subs[componentType])
}

func (w *World) dispatchInit(componentType reflect.Type, uid EntityID, component any) {
	w.subMu.Lock()
	subs := slices.Clone(w.subs[componentType])
	w.subMu.Unlock()

	for _, s := range subs {
		s.fn(uid, component)
	}
}

func storeFor[C any](w *World, create bool) *componentStore[C] {
	t := reflect.TypeFor[C]()
	s, ok := w.stores[t]
	if !ok {
		if !create {
			return nil
		}
		cs := &componentStore[C]{data: make(map[EntityID]*C, 64)}
		w.stores[t] = cs
		return cs
	}
	return s.(*componentStore[C])
}

// AddComponent attaches component to uid and fires ComponentInit.
// An existing component of the same type is replaced.
func AddComponent[C any](w *World, uid EntityID, component *C) error {
	w.mu.Lock()
	if _, ok := w.entities[uid]; !ok {
		w.mu.Unlock()
		return fmt.Errorf("adding %s to entity %d: %w", reflect.TypeFor[C](), uid, ErrNoEntity)
	}
	storeFor[C](w, true).data[uid] = component
	w.mu.Unlock()

	w.dispatchInit(reflect.TypeFor[C](), uid, component)
	return nil
}

// InitComponent fires ComponentInit again for an existing component.
func InitComponent[C any](w *World, uid EntityID) error {
	component, ok := GetComponent[C](w, uid)
	if !ok {
		return fmt.Errorf("initializing %s on entity %d: %w", reflect.TypeFor[C](), uid, ErrNoEntity)
	}
	w.dispatchInit(reflect.TypeFor[C](), uid, component)
	return nil
}

// GetComponent returns the component of type C attached to uid.
func GetComponent[C any](w *World, uid EntityID) (*C, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := storeFor[C](w, false)
	if s == nil {
		return nil, false
	}
	c, ok := s.data[uid]
	return c, ok
}

// ComponentCount returns the number of components of type C.
func ComponentCount[C any](w *World) int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s := storeFor[C](w, false)
	if s == nil {
		return 0
	}
	return s.len()
}
