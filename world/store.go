// Package world holds the entity store, camera follow and the room
// generator that populate a tile map.
package world

import (
	"errors"
	"fmt"

	"github.com/milk9111/tileworld/arena"
	"github.com/milk9111/tileworld/tilemap"
)

var ErrStoreFull = errors.New("world: entity store full")

// ControllerCount is the number of input controllers that can own a player.
const ControllerCount = 5

// Facing directions.
const (
	FacingRight uint32 = iota
	FacingUp
	FacingLeft
	FacingDown
)

// Entity is a single world object. It holds no Go pointers so the entity
// table can live in arena memory.
type Entity struct {
	Exists bool
	Pos    tilemap.Location
	Facing uint32
	Width  float32
	Height float32
}

// Store is a fixed-capacity entity table. Index 0 is reserved and never
// returned by Get, so a zero index means "no entity".
type Store struct {
	entities []Entity
	count    uint32

	cameraEntity uint32
	camera       tilemap.Location

	playerForController [ControllerCount]uint32
}

// NewStore carves room for capacity entities (including the reserved slot)
// out of a.
func NewStore(a *arena.Arena, capacity int) (*Store, error) {
	if a == nil {
		return nil, errors.New("world: nil arena")
	}
	if capacity < 2 {
		return nil, fmt.Errorf("world: capacity %d leaves no usable slots", capacity)
	}
	s := &Store{entities: arena.PushArray[Entity](a, capacity)}
	// Slot 0 is the null entity.
	s.count = 1
	return s, nil
}

// Capacity returns the total slot count, including the reserved slot.
func (s *Store) Capacity() int {
	return len(s.entities)
}

// Count returns how many entities have been added.
func (s *Store) Count() int {
	return int(s.count) - 1
}

// Live returns how many added entities currently exist.
func (s *Store) Live() int {
	n := 0
	for i := uint32(1); i < s.count; i++ {
		if s.entities[i].Exists {
			n++
		}
	}
	return n
}

// Add appends a zeroed entity and returns its index.
func (s *Store) Add() (uint32, error) {
	if int(s.count) >= len(s.entities) {
		return 0, fmt.Errorf("%w: capacity %d", ErrStoreFull, len(s.entities))
	}
	i := s.count
	s.count++
	s.entities[i] = Entity{}
	return i, nil
}

// Get returns the entity at index i whether or not it exists. Index 0 and
// indices never handed out by Add are absent.
func (s *Store) Get(i uint32) (*Entity, bool) {
	if i == 0 || i >= s.count {
		return nil, false
	}
	return &s.entities[i], true
}

// Each calls fn for every existing entity in index order.
func (s *Store) Each(fn func(i uint32, e *Entity)) {
	for i := uint32(1); i < s.count; i++ {
		if e := &s.entities[i]; e.Exists {
			fn(i, e)
		}
	}
}
