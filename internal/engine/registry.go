package engine

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

const roomCodeLength = 6

// registry indexes live rooms by code and connections by the room they sit in.
//
// roomsMu is never held while a room lock is taken. connsMu is a leaf: it may
// be taken while a room is locked but never wraps another lock.
type registry struct {
	roomsMu sync.RWMutex
	rooms   map[string]*Room
	order   []string // creation order, scanned by quick play

	connsMu sync.RWMutex
	conns   map[string]string // connection id -> room code
}

func newRegistry() *registry {
	return &registry{
		rooms: make(map[string]*Room),
		conns: make(map[string]string),
	}
}

func (reg *registry) get(code string) *Room {
	reg.roomsMu.RLock()
	defer reg.roomsMu.RUnlock()
	return reg.rooms[code]
}

// getOrCreate returns the room registered under code, creating it with build
// if absent.
func (reg *registry) getOrCreate(code string, build func(code string) *Room) (*Room, bool) {
	reg.roomsMu.Lock()
	defer reg.roomsMu.Unlock()
	if r, ok := reg.rooms[code]; ok {
		return r, false
	}
	r := build(code)
	reg.rooms[code] = r
	reg.order = append(reg.order, code)
	return r, true
}

// create registers a room under a freshly minted code.
func (reg *registry) create(build func(code string) *Room) *Room {
	reg.roomsMu.Lock()
	defer reg.roomsMu.Unlock()
	for {
		code := newRoomCode()
		if _, taken := reg.rooms[code]; taken {
			continue
		}
		r := build(code)
		reg.rooms[code] = r
		reg.order = append(reg.order, code)
		return r
	}
}

// remove unregisters r if it is still the room stored under its code.
func (reg *registry) remove(r *Room) {
	reg.roomsMu.Lock()
	defer reg.roomsMu.Unlock()
	if reg.rooms[r.code] != r {
		return
	}
	delete(reg.rooms, r.code)
	for i, code := range reg.order {
		if code == r.code {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}
}

// list returns the live rooms in creation order.
func (reg *registry) list() []*Room {
	reg.roomsMu.RLock()
	defer reg.roomsMu.RUnlock()
	out := make([]*Room, 0, len(reg.order))
	for _, code := range reg.order {
		out = append(out, reg.rooms[code])
	}
	return out
}

func (reg *registry) count() int {
	reg.roomsMu.RLock()
	defer reg.roomsMu.RUnlock()
	return len(reg.rooms)
}

func (reg *registry) bind(connID, code string) {
	reg.connsMu.Lock()
	defer reg.connsMu.Unlock()
	reg.conns[connID] = code
}

// unbind forgets the connection and returns the room it was seated in.
func (reg *registry) unbind(connID string) (string, bool) {
	reg.connsMu.Lock()
	defer reg.connsMu.Unlock()
	code, ok := reg.conns[connID]
	delete(reg.conns, connID)
	return code, ok
}

// roomOf returns the room the connection is seated in, or nil.
func (reg *registry) roomOf(connID string) *Room {
	reg.connsMu.RLock()
	code, ok := reg.conns[connID]
	reg.connsMu.RUnlock()
	if !ok {
		return nil
	}
	return reg.get(code)
}

func newRoomCode() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(id[:roomCodeLength])
}

// NormalizeRoomCode canonicalises a client supplied room code.
func NormalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
