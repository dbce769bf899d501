// Package grid defines the board every room plays on.
// This package is PURE and must NOT import any infrastructure packages.
package grid

import "time"

// Board dimensions are identical for every room and never change.
const (
	Rows = 8
	Cols = 12
	Size = Rows * Cols
)

// Tile is one cell of the board and the unit of ownership.
// OwnerID is empty for a neutral tile.
type Tile struct {
	ID              int
	OwnerID         string
	ShieldExpiresAt time.Time
	HasTrap         bool
}

// Owned reports whether anyone holds the tile.
func (t *Tile) Owned() bool {
	return t.OwnerID != ""
}

// OwnedBy reports whether the given player holds the tile.
func (t *Tile) OwnedBy(playerID string) bool {
	return playerID != "" && t.OwnerID == playerID
}

// Shielded reports whether the tile still rejects captures at now.
func (t *Tile) Shielded(now time.Time) bool {
	return !t.ShieldExpiresAt.IsZero() && t.ShieldExpiresAt.After(now)
}

// Reset returns the tile to neutral and drops any shield or trap.
func (t *Tile) Reset() {
	t.OwnerID = ""
	t.HasTrap = false
	t.ShieldExpiresAt = time.Time{}
}

// Grid is the fixed, row-major board of a room.
type Grid struct {
	tiles [Size]Tile
}

// New creates a board with every tile neutral.
func New() *Grid {
	g := &Grid{}
	for i := range g.tiles {
		g.tiles[i].ID = i
	}
	return g
}

// Tile returns the tile with the given index.
// Returns false if the index is outside the board.
func (g *Grid) Tile(id int) (*Tile, bool) {
	if id < 0 || id >= Size {
		return nil, false
	}
	return &g.tiles[id], true
}

// Tiles exposes the board in index order. Callers must not retain the slice
// beyond the room lock.
func (g *Grid) Tiles() []Tile {
	return g.tiles[:]
}

// Neighbors returns the orthogonally adjacent tiles of id.
func (g *Grid) Neighbors(id int) []*Tile {
	if id < 0 || id >= Size {
		return nil
	}
	r, c := id/Cols, id%Cols
	out := make([]*Tile, 0, 4)
	for _, d := range [4][2]int{{0, 1}, {0, -1}, {1, 0}, {-1, 0}} {
		nr, nc := r+d[0], c+d[1]
		if nr < 0 || nr >= Rows || nc < 0 || nc >= Cols {
			continue
		}
		out = append(out, &g.tiles[nr*Cols+nc])
	}
	return out
}

// Borders reports whether any neighbour of id is held by playerID.
func (g *Grid) Borders(id int, playerID string) bool {
	for _, n := range g.Neighbors(id) {
		if n.OwnedBy(playerID) {
			return true
		}
	}
	return false
}

// FreeTiles lists the indices of every neutral tile.
func (g *Grid) FreeTiles() []int {
	free := make([]int, 0, Size)
	for i := range g.tiles {
		if !g.tiles[i].Owned() {
			free = append(free, i)
		}
	}
	return free
}

// OwnedBy lists every tile currently held by playerID.
func (g *Grid) OwnedBy(playerID string) []*Tile {
	var out []*Tile
	for i := range g.tiles {
		if g.tiles[i].OwnedBy(playerID) {
			out = append(out, &g.tiles[i])
		}
	}
	return out
}

// CountOwned returns the number of tiles that have an owner.
func (g *Grid) CountOwned() int {
	n := 0
	for i := range g.tiles {
		if g.tiles[i].Owned() {
			n++
		}
	}
	return n
}
