// Package entity chooses what the generator puts on a map: furniture,
// monsters and items, each drawn from a weighted table.
package entity

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	ErrEmptyTable = errors.New("entity table is empty")
	ErrBadWeight  = errors.New("entity weight must be positive")
	ErrUnnamed    = errors.New("entity has no name")
	ErrBadRank    = errors.New("entity rank out of range")
)

// MaxRank is the highest rank an entry may carry.
const MaxRank = 5

// rankScale is a common multiple of every rank, so ranked weights stay whole.
const rankScale = 60

// Entry is one name in a table and its relative weight. A rank above 1
// makes the entry rarer: its weight is divided by the rank. Zero is
// unranked and counts as 1.
type Entry struct {
	Name   string `yaml:"name"`
	Weight int    `yaml:"weight"`
	Rank   int    `yaml:"rank,omitempty"`
}

// Table is a weighted list of names. Order matters: picks for a given
// random stream depend on it.
type Table []Entry

// Validate rejects an empty table and entries without a name or weight.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for _, e := range t {
		if e.Name == "" {
			return ErrUnnamed
		}
		if e.Weight <= 0 {
			return fmt.Errorf("%w: %s has weight %d", ErrBadWeight, e.Name, e.Weight)
		}
		if e.Rank < 0 || e.Rank > MaxRank {
			return fmt.Errorf("%w: %s has rank %d", ErrBadRank, e.Name, e.Rank)
		}
	}
	return nil
}

// weights returns each entry's effective weight. Tables without ranks above
// 1 keep their raw weights.
func (t Table) weights() []int {
	ranked := false
	for _, e := range t {
		if e.Rank > 1 {
			ranked = true
			break
		}
	}

	w := make([]int, len(t))
	for i, e := range t {
		if !ranked {
			w[i] = e.Weight
			continue
		}
		w[i] = e.Weight * rankScale / max(e.Rank, 1)
	}
	return w
}

// Pick draws one name. It consumes exactly one value from rng.
func (t Table) Pick(rng *rand.Rand) string {
	weights := t.weights()
	total := 0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return ""
	}
	n := rng.Intn(total)
	for i, w := range weights {
		if n < w {
			return t[i].Name
		}
		n -= w
	}
	return t[len(t)-1].Name
}

// Names lists the table's names in order.
func (t Table) Names() []string {
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.Name
	}
	return names
}

// Factory draws furniture, monsters and items from its tables.
type Factory struct {
	FurnitureTable Table `yaml:"furniture"`
	MonsterTable   Table `yaml:"monsters"`
	ItemTable      Table `yaml:"items"`
}

// DefaultFactory returns the stock tables. Daleks outnumber cameras five to
// one. Cooldown items rank above the limited-use ones.
func DefaultFactory() *Factory {
	return &Factory{
		FurnitureTable: Table{
			{Name: "Crate", Weight: 1},
			{Name: "Console", Weight: 1},
			{Name: "Table", Weight: 1},
			{Name: "Locker", Weight: 1},
		},
		MonsterTable: Table{
			{Name: "Dalek", Weight: 5},
			{Name: "StaticCamera", Weight: 1},
		},
		ItemTable: Table{
			{Name: "HandTeleport", Weight: 5, Rank: 2},
			{Name: "Cloaker", Weight: 12, Rank: 2},
			{Name: "Tangler", Weight: 12, Rank: 1},
			{Name: "MemoryWipe", Weight: 10, Rank: 1},
			{Name: "DoorRelease", Weight: 7, Rank: 1},
			{Name: "RemoteControl", Weight: 10, Rank: 2},
		},
	}
}

// Validate checks every table.
func (f *Factory) Validate() error {
	tables := []struct {
		name  string
		table Table
	}{
		{"furniture", f.FurnitureTable},
		{"monsters", f.MonsterTable},
		{"items", f.ItemTable},
	}
	for _, tt := range tables {
		if err := tt.table.Validate(); err != nil {
			return fmt.Errorf("%s: %w", tt.name, err)
		}
	}
	return nil
}

func (f *Factory) Furniture(rng *rand.Rand) string { return f.FurnitureTable.Pick(rng) }
func (f *Factory) Monster(rng *rand.Rand) string   { return f.MonsterTable.Pick(rng) }
func (f *Factory) Item(rng *rand.Rand) string      { return f.ItemTable.Pick(rng) }
