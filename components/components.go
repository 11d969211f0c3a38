// Package components defines ECS components for the simulation.
package components

import "fmt"

// Category is one of the five ordered entity tiers, smallest first.
// The zero value is not a valid category.
type Category uint8

const (
	CategoryNone Category = iota
	Category1
	Category2
	Category3
	Category4
	Category5
)

// CategoryCount is the number of valid categories.
const CategoryCount = 5

// Index returns the zero-based table index for the category.
func (c Category) Index() int {
	return int(c) - 1
}

// Valid reports whether c is one of the five tiers.
func (c Category) Valid() bool {
	return c >= Category1 && c <= Category5
}

// String returns a short label for logs and CSV columns.
func (c Category) String() string {
	if !c.Valid() {
		return "none"
	}
	return fmt.Sprintf("c%d", uint8(c))
}

// CategoryFromIndex converts a zero-based table index to a Category.
func CategoryFromIndex(i int) Category {
	return Category(i + 1)
}

// PowerUpKind identifies a power-up type.
type PowerUpKind uint8

const (
	PowerUpSurge  PowerUpKind = iota // Explicit grow on collection
	PowerUpShield                    // Temporary immunity to wrong-category shrink
)

// PowerUpKindCount is the number of power-up kinds.
const PowerUpKindCount = 2

// String returns the kind name.
func (k PowerUpKind) String() string {
	switch k {
	case PowerUpSurge:
		return "surge"
	case PowerUpShield:
		return "shield"
	default:
		return "unknown"
	}
}
