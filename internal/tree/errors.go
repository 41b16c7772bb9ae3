package tree

import "errors"

// Sentinel errors returned by tree mutations. Callers should use
// [errors.Is] to match against these values. A mutation that returns an
// error has had no effect: validation always runs before the tree or the
// closure index is touched.
var (
	// ErrCategoryNotFound is returned when an operation references a
	// category id that does not exist in the forest.
	ErrCategoryNotFound = errors.New("category was not found")

	// ErrNameConflict is returned when a category name collides with an
	// existing sibling under the same parent, or with an existing root
	// when creating or moving to root scope.
	ErrNameConflict = errors.New("category name already taken in this scope")

	// ErrCycleConflict is returned when an AddChild call would make a
	// node its own ancestor.
	ErrCycleConflict = errors.New("category move would create a cycle")
)
