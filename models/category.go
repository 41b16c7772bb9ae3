package models

import "time"

// Category is a named node in the access-control forest. Secrets are
// attached to categories, and categories grant access to groups. The
// in-memory tree (internal/tree) is the authoritative structure; this
// model is its persisted and wire representation.
type Category struct {
	// CategoryID is the unique identifier of the category node.
	// Identifiers are assigned by the tree, not by the database.
	CategoryID int64 `json:"id"`

	// Name is the display name of the category.
	// Unique among siblings of the same parent, and among roots.
	Name string `json:"name"`

	// ParentID is the identifier of the parent category.
	// Zero means the category is a root of the forest.
	ParentID int64 `json:"parent_id,omitempty"`

	// CreatorID identifies the user who created the category.
	// The creator always sees the category in their visible pool.
	CreatorID int64 `json:"creator_id"`

	// ResponsibleID optionally identifies the user responsible for the
	// category. Zero means no responsible user is assigned.
	ResponsibleID int64 `json:"responsible_id,omitempty"`

	// GroupIDs lists the groups granted access to this category.
	// Access extends to the whole subtree below the category.
	GroupIDs []int64 `json:"group_ids,omitempty"`

	// CreatedAt is the timestamp when the category was created.
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the name of the database table
// associated with the Category model.
func (c Category) TableName() string {
	return "categories"
}
