package models

// Group is a named set of users. Categories grant access to groups, never
// to individual users; a user reaches a category's secrets through at
// least one of the category's granted groups.
type Group struct {
	// GroupID is the internal unique identifier of the group.
	GroupID int64 `json:"id"`

	// Name is the unique display name of the group.
	Name string `json:"name"`
}

// TableName returns the name of the database table
// associated with the Group model.
func (g Group) TableName() string {
	return "groups"
}
