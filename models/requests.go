package models

// CreateCategoryRequest is the body of the category creation endpoint.
// ParentID zero creates a new root.
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	ParentID int64  `json:"parent_id,omitempty"`
}

// MoveCategoryRequest reparents an existing category under a new parent.
type MoveCategoryRequest struct {
	ParentID int64 `json:"parent_id"`
	ChildID  int64 `json:"child_id"`
}

// GrantGroupsRequest replaces the set of groups granted access to a
// category subtree.
type GrantGroupsRequest struct {
	GroupIDs []int64 `json:"group_ids"`
}

// SetResponsibleRequest appoints a user as responsible for a category.
type SetResponsibleRequest struct {
	UserID int64 `json:"user_id"`
}

// AddGroupMemberRequest adds a user to a group.
type AddGroupMemberRequest struct {
	UserID int64 `json:"user_id"`
}

// CreateSecretRequest is the body of the secret creation endpoint.
// Ciphertext is the creator's own encrypted copy. The server never sees
// plaintext, so a secret cannot be created without one.
type CreateSecretRequest struct {
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id,omitempty"`
	Ciphertext []byte `json:"ciphertext"`
}

// AssignCategoryRequest moves a secret into (or out of) a category.
// CategoryID zero detaches the secret from its category.
type AssignCategoryRequest struct {
	CategoryID int64 `json:"category_id"`
}

// UploadPublicKeyRequest publishes the DER-encoded public half of the
// caller's keypair, making the caller eligible to receive re-encrypted
// secrets.
type UploadPublicKeyRequest struct {
	PublicKey []byte `json:"public_key"`
}
