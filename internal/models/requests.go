package models

// CreateCommentRequest defines the request body for posting a comment or a
// reply (parentId set) on a content item.
type CreateCommentRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=2000"`
	ParentID string `json:"parentId,omitempty"`
}

// PublishedContentRequest announces newly published content so followers of
// the author get notified.
type PublishedContentRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}
