package engagement

import (
	"sort"
	"time"

	"github.com/craftfolio/backend/internal/docstore"
)

// Comment is one record of a content item's flat comment collection. Author
// fields are the snapshot captured when the comment was posted.
type Comment struct {
	ID             string    `json:"id"`
	AuthorID       string    `json:"authorId"`
	AuthorName     string    `json:"authorName"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	AuthorAvatar   string    `json:"authorAvatar,omitempty"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
	Likes          int64     `json:"likes"`
	ParentID       string    `json:"parentId,omitempty"`
	IsBestAnswer   bool      `json:"isBestAnswer,omitempty"`
}

func commentFromDoc(doc docstore.Document) Comment {
	authorID, _ := doc.Data["authorId"].(string)
	authorName, _ := doc.Data["authorName"].(string)
	authorUsername, _ := doc.Data["authorUsername"].(string)
	authorAvatar, _ := doc.Data["authorAvatar"].(string)
	text, _ := doc.Data["text"].(string)
	parentID, _ := doc.Data["parentId"].(string)
	best, _ := doc.Data["isBestAnswer"].(bool)
	var likes int64
	switch n := doc.Data["likes"].(type) {
	case int64:
		likes = n
	case int:
		likes = int64(n)
	case float64:
		likes = int64(n)
	}
	return Comment{
		ID:             doc.ID(),
		AuthorID:       authorID,
		AuthorName:     authorName,
		AuthorUsername: authorUsername,
		AuthorAvatar:   authorAvatar,
		Text:           text,
		CreatedAt:      docstore.Timestamp(doc.Data["createdAt"]),
		Likes:          likes,
		ParentID:       parentID,
		IsBestAnswer:   best,
	}
}

// Thread is the assembled two-level comment tree. Roots read newest first
// (a best answer pins above everything else); replies read oldest first.
// The asymmetry is intentional.
type Thread struct {
	roots   []Comment
	replies map[string][]Comment
}

// AssembleThread builds a Thread from the flat comment collection. It is
// pure: no I/O, no retained state, safe to recompute on every render.
// A reply whose parent is missing is kept out of the root set; it stays
// reachable through RepliesOf with its dangling parent id.
func AssembleThread(flat []Comment) Thread {
	t := Thread{replies: make(map[string][]Comment)}
	for _, c := range flat {
		if c.ParentID == "" {
			t.roots = append(t.roots, c)
		} else {
			t.replies[c.ParentID] = append(t.replies[c.ParentID], c)
		}
	}

	sort.SliceStable(t.roots, func(i, j int) bool {
		a, b := t.roots[i], t.roots[j]
		if a.IsBestAnswer != b.IsBestAnswer {
			return a.IsBestAnswer
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	for _, rs := range t.replies {
		sort.SliceStable(rs, func(i, j int) bool {
			return rs[i].CreatedAt.Before(rs[j].CreatedAt)
		})
	}
	return t
}

// Roots returns top-level comments in display order.
func (t Thread) Roots() []Comment {
	return t.roots
}

// RepliesOf returns the direct replies of a comment in chronological order.
func (t Thread) RepliesOf(id string) []Comment {
	return t.replies[id]
}
