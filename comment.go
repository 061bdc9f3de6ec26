package krishimitra

import "time"

// A Comment belongs to exactly one post and one author. Comments are
// append-only, there is no edit or delete path.
type Comment struct {
	ID        int64     `db:"id"`
	PostID    int64     `db:"post_id"`
	Body      string    `db:"body"`
	Author    string    `db:"author"`
	AuthorID  int64     `db:"author_id"`
	CreatedAt time.Time `db:"created_at"`
}

func NewComment(postID int64, body string, authorID int64) *Comment {
	return &Comment{
		PostID:    postID,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: NowFunc(),
	}
}
