package krishimitra

import "time"

// A Post is a forum discussion entry. Its Upvotes, Downvotes and
// CommentsCount fields are denormalized aggregates kept for cheap reads;
// they only ever change through CastVote and AddComment, which keep them in
// agreement with the votes and comments tables.
type Post struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Body          string    `db:"body"`
	Author        string    `db:"author"`
	AuthorID      int64     `db:"author_id"`
	Upvotes       int64     `db:"upvotes"`
	Downvotes     int64     `db:"downvotes"`
	CommentsCount int64     `db:"comments_count"`
	CreatedAt     time.Time `db:"created_at"`
}

func NewPost(title string, body string, authorID int64) *Post {
	return &Post{
		Title:     title,
		Body:      body,
		AuthorID:  authorID,
		CreatedAt: NowFunc(),
	}
}

// Score returns the net engagement score used for ranking.
func (p *Post) Score() int64 {
	return p.Upvotes - p.Downvotes
}

// GetScore implements ranking.Rankable.
func (p *Post) GetScore() int64 { return p.Score() }

// Age implements ranking.Rankable.
func (p *Post) Age() time.Time { return p.CreatedAt }

// PostSeenByUser is a Post joined with the requesting user's own ledger
// entry, so the client can render the vote widgets without a second lookup.
type PostSeenByUser struct {
	Post
	VoteState VoteState
}
