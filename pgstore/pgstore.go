// Package pgstore implements the Store interface on top of Postgresql.
//
// The two engagement write paths are transactional: the counter update on
// the posts row and the ledger or comment write commit together or not at
// all. Counters move through atomic "SET x = x + delta" increments, never
// by writing back a value computed in Go.
package pgstore

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/mischiefkanha/krishimitra"
)

// A PGStore is responsible of interacting with the storage layer using a Postgresql database.
type PGStore struct {
	dbString string
	db       *sqlx.DB
}

// New returns a PGStore configured for a given address string, using the "user=postgres dbname=krishimitra ..." format.
func New(addr string) *PGStore {
	return &PGStore{
		dbString: addr,
	}
}

// Connect establish a connection with the database using the address given at initialization.
func (s *PGStore) Connect() error {
	db, err := sqlx.Connect("postgres", s.dbString)
	if err != nil {
		return krishimitra.Unavailable(err)
	}

	s.db = db

	return nil
}

// DB returns the existing connection, making it suitable to perform requests not already supported by
// the store interface. If called while not connected, it will return nil.
func (s *PGStore) DB() *sqlx.DB {
	return s.db
}

func (s *PGStore) FindPost(id int64) (*krishimitra.Post, error) {
	post := krishimitra.Post{}
	err := s.db.Get(&post, "SELECT posts.*, users.name as author FROM posts JOIN users ON posts.author_id = users.id WHERE posts.id=$1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, krishimitra.NotFound("post", id)
	}
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return &post, nil
}

// https://www.citusdata.com/blog/2016/03/30/five-ways-to-paginate/
func (s *PGStore) ListPosts(page int, perPage int) ([]*krishimitra.Post, error) {
	posts := []*krishimitra.Post{}
	err := s.db.Select(&posts, "SELECT posts.*, users.name as author FROM posts JOIN users ON posts.author_id = users.id ORDER BY created_at DESC LIMIT $1 OFFSET $2", perPage, page*perPage)
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return posts, nil
}

// postSeenByUserRecord exists to scan the nullable ledger column of the left join.
type postSeenByUserRecord struct {
	krishimitra.Post
	UserID sql.NullInt64 `db:"user_id"`
	Up     sql.NullBool  `db:"up"`
}

func (s *PGStore) ListPostsWithVotes(userID int64, page int, perPage int) ([]*krishimitra.PostSeenByUser, error) {
	records := []*postSeenByUserRecord{}
	err := s.db.Select(&records,
		`SELECT posts.*, users.name as author, votes.user_id as user_id, votes.up as up
		 FROM posts
		 JOIN users ON posts.author_id = users.id
		 LEFT JOIN votes ON votes.post_id = posts.id AND votes.user_id = $1
		 ORDER BY posts.created_at DESC LIMIT $2 OFFSET $3`,
		userID, perPage, page*perPage)
	if err != nil {
		return nil, s.wrapErr(err)
	}

	posts := make([]*krishimitra.PostSeenByUser, len(records))
	for i, record := range records {
		state := krishimitra.NoVote
		if record.Up.Valid {
			if record.Up.Bool {
				state = krishimitra.VotedUp
			} else {
				state = krishimitra.VotedDown
			}
		}
		posts[i] = &krishimitra.PostSeenByUser{Post: record.Post, VoteState: state}
	}

	return posts, nil
}

func (s *PGStore) InsertPost(post *krishimitra.Post) error {
	var id int64
	err := s.db.Get(&id, "INSERT INTO posts (title, body, author_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		post.Title, post.Body, post.AuthorID, post.CreatedAt,
	)
	if err != nil {
		return s.wrapErr(err)
	}

	post.ID = id

	return nil
}

// FindVote returns the caller's ledger state for a post, translating a
// missing row to NoVote.
func (s *PGStore) FindVote(postID int64, userID int64) (krishimitra.VoteState, error) {
	vote := krishimitra.Vote{}
	err := s.db.Get(&vote, "SELECT * FROM votes WHERE post_id=$1 AND user_id=$2", postID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return krishimitra.NoVote, nil
	}
	if err != nil {
		return krishimitra.NoVote, s.wrapErr(err)
	}

	return vote.State(), nil
}

// ApplyVoteTransition applies the ledger write and the counter deltas in one
// transaction. The counter update runs first: it locks the post row,
// verifies the post still exists and increments atomically. The ledger
// write is conditioned on the expected current state; zero rows affected
// means a concurrent request from the same user got there first, the
// transaction rolls back and a ConflictError is returned.
func (s *PGStore) ApplyVoteTransition(postID int64, userID int64, current krishimitra.VoteState, next krishimitra.VoteState, deltaUp int64, deltaDown int64) (int64, int64, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, 0, s.wrapErr(err)
	}
	defer tx.Rollback()

	var counters struct {
		Upvotes   int64 `db:"upvotes"`
		Downvotes int64 `db:"downvotes"`
	}
	err = tx.Get(&counters,
		"UPDATE posts SET upvotes = upvotes + $1, downvotes = downvotes + $2 WHERE id = $3 RETURNING upvotes, downvotes",
		deltaUp, deltaDown, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, krishimitra.NotFound("post", postID)
	}
	if err != nil {
		return 0, 0, s.wrapErr(err)
	}

	var res sql.Result
	switch {
	case current == krishimitra.NoVote:
		res, err = tx.Exec(
			"INSERT INTO votes (post_id, user_id, up, created_at) VALUES ($1, $2, $3, $4) ON CONFLICT (post_id, user_id) DO NOTHING",
			postID, userID, next == krishimitra.VotedUp, krishimitra.NowFunc())
	case next == krishimitra.NoVote:
		res, err = tx.Exec(
			"DELETE FROM votes WHERE post_id = $1 AND user_id = $2 AND up = $3",
			postID, userID, current == krishimitra.VotedUp)
	default:
		res, err = tx.Exec(
			"UPDATE votes SET up = $1 WHERE post_id = $2 AND user_id = $3 AND up = $4",
			next == krishimitra.VotedUp, postID, userID, current == krishimitra.VotedUp)
	}
	if err != nil {
		return 0, 0, s.wrapErr(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, 0, s.wrapErr(err)
	}
	if affected == 0 {
		return 0, 0, krishimitra.Conflict("vote transition")
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, s.wrapErr(err)
	}

	return counters.Upvotes, counters.Downvotes, nil
}

func (s *PGStore) ListComments(postID int64) ([]*krishimitra.Comment, error) {
	comments := []*krishimitra.Comment{}
	err := s.db.Select(&comments, "SELECT comments.*, users.name as author FROM comments JOIN users ON comments.author_id = users.id WHERE post_id=$1 ORDER BY comments.created_at ASC", postID)
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return comments, nil
}

// InsertComment appends the comment and bumps the post's comment counter in
// the same transaction, returning the updated count.
func (s *PGStore) InsertComment(comment *krishimitra.Comment) (int64, error) {
	tx, err := s.db.Beginx()
	if err != nil {
		return 0, s.wrapErr(err)
	}
	defer tx.Rollback()

	var count int64
	err = tx.Get(&count,
		"UPDATE posts SET comments_count = comments_count + 1 WHERE id = $1 RETURNING comments_count",
		comment.PostID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, krishimitra.NotFound("post", comment.PostID)
	}
	if err != nil {
		return 0, s.wrapErr(err)
	}

	var id int64
	err = tx.Get(&id, "INSERT INTO comments (post_id, body, author_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		comment.PostID, comment.Body, comment.AuthorID, comment.CreatedAt,
	)
	if err != nil {
		return 0, s.wrapErr(err)
	}

	if err := tx.Commit(); err != nil {
		return 0, s.wrapErr(err)
	}

	comment.ID = id

	return count, nil
}

func (s *PGStore) FindUserByLogin(name string) (*krishimitra.User, error) {
	user := krishimitra.User{}
	err := s.db.Get(&user, "SELECT * FROM users WHERE name=$1", name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, s.wrapErr(err)
	}

	return &user, nil
}

func (s *PGStore) CreateOrUpdateUser(login string, email string) (int64, error) {
	now := krishimitra.NowFunc()
	var id int64
	err := s.db.Get(&id,
		"INSERT INTO users (name, email, created_at, last_login_at) VALUES ($1, $2, $3, $4) ON CONFLICT (name) DO UPDATE SET last_login_at = $4 RETURNING id",
		login, email, now, now)
	if err != nil {
		return 0, s.wrapErr(err)
	}

	return id, nil
}

// wrapErr translates connection-level failures into the retryable
// StorageUnavailable kind; anything else passes through untouched.
func (s *PGStore) wrapErr(err error) error {
	var netErr *net.OpError
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return krishimitra.Unavailable(err)
	}
	return err
}
