// Package memstore provides an in-memory Store, used by unit tests and for
// running the server locally without a database. It honors the same
// conditional-write contract as pgstore: a vote transition whose expected
// current state no longer matches fails with a ConflictError and leaves
// nothing applied.
package memstore

import (
	"sort"
	"sync"

	"github.com/mischiefkanha/krishimitra"
)

type voteKey struct {
	postID int64
	userID int64
}

type MemStore struct {
	mu sync.Mutex

	posts    map[int64]*krishimitra.Post
	votes    map[voteKey]*krishimitra.Vote
	comments map[int64][]*krishimitra.Comment
	users    map[int64]*krishimitra.User
	byLogin  map[string]int64

	nextPostID    int64
	nextVoteID    int64
	nextCommentID int64
	nextUserID    int64
}

func New() *MemStore {
	return &MemStore{
		posts:    map[int64]*krishimitra.Post{},
		votes:    map[voteKey]*krishimitra.Vote{},
		comments: map[int64][]*krishimitra.Comment{},
		users:    map[int64]*krishimitra.User{},
		byLogin:  map[string]int64{},
	}
}

func (s *MemStore) Connect() error { return nil }

func (s *MemStore) FindPost(id int64) (*krishimitra.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[id]
	if !ok {
		return nil, krishimitra.NotFound("post", id)
	}

	p := *post
	return &p, nil
}

func (s *MemStore) ListPosts(page int, perPage int) ([]*krishimitra.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]*krishimitra.Post, 0, len(s.posts))
	for _, post := range s.posts {
		p := *post
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	return paginate(all, page, perPage), nil
}

func (s *MemStore) ListPostsWithVotes(userID int64, page int, perPage int) ([]*krishimitra.PostSeenByUser, error) {
	posts, err := s.ListPosts(page, perPage)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make([]*krishimitra.PostSeenByUser, len(posts))
	for i, p := range posts {
		seen[i] = &krishimitra.PostSeenByUser{
			Post:      *p,
			VoteState: s.votes[voteKey{p.ID, userID}].State(),
		}
	}

	return seen, nil
}

func (s *MemStore) InsertPost(post *krishimitra.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextPostID++
	post.ID = s.nextPostID
	if u, ok := s.users[post.AuthorID]; ok {
		post.Author = u.Name
	}
	p := *post
	s.posts[p.ID] = &p

	return nil
}

func (s *MemStore) FindVote(postID int64, userID int64) (krishimitra.VoteState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.votes[voteKey{postID, userID}].State(), nil
}

func (s *MemStore) ApplyVoteTransition(postID int64, userID int64, current krishimitra.VoteState, next krishimitra.VoteState, deltaUp int64, deltaDown int64) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return 0, 0, krishimitra.NotFound("post", postID)
	}

	key := voteKey{postID, userID}
	if s.votes[key].State() != current {
		return 0, 0, krishimitra.Conflict("vote transition")
	}

	switch next {
	case krishimitra.NoVote:
		delete(s.votes, key)
	default:
		vote := s.votes[key]
		if vote == nil {
			s.nextVoteID++
			vote = &krishimitra.Vote{
				ID:        s.nextVoteID,
				PostID:    postID,
				UserID:    userID,
				CreatedAt: krishimitra.NowFunc(),
			}
			s.votes[key] = vote
		}
		vote.Up = next == krishimitra.VotedUp
	}

	post.Upvotes += deltaUp
	post.Downvotes += deltaDown

	return post.Upvotes, post.Downvotes, nil
}

func (s *MemStore) ListComments(postID int64) ([]*krishimitra.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comments := make([]*krishimitra.Comment, 0, len(s.comments[postID]))
	for _, comment := range s.comments[postID] {
		c := *comment
		comments = append(comments, &c)
	}

	return comments, nil
}

func (s *MemStore) InsertComment(comment *krishimitra.Comment) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[comment.PostID]
	if !ok {
		return 0, krishimitra.NotFound("post", comment.PostID)
	}

	s.nextCommentID++
	comment.ID = s.nextCommentID
	if u, ok := s.users[comment.AuthorID]; ok {
		comment.Author = u.Name
	}
	c := *comment
	s.comments[c.PostID] = append(s.comments[c.PostID], &c)

	post.CommentsCount++

	return post.CommentsCount, nil
}

func (s *MemStore) FindUserByLogin(login string) (*krishimitra.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byLogin[login]
	if !ok {
		return nil, nil
	}

	u := *s.users[id]
	return &u, nil
}

func (s *MemStore) CreateOrUpdateUser(login string, email string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := krishimitra.NowFunc()
	if id, ok := s.byLogin[login]; ok {
		s.users[id].LastLoginAt = now
		return id, nil
	}

	s.nextUserID++
	s.users[s.nextUserID] = &krishimitra.User{
		ID:          s.nextUserID,
		Name:        login,
		Email:       email,
		CreatedAt:   now,
		LastLoginAt: now,
	}
	s.byLogin[login] = s.nextUserID

	return s.nextUserID, nil
}

// VoteCounts recounts the ledger for a post. Tests use it to check the
// denormalized counters against the authoritative rows.
func (s *MemStore) VoteCounts(postID int64) (upvotes int64, downvotes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, vote := range s.votes {
		if key.postID != postID {
			continue
		}
		if vote.Up {
			upvotes++
		} else {
			downvotes++
		}
	}

	return upvotes, downvotes
}

// CommentRows returns the number of comment rows referencing a post.
func (s *MemStore) CommentRows(postID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return int64(len(s.comments[postID]))
}

func paginate(posts []*krishimitra.Post, page int, perPage int) []*krishimitra.Post {
	start := page * perPage
	if start >= len(posts) {
		return []*krishimitra.Post{}
	}
	end := start + perPage
	if end > len(posts) {
		end = len(posts)
	}
	return posts[start:end]
}
