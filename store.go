package krishimitra

// Store is the persistence boundary of the forum. Implementations must make
// ApplyVoteTransition and InsertComment single units of work: the ledger or
// comment write and the matching counter update land together or not at all,
// and counter updates must be atomic increments, never read-modify-write in
// application code.
type Store interface {
	Connect() error

	FindPost(id int64) (*Post, error)
	ListPosts(page int, perPage int) ([]*Post, error)
	ListPostsWithVotes(userID int64, page int, perPage int) ([]*PostSeenByUser, error)
	InsertPost(post *Post) error

	// FindVote returns the caller's current ledger state for a post,
	// translating a missing row to NoVote.
	FindVote(postID int64, userID int64) (VoteState, error)

	// ApplyVoteTransition moves the (user, post) ledger entry from current to
	// next and applies the counter deltas to the post, atomically. The ledger
	// write is conditioned on current still being the stored state; if a
	// concurrent request got there first, it returns a ConflictError and
	// nothing is applied. It returns the post's updated counters.
	ApplyVoteTransition(postID int64, userID int64, current VoteState, next VoteState, deltaUp int64, deltaDown int64) (upvotes int64, downvotes int64, err error)

	ListComments(postID int64) ([]*Comment, error)

	// InsertComment appends the comment and increments the post's comment
	// counter in the same unit of work, returning the updated count. It
	// returns a NotFoundError if the post is gone at write time.
	InsertComment(comment *Comment) (commentsCount int64, err error)

	FindUserByLogin(login string) (*User, error)
	CreateOrUpdateUser(login string, email string) (int64, error)
}
