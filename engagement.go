package krishimitra

// maxVoteAttempts bounds the optimistic retry loop in CastVote. Conflicts
// only happen when the same user races their own requests on one post, so
// one retry is almost always enough.
const maxVoteAttempts = 3

// A VoteResult reflects a settled vote back to the caller: the user's new
// ledger state and the post's counters as stored. Clients display these
// values directly instead of recomputing them.
type VoteResult struct {
	State     VoteState `json:"state"`
	Upvotes   int64     `json:"upvotes"`
	Downvotes int64     `json:"downvotes"`
}

// A CommentResult carries the appended comment and the post's updated
// comment count.
type CommentResult struct {
	Comment       *Comment `json:"comment"`
	CommentsCount int64    `json:"comments_count"`
}

// CastVote runs one vote transition for a user on a post: read the current
// ledger state, compute the next state and counter deltas, and apply both as
// one unit through the store. A ConflictError from the store means another
// request from the same user won the race; the whole sequence is retried
// from a fresh read, a bounded number of times.
func CastVote(store Store, user *User, postID int64, requested VoteType) (*VoteResult, error) {
	if user == nil {
		return nil, NotAuthenticated()
	}

	var lastErr error
	for attempt := 0; attempt < maxVoteAttempts; attempt++ {
		current, err := store.FindVote(postID, user.ID)
		if err != nil {
			return nil, err
		}

		next, deltaUp, deltaDown := Transition(current, requested)

		upvotes, downvotes, err := store.ApplyVoteTransition(postID, user.ID, current, next, deltaUp, deltaDown)
		if err == nil {
			return &VoteResult{State: next, Upvotes: upvotes, Downvotes: downvotes}, nil
		}
		if !IsRetryable(err) {
			return nil, err
		}

		lastErr = err
	}

	return nil, lastErr
}

// AddComment appends a comment for a user on a post and returns the post's
// updated comment count. The insert and the counter bump are one unit of
// work in the store, so the count moves if and only if the comment row
// landed.
func AddComment(store Store, user *User, postID int64, body string) (*CommentResult, error) {
	if user == nil {
		return nil, NotAuthenticated()
	}

	comment := NewComment(postID, body, user.ID)
	count, err := store.InsertComment(comment)
	if err != nil {
		return nil, err
	}

	comment.Author = user.Name
	return &CommentResult{Comment: comment, CommentsCount: count}, nil
}
