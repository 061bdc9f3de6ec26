package pgstore

import (
	"errors"
	"testing"

	"github.com/mischiefkanha/krishimitra"

	qt "github.com/frankban/quicktest"
)

func TestPGStore(t *testing.T) {
	c := qt.New(t)
	store := New("user=postgres dbname=krishimitra_test sslmode=disable password=postgres host=127.0.0.1")
	c.Assert(store.Connect(), qt.IsNil)

	truncate := func(c *qt.C) {
		c.Cleanup(func() {
			store.DB().MustExec("TRUNCATE TABLE posts CASCADE;")
			store.DB().MustExec("TRUNCATE TABLE comments CASCADE;")
			store.DB().MustExec("TRUNCATE TABLE users CASCADE;")
			store.DB().MustExec("TRUNCATE TABLE votes CASCADE;")
		})
	}

	seed := func(c *qt.C) (*krishimitra.Post, int64) {
		userID, err := store.CreateOrUpdateUser("radha", "radha@example.com")
		c.Assert(err, qt.IsNil)

		post := krishimitra.NewPost("Leaf curl on my tomato crop", "Any advice?", userID)
		err = store.InsertPost(post)
		c.Assert(err, qt.IsNil)
		c.Assert(post.ID, qt.Not(qt.Equals), int64(0))

		return post, userID
	}

	c.Run("InsertPost", func(c *qt.C) {
		truncate(c)

		post, _ := seed(c)

		found, err := store.FindPost(post.ID)
		c.Assert(err, qt.IsNil)
		c.Assert(found.Title, qt.Equals, "Leaf curl on my tomato crop")
		c.Assert(found.Author, qt.Equals, "radha")
		c.Assert(found.Upvotes, qt.Equals, int64(0), qt.Commentf("a fresh post has no engagement yet"))
		c.Assert(found.Downvotes, qt.Equals, int64(0))
		c.Assert(found.CommentsCount, qt.Equals, int64(0))
	})

	c.Run("Find non-existing post", func(c *qt.C) {
		_, err := store.FindPost(666)
		var notFound *krishimitra.NotFoundError
		c.Assert(errors.As(err, &notFound), qt.IsTrue)
	})

	c.Run("ApplyVoteTransition", func(c *qt.C) {
		c.Run("insert, switch and delete the ledger row", func(c *qt.C) {
			truncate(c)

			post, userID := seed(c)

			up, down, err := store.ApplyVoteTransition(post.ID, userID, krishimitra.NoVote, krishimitra.VotedUp, 1, 0)
			c.Assert(err, qt.IsNil)
			c.Assert(up, qt.Equals, int64(1))
			c.Assert(down, qt.Equals, int64(0))

			state, err := store.FindVote(post.ID, userID)
			c.Assert(err, qt.IsNil)
			c.Assert(state, qt.Equals, krishimitra.VotedUp)

			up, down, err = store.ApplyVoteTransition(post.ID, userID, krishimitra.VotedUp, krishimitra.VotedDown, -1, 1)
			c.Assert(err, qt.IsNil)
			c.Assert(up, qt.Equals, int64(0))
			c.Assert(down, qt.Equals, int64(1))

			up, down, err = store.ApplyVoteTransition(post.ID, userID, krishimitra.VotedDown, krishimitra.NoVote, 0, -1)
			c.Assert(err, qt.IsNil)
			c.Assert(up, qt.Equals, int64(0))
			c.Assert(down, qt.Equals, int64(0))

			state, err = store.FindVote(post.ID, userID)
			c.Assert(err, qt.IsNil)
			c.Assert(state, qt.Equals, krishimitra.NoVote)

			var rows int64
			err = store.DB().Get(&rows, "SELECT COUNT(*) FROM votes WHERE post_id = $1", post.ID)
			c.Assert(err, qt.IsNil)
			c.Assert(rows, qt.Equals, int64(0), qt.Commentf("removing a vote must delete the ledger row"))
		})

		c.Run("stale expectation rolls everything back", func(c *qt.C) {
			truncate(c)

			post, userID := seed(c)

			_, _, err := store.ApplyVoteTransition(post.ID, userID, krishimitra.NoVote, krishimitra.VotedUp, 1, 0)
			c.Assert(err, qt.IsNil)

			_, _, err = store.ApplyVoteTransition(post.ID, userID, krishimitra.NoVote, krishimitra.VotedUp, 1, 0)
			var conflict *krishimitra.ConflictError
			c.Assert(errors.As(err, &conflict), qt.IsTrue)

			found, err := store.FindPost(post.ID)
			c.Assert(err, qt.IsNil)
			c.Assert(found.Upvotes, qt.Equals, int64(1), qt.Commentf("the conflicted transaction must not leak its counter delta"))
		})

		c.Run("missing post", func(c *qt.C) {
			truncate(c)

			_, userID := seed(c)

			_, _, err := store.ApplyVoteTransition(666, userID, krishimitra.NoVote, krishimitra.VotedUp, 1, 0)
			var notFound *krishimitra.NotFoundError
			c.Assert(errors.As(err, &notFound), qt.IsTrue)

			var rows int64
			err = store.DB().Get(&rows, "SELECT COUNT(*) FROM votes WHERE post_id = 666")
			c.Assert(err, qt.IsNil)
			c.Assert(rows, qt.Equals, int64(0))
		})
	})

	c.Run("InsertComment", func(c *qt.C) {
		c.Run("OK", func(c *qt.C) {
			truncate(c)

			post, userID := seed(c)

			comment := krishimitra.NewComment(post.ID, "Try neem oil spray.", userID)
			count, err := store.InsertComment(comment)
			c.Assert(err, qt.IsNil)
			c.Assert(count, qt.Equals, int64(1))
			c.Assert(comment.ID, qt.Not(qt.Equals), int64(0))

			found, err := store.FindPost(post.ID)
			c.Assert(err, qt.IsNil)
			c.Assert(found.CommentsCount, qt.Equals, int64(1))

			comments, err := store.ListComments(post.ID)
			c.Assert(err, qt.IsNil)
			c.Assert(comments, qt.HasLen, 1)
			c.Assert(comments[0].Author, qt.Equals, "radha")
		})

		c.Run("missing post inserts nothing", func(c *qt.C) {
			truncate(c)

			_, userID := seed(c)

			comment := krishimitra.NewComment(666, "lost", userID)
			_, err := store.InsertComment(comment)
			var notFound *krishimitra.NotFoundError
			c.Assert(errors.As(err, &notFound), qt.IsTrue)

			var rows int64
			err = store.DB().Get(&rows, "SELECT COUNT(*) FROM comments WHERE post_id = 666")
			c.Assert(err, qt.IsNil)
			c.Assert(rows, qt.Equals, int64(0))
		})
	})

	c.Run("ListPostsWithVotes", func(c *qt.C) {
		truncate(c)

		post, userID := seed(c)
		otherID, err := store.CreateOrUpdateUser("bhim", "bhim@example.com")
		c.Assert(err, qt.IsNil)

		_, _, err = store.ApplyVoteTransition(post.ID, userID, krishimitra.NoVote, krishimitra.VotedUp, 1, 0)
		c.Assert(err, qt.IsNil)

		seen, err := store.ListPostsWithVotes(userID, 0, 10)
		c.Assert(err, qt.IsNil)
		c.Assert(seen, qt.HasLen, 1)
		c.Assert(seen[0].VoteState, qt.Equals, krishimitra.VotedUp)

		seen, err = store.ListPostsWithVotes(otherID, 0, 10)
		c.Assert(err, qt.IsNil)
		c.Assert(seen[0].VoteState, qt.Equals, krishimitra.NoVote)
	})

	c.Run("Getting a user", func(c *qt.C) {
		truncate(c)

		_, err := store.CreateOrUpdateUser("radha", "radha@example.com")
		c.Assert(err, qt.IsNil)

		c.Run("OK", func(c *qt.C) {
			user, err := store.FindUserByLogin("radha")
			c.Assert(err, qt.IsNil)
			c.Assert(user, qt.Not(qt.IsNil))
		})

		c.Run("non-existing", func(c *qt.C) {
			user, err := store.FindUserByLogin("non-existing")
			c.Assert(err, qt.IsNil)
			c.Assert(user, qt.IsNil)
		})
	})
}
