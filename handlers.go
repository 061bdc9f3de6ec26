package krishimitra

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/mischiefkanha/krishimitra/authentication"
	"github.com/mischiefkanha/krishimitra/ranking"
)

const (
	maxTitleLength = 100
	rankGravity    = 1.8
	rankTimebase   = 2 // hours
)

// postPresenter is the JSON shape of a post, carrying the denormalized
// aggregates as stored so clients never recompute them.
type postPresenter struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	BodyHTML      string    `json:"body_html"`
	Author        string    `json:"author"`
	Score         int64     `json:"score"`
	Upvotes       int64     `json:"upvotes"`
	Downvotes     int64     `json:"downvotes"`
	CommentsCount int64     `json:"comments_count"`
	VoteState     VoteState `json:"vote_state"`
	CreatedAt     time.Time `json:"created_at"`
}

func newPostPresenter(p *Post, state VoteState) *postPresenter {
	return &postPresenter{
		ID:            p.ID,
		Title:         p.Title,
		Body:          p.Body,
		BodyHTML:      string(renderBody(p.Body)),
		Author:        p.Author,
		Score:         p.Score(),
		Upvotes:       p.Upvotes,
		Downvotes:     p.Downvotes,
		CommentsCount: p.CommentsCount,
		VoteState:     state,
		CreatedAt:     p.CreatedAt,
	}
}

type commentPresenter struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	Body      string    `json:"body"`
	BodyHTML  string    `json:"body_html"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

func newCommentPresenter(c *Comment) *commentPresenter {
	return &commentPresenter{
		ID:        c.ID,
		PostID:    c.PostID,
		Body:      c.Body,
		BodyHTML:  string(renderBody(c.Body)),
		Author:    c.Author,
		CreatedAt: c.CreatedAt,
	}
}

func (s *Server) respondJSON(res http.ResponseWriter, status int, v interface{}) {
	res.Header().Set("Content-Type", "application/json")
	res.WriteHeader(status)
	if err := json.NewEncoder(res).Encode(v); err != nil {
		s.Logger.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondError lets typed errors pick their status code; anything untyped is
// a plain internal error.
func (s *Server) respondError(res http.ResponseWriter, req *http.Request, err error) {
	var responder ErrorResponder
	if errors.As(err, &responder) && responder.RespondError(res, req) {
		s.Logger.Debug().Err(err).Str("path", req.URL.Path).Msg("Request rejected")
		return
	}

	s.Logger.Error().Err(err).Str("path", req.URL.Path).Msg("Request failed")
	http.Error(res, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// HandleOAuthStart handles requests starting the OAauth authentication process.
func (s *Server) HandleOAuthStart() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Start(res, req)
	}
}

// HandleOAuthCallback handles requests of the OAuth provider redirects the user back
// to the app, after successfully authenticating him on its side.
func (s *Server) HandleOAuthCallback() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Callback(res, req, func(u *authentication.User) error {
			_, err := s.store.CreateOrUpdateUser(u.Login, u.Email)
			return err
		})
	}
}

// HandleOAuthDestroy handles requests destroying the current session.
func (s *Server) HandleOAuthDestroy() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		s.authService.Destroy(res, req)
	}
}

// HandleIndex handles requests listing ranked paginated posts. When the
// caller is authenticated each post carries their own vote state, so the
// client can render the vote widgets without extra lookups.
func (s *Server) HandleIndex() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		session := ctxSession(req.Context())

		var page int
		rawPage, ok := req.URL.Query()["page"]
		if ok && len(rawPage) > 0 {
			page, _ = strconv.Atoi(rawPage[0])
		}

		if session != nil {
			userRecord, err := s.store.FindUserByLogin(session.Login)
			if err != nil {
				s.Logger.Error().Err(err).Msg("Failed to fetch user from db")
				http.Error(res, "Failed to fetch user from database", http.StatusInternalServerError)
				return
			}
			if userRecord != nil {
				s.handleAuthenticatedIndex(res, req, userRecord, page)
				return
			}
			// there is a session but no user in the database, wiping the session
			s.authService.Destroy(res, req)
			return
		}

		s.handleUnauthenticatedIndex(res, req, page)
	}
}

func (s *Server) handleAuthenticatedIndex(res http.ResponseWriter, req *http.Request, userRecord *User, page int) {
	posts, err := s.store.ListPostsWithVotes(userRecord.ID, page, s.config.PostsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list posts")
		s.respondError(res, req, err)
		return
	}

	now := NowFunc()
	sort.SliceStable(posts, func(i, j int) bool {
		return ranking.Rank(posts[i], rankGravity, rankTimebase, now) > ranking.Rank(posts[j], rankGravity, rankTimebase, now)
	})

	presenters := make([]*postPresenter, len(posts))
	for i, p := range posts {
		presenters[i] = newPostPresenter(&p.Post, p.VoteState)
	}

	s.respondJSON(res, http.StatusOK, presenters)
}

func (s *Server) handleUnauthenticatedIndex(res http.ResponseWriter, req *http.Request, page int) {
	posts, err := s.store.ListPosts(page, s.config.PostsPerPage)
	if err != nil {
		s.Logger.Error().Err(err).Msg("Failed to list posts")
		s.respondError(res, req, err)
		return
	}

	now := NowFunc()
	sort.SliceStable(posts, func(i, j int) bool {
		return ranking.Rank(posts[i], rankGravity, rankTimebase, now) > ranking.Rank(posts[j], rankGravity, rankTimebase, now)
	})

	presenters := make([]*postPresenter, len(posts))
	for i, p := range posts {
		presenters[i] = newPostPresenter(p, NoVote)
	}

	s.respondJSON(res, http.StatusOK, presenters)
}

// HandleShowPost handles requests to access a particular post.
func (s *Server) HandleShowPost() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		post, err := s.store.FindPost(id)
		if err != nil {
			s.respondError(res, req, err)
			return
		}

		state := NoVote
		session := ctxSession(req.Context())
		if session != nil {
			userRecord, err := s.store.FindUserByLogin(session.Login)
			if err != nil {
				s.Logger.Error().Err(err).Msg("Failed to fetch user from db")
				http.Error(res, "Failed to fetch user from database", http.StatusInternalServerError)
				return
			}
			if userRecord != nil {
				state, err = s.store.FindVote(post.ID, userRecord.ID)
				if err != nil {
					s.respondError(res, req, err)
					return
				}
			}
		}

		s.respondJSON(res, http.StatusOK, newPostPresenter(post, state))
	}
}

// HandleListComments handles requests listing a post's comments.
func (s *Server) HandleListComments() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		post, err := s.store.FindPost(id)
		if err != nil {
			s.respondError(res, req, err)
			return
		}

		comments, err := s.store.ListComments(post.ID)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to list comments")
			s.respondError(res, req, err)
			return
		}

		presenters := make([]*commentPresenter, len(comments))
		for i, c := range comments {
			presenters[i] = newCommentPresenter(c)
		}

		s.respondJSON(res, http.StatusOK, map[string]interface{}{
			"comments":       presenters,
			"comments_count": post.CommentsCount,
		})
	}
}

// HandleSubmitPostAction handles requests submitting a new post. In case
// someone bypasses the client-side form validations with invalid form data,
// it returns a HTTP error.
func (s *Server) HandleSubmitPostAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		err := req.ParseForm()
		if err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse form")
			http.Error(res, "Failed to parse form", http.StatusBadRequest)
			return
		}

		title := strings.TrimSpace(req.FormValue("title"))
		body := strings.TrimSpace(req.FormValue("body"))

		if title == "" || len(title) > maxTitleLength {
			http.Error(res, "", http.StatusBadRequest)
			return
		}
		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		userRecord := ctxUser(req.Context())
		post := NewPost(title, body, userRecord.ID)

		err = s.store.InsertPost(post)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert post")
			s.respondError(res, req, err)
			return
		}

		post.Author = userRecord.Name

		for _, h := range s.postHooks {
			if err := h(post); err != nil {
				s.Logger.Warn().Err(err).Msg("post hook failed")
				http.Error(res, "hook failed", http.StatusInternalServerError)
				return
			}
		}

		s.respondJSON(res, http.StatusCreated, newPostPresenter(post, NoVote))
	}
}

// HandleVotePostAction handles a vote request on a post. The vote type comes
// as the "vote" form value, one of "up" or "down"; anything else is a
// validation error. The response carries the caller's new vote state and the
// post's counters, which the client displays as-is.
func (s *Server) HandleVotePostAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		err = req.ParseForm()
		if err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse form")
			http.Error(res, "Failed to parse form", http.StatusBadRequest)
			return
		}

		requested, ok := ParseVoteType(strings.TrimSpace(req.FormValue("vote")))
		if !ok {
			http.Error(res, "vote must be one of 'up', 'down'", http.StatusBadRequest)
			return
		}

		userRecord := ctxUser(req.Context())

		result, err := CastVote(s.store, userRecord, id, requested)
		if err != nil {
			s.Logger.Debug().Err(err).Int64("post_id", id).Msg("Vote failed")
			s.respondError(res, req, err)
			return
		}

		s.respondJSON(res, http.StatusOK, result)
	}
}

// HandleSubmitCommentAction handles a comment submission on a post. In case
// someone bypasses the client-side form validations with invalid form data,
// it returns a HTTP error.
func (s *Server) HandleSubmitCommentAction() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, params httprouter.Params) {
		id, err := strconv.ParseInt(params.ByName("id"), 10, 64)
		if err != nil {
			s.respondError(res, req, BadRequest(err))
			return
		}

		post, err := s.store.FindPost(id)
		if err != nil {
			s.respondError(res, req, err)
			return
		}

		err = req.ParseForm()
		if err != nil {
			s.Logger.Warn().Err(err).Msg("Failed to parse form")
			http.Error(res, "Failed to parse form", http.StatusBadRequest)
			return
		}

		body := strings.TrimSpace(req.FormValue("body"))
		if body == "" {
			http.Error(res, "", http.StatusBadRequest)
			return
		}

		userRecord := ctxUser(req.Context())

		result, err := AddComment(s.store, userRecord, post.ID, body)
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to insert comment")
			s.respondError(res, req, err)
			return
		}

		for _, h := range s.commentHooks {
			if err := h(post, result.Comment); err != nil {
				s.Logger.Warn().Err(err).Msg("comment hook failed")
				http.Error(res, "hook failed", http.StatusInternalServerError)
				return
			}
		}

		s.respondJSON(res, http.StatusCreated, map[string]interface{}{
			"comment":        newCommentPresenter(result.Comment),
			"comments_count": result.CommentsCount,
		})
	}
}

// HandleNewsFeed serves agricultural news headlines when a fetcher is
// configured.
func (s *Server) HandleNewsFeed() httprouter.Handle {
	return func(res http.ResponseWriter, req *http.Request, _ httprouter.Params) {
		if s.newsFetcher == nil {
			http.Error(res, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}

		headlines, err := s.newsFetcher.Fetch(req.Context())
		if err != nil {
			s.Logger.Error().Err(err).Msg("Failed to fetch news feed")
			http.Error(res, "Failed to fetch news feed", http.StatusBadGateway)
			return
		}

		s.respondJSON(res, http.StatusOK, headlines)
	}
}
