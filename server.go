package krishimitra

import (
	"context"
	"encoding/gob"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/mischiefkanha/krishimitra/authentication"
	"github.com/mischiefkanha/krishimitra/newsfeed"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	_ "github.com/lib/pq"
)

// A PostHook runs after a post was successfully submitted, for side effects
// like community notifications. A failing hook surfaces as an error to the
// submitter but the post stays.
type PostHook func(*Post) error

// A CommentHook runs after a comment was successfully appended.
type CommentHook func(*Post, *Comment) error

type ServerConfig struct {
	Addr         string
	PostsPerPage int
}

type Server struct {
	Logger          zerolog.Logger
	config          *ServerConfig
	store           Store
	router          *httprouter.Router
	done            chan struct{}
	idleConnsClosed chan struct{}
	authService     authentication.AuthService
	newsFetcher     *newsfeed.Fetcher
	postHooks       []PostHook
	commentHooks    []CommentHook
}

func init() {
	// be able to serialize session data in a cookie
	gob.Register(&oauth2.Token{})
}

func NewServer(config *ServerConfig, logger zerolog.Logger, store Store, authService authentication.AuthService) *Server {
	return &Server{
		config:          config,
		store:           store,
		authService:     authService,
		router:          httprouter.New(),
		Logger:          logger,
		done:            make(chan struct{}),
		idleConnsClosed: make(chan struct{}),
	}
}

// AddPostHook registers a hook running after each successful post submission.
func (s *Server) AddPostHook(h PostHook) {
	s.postHooks = append(s.postHooks, h)
}

// AddCommentHook registers a hook running after each successful comment.
func (s *Server) AddCommentHook(h CommentHook) {
	s.commentHooks = append(s.commentHooks, h)
}

// SetNewsFetcher enables the /news endpoint, serving headlines from the
// given fetcher.
func (s *Server) SetNewsFetcher(f *newsfeed.Fetcher) {
	s.newsFetcher = f
}

func (s *Server) Prepare() error {
	// database
	err := s.store.Connect()
	if err != nil {
		return err
	}

	// routes
	s.router.GET("/oauth/start", s.HandleOAuthStart())
	s.router.GET("/oauth/authorize", s.HandleOAuthCallback())
	s.router.GET("/oauth/destroy", s.HandleOAuthDestroy())
	s.router.GET("/news", s.HandleNewsFeed())

	withMiddlewares(func(wrap middleware) {
		s.router.GET("/posts", wrap(s.HandleIndex()))
		s.router.GET("/posts/:id", wrap(s.HandleShowPost()))
		s.router.GET("/posts/:id/comments", wrap(s.HandleListComments()))
	}, s.loadSessionMiddleware())

	withMiddlewares(func(wrap middleware) {
		s.router.POST("/posts", wrap(s.HandleSubmitPostAction()))
		s.router.POST("/posts/:id/votes", wrap(s.HandleVotePostAction()))
		s.router.POST("/posts/:id/comments", wrap(s.HandleSubmitCommentAction()))
	}, s.loadSessionMiddleware(), s.loadUserMiddleware())

	return nil
}

func (s *Server) Start() error {
	httpServer := http.Server{Addr: s.config.Addr, Handler: s}

	go func() {
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			// should probably bubble this up
			s.Logger.Fatal().Err(err).Msg("Cannot listen")
		}
	}()

	<-s.done

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return err
	}
	close(s.idleConnsClosed)

	return nil
}

func (s *Server) Stop() {
	close(s.done)
	<-s.idleConnsClosed
}

func (s *Server) ServeHTTP(res http.ResponseWriter, req *http.Request) {
	s.router.ServeHTTP(res, req)
}
