package main

import (
	"fmt"

	"github.com/mischiefkanha/krishimitra"
	"github.com/mischiefkanha/krishimitra/authentication/github_auth"
	"github.com/mischiefkanha/krishimitra/cmd"
	"github.com/mischiefkanha/krishimitra/newsfeed"
	"github.com/mischiefkanha/krishimitra/pgstore"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)

	// setup authentication
	ll := logger.With().Str("component", "github auth").Logger()
	authService := github_auth.New(cfg.ServerSecret, cfg.GithubClientID, cfg.GithubClientSecret, ll)

	// fire the server
	s := krishimitra.NewServer(&krishimitra.ServerConfig{Addr: cfg.Addr, PostsPerPage: cfg.PostsPerPage}, logger, pg, authService)

	if cfg.NewsFeedURL != "" {
		nl := logger.With().Str("component", "newsfeed").Logger()
		s.SetNewsFetcher(newsfeed.New(cfg.NewsFeedURL, cfg.NewsFeedSelector, nl))
	}

	if cfg.SlackWebhookURL != "" {
		sl := logger.With().Str("component", "slack").Logger()
		s.AddPostHook(krishimitra.NewSlackPostHook(cfg.SlackWebhookURL, sl))
	}

	err = s.Prepare()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot prepare server")
	}

	err = s.Start()
	if err != nil {
		logger.Fatal().Err(err).Msg("Cannot start server")
	}
}
