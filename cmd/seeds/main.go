package main

import (
	"fmt"

	"github.com/mischiefkanha/krishimitra"
	"github.com/mischiefkanha/krishimitra/cmd"
	"github.com/mischiefkanha/krishimitra/pgstore"
	"github.com/rs/zerolog/log"
)

var logins = []string{"ramesh", "savita", "arjun", "meera", "dattatray"}

var topics = []struct {
	title string
	body  string
}{
	{
		"Yellowing leaves on my tomato plants, what should I do?",
		"The lower leaves turned yellow over the last week. Soil is black cotton soil, drip irrigation every two days. Is this a nitrogen issue?",
	},
	{
		"Best sowing window for soybean this season",
		"With the monsoon arriving late in Vidarbha, is it still safe to sow JS-335 in the first week of July?",
	},
	{
		"Drip vs flood irrigation for sugarcane",
		"Switched half my plot to drip last year. Water usage dropped a lot but I am unsure about the yield difference. Anyone compared both?",
	},
	{
		"White grubs found while ploughing",
		"Found several white grubs in the top layer. Neighbours say they will destroy groundnut roots. Which treatment works before sowing?",
	},
	{
		"Market rates for onion storage",
		"Rates are low right now. Is it worth holding stock in a kanda chawl for two months or should I sell at the current price?",
	},
	{
		"Organic certification process, worth it for a 2 acre farm?",
		"The paperwork looks heavy and the premium is uncertain. Would like to hear from anyone who went through it.",
	},
}

var replies = []string{
	"Had the same issue last year, a soil test showed nitrogen deficiency. Urea top dressing fixed it in ten days.",
	"Check for root rot first before adding fertilizer, overwatering shows the same symptoms.",
	"Our local krishi kendra recommends waiting for 100mm cumulative rainfall before sowing.",
	"Drip paid for itself in three seasons on my plot, yield was slightly better too.",
	"Apply neem cake while ploughing, it keeps the grubs down without harming earthworms.",
	"Sold half and stored half, spreads the risk when rates are this unpredictable.",
}

func main() {
	cfg := cmd.DefaultConfig()
	err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot read configuration")
	}
	logger := cmd.SetupLogger(cfg)
	logger.Info().Msg("Seeding database")

	// setup database
	pgcfg := fmt.Sprintf(
		"user=%v dbname=%v sslmode=disable password=%v host=%v",
		cfg.DatabaseUser,
		cfg.DatabaseName,
		cfg.DatabasePassword,
		cfg.DatabaseHost,
	)
	pg := pgstore.New(pgcfg)
	err = pg.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("Can't connect to database")
	}

	var users []*krishimitra.User
	for _, l := range logins {
		id, err := pg.CreateOrUpdateUser(l, l+"@gmail.com")
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create user")
		}
		users = append(users, &krishimitra.User{ID: id, Name: l})
	}

	var posts []*krishimitra.Post
	for i, t := range topics {
		author := users[i%len(users)]
		post := krishimitra.NewPost(t.title, t.body, author.ID)
		err = pg.InsertPost(post)
		if err != nil {
			log.Fatal().Err(err).Msg("Can't create post")
		}
		posts = append(posts, post)
	}

	// spread some votes and comments around so the feed looks alive
	for i, post := range posts {
		for j, u := range users {
			if u.ID == post.AuthorID {
				continue
			}

			vote := krishimitra.Up
			if (i+j)%4 == 0 {
				vote = krishimitra.Down
			}
			_, err := krishimitra.CastVote(pg, u, post.ID, vote)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't cast vote")
			}
		}

		for j := 0; j <= i%3; j++ {
			author := users[(i+j+1)%len(users)]
			body := replies[(i+j)%len(replies)]
			_, err := krishimitra.AddComment(pg, author, post.ID, body)
			if err != nil {
				log.Fatal().Err(err).Msg("Can't create comment")
			}
		}
	}
}
