package newsfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/rs/zerolog"
)

const page = `<html><body>
<article><h2><a href="/news/monsoon-outlook">Monsoon outlook improves for the sowing season</a></h2></article>
<article><h2><a href="https://example.com/news/msp">New MSP rates announced</a></h2></article>
<article><h2><a href="">   </a></h2></article>
</body></html>`

func TestFetch(t *testing.T) {
	c := qt.New(t)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(page))
	}))
	c.Cleanup(ts.Close)

	f := New(ts.URL, "article h2 a", zerolog.Nop())

	headlines, err := f.Fetch(context.Background())
	c.Assert(err, qt.IsNil)
	c.Assert(headlines, qt.HasLen, 2)

	c.Assert(headlines[0].Title, qt.Equals, "Monsoon outlook improves for the sowing season")
	c.Assert(headlines[0].URL, qt.Equals, ts.URL+"/news/monsoon-outlook")
	c.Assert(headlines[1].URL, qt.Equals, "https://example.com/news/msp")
}

func TestFetchErrors(t *testing.T) {
	c := qt.New(t)

	c.Run("non-200 source", func(c *qt.C) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "gone", http.StatusServiceUnavailable)
		}))
		c.Cleanup(ts.Close)

		f := New(ts.URL, "a", zerolog.Nop())
		_, err := f.Fetch(context.Background())
		c.Assert(err, qt.Not(qt.IsNil))
	})

	c.Run("unreachable source", func(c *qt.C) {
		f := New("http://127.0.0.1:1", "a", zerolog.Nop())
		_, err := f.Fetch(context.Background())
		c.Assert(err, qt.Not(qt.IsNil))
	})
}
