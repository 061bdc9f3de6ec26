package integration

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"

	qt "github.com/frankban/quicktest"
	"github.com/gorilla/sessions"
	"github.com/jmoiron/sqlx"
	"github.com/mischiefkanha/krishimitra"
	"github.com/mischiefkanha/krishimitra/authentication/fake_auth"
	"github.com/mischiefkanha/krishimitra/pgstore"
	"github.com/rs/zerolog"
)

const (
	dbString       = "user=postgres dbname=krishimitra_test sslmode=disable password=postgres host=127.0.0.1"
	testServerHost = "localhost:8081"
)

func truncateDatabase(db *sqlx.DB) {
	db.MustExec("TRUNCATE TABLE posts CASCADE;")
	db.MustExec("TRUNCATE TABLE comments CASCADE;")
	db.MustExec("TRUNCATE TABLE users CASCADE;")
	db.MustExec("TRUNCATE TABLE votes CASCADE;")
}

// testingLogWriter is an output target for zerolog which will print on the testing logger.
type testingLogWriter struct {
	c *qt.C
}

// Write outputs on the passed bytes on the test logger
func (l *testingLogWriter) Write(p []byte) (n int, err error) {
	str := string(p[0 : len(p)-1]) // drop the final \n
	l.c.Log(str)
	return len(p), nil
}

// A struct to hold the server and its components.
// Provides a few helpers for convenience.
type testContext struct {
	c          *qt.C
	server     *krishimitra.Server
	testServer *httptest.Server
	pgStore    *pgstore.PGStore
}

// newTestContext creates a server instance with its component initialized for integration testing.
func newTestContext(c *qt.C) *testContext {
	tc := testContext{c: c}

	w := testingLogWriter{c}
	output := zerolog.ConsoleWriter{Out: &w, NoColor: true}
	logger := zerolog.New(output)

	tc.pgStore = pgstore.New(dbString)
	sessionStore := sessions.NewCookieStore([]byte("test"))
	fakeAuth := fake_auth.New(sessionStore, logger)

	tc.server = krishimitra.NewServer(
		&krishimitra.ServerConfig{Addr: testServerHost, PostsPerPage: 3},
		logger,
		tc.pgStore,
		fakeAuth,
	)
	tc.testServer = httptest.NewServer(tc.server)

	fakeAuth.SetServerURL(tc.testServer.URL)

	return &tc
}

// url returns an url to the test server based on the given path
func (tc *testContext) url(path string) string {
	return tc.testServer.URL + path
}

// prepareServer boots up the server and sets up its teardown for the current test
func (tc *testContext) prepareServer() {
	tc.c.Assert(tc.server.Prepare(), qt.IsNil, qt.Commentf("couldn't prepare the server"))
	tc.c.Cleanup(func() {
		// kill the server
		tc.testServer.Close()

		// restore the db to its pristine state
		truncateDatabase(tc.pgStore.DB())
	})
}

func (tc *testContext) createUser(login string) int64 {
	id, err := tc.pgStore.CreateOrUpdateUser(login, login+"@email.com")
	tc.c.Assert(err, qt.IsNil)
	return id
}

func (tc *testContext) newHTTPClient() *http.Client {
	jar, err := cookiejar.New(nil)
	tc.c.Assert(err, qt.IsNil)

	return &http.Client{
		Jar: jar,
	}
}

// newAuthenticatedClient returns a client logged in through the fake auth
// service. Each call yields a distinct user.
func (tc *testContext) newAuthenticatedClient() *http.Client {
	client := tc.newHTTPClient()
	resp, err := client.Get(tc.url("/oauth/start"))
	tc.c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	tc.c.Assert(resp.StatusCode, qt.Equals, 200)
	return client
}

// submitPost creates a post through the API and returns its id.
func (tc *testContext) submitPost(client *http.Client, title string, body string) int64 {
	resp, err := client.PostForm(tc.url("/posts"), url.Values{
		"title": []string{title},
		"body":  []string{body},
	})
	tc.c.Assert(err, qt.IsNil)
	defer resp.Body.Close()
	tc.c.Assert(resp.StatusCode, qt.Equals, http.StatusCreated)

	var post struct {
		ID int64 `json:"id"`
	}
	decodeJSON(tc.c, resp, &post)
	return post.ID
}

func decodeJSON(c *qt.C, resp *http.Response, v interface{}) {
	c.Assert(json.NewDecoder(resp.Body).Decode(v), qt.IsNil)
}
