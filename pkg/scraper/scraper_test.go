package scraper

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<html><body>
<nav><p>Home | Events | A navigation line long enough to pass the length filter</p></nav>
<article>
  <p>Short caption</p>
  <p>The harbour jazz night brings five local bands to the old pier every Saturday in March.</p>
  <p>Food trucks open at six and the first set starts at seven thirty, rain or shine.</p>
</article>
</body></html>`

func TestArticle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, page)
	}))
	defer srv.Close()

	s := New()
	text, err := s.Article(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Equal(t,
		"The harbour jazz night brings five local bands to the old pier every Saturday in March.\n\n"+
			"Food trucks open at six and the first set starts at seven thirty, rain or shine.",
		text)

	// The same page can be scraped again.
	again, err := s.Article(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, text, again)
}

func TestArticle_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Article(context.Background(), srv.URL)
	assert.Error(t, err)
}
