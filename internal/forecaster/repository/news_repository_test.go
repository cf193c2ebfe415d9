package repository

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-stock-forecaster/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
<channel>
<title>Yahoo Finance</title>
<item>
  <title>Stocks rally on rate cut hopes</title>
  <link>{{BASE}}/article/1</link>
  <description>&lt;p&gt;Markets   rose &lt;b&gt;sharply&lt;/b&gt;&lt;/p&gt;</description>
  <pubDate>Mon, 01 Jan 2024 10:00:00 GMT</pubDate>
  <media:content url="https://img.example.com/1.jpg" medium="image"/>
</item>
<item>
  <title>Oil slips</title>
  <link>{{BASE}}/article/2</link>
  <pubDate>Mon, 01 Jan 2024 09:00:00 GMT</pubDate>
</item>
<item>
  <title>Third story</title>
  <link>{{BASE}}/article/3</link>
</item>
</channel>
</rss>`

const articlePage = `<html><head><meta property="og:image" content="/images/oil.png"></head>
<body><article>
<p>Crude prices slipped on Monday as inventories grew more than expected across the main hubs, with traders pointing to weaker refinery demand.</p>
<p>Analysts said the move, the largest daily drop in a month, came after a government report showed stockpiles rising for a third week, while production held near record levels.</p>
</article></body></html>`

func newsServer(t *testing.T) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rss":
			w.Header().Set("Content-Type", "application/rss+xml")
			_, _ = w.Write([]byte(strings.ReplaceAll(feedTemplate, "{{BASE}}", srv.URL)))
		case "/article/2":
			_, _ = w.Write([]byte(articlePage))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return srv
}

func TestNewsRepository_FetchLatestHeadlines(t *testing.T) {
	srv := newsServer(t)
	defer srv.Close()

	cfg := testConfig()
	cfg.News.FeedURL = srv.URL + "/rss"
	cfg.News.MaxItems = 2
	repo := NewNewsRepository(cfg, logger.NewNop())

	headlines, err := repo.FetchLatestHeadlines(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, headlines, 2)

	first := headlines[0]
	assert.Equal(t, "Stocks rally on rate cut hopes", first.Title)
	assert.Equal(t, "Markets rose sharply", first.Description)
	assert.Equal(t, "https://img.example.com/1.jpg", first.ImageURL)
	assert.Equal(t, "Yahoo Finance", first.Source)
	require.NotNil(t, first.PublishedAt)

	second := headlines[1]
	assert.Equal(t, "Oil slips", second.Title)
	assert.Empty(t, second.Description)
	assert.Equal(t, cfg.News.PlaceholderImage, second.ImageURL)
}

func TestNewsRepository_FetchArticleDetails(t *testing.T) {
	srv := newsServer(t)
	defer srv.Close()

	cfg := testConfig()
	cfg.News.MaxItems = 3
	cfg.News.FetchArticleDetails = true
	repo := NewNewsRepository(cfg, logger.NewNop())

	headlines, err := repo.FetchLatestHeadlines(context.Background(), srv.URL+"/rss")
	require.NoError(t, err)
	require.Len(t, headlines, 3)

	assert.Equal(t, srv.URL+"/images/oil.png", headlines[1].ImageURL)
	assert.Contains(t, headlines[1].Description, "Crude prices slipped")

	// article 3 is missing upstream; the headline survives with the placeholder
	assert.Equal(t, cfg.News.PlaceholderImage, headlines[2].ImageURL)
}

func TestNewsRepository_FeedUnavailable(t *testing.T) {
	srv := newsServer(t)
	defer srv.Close()

	repo := NewNewsRepository(testConfig(), logger.NewNop())
	_, err := repo.FetchLatestHeadlines(context.Background(), srv.URL+"/missing")
	assert.Error(t, err)
}
