package repository

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/pkg/logger"
	"golang-stock-forecaster/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxDescriptionLength = 280

// NewsRepository reads the latest headlines of an RSS or Atom feed.
type NewsRepository interface {
	FetchLatestHeadlines(ctx context.Context, source string) ([]entity.Headline, error)
}

type newsRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
}

// NewNewsRepository creates a NewsRepository using cfg.News.
func NewNewsRepository(cfg *config.Config, log *logger.Logger) NewsRepository {
	return &newsRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.News.Timeout,
		},
	}
}

// FetchLatestHeadlines returns up to cfg.News.MaxItems headlines from source, newest feed order kept.
// An empty source uses the configured feed.
func (r *newsRepository) FetchLatestHeadlines(ctx context.Context, source string) ([]entity.Headline, error) {
	if source == "" {
		source = r.cfg.News.FeedURL
	}

	fp := gofeed.NewParser()
	fp.Client = r.httpClient
	feed, err := fp.ParseURLWithContext(source, ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse RSS feed", logger.ErrorField(err), logger.StringField("url", source))
		return nil, fmt.Errorf("failed to parse feed %s: %w", source, err)
	}

	sourceName := feed.Title
	if sourceName == "" {
		if u, err := url.Parse(source); err == nil {
			sourceName = u.Hostname()
		}
	}

	items := feed.Items
	if limit := r.cfg.News.MaxItems; limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	headlines := make([]entity.Headline, 0, len(items))
	for _, item := range items {
		if item == nil || strings.TrimSpace(item.Title) == "" {
			continue
		}
		headline := entity.Headline{
			Title:       utils.CleanText(item.Title),
			Link:        item.Link,
			Description: utils.Truncate(htmlToText(item.Description), maxDescriptionLength),
			PublishedAt: item.PublishedParsed,
			Source:      sourceName,
			ImageURL:    feedItemImage(item),
		}

		if r.cfg.News.FetchArticleDetails && headline.Link != "" && (headline.ImageURL == "" || headline.Description == "") {
			r.enrichFromArticle(ctx, &headline)
		}
		if headline.ImageURL == "" {
			headline.ImageURL = r.cfg.News.PlaceholderImage
		}
		headlines = append(headlines, headline)
	}

	return headlines, nil
}

// enrichFromArticle fills a missing image or description from the article page. Failures are
// logged and ignored.
func (r *newsRepository) enrichFromArticle(ctx context.Context, headline *entity.Headline) {
	body, err := getBody(ctx, r.httpClient, r.log, headline.Link, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		r.log.WarnContext(ctx, "Failed to fetch article", logger.ErrorField(err), logger.StringField("url", headline.Link))
		return
	}

	if headline.ImageURL == "" {
		headline.ImageURL = articleImage(body, headline.Link)
	}

	if headline.Description == "" {
		doc, err := readability.NewDocument(string(body))
		if err != nil {
			r.log.WarnContext(ctx, "Failed to extract article content", logger.ErrorField(err), logger.StringField("url", headline.Link))
			return
		}
		headline.Description = utils.Truncate(htmlToText(doc.Content()), maxDescriptionLength)
	}
}

func feedItemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") && enc.URL != "" {
			return enc.URL
		}
	}
	if media, ok := item.Extensions["media"]; ok {
		for _, key := range []string{"content", "thumbnail"} {
			for _, ext := range media[key] {
				if u := ext.Attrs["url"]; u != "" {
					return u
				}
			}
		}
	}
	return ""
}

// articleImage picks og:image, then the first img, resolved against the article URL.
func articleImage(body []byte, articleURL string) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	src, ok := doc.Find(`meta[property="og:image"]`).First().Attr("content")
	if !ok || src == "" {
		src, _ = doc.Find("img[src]").First().Attr("src")
	}
	if src == "" {
		return ""
	}

	base, err := url.Parse(articleURL)
	if err != nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func htmlToText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return utils.CleanText(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return utils.CleanText(s)
	}
	return utils.CleanText(doc.Text())
}
