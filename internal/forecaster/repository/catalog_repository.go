package repository

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang-stock-forecaster/internal/entity"
	"golang-stock-forecaster/internal/forecaster/config"
	"golang-stock-forecaster/pkg/logger"

	"github.com/PuerkitoBio/goquery"
)

// CatalogRepository resolves the universe of selectable symbols.
type CatalogRepository interface {
	Resolve(ctx context.Context) (entity.SymbolCatalog, error)
}

type catalogRepository struct {
	cfg        *config.Config
	log        *logger.Logger
	httpClient *http.Client
}

// NewCatalogRepository creates a repository reading the symbol table configured in cfg.Catalog.
func NewCatalogRepository(cfg *config.Config, log *logger.Logger) CatalogRepository {
	return &catalogRepository{
		cfg: cfg,
		log: log,
		httpClient: &http.Client{
			Timeout: cfg.Catalog.Timeout,
		},
	}
}

// Resolve downloads the reference page and extracts the symbol column of its first matching table.
func (r *catalogRepository) Resolve(ctx context.Context) (entity.SymbolCatalog, error) {
	body, err := getBody(ctx, r.httpClient, r.log, r.cfg.Catalog.URL, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return nil, entity.NewPipelineError(entity.ErrSourceUnavailable, entity.StageCatalog,
			fmt.Errorf("failed to fetch symbol catalog: %w", err))
	}

	symbols, err := parseSymbolTable(bytes.NewReader(body), r.cfg.Catalog.SymbolColumn)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to parse symbol catalog", logger.ErrorField(err), logger.StringField("url", r.cfg.Catalog.URL))
		return nil, entity.NewPipelineError(entity.ErrParseFailure, entity.StageCatalog, err)
	}

	catalog := entity.NewSymbolCatalog(symbols)
	r.log.InfoContext(ctx, "Resolved symbol catalog", logger.IntField("count", len(catalog)-1))
	return catalog, nil
}

// parseSymbolTable returns the cells of the named column from the first table whose
// header row contains it.
func parseSymbolTable(r io.Reader, column string) ([]entity.TickerSymbol, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	var (
		symbols []entity.TickerSymbol
		found   bool
	)
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		header := rows.FilterFunction(func(_ int, row *goquery.Selection) bool {
			return row.Find("th").Length() > 0
		}).First()
		if header.Length() == 0 {
			return true
		}

		colIdx := -1
		header.Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
			if strings.EqualFold(strings.TrimSpace(th.Text()), column) {
				colIdx = i
				return false
			}
			return true
		})
		if colIdx < 0 {
			return true
		}

		found = true
		rows.Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= colIdx {
				return
			}
			symbol := strings.TrimSpace(cells.Eq(colIdx).Text())
			if symbol != "" {
				symbols = append(symbols, entity.TickerSymbol(symbol))
			}
		})
		return false
	})

	if !found {
		return nil, fmt.Errorf("no table with a %q column", column)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("table with a %q column has no rows", column)
	}
	return symbols, nil
}
