package common

const (
	// DefaultStartDate is the first date requested for every price history.
	DefaultStartDate = "2012-01-01"

	DefaultCatalogURL   = "https://en.wikipedia.org/wiki/List_of_S%26P_500_companies"
	DefaultSymbolColumn = "Symbol"
	DefaultYahooBaseURL = "https://query1.finance.yahoo.com"
	DefaultNewsFeedURL  = "https://finance.yahoo.com/rss/"
	PlaceholderImageURL = "https://via.placeholder.com/150"

	BrowserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	CacheKeyCatalog = "catalog"
	CacheKeySeries  = "series:%s:%s:%s"
)
