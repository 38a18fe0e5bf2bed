package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/xhad/aesop/internal/models"
	"github.com/xhad/aesop/pkg/logging"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

var headingPattern = regexp.MustCompile(`^([A-Z\s\p{Z}]+)\n`)

type ScraperConfig struct {
	BaseURL    string
	MaxFables  int
	RateLimit  float64 // requests per second
	Timeout    time.Duration
	UserAgent  string
	SkipErrors bool
	Cache      *PageCache
	Logger     *zap.Logger
	OnProgress func(url string)
}

type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Link is one fable entry on the search results page.
type Link struct {
	Title string
	URL   string
}

func NewWithConfig(config ScraperConfig) (*Scraper, error) {
	if config.BaseURL == "" {
		config.BaseURL = "https://aesopfables.com"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxFables == 0 {
		config.MaxFables = 822
	}
	if config.RateLimit == 0 {
		config.RateLimit = 2 // 2 requests per second by default
	}
	if config.UserAgent == "" {
		config.UserAgent = defaultUserAgent
	}

	parsedURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, err
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("base URL must be absolute: %s", config.BaseURL)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Scraper{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:  logging.OrNop(config.Logger),
	}, nil
}

func (s *Scraper) SearchURL() string {
	return fmt.Sprintf("%s/cgi/asearch.cgi?terms=a+&boolean=as+a+phrase&case=insensitive&first=1&last=%d",
		s.config.BaseURL, s.config.MaxFables)
}

// Scrape fetches the search results and then every linked fable, in page order.
func (s *Scraper) Scrape(ctx context.Context) ([]models.Fable, error) {
	links, err := s.Links(ctx)
	if err != nil {
		return nil, err
	}

	fables := make([]models.Fable, 0, len(links))
	for i, link := range links {
		s.logger.Debug("scraping fable",
			zap.Int("n", i+1),
			zap.Int("total", len(links)),
			zap.String("title", link.Title))

		fable, err := s.ScrapeFable(ctx, link)
		if s.config.OnProgress != nil {
			s.config.OnProgress(link.URL)
		}
		if err != nil {
			if s.config.SkipErrors && ctx.Err() == nil {
				s.logger.Warn("skipping fable", zap.String("url", link.URL), zap.Error(err))
				continue
			}
			return nil, fmt.Errorf("failed to scrape %s: %w", link.URL, err)
		}
		fables = append(fables, fable)
	}

	return fables, nil
}

// Links returns the fable links on the search results page, without repeats.
func (s *Scraper) Links(ctx context.Context) ([]Link, error) {
	searchURL := s.SearchURL()
	s.logger.Info("fetching search results", zap.String("url", searchURL), zap.Int("last", s.config.MaxFables))

	body, err := s.fetch(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search results: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var links []Link
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, selection *goquery.Selection) {
		href, _ := selection.Attr("href")
		if !strings.Contains(href, "aesop1.cgi") {
			return
		}
		title := strings.TrimSpace(selection.Text())
		if title == "" {
			return
		}

		fableURL, err := s.resolve(href)
		if err != nil {
			s.logger.Warn("bad fable link", zap.String("href", href), zap.Error(err))
			return
		}
		if seen[fableURL] {
			return
		}
		seen[fableURL] = true
		links = append(links, Link{Title: title, URL: fableURL})
	})

	s.logger.Info("found fable links", zap.Int("count", len(links)))
	return links, nil
}

// ScrapeFable fetches one fable page and extracts its text.
func (s *Scraper) ScrapeFable(ctx context.Context, link Link) (models.Fable, error) {
	body, err := s.fetch(ctx, link.URL)
	if err != nil {
		return models.Fable{}, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return models.Fable{}, err
	}

	content := extractText(doc)
	title := link.Title
	if m := headingPattern.FindStringSubmatch(content); m != nil {
		title = strings.TrimSpace(m[1])
	}

	return models.Fable{
		URL:           link.URL,
		Title:         title,
		OriginalTitle: link.Title,
		Content:       content,
		WordCount:     len(strings.Fields(content)),
	}, nil
}

func (s *Scraper) resolve(href string) (string, error) {
	if strings.HasPrefix(href, "./") {
		return s.config.BaseURL + "/cgi/" + href[2:], nil
	}

	base, err := url.Parse(s.config.BaseURL + "/cgi/")
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func (s *Scraper) fetch(ctx context.Context, urlStr string) ([]byte, error) {
	if s.config.Cache != nil {
		body, ok, err := s.config.Cache.Get(urlStr)
		if err != nil {
			s.logger.Warn("page cache read failed", zap.String("url", urlStr), zap.Error(err))
		} else if ok {
			return body, nil
		}
	}

	// Apply rate limiting
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.config.UserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d for URL: %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if s.config.Cache != nil {
		if err := s.config.Cache.Put(urlStr, body); err != nil {
			s.logger.Warn("page cache write failed", zap.String("url", urlStr), zap.Error(err))
		}
	}
	return body, nil
}

// extractText drops script and style elements and returns the page text with
// each line trimmed and blank lines removed.
func extractText(doc *goquery.Document) string {
	doc.Find("script, style").Remove()

	lines := strings.Split(doc.Text(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
