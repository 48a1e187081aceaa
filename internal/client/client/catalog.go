package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/pocketlibrary/internal/client/models"
	"github.com/dmitrijs2005/pocketlibrary/internal/logging"
)

const searchFields = "key,title,author_name,first_publish_year,cover_i"

// Catalog is the search surface the sync layer depends on.
type Catalog interface {
	Search(ctx context.Context, query string, limit int) ([]models.CatalogResult, error)
}

// CatalogClient queries an Open Library compatible search API.
type CatalogClient struct {
	baseURL    string
	searchPath string
	httpClient *http.Client
	log        logging.Logger
}

func NewCatalogClient(baseURL, searchPath string, timeout time.Duration, log logging.Logger) *CatalogClient {
	if searchPath == "" {
		searchPath = "/search.json"
	}
	return &CatalogClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		searchPath: "/" + strings.TrimLeft(searchPath, "/"),
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

type searchResponse struct {
	NumFound int         `json:"numFound"`
	Start    int         `json:"start"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear *int     `json:"first_publish_year"`
	CoverI           *int     `json:"cover_i"`
}

// Search runs one catalog query. An empty docs array yields an empty,
// non-nil slice.
func (c *CatalogClient) Search(ctx context.Context, query string, limit int) ([]models.CatalogResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("fields", searchFields)
	params.Set("limit", strconv.Itoa(limit))

	endpoint := c.baseURL + c.searchPath + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &CatalogSearchError{Message: fmt.Sprintf("failed to create request: %v", err)}
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &CatalogSearchError{Message: err.Error()}
	}
	defer resp.Body.Close()

	c.log.Debug(ctx, "catalog search", "query", query, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &CatalogSearchError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}

	results := make([]models.CatalogResult, 0, len(body.Docs))
	for _, d := range body.Docs {
		if d.Key == "" {
			continue
		}
		authors := d.AuthorName
		if authors == nil {
			authors = []string{}
		}
		results = append(results, models.CatalogResult{
			Key:              d.Key,
			Title:            d.Title,
			Authors:          authors,
			FirstPublishYear: d.FirstPublishYear,
			CoverID:          d.CoverI,
		})
	}
	return results, nil
}
