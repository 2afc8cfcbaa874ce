package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelsort/internal/media"
	"reelsort/internal/services"
)

// Searcher defines the metadata-search operations used by recognition.
type Searcher interface {
	Search(ctx context.Context, query string, year int, mediaType media.Type) ([]media.MediaCandidate, error)
	Details(ctx context.Context, tmdbID int64, mediaType media.Type) (*media.MediaCandidate, error)
}

// Client provides access to the TMDB API.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a TMDB client.
func New(apiKey, baseURL, language string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tmdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tmdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		language:   strings.TrimSpace(language),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

type searchResult struct {
	ID               int64    `json:"id"`
	Title            string   `json:"title"`
	Name             string   `json:"name"`
	OriginalTitle    string   `json:"original_title"`
	OriginalName     string   `json:"original_name"`
	Overview         string   `json:"overview"`
	PosterPath       string   `json:"poster_path"`
	ReleaseDate      string   `json:"release_date"`
	FirstAirDate     string   `json:"first_air_date"`
	GenreIDs         []int    `json:"genre_ids"`
	Genres           []genre  `json:"genres"`
	OriginCountry    []string `json:"origin_country"`
	OriginalLanguage string   `json:"original_language"`
	Networks         []named  `json:"networks"`
	Popularity       float64  `json:"popularity"`
	VoteAverage      float64  `json:"vote_average"`
	VoteCount        int64    `json:"vote_count"`
}

type genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type named struct {
	Name string `json:"name"`
}

type searchResponse struct {
	Page         int            `json:"page"`
	Results      []searchResult `json:"results"`
	TotalResults int            `json:"total_results"`
}

// Search queries TMDB for ranked candidates of the given media type. A TV
// query uses first_air_date_year for the year filter, a movie query uses
// primary_release_year. Unknown media types search movies.
func (c *Client) Search(ctx context.Context, query string, year int, mediaType media.Type) ([]media.MediaCandidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "search", "query must not be empty", nil)
	}

	path := "/search/movie"
	yearParam := "primary_release_year"
	if mediaType == media.TypeTV {
		path = "/search/tv"
		yearParam = "first_air_date_year"
	}

	params := url.Values{}
	params.Set("query", query)
	if year > 0 {
		params.Set(yearParam, strconv.Itoa(year))
	}

	var payload searchResponse
	if err := c.get(ctx, path, params, &payload); err != nil {
		return nil, err
	}

	candidates := make([]media.MediaCandidate, 0, len(payload.Results))
	for _, res := range payload.Results {
		candidates = append(candidates, toCandidate(res, mediaType))
	}
	return candidates, nil
}

// Details fetches a single title by TMDB ID. Used for re-identification by
// external ID, where the match is authoritative.
func (c *Client) Details(ctx context.Context, tmdbID int64, mediaType media.Type) (*media.MediaCandidate, error) {
	if tmdbID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "details", "tmdb id must be positive", nil)
	}

	path := fmt.Sprintf("/movie/%d", tmdbID)
	if mediaType == media.TypeTV {
		path = fmt.Sprintf("/tv/%d", tmdbID)
	}

	var payload searchResult
	if err := c.get(ctx, path, url.Values{}, &payload); err != nil {
		return nil, err
	}
	candidate := toCandidate(payload, mediaType)
	return &candidate, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	params.Set("api_key", c.apiKey)
	if c.language != "" {
		params.Set("language", c.language)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "tmdb", "request", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		return services.Wrap(services.ErrRateLimited, "tmdb", "request",
			fmt.Sprintf("tmdb returned 429 (retry-after=%v)", retryAfter), nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrExternalTool, "tmdb", "request",
			fmt.Sprintf("tmdb returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternalTool, "tmdb", "decode", "decode tmdb response", err)
	}
	return nil
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func toCandidate(res searchResult, mediaType media.Type) media.MediaCandidate {
	title := res.Title
	if title == "" {
		title = res.Name
	}
	originalTitle := res.OriginalTitle
	if originalTitle == "" {
		originalTitle = res.OriginalName
	}
	date := res.ReleaseDate
	if date == "" {
		date = res.FirstAirDate
	}

	genres := make([]string, 0, len(res.GenreIDs)+len(res.Genres))
	for _, id := range res.GenreIDs {
		genres = append(genres, GenreName(id))
	}
	for _, g := range res.Genres {
		genres = append(genres, g.Name)
	}

	networks := make([]string, 0, len(res.Networks))
	for _, n := range res.Networks {
		if strings.TrimSpace(n.Name) != "" {
			networks = append(networks, n.Name)
		}
	}

	return media.MediaCandidate{
		TMDBID:        res.ID,
		MediaType:     mediaType,
		Title:         title,
		OriginalTitle: originalTitle,
		Year:          extractYear(date),
		Genres:        genres,
		Countries:     res.OriginCountry,
		Language:      res.OriginalLanguage,
		Networks:      networks,
		Overview:      res.Overview,
		PosterPath:    res.PosterPath,
		Popularity:    res.Popularity,
		VoteAverage:   res.VoteAverage,
		VoteCount:     res.VoteCount,
	}
}

func extractYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}
