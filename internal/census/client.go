package census

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.census.gov"

	broadbandVariable = "S2802_C03_022E"
)

// Options configures a Client. Zero values select defaults.
type Options struct {
	BaseURL           string
	APIKey            string
	Timeout           time.Duration
	RequestsPerMinute int // 0 disables throttling
	Burst             int
	HTTPClient        *http.Client
}

// Client queries the ACS API. It is safe for concurrent use.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	now     func() time.Time

	mu     sync.Mutex
	states map[string]string // lower-cased name -> code
}

func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}

	limit := rate.Inf
	if opts.RequestsPerMinute > 0 {
		limit = rate.Limit(float64(opts.RequestsPerMinute) / 60)
	}
	burst := max(opts.Burst, 1)

	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		http:    opts.HTTPClient,
		limiter: rate.NewLimiter(limit, burst),
		now:     time.Now,
	}
}

// Broadband resolves loc to FIPS codes and fetches its broadband figure.
func (c *Client) Broadband(ctx context.Context, loc Location) (Broadband, error) {
	if loc.State == "" || loc.County == "" {
		return Broadband{}, ErrInvalidLocation
	}

	stateCode, err := c.stateCode(ctx, loc.State)
	if err != nil {
		return Broadband{}, err
	}
	countyCode, err := c.countyCode(ctx, stateCode, loc.County)
	if err != nil {
		return Broadband{}, fmt.Errorf("%s: %w", loc, err)
	}

	query := fmt.Sprintf("get=NAME,%s&for=county:%s&in=state:%s",
		broadbandVariable, url.QueryEscape(countyCode), url.QueryEscape(stateCode))
	rows, err := c.get(ctx, "broadband", "/data/2021/acs/acs1/subject/variables", query)
	if err != nil {
		return Broadband{}, err
	}
	if len(rows) != 2 || len(rows[1]) != 4 {
		return Broadband{}, &DatasourceError{Stage: "broadband", Err: ErrMalformedResponse}
	}

	v := rows[1]
	return Broadband{
		Name:        v[0],
		Percent:     v[1],
		StateCode:   v[2],
		CountyCode:  v[3],
		RetrievedAt: c.now(),
	}, nil
}

func (c *Client) stateCode(ctx context.Context, state string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// Fetched once; a failed fetch leaves states nil so the next call retries.
	if c.states == nil {
		rows, err := c.get(ctx, "states", "/data/2010/dec/sf1", "get=NAME&for=state")
		if err != nil {
			return "", err
		}
		states := make(map[string]string, len(rows))
		for i, row := range rows {
			if i == 0 {
				continue
			}
			if len(row) < 2 {
				return "", &DatasourceError{Stage: "states", Err: ErrMalformedResponse}
			}
			states[strings.ToLower(row[0])] = row[1]
		}
		c.states = states
	}

	code, ok := c.states[state]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrStateNotFound, state)
	}
	return code, nil
}

// countyCode matches county against the part of each county NAME before
// its first comma ("Kent County, Rhode Island" -> "Kent County").
func (c *Client) countyCode(ctx context.Context, stateCode, county string) (string, error) {
	query := "get=NAME&for=county:*&in=state:" + url.QueryEscape(stateCode)
	rows, err := c.get(ctx, "counties", "/data/2010/dec/sf1", query)
	if err != nil {
		return "", err
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) < 3 {
			return "", &DatasourceError{Stage: "counties", Err: ErrMalformedResponse}
		}
		name, _, _ := strings.Cut(row[0], ",")
		if strings.EqualFold(strings.TrimSpace(name), county) {
			return row[2], nil
		}
	}
	return "", ErrCountyNotFound
}

func (c *Client) get(ctx context.Context, stage, path, rawQuery string) ([][]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &DatasourceError{Stage: stage, Err: err}
	}

	if c.apiKey != "" {
		rawQuery += "&key=" + url.QueryEscape(c.apiKey)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+rawQuery, nil)
	if err != nil {
		return nil, &DatasourceError{Stage: stage, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &DatasourceError{Stage: stage, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &DatasourceError{Stage: stage, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	var rows [][]string
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, &DatasourceError{Stage: stage, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	return rows, nil
}
