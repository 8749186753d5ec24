// Package census fetches household broadband coverage from the US Census
// Bureau's American Community Survey API.
//
// The ACS API is addressed by numeric FIPS codes. A Client resolves state
// and county names to codes on demand: state codes are fetched once per
// Client, county codes once per lookup. Wrap a Client in a CachingSource to
// avoid repeated round trips for the same location.
package census

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidLocation   = errors.New("state and county are both required")
	ErrStateNotFound     = errors.New("state not found")
	ErrCountyNotFound    = errors.New("county not found")
	ErrMalformedResponse = errors.New("malformed response from ACS API")
)

// DatasourceError reports a failure talking to the ACS API, as opposed to a
// location the API does not know.
type DatasourceError struct {
	Stage string // states, counties, broadband
	Err   error
}

func (e *DatasourceError) Error() string {
	return fmt.Sprintf("census %s: %v", e.Stage, e.Err)
}

func (e *DatasourceError) Unwrap() error {
	return e.Err
}

// Location identifies a county within a state. Names are stored
// lower-cased so equal places compare equal regardless of input case.
type Location struct {
	State  string `json:"state"`
	County string `json:"county"`
}

// NewLocation normalizes and validates a state/county pair.
func NewLocation(state, county string) (Location, error) {
	state = strings.ToLower(strings.TrimSpace(state))
	county = strings.ToLower(strings.TrimSpace(county))
	if state == "" || county == "" {
		return Location{}, ErrInvalidLocation
	}
	return Location{State: state, County: county}, nil
}

func (l Location) String() string {
	return l.County + ", " + l.State
}

// Broadband is the share of households with a broadband subscription
// (ACS subject variable S2802_C03_022E) for one county.
type Broadband struct {
	Name        string    `json:"name"`
	Percent     string    `json:"broadband"`
	StateCode   string    `json:"stateCode"`
	CountyCode  string    `json:"countyCode"`
	RetrievedAt time.Time `json:"retrievedAt"`
}

// Source provides broadband data for a location.
type Source interface {
	Broadband(ctx context.Context, loc Location) (Broadband, error)
}
