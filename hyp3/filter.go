package hyp3

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/example/go-hyp3/hyp3/model"
	"github.com/example/go-hyp3/hyp3/search"
)

// ErrNoAcquisitionDate indicates a product name carries no recognizable
// acquisition date token.
var ErrNoAcquisitionDate = errors.New("hyp3: no acquisition date in product name")

// dateToken matches acquisition date tokens embedded in product names,
// either bare (20200101) or with a time suffix (20200101T170133).
var dateToken = regexp.MustCompile(`^(\d{8})(T\d{6})?$`)

// AcquisitionDate extracts the acquisition date embedded in a product name.
// GAMMA-style names use underscore-separated tokens; S1TBX-style names use
// dashes. The date token is located by pattern rather than position, so both
// conventions parse with the same code path.
func AcquisitionDate(name string) (time.Time, error) {
	tokens := strings.Split(name, "_")
	if len(tokens) == 1 {
		tokens = strings.Split(name, "-")
	}
	for _, token := range tokens {
		m := dateToken.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		t, err := time.Parse("20060102", m[1])
		if err != nil {
			continue
		}
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrNoAcquisitionDate, name)
}

// ValidDateRange reports whether both dates are set and start does not
// follow end.
func ValidDateRange(start, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	return !start.After(end)
}

// FilterDateRange returns the products whose acquisition date falls inside
// [start, end). Products without a parseable date are dropped with an error.
func FilterDateRange(products []model.Product, start, end time.Time) ([]model.Product, error) {
	var filtered []model.Product
	for _, product := range products {
		date, err := AcquisitionDate(product.Name)
		if err != nil {
			return nil, err
		}
		if !date.Before(start) && date.Before(end) {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

// NormalizeFlightDirection maps the accepted shorthand values onto the
// canonical search API form.
func NormalizeFlightDirection(value string) (search.FlightDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "A", "ASC", "ASCENDING":
		return search.FlightDirectionAscending, nil
	case "D", "DESC", "DESCENDING":
		return search.FlightDirectionDescending, nil
	default:
		return "", fmt.Errorf("hyp3: invalid flight direction %q (want A, ASC, ASCENDING, D, DESC, or DESCENDING)", value)
	}
}

// GranuleChecker verifies a granule against search API filters. *Client
// satisfies it.
type GranuleChecker interface {
	GranuleExists(ctx context.Context, granule string, params search.Params) (bool, error)
}

// FilterGranules keeps the products whose source granule matches the given
// search parameters. The granule name is the product name up to the first
// dash, mirroring how HyP3 derives product names from scene names.
func FilterGranules(ctx context.Context, checker GranuleChecker, products []model.Product, params search.Params) ([]model.Product, error) {
	var filtered []model.Product
	for _, product := range products {
		granule := GranuleName(product.Name)
		ok, err := checker.GranuleExists(ctx, granule, params)
		if err != nil {
			return nil, fmt.Errorf("hyp3: check granule %s: %w", granule, err)
		}
		if ok {
			filtered = append(filtered, product)
		}
	}
	return filtered, nil
}

// FilterFlightDirection keeps the products whose source granule was acquired
// in the given flight direction.
func FilterFlightDirection(ctx context.Context, checker GranuleChecker, products []model.Product, direction search.FlightDirection) ([]model.Product, error) {
	params := search.New()
	params.FlightDirection = direction
	return FilterGranules(ctx, checker, products, params)
}

// FilterPath keeps the products whose source granule was acquired on the
// given relative orbit.
func FilterPath(ctx context.Context, checker GranuleChecker, products []model.Product, path int) ([]model.Product, error) {
	params := search.New()
	params.RelativeOrbit = path
	return FilterGranules(ctx, checker, products, params)
}

// GranuleName derives the source granule name from a HyP3 product name.
func GranuleName(productName string) string {
	if idx := strings.IndexByte(productName, '-'); idx > 0 {
		return productName[:idx]
	}
	return productName
}
