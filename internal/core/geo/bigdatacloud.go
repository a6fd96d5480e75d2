// Package geo reverse-geocodes coordinates to country codes.
package geo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"fridge-recipes/internal/infrastructure/config"

	"github.com/go-resty/resty/v2"
)

// BigDataCloudClient calls the BigDataCloud client-side reverse geocoding API.
type BigDataCloudClient struct {
	client *resty.Client
}

type reverseGeocodeResponse struct {
	CountryCode string `json:"countryCode"`
	CountryName string `json:"countryName"`
}

// NewBigDataCloudClient creates a client with a bounded timeout and no retries.
func NewBigDataCloudClient(cfg config.GeocoderConfig) *BigDataCloudClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json")

	return &BigDataCloudClient{client: client}
}

// ReverseGeocode returns the ISO-3166 alpha-2 code for (lat, lon). An empty
// code with a nil error means the point is not inside any country.
func (c *BigDataCloudClient) ReverseGeocode(ctx context.Context, lat, lon float64) (string, error) {
	var result reverseGeocodeResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":         strconv.FormatFloat(lat, 'f', -1, 64),
			"longitude":        strconv.FormatFloat(lon, 'f', -1, 64),
			"localityLanguage": "en",
		}).
		SetResult(&result).
		Get("/data/reverse-geocode-client")
	if err != nil {
		return "", fmt.Errorf("reverse geocode request failed: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("reverse geocode returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return result.CountryCode, nil
}
