// Package client provides the HTTP client for the company registry API used
// to enrich establishments by registration identifier.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"prospect_backend/platform/config"
	"prospect_backend/platform/logger"
)

// Profile is a registry record for one registration identifier.
type Profile struct {
	RegistrationID   string
	Name             string
	LegalForm        string
	WorkforceBracket string
	AddressStreet    string
	AddressZipCode   string
	AddressCity      string
	Latitude         *float64
	Longitude        *float64
}

// Client is the HTTP client for the registry API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	log        *logger.Logger
}

func New(cfg config.RegistryConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    cfg.GetRegistryAPIURL(),
		apiKey:     cfg.GetRegistryAPIKey(),
		log:        log,
	}
}

// GetByRegistrationID fetches the registry record for a registration
// identifier. A missing record returns (nil, nil).
func (c *Client) GetByRegistrationID(ctx context.Context, registrationID string) (*Profile, error) {
	reqURL := fmt.Sprintf("%s/v1/registrations/%s", c.baseURL, url.PathEscape(registrationID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Error("registry request failed", "error", err, "registration_id", registrationID)
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success - continue to decode
	case http.StatusNotFound:
		// Unknown registration id - not an error
		c.log.Debug("registry record not found", "registration_id", registrationID)
		return nil, nil
	case http.StatusUnauthorized:
		c.log.Error("registry unauthorized", "status", resp.StatusCode)
		return nil, fmt.Errorf("unauthorized: invalid API key")
	default:
		c.log.Error("registry upstream error", "status", resp.StatusCode, "registration_id", registrationID)
		return nil, fmt.Errorf("upstream error: status %d", resp.StatusCode)
	}

	var record apiRegistration
	if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
		c.log.Error("registry decode failed", "error", err)
		return nil, fmt.Errorf("decode response: %w", err)
	}

	profile := record.toProfile()
	return &profile, nil
}

// apiRegistration is the raw registry response shape.
type apiRegistration struct {
	RegistrationID   string   `json:"registrationId"`
	TradeName        *string  `json:"tradeName"`
	LegalForm        *string  `json:"legalForm"`
	WorkforceBracket *string  `json:"workforceBracket"`
	Street           *string  `json:"street"`
	ZipCode          *string  `json:"zipCode"`
	City             *string  `json:"city"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
}

func (a apiRegistration) toProfile() Profile {
	return Profile{
		RegistrationID:   a.RegistrationID,
		Name:             strValue(a.TradeName),
		LegalForm:        strValue(a.LegalForm),
		WorkforceBracket: strValue(a.WorkforceBracket),
		AddressStreet:    strValue(a.Street),
		AddressZipCode:   strValue(a.ZipCode),
		AddressCity:      strValue(a.City),
		Latitude:         a.Latitude,
		Longitude:        a.Longitude,
	}
}

func strValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
