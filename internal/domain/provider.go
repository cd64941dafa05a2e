package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// URLTemplate builds the request URL of one provider attempt
type URLTemplate func(req MediaRequest, downloadID string) (string, error)

// ProviderEndpoint is one backend able to serve a download.
// A slice of endpoints is ordered by fallback priority.
type ProviderEndpoint struct {
	Name        string
	URLTemplate URLTemplate
}

// URL renders the endpoint URL for a request
func (p ProviderEndpoint) URL(req MediaRequest, downloadID string) (string, error) {
	if p.URLTemplate == nil {
		return "", fmt.Errorf("provider %q has no url template: %w", p.Name, ErrConfiguration)
	}
	return p.URLTemplate(req, downloadID)
}

// NewQueryEndpoint creates an endpoint that passes url, download_id and the
// optional platform hint as query parameters.
func NewQueryEndpoint(name, baseURL, endpoint string) ProviderEndpoint {
	target := joinURL(baseURL, endpoint)
	return ProviderEndpoint{
		Name: name,
		URLTemplate: func(req MediaRequest, downloadID string) (string, error) {
			u, err := url.Parse(target)
			if err != nil {
				return "", fmt.Errorf("invalid endpoint for provider %s: %w", name, err)
			}
			q := u.Query()
			q.Set("url", req.URL)
			q.Set("download_id", downloadID)
			if req.ProviderHint != "" {
				q.Set("platform", string(req.ProviderHint))
			}
			u.RawQuery = q.Encode()
			return u.String(), nil
		},
	}
}

// ProvidersFromConfig builds the ordered endpoint list from configuration
func ProvidersFromConfig(baseURL string, providers []ProviderConfig) ([]ProviderEndpoint, error) {
	if len(providers) == 0 {
		return nil, ErrConfiguration
	}
	endpoints := make([]ProviderEndpoint, 0, len(providers))
	for _, p := range providers {
		if p.Name == "" || p.Endpoint == "" {
			return nil, fmt.Errorf("provider entry needs name and endpoint: %w", ErrConfiguration)
		}
		endpoints = append(endpoints, NewQueryEndpoint(p.Name, baseURL, p.Endpoint))
	}
	return endpoints, nil
}

// joinURL resolves endpoint against baseURL, leaving absolute endpoints alone
func joinURL(baseURL, endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
}
