package api

import (
	"fmt"
	"io"
	"regexp"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"

	"github.com/diogo/gemchat/internal/config"
	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// SNlM0e pattern for extracting the access token from the app page HTML
var snlm0ePattern = regexp.MustCompile(`"SNlM0e":"([^"]+)"`)

// GetAccessToken fetches the SNlM0e access token from gemini.google.com
func GetAccessToken(client tls_client.HttpClient, cookies *config.Cookies) (string, error) {
	req, err := http.NewRequest(http.MethodGet, models.EndpointInit, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create access token request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	addAuthCookies(req, cookies)

	resp, err := client.Do(req)
	if err != nil {
		return "", apierrors.NewNetworkError("fetch access token", models.EndpointInit, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != 200 {
		return "", apierrors.NewAuthError(
			fmt.Sprintf("failed to fetch access token, status: %d", resp.StatusCode),
			models.EndpointInit,
		)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", apierrors.NewNetworkError("read access token response", models.EndpointInit, err)
	}

	matches := snlm0ePattern.FindSubmatch(body)
	if len(matches) < 2 {
		return "", apierrors.NewAuthError(
			"SNlM0e token not found in response; credentials may be expired",
			models.EndpointInit,
		)
	}

	return string(matches[1]), nil
}

// addAuthCookies attaches the auth cookies to a request
func addAuthCookies(req *http.Request, cookies *config.Cookies) {
	psid, psidts := cookies.Snapshot()
	req.AddCookie(&http.Cookie{Name: "__Secure-1PSID", Value: psid})
	if psidts != "" {
		req.AddCookie(&http.Cookie{Name: "__Secure-1PSIDTS", Value: psidts})
	}
}
