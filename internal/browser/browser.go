// Package browser extracts Gemini authentication cookies from installed
// web browsers. It is used only as the last credential source, after the
// environment and the cookies file.
package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/browserutils/kooky"
	_ "github.com/browserutils/kooky/browser/chrome"
	_ "github.com/browserutils/kooky/browser/chromium"
	_ "github.com/browserutils/kooky/browser/edge"
	_ "github.com/browserutils/kooky/browser/firefox"
	_ "github.com/browserutils/kooky/browser/opera"

	"github.com/diogo/gemchat/internal/config"
)

// ExtractResult contains the result of a cookie extraction
type ExtractResult struct {
	Cookies     *config.Cookies
	BrowserName string
}

// ExtractGeminiCookies searches every available browser cookie store for the
// Gemini auth cookies and returns the first complete match.
func ExtractGeminiCookies(ctx context.Context) (*ExtractResult, error) {
	stores := kooky.FindAllCookieStores(ctx)

	var lastErr error
	for i, store := range stores {
		result, err := extractFromStore(ctx, store)
		store.Close()
		if err == nil {
			for _, s := range stores[i+1:] {
				s.Close()
			}
			return result, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, fmt.Errorf("could not find Gemini cookies in any browser: %w", lastErr)
	}
	return nil, fmt.Errorf("no browser cookie stores available")
}

// extractFromStore pulls the two auth cookies out of one store/profile
func extractFromStore(ctx context.Context, store kooky.CookieStore) (*ExtractResult, error) {
	cookies := store.TraverseCookies(
		kooky.Valid,
		kooky.DomainContains("google.com"),
	).OnlyCookies()

	var psid, psidts string
	for cookie := range cookies {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		switch cookie.Name {
		case "__Secure-1PSID":
			// Prefer .google.com over regional domains
			if psid == "" || cookie.Domain == ".google.com" {
				psid = cookie.Value
			}
		case "__Secure-1PSIDTS":
			if psidts == "" || cookie.Domain == ".google.com" {
				psidts = cookie.Value
			}
		}
	}

	name := displayName(store)
	if psid == "" {
		return nil, fmt.Errorf("cookie __Secure-1PSID not found in %s; make sure you are logged into gemini.google.com", name)
	}

	return &ExtractResult{
		Cookies: &config.Cookies{
			Secure1PSID:   psid,
			Secure1PSIDTS: psidts,
		},
		BrowserName: name,
	}, nil
}

func displayName(store kooky.CookieStore) string {
	name := store.Browser()
	if profile := store.Profile(); profile != "" {
		name = fmt.Sprintf("%s (profile: %s)", name, profile)
	}
	return strings.TrimSpace(name)
}
