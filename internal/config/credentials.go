package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Environment variables checked first when resolving credentials. The values
// are the raw __Secure-1PSID / __Secure-1PSIDTS cookie contents.
const (
	EnvPSID   = "GEMINI_PSID"
	EnvPSIDTS = "GEMINI_PSIDTS"
)

// Cookies holds the Gemini authentication cookies
type Cookies struct {
	mu            sync.RWMutex `json:"-"`
	Secure1PSID   string       `json:"__Secure-1PSID"`
	Secure1PSIDTS string       `json:"__Secure-1PSIDTS,omitempty"`
}

// Snapshot returns both cookie values atomically
func (c *Cookies) Snapshot() (psid, psidts string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Secure1PSID, c.Secure1PSIDTS
}

// SetBoth updates both cookie values atomically
func (c *Cookies) SetBoth(psid, psidts string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Secure1PSID = psid
	c.Secure1PSIDTS = psidts
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CredentialsFromEnv reads credentials from the process environment.
// Returns nil when the required variable is unset.
func CredentialsFromEnv() *Cookies {
	psid := os.Getenv(EnvPSID)
	if psid == "" {
		return nil
	}
	return &Cookies{
		Secure1PSID:   psid,
		Secure1PSIDTS: os.Getenv(EnvPSIDTS),
	}
}

// LoadCookies loads cookies from the cookies file
func LoadCookies() (*Cookies, error) {
	cookiesPath, err := GetCookiesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(cookiesPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no cookies found. Set %s or run:\n  gemchat import-cookies <path-to-cookies.json>", EnvPSID)
		}
		return nil, fmt.Errorf("failed to read cookies file: %w", err)
	}

	return ParseCookies(data)
}

// ParseCookies parses cookies from JSON data.
// Supports both list format [{name, value}] and dict format {name: value}.
func ParseCookies(data []byte) (*Cookies, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		psid, ok := dictFormat["__Secure-1PSID"]
		if !ok {
			return nil, fmt.Errorf("missing required cookie: __Secure-1PSID")
		}
		return &Cookies{
			Secure1PSID:   psid,
			Secure1PSIDTS: dictFormat["__Secure-1PSIDTS"],
		}, nil
	}

	var listFormat []CookieListItem
	if err := json.Unmarshal(data, &listFormat); err == nil {
		cookies := &Cookies{}
		for _, item := range listFormat {
			switch item.Name {
			case "__Secure-1PSID":
				cookies.Secure1PSID = item.Value
			case "__Secure-1PSIDTS":
				cookies.Secure1PSIDTS = item.Value
			}
		}

		if cookies.Secure1PSID == "" {
			return nil, fmt.Errorf("missing required cookie: __Secure-1PSID")
		}
		return cookies, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// SaveCookies saves cookies to the cookies file
func SaveCookies(cookies *Cookies) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	psid, psidts := cookies.Snapshot()
	listFormat := []CookieListItem{
		{Name: "__Secure-1PSID", Value: psid},
	}
	if psidts != "" {
		listFormat = append(listFormat, CookieListItem{
			Name:  "__Secure-1PSIDTS",
			Value: psidts,
		})
	}

	data, err := json.MarshalIndent(listFormat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}

	if err := os.WriteFile(configDir+"/cookies.json", data, 0o600); err != nil {
		return fmt.Errorf("failed to write cookies file: %w", err)
	}

	return nil
}

// ImportCookies imports cookies from a source file
func ImportCookies(sourcePath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	cookies, err := ParseCookies(data)
	if err != nil {
		return err
	}

	return SaveCookies(cookies)
}

// ValidateCookies checks that the required cookie is present
func ValidateCookies(cookies *Cookies) error {
	if cookies == nil {
		return fmt.Errorf("cookies are nil")
	}
	if cookies.Secure1PSID == "" {
		return fmt.Errorf("missing required cookie: __Secure-1PSID")
	}
	return nil
}
