package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/diogo/gemchat/internal/api"
	"github.com/diogo/gemchat/internal/browser"
	"github.com/diogo/gemchat/internal/chat"
	"github.com/diogo/gemchat/internal/config"
	"github.com/diogo/gemchat/internal/models"
	"github.com/diogo/gemchat/internal/tui"
)

const browserExtractTimeout = 30 * time.Second

// runChat starts the interactive chat view. Session creation happens inside
// the view's bootstrap, so credential problems show up as an in-app banner
// rather than aborting the command.
func runChat() error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("interactive chat requires a terminal")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Warn().Err(err).Msg("using default config")
	}

	modelName := getModel()
	return tui.Run(newSession(modelName), modelName, cfg)
}

// newSession returns the bootstrap function for the chat view: resolve
// credentials, create and initialize the client, open the session.
func newSession(modelName string) tui.StartFunc {
	return func() (chat.Streamer, error) {
		cookies, err := resolveCredentials()
		if err != nil {
			return nil, err
		}

		client, err := api.NewClient(cookies, api.WithModel(models.ModelFromName(modelName)))
		if err != nil {
			return nil, err
		}
		if err := client.Init(); err != nil {
			return nil, err
		}
		return client.StartChat(), nil
	}
}

// resolveCredentials tries the environment, then the cookies file, then the
// installed browsers.
func resolveCredentials() (*config.Cookies, error) {
	if cookies := config.CredentialsFromEnv(); cookies != nil {
		log.Debug().Msg("using credentials from environment")
		return cookies, nil
	}

	if cookies, err := config.LoadCookies(); err == nil {
		log.Debug().Msg("using credentials from cookies file")
		return cookies, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), browserExtractTimeout)
	defer cancel()

	result, err := browser.ExtractGeminiCookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("no credentials available: set %s, run 'gemchat import-cookies', or sign in to gemini.google.com in your browser: %w",
			config.EnvPSID, err)
	}
	log.Debug().Str("browser", result.BrowserName).Msg("using credentials from browser")

	// Cache for the next run; extraction is slow
	if err := config.SaveCookies(result.Cookies); err != nil {
		log.Warn().Err(err).Msg("could not cache browser cookies")
	}
	return result.Cookies, nil
}
