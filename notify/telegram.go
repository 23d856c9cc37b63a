package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-telegram/bot"
)

const DEFAULT_API = "https://api.telegram.org"

// Telegram posts messages to a chat through the Bot API.
type Telegram struct {
	bot   *bot.Bot
	token string
	chat  string
}

// NewTelegram creates a bot client for the chat. The token is not checked
// against the API until the first message is sent.
func NewTelegram(api string, token string, chat string, client *http.Client) (*Telegram, error) {
	if api == "" {
		api = DEFAULT_API
	}

	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
		}
	}

	b, err := bot.New(token,
		bot.WithServerURL(strings.TrimRight(api, "/")),
		bot.WithHTTPClient(client.Timeout, client),
		bot.WithSkipGetMe())
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", redact(err, token))
	}

	return &Telegram{
		bot:   b,
		token: token,
		chat:  chat,
	}, nil
}

func (t *Telegram) Send(ctx context.Context, text string) error {
	_, err := t.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: t.chat,
		Text:   text,
	})

	if err != nil {
		return fmt.Errorf("telegram: %w", redact(err, t.token))
	}

	return nil
}

// redact keeps the bot token out of transport errors, which include the URL.
func redact(err error, token string) error {
	if token == "" || !strings.Contains(err.Error(), token) {
		return err
	}

	return fmt.Errorf("%v", strings.ReplaceAll(err.Error(), token, "<token>"))
}
