// Package notify delivers matched items to a Telegram chat and answers the bot's read-only commands.
package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	tele "gopkg.in/telebot.v4"

	"github.com/umputun/feedwatch/pkg/domain"
)

//go:generate moq -out mocks/sender.go -pkg mocks -skip-ensure -fmt goimports . Sender
//go:generate moq -out mocks/status.go -pkg mocks -skip-ensure -fmt goimports . StatusProvider

// Sender sends a message to a recipient, implemented by *tele.Bot
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// StatusProvider returns the current watcher status for bot commands
type StatusProvider interface {
	Status() domain.Status
}

// Telegram sends items to a single chat and serves /start and /status
type Telegram struct {
	sender         Sender
	bot            *tele.Bot // nil when built around a custom Sender
	chat           chatRecipient
	badges         map[string]string
	elevatedHeader string
}

// TelegramParams configures Telegram
type TelegramParams struct {
	Token          string
	ChatID         string // numeric chat id or @channel
	Timeout        time.Duration
	Sources        []domain.Source
	ElevatedHeader string
}

// chatRecipient is a chat id or a public @channel name
type chatRecipient string

// Recipient returns the chat identifier for the Bot API
func (c chatRecipient) Recipient() string { return string(c) }

// NewTelegram makes a Telegram notifier backed by a live bot. It checks the token with the Bot API.
func NewTelegram(params TelegramParams) (*Telegram, error) {
	if strings.TrimSpace(params.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if params.Timeout <= 0 {
		params.Timeout = 10 * time.Second
	}
	bot, err := tele.NewBot(tele.Settings{
		Token:  params.Token,
		Poller: &tele.LongPoller{Timeout: params.Timeout},
		Client: &http.Client{Timeout: 2 * params.Timeout},
		OnError: func(err error, _ tele.Context) {
			lgr.Printf("[WARN] telegram bot error: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	res, err := NewTelegramWithSender(bot, params)
	if err != nil {
		return nil, err
	}
	res.bot = bot
	return res, nil
}

// NewTelegramWithSender makes a Telegram notifier around any Sender. Commands are not served.
func NewTelegramWithSender(sender Sender, params TelegramParams) (*Telegram, error) {
	if strings.TrimSpace(params.ChatID) == "" {
		return nil, errors.New("telegram chat id is empty")
	}
	res := &Telegram{
		sender:         sender,
		chat:           chatRecipient(strings.TrimSpace(params.ChatID)),
		badges:         make(map[string]string, len(params.Sources)),
		elevatedHeader: params.ElevatedHeader,
	}
	for _, s := range params.Sources {
		res.badges[s.Name] = s.Badge
	}
	return res, nil
}

// Notify sends a single item, formatted by tier, with link previews disabled
func (t *Telegram) Notify(ctx context.Context, item domain.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	text := Format(item, t.badges[item.Source], t.elevatedHeader)
	opts := &tele.SendOptions{ParseMode: tele.ModeHTML, DisableWebPagePreview: true}
	if _, err := t.sender.Send(t.chat, text, opts); err != nil {
		return fmt.Errorf("send to %s: %w", t.chat, err)
	}
	return nil
}

// Run serves /start and /status until ctx is canceled. Without a live bot it just waits for ctx.
func (t *Telegram) Run(ctx context.Context, sp StatusProvider) error {
	if t.bot == nil {
		<-ctx.Done()
		return nil
	}

	t.bot.Handle("/start", t.startCmd(sp))
	t.bot.Handle("/status", t.statusCmd(sp))

	go func() {
		<-ctx.Done()
		t.bot.Stop()
	}()

	lgr.Printf("[INFO] telegram bot @%s polling for commands", t.bot.Me.Username)
	t.bot.Start() // blocks until Stop
	lgr.Printf("[INFO] telegram bot stopped")
	return nil
}

// startCmd replies with the watched sources
func (t *Telegram) startCmd(sp StatusProvider) tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Send(StartText(sp.Status().Sources))
	}
}

// statusCmd replies with sources, interval, cache usage and counters
func (t *Telegram) statusCmd(sp StatusProvider) tele.HandlerFunc {
	return func(c tele.Context) error {
		if err := c.Send(StatusText(sp.Status())); err != nil {
			return fmt.Errorf("reply to /status: %w", err)
		}
		return nil
	}
}
