package telegram

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/DMUsenkov/sports-platform-notifier/internal/domain/ports/adapter"
)

var _ adapter.DeliveryChannel = (*Channel)(nil)

// Channel implements the outbound delivery side of the bot: one sendMessage
// per notification, with the API error collapsed into the dispatch loop's
// four-way outcome taxonomy.
type Channel struct {
	api *tgbotapi.BotAPI
	log *zerolog.Logger
}

func NewChannel(api *tgbotapi.BotAPI, logger *zerolog.Logger) *Channel {
	return &Channel{api: api, log: logger}
}

func (c *Channel) Send(ctx context.Context, telegramID int64, text string, actions []adapter.Action) adapter.Outcome {
	if ctx.Err() != nil {
		return adapter.Transient
	}

	msg := tgbotapi.NewMessage(telegramID, text)
	if len(actions) > 0 {
		msg.ReplyMarkup = actionKeyboard(actions)
	}

	if _, err := c.api.Send(msg); err != nil {
		outcome := classifySendError(err)
		c.log.Debug().Err(err).Int64("tg_id", telegramID).Str("outcome", outcome.String()).Msg("sendMessage failed")
		return outcome
	}
	return adapter.Delivered
}

func actionKeyboard(actions []adapter.Action) tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(actions))
	for _, a := range actions {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(a.Label, a.CallbackData()))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

// classifySendError maps Bot API failures onto the outcome taxonomy.
// 403 covers both "bot was blocked by the user" and "user is deactivated";
// a 400 "chat not found" means the chat id no longer resolves. All three
// are permanent recipient states, not incidents.
func classifySendError(err error) adapter.Outcome {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		// Transport-level failure (timeout, DNS, connection reset).
		return adapter.Transient
	}

	switch {
	case apiErr.Code == 403:
		return adapter.RecipientUnreachable
	case apiErr.Code == 400 && strings.Contains(strings.ToLower(apiErr.Message), "chat not found"):
		return adapter.RecipientUnreachable
	case apiErr.Code == 429:
		return adapter.Transient
	case apiErr.Code >= 500:
		return adapter.Transient
	default:
		return adapter.Fatal
	}
}
