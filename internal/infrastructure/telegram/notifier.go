package telegram

import (
	"context"

	orderingapp "github.com/shopbot/backend/internal/application/ordering"
	infraconfig "github.com/shopbot/backend/internal/infrastructure/config"
)

// ChannelNotifier posts order notifications to the configured channel.
// With no channel configured it falls back to messaging the admin
// directly, so order intake never runs without a destination.
type ChannelNotifier struct {
	client *Client
	chatID int64
}

var _ orderingapp.Notifier = (*ChannelNotifier)(nil)

// NewChannelNotifier creates a notifier bound to the channel from config,
// or to the admin account when ChannelID is zero.
func NewChannelNotifier(client *Client, cfg *infraconfig.TelegramConfig) *ChannelNotifier {
	chatID := cfg.ChannelID
	if chatID == 0 {
		chatID = cfg.AdminID
	}
	return &ChannelNotifier{client: client, chatID: chatID}
}

// Notify sends the rendered notification as plain text. Customer-supplied
// names go through verbatim, so no parse mode is set.
func (n *ChannelNotifier) Notify(ctx context.Context, text string) error {
	_, err := n.client.SendMessage(ctx, SendMessageParams{
		ChatID: n.chatID,
		Text:   text,
	})
	return err
}
