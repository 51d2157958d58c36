// Package bot binds the assistant service to Telegram: it registers the
// commands, turns updates into assistant events and delivers the replies.
package bot

import (
	"context"
	"errors"
	"strings"

	tg "github.com/m3rciful/schedulebot/core/telegram"
	"github.com/m3rciful/schedulebot/core/telegram/commands"
	tghelpers "github.com/m3rciful/schedulebot/core/telegram/helpers"
	"github.com/m3rciful/schedulebot/core/telegram/keyboard"
	"github.com/m3rciful/schedulebot/core/telegram/router"
	"github.com/m3rciful/schedulebot/internal/assistant"

	tele "gopkg.in/telebot.v4"
)

// CancelKey is the callback key of the inline cancel button.
const CancelKey = "cancel"

// Service is the part of assistant.Service the bot drives.
type Service interface {
	InProgress(conversationID int64) bool
	Handle(ctx context.Context, ev assistant.Event) (assistant.Response, error)
}

// Sender delivers one HTML message to the chat of c.
type Sender func(c tele.Context, html string, markup ...*tele.ReplyMarkup) error

// Bot adapts a Service to telebot handlers.
type Bot struct {
	svc  Service
	send Sender
	edit Sender
}

// Option customises a Bot.
type Option func(*Bot)

// WithSender replaces the default dispatcher-backed sender.
func WithSender(s Sender) Option {
	return func(b *Bot) {
		if s != nil {
			b.send = s
		}
	}
}

// WithEditor replaces the sender that rewrites the message a callback came from.
func WithEditor(e Sender) Option {
	return func(b *Bot) {
		if e != nil {
			b.edit = e
		}
	}
}

// New creates a Bot over svc.
func New(svc Service, opts ...Option) *Bot {
	b := &Bot{svc: svc, send: tghelpers.SendHTML, edit: tghelpers.EditHTML}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var menu = []struct {
	name        string
	description string
	hidden      bool
}{
	{assistant.CmdHelp, "Приветственное сообщение", false},
	{assistant.CmdStart, "Приветственное сообщение", true},
	{assistant.CmdAdd, "Добавить пару", false},
	{assistant.CmdDay, "Получить расписание на сегодня", false},
	{assistant.CmdTomorrow, "Получить расписание на завтра", false},
	{assistant.CmdWeek, "Получить расписание на неделю", false},
	{assistant.CmdNextWeek, "Получить расписание на следующую неделю", false},
	{assistant.CmdDelete, "Удалить пару", false},
	{assistant.CmdCancel, "Отменить добавление или удаление", false},
}

// Register adds the bot commands, the cancel callback and the text fallback
// to reg.
func (b *Bot) Register(reg *tg.Registry) error {
	for _, item := range menu {
		reg.RegisterCommand("/"+item.name, commands.Command{
			Handler:     b.command(item.name),
			Description: item.description,
			Hidden:      item.hidden,
		})
	}
	reg.SetTextFallback(b.ManagerHandler)
	return reg.RegisterCallback(CancelKey, b.CancelHandler)
}

// Routes returns every telebot route of the bot, commands first.
func (b *Bot) Routes(reg *tg.Registry) []tg.Route {
	routes := router.CommandRoutes(reg)
	routes = append(routes, router.CallbackRoute(reg))
	return append(routes, router.TextRoutes(b, reg, router.TextOptions{
		UnknownMedia: b.ManagerHandler,
	})...)
}

// InProgress reports whether the chat is in the middle of a dialogue.
func (b *Bot) InProgress(chatID int64) bool {
	return b.svc.InProgress(chatID)
}

// ManagerHandler feeds a text or media message to the assistant. Text that
// looks like an unregistered command is passed on as plain text.
func (b *Bot) ManagerHandler(c tele.Context) error {
	ev := assistant.Event{ConversationID: conversationID(c), Kind: assistant.KindNonText}
	if msg := c.Message(); msg != nil && msg.Text != "" {
		ev.Kind = assistant.KindText
		ev.Payload = msg.Text
	}
	return b.handle(c, ev)
}

// CancelHandler answers the inline cancel button. The first reply replaces
// the prompt the button was attached to, which drops the button.
func (b *Bot) CancelHandler(c tele.Context) error {
	ev := assistant.Event{
		ConversationID: conversationID(c),
		Kind:           assistant.KindCommand,
		Payload:        assistant.CmdCancel,
	}
	resp, err := b.svc.Handle(tghelpers.BuildContext(c), ev)
	if c.Callback() == nil || c.Message() == nil || len(resp.Messages) == 0 {
		return errors.Join(b.deliver(c, resp), err)
	}
	if editErr := b.edit(c, resp.Messages[0]); editErr != nil {
		return errors.Join(editErr, err)
	}
	resp.Messages = resp.Messages[1:]
	return errors.Join(b.deliver(c, resp), err)
}

func (b *Bot) command(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		return b.handle(c, assistant.Event{
			ConversationID: conversationID(c),
			Kind:           assistant.KindCommand,
			Payload:        name,
		})
	}
}

func (b *Bot) handle(c tele.Context, ev assistant.Event) error {
	resp, err := b.svc.Handle(tghelpers.BuildContext(c), ev)
	return errors.Join(b.deliver(c, resp), err)
}

// deliver sends the messages in order. While the dialogue keeps collecting
// the last one carries the cancel button.
func (b *Bot) deliver(c tele.Context, resp assistant.Response) error {
	last := len(resp.Messages) - 1
	for i, text := range resp.Messages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		var err error
		if i == last && resp.Collecting {
			err = b.send(c, text, keyboard.SingleCancelMarkup(CancelKey))
		} else {
			err = b.send(c, text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func conversationID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if user := c.Sender(); user != nil {
		return user.ID
	}
	return 0
}
