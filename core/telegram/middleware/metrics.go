package middleware

import (
	tele "gopkg.in/telebot.v4"
)

const (
	keyMessages = "messages"
	keyKeyboard = "kb"
)

// countingContext records on the update how many messages a handler sent and
// whether any of them carried a keyboard. The handler summary line reads them.
type countingContext struct{ tele.Context }

func (c countingContext) count(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	n, _ := c.Get(keyMessages).(int)
	c.Set(keyMessages, n+1)
	if hasKeyboard(opts) {
		c.Set(keyKeyboard, true)
	}
	return nil
}

func (c countingContext) Send(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Send(what, opts...), opts)
}

func (c countingContext) Reply(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Reply(what, opts...), opts)
}

func (c countingContext) Edit(what interface{}, opts ...interface{}) error {
	return c.count(c.Context.Edit(what, opts...), opts)
}

func hasKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		}
	}
	return false
}

// MessageMetricsMiddleware resets the per-update counters and hands the
// handler a context that maintains them.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(keyMessages, 0)
		c.Set(keyKeyboard, false)
		return next(countingContext{Context: c})
	}
}

// GetCounters returns the messages sent so far and whether one had a keyboard.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(keyMessages).(int)
	kb, _ := c.Get(keyKeyboard).(bool)
	return msgs, kb
}
