package middleware

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true})
	require.NoError(t, err)
	return b
}

func messageFrom(b *tele.Bot, updateID int, userID int64) tele.Context {
	return b.NewContext(tele.Update{
		ID: updateID,
		Message: &tele.Message{
			Text:   "hi",
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
		},
	})
}

func TestRateLimitPerUser(t *testing.T) {
	b := offlineBot(t)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(messageFrom(b, i, 1)))
	}
	require.NoError(t, h(messageFrom(b, 10, 2)))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExclusions(t *testing.T) {
	b := offlineBot(t)
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for i := 0; i < 5; i++ {
		require.NoError(t, h(messageFrom(b, i, 1)))
	}
	assert.Equal(t, 5, calls)
}

func TestRateLimitDisabled(t *testing.T) {
	b := offlineBot(t)
	calls := 0
	h := RateLimitMiddleware(RateLimitOptions{})(func(tele.Context) error { calls++; return nil })
	for i := 0; i < 3; i++ {
		require.NoError(t, h(messageFrom(b, i, 1)))
	}
	assert.Equal(t, 3, calls)
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "message", UpdateKind(tele.Update{Message: &tele.Message{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	b := offlineBot(t)
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(messageFrom(b, 1, 1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	want := errors.New("plain")
	assert.ErrorIs(t, RecoverMiddleware(func(tele.Context) error { return want })(messageFrom(b, 2, 1)), want)
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	b := offlineBot(t)
	c := messageFrom(b, 7, 42)
	var rid string
	h := LoggerMiddleware(func(c tele.Context) error {
		rid, _ = c.Get("rid").(string)
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, "7:42:42", rid)
}

func TestReceiptsDeduplicate(t *testing.T) {
	r := &receipts{seen: make(map[int]time.Time), keepFor: time.Second}
	now := time.Now()
	assert.True(t, r.first(1, now))
	assert.False(t, r.first(1, now))
	assert.True(t, r.first(1, now.Add(2*time.Second)))
}

func TestMessageCountersDefaultToZero(t *testing.T) {
	b := offlineBot(t)
	c := messageFrom(b, 1, 1)
	msgs, kb := GetCounters(c)
	assert.Zero(t, msgs)
	assert.False(t, kb)

	assert.True(t, hasKeyboard([]interface{}{&tele.ReplyMarkup{}}))
	assert.True(t, hasKeyboard([]interface{}{&tele.SendOptions{ReplyMarkup: &tele.ReplyMarkup{}}}))
	assert.False(t, hasKeyboard([]interface{}{tele.ModeHTML}))
}
