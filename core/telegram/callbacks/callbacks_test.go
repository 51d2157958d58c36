package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		name         string
		cb           *tele.Callback
		key, payload string
	}{
		{"nil", nil, "", ""},
		{"raw", &tele.Callback{Data: "\fcancel|add"}, "cancel", "add"},
		{"raw without payload", &tele.Callback{Data: "\fcancel"}, "cancel", ""},
		{"matched", &tele.Callback{Unique: "cancel", Data: "delete"}, "cancel", "delete"},
		{"plain", &tele.Callback{Data: "cancel|x|y"}, "cancel", "x|y"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key, payload := ParseCallbackData(tc.cb)
			assert.Equal(t, tc.key, key)
			assert.Equal(t, tc.payload, payload)
		})
	}
}
