package bot

import (
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
)

func TestSanitize(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"plain text", "plain text"},
		{"a_b", "a\\_b"},
		{"1+1=2", "1\\+1\\=2"},
		{"line.", "line\\."},
		{"(brackets) [and] {braces}", "\\(brackets\\) \\[and\\] \\{braces\\}"},
		{"back\\slash", "back\\\\slash"},
		{"", ""},
	}
	for _, c := range cases {
		if got := Sanitize(c.input); got != c.want {
			t.Errorf("Sanitize(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestSplitMessageShortText(t *testing.T) {
	parts := splitMessage("hello", 100)
	if len(parts) != 1 || parts[0] != "hello" {
		t.Errorf("splitMessage = %q", parts)
	}
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10)
	parts := splitMessage(text, 25)

	var rebuilt strings.Builder
	for _, part := range parts {
		if len(part) > 25 {
			t.Errorf("part exceeds limit: %d chars", len(part))
		}
		if !strings.HasSuffix(part, "\n") {
			t.Errorf("part does not end on a line break: %q", part)
		}
		rebuilt.WriteString(part)
	}
	if rebuilt.String() != text {
		t.Error("parts do not reassemble into the original text")
	}
}

func TestSplitMessageWithoutNewlines(t *testing.T) {
	text := strings.Repeat("a", 50)
	parts := splitMessage(text, 20)
	if len(parts) != 3 {
		t.Fatalf("got %d parts, want 3", len(parts))
	}
	if strings.Join(parts, "") != text {
		t.Error("parts do not reassemble into the original text")
	}
}

func TestPlainResponseSplitsLongText(t *testing.T) {
	client := &mockChatClient{}
	bot := newTestBot(&mockDatabase{}, client)

	text := strings.Repeat("a line of channel listing text\n", 400)
	bot.plainResponse(1, text)

	sent := client.sentTexts()
	if len(sent) < 2 {
		t.Fatalf("text over the platform limit went out in %d message(s)", len(sent))
	}
	var rebuilt strings.Builder
	for _, part := range sent {
		if len(part) > maxTelegramMessageLen {
			t.Errorf("part exceeds the platform limit: %d bytes", len(part))
		}
		rebuilt.WriteString(part)
	}
	if rebuilt.String() != text {
		t.Error("parts do not reassemble into the original text")
	}
}

func TestSendWithKeyboardPutsKeyboardOnLastPart(t *testing.T) {
	var withKeyboard []string
	client := &mockChatClient{}
	client.sendMessageFunc = func(chatId int64, text string, opts *tgbotapi.SendMessageOpts) (*tgbotapi.Message, error) {
		if opts.ReplyMarkup != nil {
			withKeyboard = append(withKeyboard, text)
		}
		return &tgbotapi.Message{MessageId: 2, Chat: tgbotapi.Chat{Id: chatId}}, nil
	}
	bot := newTestBot(&mockDatabase{}, client)

	text := strings.Repeat("another listing line\n", 400)
	msg := bot.sendWithKeyboard(1, text, buildCloseButton())

	sent := client.sentTexts()
	if len(sent) < 2 {
		t.Fatalf("text over the platform limit went out in %d message(s)", len(sent))
	}
	if len(withKeyboard) != 1 || withKeyboard[0] != sent[len(sent)-1] {
		t.Errorf("keyboard attached to %d part(s), want only the last", len(withKeyboard))
	}
	if msg == nil {
		t.Error("sent message not returned")
	}
}

func TestReadableDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0 seconds"},
		{45 * time.Second, "45 seconds"},
		{90 * time.Second, "1 minutes, 30 seconds"},
		{26 * time.Hour, "1 days, 2 hours"},
		{3 * time.Hour, "3 hours"},
	}
	for _, c := range cases {
		if got := readableDuration(c.d); got != c.want {
			t.Errorf("readableDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
