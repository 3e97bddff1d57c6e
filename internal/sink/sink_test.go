package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"jirabot/internal/markup"
	"jirabot/internal/poller"

	"github.com/pterm/pterm"
)

func quietLogger() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard)
}

func sampleMessage() poller.Message {
	doc := markup.NewBuilder().
		Paragraph("Alice: Set status from Open to Closed <done> :facepalm:. ").
		Link("https://jira.example.com/browse/CORE-1").
		Paragraph("A & B").
		Italic(" - 3 minutes ago").
		Build()
	return poller.Message{IssueKey: "CORE-1", Text: doc.Text(), Markup: doc}
}

type recorder struct {
	targets []string
	err     error
}

func (r *recorder) Send(ctx context.Context, target string, msg poller.Message) error {
	r.targets = append(r.targets, target)
	return r.err
}

func TestParseDestination(t *testing.T) {
	tests := []struct {
		in      string
		want    Destination
		wantErr bool
	}{
		{"console", Destination{Scheme: Console}, false},
		{" symphony:abc_123== ", Destination{Scheme: Symphony, Target: "abc_123=="}, false},
		{"telegram:-100200300", Destination{Scheme: Telegram, Target: "-100200300"}, false},
		{"telegram:", Destination{}, true},
		{"slack:general", Destination{}, true},
		{"", Destination{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDestination(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDestination) {
					t.Errorf("ParseDestination(%q) error = %v, want ErrUnknownDestination", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDestination(%q) = %+v, %v, want %+v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestRouterDeliver(t *testing.T) {
	sym, tg := &recorder{}, &recorder{err: errors.New("chat not found")}
	r := NewRouter(quietLogger()).Register(Symphony, sym).Register(Telegram, tg)
	msg := sampleMessage()

	if err := r.Deliver(context.Background(), "symphony:room", msg); err != nil {
		t.Fatalf("Deliver() error: %v", err)
	}
	if len(sym.targets) != 1 || sym.targets[0] != "room" {
		t.Errorf("symphony targets = %v", sym.targets)
	}

	err := r.Deliver(context.Background(), "telegram:42", msg)
	if err == nil || !strings.Contains(err.Error(), "telegram:42") {
		t.Errorf("Deliver() error = %v, want wrapped sender error", err)
	}

	if err := r.Deliver(context.Background(), "console", msg); !errors.Is(err, ErrUnknownDestination) {
		t.Errorf("Deliver(console) error = %v, want ErrUnknownDestination when unregistered", err)
	}
}

func TestRouterSkipsBlankMessages(t *testing.T) {
	rec := &recorder{}
	r := NewRouter(quietLogger()).Register(Symphony, rec)

	for _, text := range []string{"", "   ", "\t\n"} {
		if err := r.Deliver(context.Background(), "symphony:room", poller.Message{Text: text}); err != nil {
			t.Errorf("Deliver(%q) error: %v", text, err)
		}
	}
	if len(rec.targets) != 0 {
		t.Errorf("blank messages were sent: %v", rec.targets)
	}
}

func TestSymphonySend(t *testing.T) {
	var got symphonyPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/agent/v2/stream/room-1/message/create" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("sessionToken") != "sess" || r.Header.Get("keyManagerToken") != "km" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		io.WriteString(w, `{"id":"m1"}`)
	}))
	defer srv.Close()

	msg := sampleMessage()
	if err := NewSymphony(srv.URL+"/", "sess", "km").Send(context.Background(), "room-1", msg); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got.Format != "MESSAGEML" || got.Message != msg.Markup.MessageML() {
		t.Errorf("payload = %+v", got)
	}
	if !strings.Contains(got.Message, "&lt;done&gt;") || !strings.Contains(got.Message, "A &amp; B") {
		t.Errorf("message not escaped: %s", got.Message)
	}
}

func TestSymphonyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewSymphony(srv.URL, "expired", "km").Send(context.Background(), "room", sampleMessage())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("Send() error = %v, want 401", err)
	}
}

func TestTelegramSend(t *testing.T) {
	var got telegramRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if got.ChatID == "404" {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, `{"ok":false,"description":"Bad Request: chat not found"}`)
			return
		}
		io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	tg := NewTelegram("TOKEN").WithBaseURL(srv.URL)
	if err := tg.Send(context.Background(), "-1001", sampleMessage()); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if got.ParseMode != "HTML" || got.ChatID != "-1001" {
		t.Errorf("request = %+v", got)
	}

	err := tg.Send(context.Background(), "404", sampleMessage())
	if err == nil || !strings.Contains(err.Error(), "chat not found") {
		t.Errorf("Send() error = %v, want API description", err)
	}
}

func TestTelegramHTML(t *testing.T) {
	doc := markup.NewBuilder().
		Bold("CORE-1").
		Paragraph(" <x> & y").
		LineBreak().
		Link("https://jira.example.com/browse/CORE-1?a=1&b=2").
		HashTag("release").
		Bullets("one", "two").
		Chime().
		Build()

	want := `<b>CORE-1</b> &lt;x&gt; &amp; y` + "\n" +
		`<a href="https://jira.example.com/browse/CORE-1?a=1&amp;b=2">https://jira.example.com/browse/CORE-1?a=1&amp;b=2</a> ` +
		"#release\n• one\n• two\n"
	if got := TelegramHTML(doc); got != want {
		t.Errorf("TelegramHTML() =\n%q\nwant\n%q", got, want)
	}
}

func TestTelegramHTMLStripsControlCharacters(t *testing.T) {
	tests := []struct {
		name string
		doc  markup.Document
		want string
	}{
		{
			name: "summary",
			doc: markup.NewBuilder().
				Paragraph("Bob created this issue: ").
				Link("https://jira.example.com/browse/CORE-1").
				Paragraph("multi\nline\x07bell").
				Italic(" - 1 minute ago").
				Build(),
			want: `Bob created this issue: <a href="https://jira.example.com/browse/CORE-1">https://jira.example.com/browse/CORE-1</a> ` +
				`multilinebell<i> - 1 minute ago</i>`,
		},
		{
			name: "bold and bullets",
			doc:  markup.NewBuilder().Bold("CORE\r-1").Bullets("a\tb").Build(),
			want: "<b>CORE-1</b>\n• ab\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TelegramHTML(tt.doc); got != tt.want {
				t.Errorf("TelegramHTML() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

func TestConsoleSend(t *testing.T) {
	var buf bytes.Buffer
	if err := NewConsole(&buf).Send(context.Background(), "", sampleMessage()); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if !strings.Contains(buf.String(), "CORE-1") || !strings.Contains(buf.String(), "Alice") {
		t.Errorf("console output %q missing message", buf.String())
	}
}
