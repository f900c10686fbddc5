package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testToken = "12345:secret-token"

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(testToken)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c.WithBaseURL(srv.URL), srv
}

func TestNewClientRequiresToken(t *testing.T) {
	if _, err := NewClient("  "); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestWebhookPath(t *testing.T) {
	if got := WebhookPath(testToken); got != "/webhook/12345" {
		t.Fatalf("WebhookPath = %q", got)
	}
	if got := WebhookPath("nocolon"); got != "/webhook/nocolon" {
		t.Fatalf("WebhookPath without colon = %q", got)
	}
	if strings.Contains(WebhookPath(testToken), "secret") {
		t.Fatal("webhook path must not leak the token secret")
	}
}

func TestSendMessage(t *testing.T) {
	var gotPath string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":42,"chat":{"id":7}}}`))
	})

	msg, err := c.SendMessage(context.Background(), SendMessageParams{ChatID: 7, Text: "hello"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.MessageID != 42 {
		t.Fatalf("MessageID = %d, want 42", msg.MessageID)
	}
	if want := "/bot" + testToken + "/sendMessage"; gotPath != want {
		t.Fatalf("path = %q, want %q", gotPath, want)
	}
	if gotBody["chat_id"] != float64(7) || gotBody["text"] != "hello" {
		t.Fatalf("request body = %v", gotBody)
	}
	if _, present := gotBody["reply_markup"]; present {
		t.Fatal("empty reply_markup must be omitted")
	}
}

func TestCallSurfacesAPIError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	_, err := c.SendMessage(context.Background(), SendMessageParams{ChatID: 7, Text: "hi"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "chat not found") || !strings.Contains(err.Error(), "400") {
		t.Fatalf("error = %v", err)
	}
}

func TestFileURL(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_path":"photos/file_1.jpg"}}`))
	})

	url, err := c.FileURL(context.Background(), "f1")
	if err != nil {
		t.Fatalf("FileURL: %v", err)
	}
	want := srv.URL + "/file/bot" + testToken + "/photos/file_1.jpg"
	if url != want {
		t.Fatalf("FileURL = %q, want %q", url, want)
	}
}

func TestFileURLEmptyPath(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":true,"result":{"file_id":"f1"}}`))
	})

	if _, err := c.FileURL(context.Background(), "f1"); err == nil {
		t.Fatal("expected error for empty file_path")
	}
}

func TestSetWebhook(t *testing.T) {
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true,"result":true}`))
	})

	if err := c.SetWebhook(context.Background(), "https://bot.example/webhook/12345"); err != nil {
		t.Fatalf("SetWebhook: %v", err)
	}
	if gotBody["url"] != "https://bot.example/webhook/12345" {
		t.Fatalf("request body = %v", gotBody)
	}
}

func TestAttachment(t *testing.T) {
	if _, _, ok := Attachment(nil); ok {
		t.Fatal("nil message should carry no attachment")
	}
	if _, _, ok := Attachment(&Message{Text: "hi"}); ok {
		t.Fatal("text message should carry no attachment")
	}

	photo := &Message{Photo: []PhotoSize{
		{FileID: "small", Width: 90},
		{FileID: "large", Width: 1280},
	}}
	fileID, kind, ok := Attachment(photo)
	if !ok || fileID != "large" || kind != "photo" {
		t.Fatalf("photo attachment = (%q, %q, %v)", fileID, kind, ok)
	}

	video := &Message{Video: &Video{FileID: "v1"}}
	fileID, kind, ok = Attachment(video)
	if !ok || fileID != "v1" || kind != "video" {
		t.Fatalf("video attachment = (%q, %q, %v)", fileID, kind, ok)
	}
}
