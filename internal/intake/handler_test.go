package intake

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newWebhookRouter(t *testing.T) (*gin.Engine, *fakeMessenger) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	msgr := &fakeMessenger{}
	e := newTestEngine(t, msgr, &fakeAppender{}, Options{})
	r := gin.New()
	NewHandler(e).RegisterRoutes(r, "/webhook/12345")
	return r, msgr
}

func TestWebhookAcknowledgesUpdate(t *testing.T) {
	r, msgr := newWebhookRouter(t)

	body := `{"update_id":1,"message":{"message_id":10,"chat":{"id":7},"from":{"id":7,"username":"alice"},"text":"/start"}}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/12345", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"ok":true`) {
		t.Fatalf("body = %s", w.Body.String())
	}
	if got := msgr.lastText(); got != promptCompany {
		t.Fatalf("first prompt = %q", got)
	}
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	r, _ := newWebhookRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook/12345", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestWebhookAcknowledgesUnknownUpdateKinds(t *testing.T) {
	r, msgr := newWebhookRouter(t)

	// Edited messages and other update kinds the bot does not handle still
	// get a 200 so the transport does not redeliver them.
	req := httptest.NewRequest(http.MethodPost, "/webhook/12345", strings.NewReader(`{"update_id":2}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	msgr.mu.Lock()
	defer msgr.mu.Unlock()
	if len(msgr.sent) != 0 {
		t.Fatalf("unexpected outbound messages: %v", msgr.sent)
	}
}
