package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/akolanti/BrandVoice/internal/config"
	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

func testChain() Chain {
	s := config.Default()
	s.AuthToken = "api-token"
	s.WebhookSecret = "hook-secret"
	return NewChain(s)
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, _ := r.Context().Value(config.USER_ID_KEY).(string)
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	w.Header().Set("X-Seen-User", user)
	w.Header().Set("X-Seen-Trace", trace)
	w.WriteHeader(http.StatusNoContent)
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name       string
		auth       string
		user       string
		wantStatus int
	}{
		{"valid token and user", "Bearer api-token", "user-1", http.StatusNoContent},
		{"missing token", "", "user-1", http.StatusUnauthorized},
		{"wrong scheme", "Basic api-token", "user-1", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", "user-1", http.StatusUnauthorized},
		{"missing user", "Bearer api-token", "", http.StatusUnauthorized},
	}
	h := testChain().Wrap(echoUser)

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/brands", nil)
			req.RemoteAddr = "10.0.0." + strconv.Itoa(i+1) + ":1234"
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			if tt.user != "" {
				req.Header.Set("X-User-Id", tt.user)
			}
			rec := httptest.NewRecorder()
			h(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
			if rec.Header().Get("X-Trace-Id") == "" {
				t.Error("trace id header missing")
			}
			if tt.wantStatus == http.StatusNoContent {
				if rec.Header().Get("X-Seen-User") != tt.user {
					t.Errorf("user not propagated: %q", rec.Header().Get("X-Seen-User"))
				}
				if rec.Header().Get("X-Seen-Trace") != rec.Header().Get("X-Trace-Id") {
					t.Error("trace id not propagated to context")
				}
			}
		})
	}
}

func TestWrap_KeepsIncomingTrace(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/brands", nil)
	req.Header.Set("Authorization", "Bearer api-token")
	req.Header.Set("X-User-Id", "u")
	req.Header.Set("X-Trace-Id", "trace-abc")
	rec := httptest.NewRecorder()
	testChain().Wrap(echoUser)(rec, req)

	if rec.Header().Get("X-Seen-Trace") != "trace-abc" {
		t.Errorf("expected incoming trace id, got %q", rec.Header().Get("X-Seen-Trace"))
	}
}

func TestWrapWebhook(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		auth       string
		wantStatus int
	}{
		{"valid secret", "hook-secret", "Bearer hook-secret", http.StatusNoContent},
		{"api token is not the webhook secret", "hook-secret", "Bearer api-token", http.StatusUnauthorized},
		{"unconfigured secret rejects all", "", "Bearer ", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := testChain()
			c.webhookSecret = tt.secret
			c.noAuthBypass = true

			req := httptest.NewRequest(http.MethodPost, "/webhooks/documents", nil)
			req.Header.Set("Authorization", tt.auth)
			rec := httptest.NewRecorder()
			c.WrapWebhook(echoUser)(rec, req)
			if rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	c := testChain()
	c.limiter = NewIPRateLimiter(rate.Limit(0.001), 1)
	h := c.WrapPublic(echoUser)
	limited := c.Wrap(echoUser)

	newReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/brands", nil)
		req.RemoteAddr = "192.168.1.9:5555"
		req.Header.Set("Authorization", "Bearer api-token")
		req.Header.Set("X-User-Id", "u")
		return req
	}

	first := httptest.NewRecorder()
	limited(first, newReq())
	second := httptest.NewRecorder()
	limited(second, newReq())
	if first.Code != http.StatusNoContent || second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 204 then 429, got %d then %d", first.Code, second.Code)
	}

	public := httptest.NewRecorder()
	h(public, newReq())
	if public.Code != http.StatusNoContent {
		t.Errorf("public routes are not rate limited, got %d", public.Code)
	}
}

func TestIPRateLimiter_SweepsIdleVisitors(t *testing.T) {
	l := NewIPRateLimiter(rate.Limit(1), 1)
	clock := time.Now()
	l.now = func() time.Time { return clock }

	first := l.GetLimiter("10.0.0.1")
	l.GetLimiter("10.0.0.2")
	if l.GetLimiter("10.0.0.1") != first {
		t.Fatal("expected the same bucket for a returning client")
	}

	clock = clock.Add(config.RateLimiterIdleTTL / 2)
	l.GetLimiter("10.0.0.1")

	clock = clock.Add(config.RateLimiterIdleTTL + time.Second)
	l.GetLimiter("10.0.0.3")
	if got := l.size(); got != 1 {
		t.Errorf("expected idle visitors swept, %d remain", got)
	}
}

func TestWrapWebhook_AcceptsInsertBursts(t *testing.T) {
	c := testChain()
	h := c.WrapWebhook(echoUser)

	for i := 0; i < 4*config.BURST_RATE_LIMIT_PER_SECOND; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhooks/documents", nil)
		req.RemoteAddr = "10.0.0.5:4000"
		req.Header.Set("Authorization", "Bearer hook-secret")
		rec := httptest.NewRecorder()
		h(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("call %d: expected 204, got %d", i+1, rec.Code)
		}
	}
}

func TestRouteLabel(t *testing.T) {
	var labels []string
	r := chi.NewRouter()
	r.Get("/documents/{id}", func(w http.ResponseWriter, req *http.Request) {
		labels = append(labels, routeLabel(req))
	})
	for _, id := range []string{"a1", "b2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))
	}
	if len(labels) != 2 || labels[0] != "/documents/{id}" || labels[1] != labels[0] {
		t.Errorf("expected one route pattern label, got %v", labels)
	}

	if got := routeLabel(httptest.NewRequest(http.MethodGet, "/nowhere", nil)); got != "unmatched" {
		t.Errorf("expected unmatched outside a router, got %q", got)
	}
}
