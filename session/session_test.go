package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"timesheet/models"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	s := Session{ID: NewID(), UserID: 7, Role: models.RoleManager, ExpiresAt: time.Now().Add(time.Hour)}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.UserID != 7 || got.Role != models.RoleManager {
		t.Errorf("Get = %+v, want user 7 manager", got)
	}
	if p := got.Principal(); !p.IsManager() {
		t.Errorf("principal %+v should be a manager", p)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	s := Session{ID: "a", UserID: 1, Role: models.RoleEmployee, ExpiresAt: now.Add(time.Minute)}
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, "a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get expired = %v, want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len = %d, want 0 after reading an expired session", store.Len())
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	if err := store.Create(ctx, Session{ID: "", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}); err == nil {
		t.Error("expected error for empty id")
	}
	if err := store.Create(ctx, Session{ID: "x", UserID: 1, ExpiresAt: time.Now().Add(-time.Hour)}); err == nil {
		t.Error("expected error for past expiry")
	}
}

func TestCookieCodecRoundTrip(t *testing.T) {
	codec := NewCookieCodec("0123456789abcdef", CookieOptions{Secure: true})
	rec := httptest.NewRecorder()
	if err := codec.SetCookie(rec, "sid-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("SetCookie: %v", err)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	c := cookies[0]
	if c.Name != DefaultCookieName || !c.HttpOnly || !c.Secure {
		t.Errorf("cookie = %+v, want http-only secure %s", c, DefaultCookieName)
	}
	if strings.Contains(c.Value, "sid-1") {
		t.Errorf("cookie value leaks the raw session id")
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	id, err := codec.SessionID(req)
	if err != nil {
		t.Fatalf("SessionID: %v", err)
	}
	if id != "sid-1" {
		t.Errorf("SessionID = %q, want sid-1", id)
	}
}

func TestCookieCodecRejectsForgery(t *testing.T) {
	issuer := NewCookieCodec("0123456789abcdef", CookieOptions{})
	verifier := NewCookieCodec("fedcba9876543210", CookieOptions{})

	token, err := issuer.Encode("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.Decode(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode with wrong secret = %v, want ErrInvalidToken", err)
	}

	expired, err := issuer.Encode("sid-2", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := issuer.Decode(expired); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode expired = %v, want ErrInvalidToken", err)
	}

	if _, err := issuer.Decode("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Decode garbage = %v, want ErrInvalidToken", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := issuer.SessionID(req); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("SessionID without cookie = %v, want ErrInvalidToken", err)
	}
}

func TestClearCookie(t *testing.T) {
	codec := NewCookieCodec("0123456789abcdef", CookieOptions{Name: "ts"})
	rec := httptest.NewRecorder()
	codec.ClearCookie(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("cookies = %d, want 1", len(cookies))
	}
	if cookies[0].Name != "ts" || cookies[0].MaxAge >= 0 || cookies[0].Value != "" {
		t.Errorf("cookie = %+v, want an expired empty ts cookie", cookies[0])
	}
}
