package middleware

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Dan9191/todo-service/internal/utils"
	"github.com/sirupsen/logrus"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{name: "absent", header: "", want: ""},
		{name: "bearer", header: "Bearer abc.def", want: "abc.def"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "scheme only", header: "Bearer", want: ""},
		{name: "scheme and blank", header: "Bearer   ", want: ""},
		{name: "other scheme", header: "Basic dXNlcjpwdw==", want: "Basic dXNlcjpwdw=="},
		{name: "bare token", header: "abc", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

type fakeAuth struct{}

func (fakeAuth) Authenticate(token string) (*utils.Claims, error) {
	if token == "good" {
		return &utils.Claims{UserID: "u1", Email: "a@b.com"}, nil
	}
	return nil, errors.New("rejected")
}

func TestAuthMiddleware(t *testing.T) {
	var seen *utils.Claims
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	onError := func(w http.ResponseWriter, r *http.Request, err error) {
		w.WriteHeader(http.StatusForbidden)
	}
	h := AuthMiddleware(fakeAuth{}, onError)(next)

	r := httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.Header.Set("Authorization", "Bearer good")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusTeapot {
		t.Fatalf("valid token: got status %d, want %d", w.Code, http.StatusTeapot)
	}
	if seen == nil || seen.UserID != "u1" {
		t.Errorf("claims not propagated: %+v", seen)
	}

	seen = nil
	r = httptest.NewRequest(http.MethodGet, "/todos", nil)
	r.Header.Set("Authorization", "Bearer bad")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("bad token: got status %d, want %d", w.Code, http.StatusForbidden)
	}
	if seen != nil {
		t.Error("next handler ran for rejected token")
	}
}

func TestClaimsFromContextEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := ClaimsFromContext(r.Context()); ok {
		t.Error("expected no claims in bare context")
	}
}

func TestRecoverer(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := Recoverer(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", w.Code)
	}
}

func TestRequestLoggerKeepsStatus(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", nil))
	if w.Code != http.StatusCreated {
		t.Errorf("status: got %d, want 201", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/todos", nil))
	if w.Code != http.StatusNoContent {
		t.Errorf("status: got %d, want 204", w.Code)
	}
	if called {
		t.Error("preflight reached the wrapped handler")
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "Authorization, Content-Type" {
		t.Errorf("allow headers: got %q", got)
	}
}
