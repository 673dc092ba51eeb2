package module_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JaimeStill/emotionwave/pkg/module"
)

func writeBody(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}

func TestNewInvalidPrefixPanics(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
	}{
		{"empty", ""},
		{"no leading slash", "api"},
		{"nested path", "/api/v1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if r := recover(); r == nil {
					t.Error("expected panic for invalid prefix")
				}
			}()
			module.New(tt.prefix, http.NewServeMux())
		})
	}
}

func TestServePrefixStripping(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		path     string
		pattern  string
		wantPath string
	}{
		{"nested path", "/api", "/api/analyses", "GET /analyses", "/analyses"},
		{"module root", "/api", "/api", "GET /", "/"},
		{"escaped filename", "/uploads", "/uploads/a%2Fb.png", "GET /{filename}", "/a/b.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()

			var receivedPath string
			mux.HandleFunc(tt.pattern, func(w http.ResponseWriter, r *http.Request) {
				receivedPath = r.URL.Path
			})

			m := module.New(tt.prefix, mux)
			m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", tt.path, nil))

			if receivedPath != tt.wantPath {
				t.Errorf("inner path: got %q, want %q", receivedPath, tt.wantPath)
			}
		})
	}
}

func TestModuleMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", writeBody("ok"))

	m := module.New("/api", mux)

	var middlewareCalled bool
	m.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			middlewareCalled = true
			next.ServeHTTP(w, r)
		})
	})

	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	if !middlewareCalled {
		t.Error("module middleware should have been called")
	}
}

func TestModuleMiddlewareComposedOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", writeBody("ok"))

	m := module.New("/api", mux)

	var wraps int
	m.Use(func(next http.Handler) http.Handler {
		wraps++
		return next
	})

	for range 3 {
		m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))
	}

	if wraps != 1 {
		t.Errorf("middleware constructor ran %d times, want 1", wraps)
	}
}

func TestModuleUseAfterServePanics(t *testing.T) {
	m := module.New("/api", http.NewServeMux())
	m.Serve(httptest.NewRecorder(), httptest.NewRequest("GET", "/api", nil))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for middleware added after serving")
		}
	}()
	m.Use(func(next http.Handler) http.Handler { return next })
}

func TestRouterDispatch(t *testing.T) {
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /analyses", writeBody("api"))

	uploadsMux := http.NewServeMux()
	uploadsMux.HandleFunc("GET /{filename}", writeBody("uploads"))

	router := module.NewRouter()
	router.Mount(module.New("/api", apiMux))
	router.Mount(module.New("/uploads", uploadsMux))
	router.HandleNative("GET /healthz", writeBody("healthy"))

	tests := []struct {
		name     string
		path     string
		wantCode int
		wantBody string
	}{
		{"api module", "/api/analyses", http.StatusOK, "api"},
		{"uploads module", "/uploads/1700000000000-abcd1234.png", http.StatusOK, "uploads"},
		{"trailing slash normalized", "/api/analyses/", http.StatusOK, "api"},
		{"native fallback", "/healthz", http.StatusOK, "healthy"},
		{"similar prefix not captured", "/apix/analyses", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantBody != "" && rec.Body.String() != tt.wantBody {
				t.Errorf("body: got %s, want %s", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRouterDuplicateMountPanics(t *testing.T) {
	router := module.NewRouter()
	router.Mount(module.New("/api", http.NewServeMux()))

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for duplicate prefix")
		}
	}()
	router.Mount(module.New("/api", http.NewServeMux()))
}
