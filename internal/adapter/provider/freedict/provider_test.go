package freedict

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serveJSON(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestProvider_Lookup_Success(t *testing.T) {
	t.Parallel()

	body := `[{
		"word": "run",
		"phonetic": "/rʌn/",
		"meanings": [
			{
				"partOfSpeech": "verb",
				"definitions": [
					{"definition": "To move fast.", "example": "She runs every day."},
					{"definition": "To manage.", "example": ""}
				]
			},
			{
				"partOfSpeech": "noun",
				"definitions": [{"definition": "An act of running."}]
			}
		]
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/run" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	def, err := p.Lookup(context.Background(), "Run")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def == nil {
		t.Fatal("expected non-nil definition")
	}
	if def.Meaning != "To move fast." {
		t.Errorf("Meaning = %q, want %q", def.Meaning, "To move fast.")
	}
	if def.PartOfSpeech != "verb" {
		t.Errorf("PartOfSpeech = %q, want verb", def.PartOfSpeech)
	}
	if def.Example != "She runs every day." {
		t.Errorf("Example = %q", def.Example)
	}
}

func TestProvider_Lookup_NotFound(t *testing.T) {
	t.Parallel()

	srv, calls := serveJSON(t, http.StatusNotFound, `{"title":"No Definitions Found"}`)

	p := NewProviderWithURL(srv.URL, newTestLogger())
	def, err := p.Lookup(context.Background(), "asdfxyz")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def != nil {
		t.Fatalf("expected nil definition for 404, got %+v", def)
	}

	// Misses are cached too.
	if _, err := p.Lookup(context.Background(), "asdfxyz"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("call count = %d, want 1", got)
	}
}

func TestProvider_Lookup_CachesHits(t *testing.T) {
	t.Parallel()

	srv, calls := serveJSON(t, http.StatusOK,
		`[{"word":"cat","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A small feline."}]}]}]`)

	p := NewProviderWithURL(srv.URL, newTestLogger())
	for range 3 {
		def, err := p.Lookup(context.Background(), "cat")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if def == nil || def.Meaning != "A small feline." {
			t.Fatalf("unexpected definition: %+v", def)
		}
		def.Meaning = "mutated"
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("call count = %d, want 1", got)
	}
}

func TestProvider_Lookup_ServerErrorRetrySuccess(t *testing.T) {
	t.Parallel()

	var callCount atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := callCount.Add(1)
		if n == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[{"word":"test","meanings":[{"partOfSpeech":"noun","definitions":[{"definition":"A trial."}]}]}]`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, newTestLogger())
	def, err := p.Lookup(context.Background(), "test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def == nil || def.Meaning != "A trial." {
		t.Fatalf("unexpected definition after retry: %+v", def)
	}
	if got := callCount.Load(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestProvider_Lookup_ServerErrorBothAttemptsFail(t *testing.T) {
	t.Parallel()

	srv, calls := serveJSON(t, http.StatusInternalServerError, ``)

	p := NewProviderWithURL(srv.URL, newTestLogger())
	if _, err := p.Lookup(context.Background(), "fail"); err == nil {
		t.Fatal("expected error when both attempts fail")
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("call count = %d, want 2", got)
	}
}

func TestProvider_Lookup_InvalidJSON(t *testing.T) {
	t.Parallel()

	srv, _ := serveJSON(t, http.StatusOK, `not valid json`)

	p := NewProviderWithURL(srv.URL, newTestLogger())
	if _, err := p.Lookup(context.Background(), "bad"); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestProvider_Lookup_BlankWordSkipsRequest(t *testing.T) {
	t.Parallel()

	srv, calls := serveJSON(t, http.StatusOK, `[]`)

	p := NewProviderWithURL(srv.URL, newTestLogger())
	def, err := p.Lookup(context.Background(), "   ")
	if err != nil || def != nil {
		t.Fatalf("Lookup(blank) = %+v, %v; want nil, nil", def, err)
	}
	if calls.Load() != 0 {
		t.Error("blank word should not reach the API")
	}
}

func TestFirstDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		entries     []apiEntry
		wantNil     bool
		wantMeaning string
		wantPOS     string
	}{
		{name: "empty array", entries: nil, wantNil: true},
		{
			name: "skips blank definitions",
			entries: []apiEntry{{Word: "book", Meanings: []apiMeaning{
				{PartOfSpeech: "noun", Definitions: []apiDefinition{{Definition: "  "}}},
				{PartOfSpeech: "verb", Definitions: []apiDefinition{{Definition: "To reserve."}}},
			}}},
			wantMeaning: "To reserve.",
			wantPOS:     "verb",
		},
		{
			name: "second etymology",
			entries: []apiEntry{
				{Word: "bank"},
				{Word: "bank", Meanings: []apiMeaning{{PartOfSpeech: "noun", Definitions: []apiDefinition{{Definition: "A river edge."}}}}},
			},
			wantMeaning: "A river edge.",
			wantPOS:     "noun",
		},
		{
			name:        "phonetic fallback",
			entries:     []apiEntry{{Word: "rare", Phonetic: "/rɛər/"}},
			wantMeaning: "/rɛər/",
		},
		{name: "nothing usable", entries: []apiEntry{{Word: "rare"}}, wantNil: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := firstDefinition(tt.entries)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("firstDefinition() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("firstDefinition() = nil")
			}
			if got.Meaning != tt.wantMeaning {
				t.Errorf("Meaning = %q, want %q", got.Meaning, tt.wantMeaning)
			}
			if got.PartOfSpeech != tt.wantPOS {
				t.Errorf("PartOfSpeech = %q, want %q", got.PartOfSpeech, tt.wantPOS)
			}
		})
	}
}
