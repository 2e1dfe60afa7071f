package intent

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

// --- Mocks ---

type mockCompleter struct {
	response string
	err      error
	called   bool
	lastUser string
}

func (m *mockCompleter) Complete(_ context.Context, _ string, user string) (string, error) {
	m.called = true
	m.lastUser = user
	return m.response, m.err
}

func newTestExtractor(c Completer) *Extractor {
	return New(c, 5*time.Second)
}

// --- Tests ---

func TestExtract_Structured(t *testing.T) {
	comp := &mockCompleter{
		response: `{"category": "Laptop", "max_price": 1500, "min_rating": 4, "keywords": ["gaming", "lightweight"]}`,
	}
	ex := newTestExtractor(comp)

	filter := ex.Extract(context.Background(), "I need a gaming laptop under $1500")

	if filter.Category == nil || *filter.Category != "laptop" {
		t.Errorf("expected category laptop, got %v", filter.Category)
	}
	if filter.MaxPrice == nil || *filter.MaxPrice != 1500 {
		t.Errorf("expected max price 1500, got %v", filter.MaxPrice)
	}
	if filter.MinRating != 4 {
		t.Errorf("expected min rating 4, got %v", filter.MinRating)
	}
	if !reflect.DeepEqual(filter.Keywords, []string{"gaming", "lightweight"}) {
		t.Errorf("unexpected keywords: %v", filter.Keywords)
	}
}

func TestExtract_CodeFencedResponse(t *testing.T) {
	comp := &mockCompleter{
		response: "```json\n{\"category\": \"shoes\", \"max_price\": null, \"min_rating\": null, \"keywords\": []}\n```",
	}
	ex := newTestExtractor(comp)

	filter := ex.Extract(context.Background(), "running shoes")

	if filter.Category == nil || *filter.Category != "shoes" {
		t.Errorf("expected category shoes, got %v", filter.Category)
	}
	if filter.MaxPrice != nil {
		t.Errorf("null max_price must stay unset, got %v", *filter.MaxPrice)
	}
}

func TestExtract_ProviderError_DegradesToKeywords(t *testing.T) {
	comp := &mockCompleter{err: errors.New("connection refused")}
	ex := newTestExtractor(comp)

	filter := ex.Extract(context.Background(), "cheap headphones")

	if filter.Category != nil || filter.MaxPrice != nil || filter.MinRating != 0 {
		t.Errorf("degraded filter must have no hard constraints: %+v", filter)
	}
	if !reflect.DeepEqual(filter.Keywords, []string{"cheap", "headphones"}) {
		t.Errorf("expected raw query tokens, got %v", filter.Keywords)
	}
}

func TestExtract_MalformedResponse_DegradesToKeywords(t *testing.T) {
	comp := &mockCompleter{response: "Sure! Here are some great options for you."}
	ex := newTestExtractor(comp)

	filter := ex.Extract(context.Background(), "cheap headphones")

	if !reflect.DeepEqual(filter.Keywords, []string{"cheap", "headphones"}) {
		t.Errorf("expected raw query tokens, got %v", filter.Keywords)
	}
}

func TestParseFilter_FieldLevelFallbacks(t *testing.T) {
	t.Run("negative price dropped", func(t *testing.T) {
		f, err := parseFilter(`{"category": null, "max_price": -20, "keywords": []}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.MaxPrice != nil {
			t.Errorf("negative price must be dropped, got %v", *f.MaxPrice)
		}
	})

	t.Run("rating clamped to 5", func(t *testing.T) {
		f, err := parseFilter(`{"min_rating": 9}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.MinRating != 5 {
			t.Errorf("rating must clamp to 5, got %v", f.MinRating)
		}
	})

	t.Run("quoted numbers accepted", func(t *testing.T) {
		f, err := parseFilter(`{"max_price": "1500", "min_rating": "4.5"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.MaxPrice == nil || *f.MaxPrice != 1500 || f.MinRating != 4.5 {
			t.Errorf("quoted numbers must parse, got %+v", f)
		}
	})

	t.Run("category any treated as unset", func(t *testing.T) {
		f, err := parseFilter(`{"category": "any"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if f.Category != nil {
			t.Errorf(`category "any" must stay unset, got %v`, *f.Category)
		}
	})
}

func TestParseFilter_KeywordsNormalized(t *testing.T) {
	f, err := parseFilter(`{"keywords": [" Gaming ", "gaming", "", "RGB"]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(f.Keywords, []string{"gaming", "rgb"}) {
		t.Errorf("keywords must be lowercased and deduplicated, got %v", f.Keywords)
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("I need a Gaming Laptop under $1500, please!")
	want := []string{"gaming", "laptop", "1500"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestTokenize_DeduplicatesAndKeepsOrder(t *testing.T) {
	got := Tokenize("shoes shoes waterproof shoes")
	want := []string{"shoes", "waterproof"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtract_PromptCarriesQuery(t *testing.T) {
	comp := &mockCompleter{response: `{}`}
	ex := newTestExtractor(comp)

	ex.Extract(context.Background(), "trail running shoes")

	if !comp.called {
		t.Fatal("expected completer to be called")
	}
	if want := `"trail running shoes"`; !strings.Contains(comp.lastUser, want) {
		t.Errorf("prompt must embed the query, got %q", comp.lastUser)
	}
}
