package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/shoprank/internal/domain"
)

func f64(v float64) *float64 { return &v }

func str(s string) *string { return &s }

func TestNew_Defaults(t *testing.T) {
	r, err := New("wireless headphones", nil, nil, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, r.Limit())
	}
	if r.Budget() != nil || r.Category() != nil {
		t.Error("expected absent filters to stay nil")
	}
}

func TestNew_TrimsQuery(t *testing.T) {
	r, err := New("  yoga mat  ", nil, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "yoga mat" {
		t.Errorf("expected trimmed query, got %q", r.Query())
	}
}

func TestNew_RejectsEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := New(q, nil, nil, 10)
		if !errors.Is(err, domain.ErrInvalidRequest) {
			t.Errorf("query %q: expected ErrInvalidRequest, got %v", q, err)
		}
	}
}

func TestNew_RejectsOverlongQuery(t *testing.T) {
	_, err := New(strings.Repeat("x", MaxQueryLength+1), nil, nil, 10)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_RejectsNegativeBudget(t *testing.T) {
	_, err := New("laptop", f64(-10), nil, 10)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_RejectsBlankCategory(t *testing.T) {
	_, err := New("laptop", nil, str("  "), 10)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_RejectsNegativeLimit(t *testing.T) {
	_, err := New("laptop", nil, nil, -1)
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestNew_ClampsLimit(t *testing.T) {
	r, err := New("laptop", nil, nil, MaxLimit+50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", MaxLimit, r.Limit())
	}
}

func TestMatches(t *testing.T) {
	p := domain.Product{ID: "p1", Category: "Electronics", Price: 49.99}

	cases := []struct {
		name     string
		budget   *float64
		category *string
		want     bool
	}{
		{"no filters", nil, nil, true},
		{"budget passes", f64(50), nil, true},
		{"budget exact boundary", f64(49.99), nil, true},
		{"budget fails", f64(20), nil, false},
		{"category passes", nil, str("Electronics"), true},
		{"category fails", nil, str("Clothing"), false},
		{"both fail on one", f64(100), str("Clothing"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := New("q", tc.budget, tc.category, 10)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if got := r.Matches(&p); got != tc.want {
				t.Errorf("Matches = %v, want %v", got, tc.want)
			}
		})
	}
}
