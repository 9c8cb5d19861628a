package label

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNominatimResolver_ResolvesInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reverse" {
			t.Errorf("path = %q, want /reverse", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != "aurora-compass-test" {
			t.Errorf("User-Agent = %q", ua)
		}
		switch r.URL.Query().Get("lat") {
		case "67.500000":
			w.Write([]byte(`{"display_name":"Kiruna, Sweden","address":{"city":"Kiruna","country":"Sweden"}}`))
		default:
			w.Write([]byte(`{"display_name":"Southern Ocean","address":{}}`))
		}
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.URL, "aurora-compass-test")
	got, err := r.Resolve(context.Background(), []Point{
		{ID: "a", LatitudeDeg: 67.5, LongitudeDeg: 22.1},
		{ID: "b", LatitudeDeg: -65.0, LongitudeDeg: 140.0},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d points, want 2", len(got))
	}
	if got[0].ID != "a" || got[0].Name != "Kiruna" {
		t.Errorf("point 0 = %+v, want ID a named Kiruna", got[0])
	}
	if got[1].ID != "b" || got[1].Name != "Southern Ocean" {
		t.Errorf("point 1 = %+v, want ID b with raw display name", got[1])
	}
}

func TestNominatimResolver_NotFoundIsSilentlyEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.URL, "")
	got, err := r.Resolve(context.Background(), []Point{{ID: "a", LatitudeDeg: 0, LongitudeDeg: 0}})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got[0].Name != "" {
		t.Errorf("Name = %q, want empty for unresolvable point", got[0].Name)
	}
}

func TestNominatimResolver_ServerErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r := NewNominatimResolver(srv.URL, "")
	if _, err := r.Resolve(context.Background(), []Point{{ID: "a"}}); err == nil {
		t.Errorf("expected error for HTTP 500")
	}
}
