package voices

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFindByLanguage(t *testing.T) {
	m, err := Load(context.Background(), "")
	if err != nil {
		t.Fatalf("load builtin catalog: %v", err)
	}
	english := m.Find(Filter{Language: "en"})
	if len(english) == 0 {
		t.Fatal("expected english voices in builtin catalog")
	}
	for _, v := range english {
		if v.Locale[:2] != "en" {
			t.Fatalf("non-english voice %q matched", v.ShortName)
		}
	}
}

func TestFindByGenderAndLocale(t *testing.T) {
	m := NewManager([]Voice{
		{ShortName: "en-US-AriaNeural", Gender: "Female", Locale: "en-US"},
		{ShortName: "en-US-GuyNeural", Gender: "Male", Locale: "en-US"},
		{ShortName: "de-DE-KatjaNeural", Gender: "Female", Locale: "de-DE"},
	})
	got := m.Find(Filter{Gender: "female", Locale: "en-us"})
	if len(got) != 1 || got[0].ShortName != "en-US-AriaNeural" {
		t.Fatalf("unexpected match %v", got)
	}
}

func TestLookup(t *testing.T) {
	m := NewManager(builtinCatalog())
	if _, ok := m.Lookup("en-US-AriaNeural"); !ok {
		t.Fatal("expected to find en-US-AriaNeural")
	}
	if _, ok := m.Lookup("xx-XX-Nobody"); ok {
		t.Fatal("unexpected match for unknown voice")
	}
}

func TestFetch(t *testing.T) {
	catalog := []Voice{{ShortName: "en-US-AriaNeural", Gender: "Female", Locale: "en-US"}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(catalog)
	}))
	defer srv.Close()

	got, err := Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 1 || got[0].ShortName != "en-US-AriaNeural" {
		t.Fatalf("unexpected catalog %v", got)
	}
}

func TestFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
