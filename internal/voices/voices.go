// Package voices holds the catalog of synthesis voices and lets callers
// pick one by locale, language or gender.
package voices

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Voice describes one synthesis voice as reported by the voice list
// endpoint.
type Voice struct {
	Name         string `json:"Name"`
	ShortName    string `json:"ShortName"`
	Gender       string `json:"Gender"`
	Locale       string `json:"Locale"`
	FriendlyName string `json:"FriendlyName,omitempty"`
}

// Filter narrows a catalog search. Empty fields match everything.
type Filter struct {
	Gender   string
	Locale   string
	Language string // locale prefix, e.g. "en"
}

// Manager answers voice lookups over a fixed catalog snapshot.
type Manager struct {
	voices []Voice
}

// NewManager builds a manager over an explicit catalog.
func NewManager(catalog []Voice) *Manager {
	return &Manager{voices: catalog}
}

// Load fetches the catalog from endpoint, falling back to the built-in
// list when endpoint is empty.
func Load(ctx context.Context, endpoint string) (*Manager, error) {
	if endpoint == "" {
		return NewManager(builtinCatalog()), nil
	}
	catalog, err := Fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return NewManager(catalog), nil
}

// Fetch retrieves a JSON voice list from endpoint.
func Fetch(ctx context.Context, endpoint string) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build voice list request: %w", err)
	}
	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch voice list: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("voice list endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var catalog []Voice
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode voice list: %w", err)
	}
	return catalog, nil
}

// All returns the catalog snapshot.
func (m *Manager) All() []Voice {
	return m.voices
}

// Find returns the voices matching the filter, in catalog order.
func (m *Manager) Find(f Filter) []Voice {
	var matched []Voice
	for _, v := range m.voices {
		if f.Gender != "" && !strings.EqualFold(v.Gender, f.Gender) {
			continue
		}
		if f.Locale != "" && !strings.EqualFold(v.Locale, f.Locale) {
			continue
		}
		if f.Language != "" {
			lang, _, _ := strings.Cut(v.Locale, "-")
			if !strings.EqualFold(lang, f.Language) {
				continue
			}
		}
		matched = append(matched, v)
	}
	return matched
}

// Lookup resolves a short name to a catalog entry.
func (m *Manager) Lookup(shortName string) (Voice, bool) {
	for _, v := range m.voices {
		if strings.EqualFold(v.ShortName, shortName) {
			return v, true
		}
	}
	return Voice{}, false
}

// builtinCatalog is the offline subset used when no endpoint is
// configured. Entries mirror the service's neural voice naming.
func builtinCatalog() []Voice {
	return []Voice{
		{Name: "Microsoft Server Speech Text to Speech Voice (en-US, AriaNeural)", ShortName: "en-US-AriaNeural", Gender: "Female", Locale: "en-US"},
		{Name: "Microsoft Server Speech Text to Speech Voice (en-US, GuyNeural)", ShortName: "en-US-GuyNeural", Gender: "Male", Locale: "en-US"},
		{Name: "Microsoft Server Speech Text to Speech Voice (en-GB, SoniaNeural)", ShortName: "en-GB-SoniaNeural", Gender: "Female", Locale: "en-GB"},
		{Name: "Microsoft Server Speech Text to Speech Voice (de-DE, KatjaNeural)", ShortName: "de-DE-KatjaNeural", Gender: "Female", Locale: "de-DE"},
		{Name: "Microsoft Server Speech Text to Speech Voice (fr-FR, DeniseNeural)", ShortName: "fr-FR-DeniseNeural", Gender: "Female", Locale: "fr-FR"},
		{Name: "Microsoft Server Speech Text to Speech Voice (ja-JP, NanamiNeural)", ShortName: "ja-JP-NanamiNeural", Gender: "Female", Locale: "ja-JP"},
		{Name: "Microsoft Server Speech Text to Speech Voice (es-ES, ElviraNeural)", ShortName: "es-ES-ElviraNeural", Gender: "Female", Locale: "es-ES"},
	}
}
