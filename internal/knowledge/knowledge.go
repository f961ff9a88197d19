// Package knowledge holds the embedded product reference document and
// answers FAQ-style keyword queries against it.
package knowledge

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

//go:embed embedding.json
var embeddingSource []byte

// Chunk is a named, keyword-searchable unit of reference facts.
// Chunks are immutable after load.
type Chunk struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Kind          string          `json:"kind"`
	RetrievalKeys []string        `json:"retrieval_keys"`
	Facts         json.RawMessage `json:"canonical_facts"`
}

type document struct {
	Version string  `json:"smart_chunk_version"`
	Chunks  []Chunk `json:"chunks"`
}

// Store is the process-wide, read-only chunk collection, initialized at
// startup from the embedded document.
type Store struct {
	chunks          []Chunk
	instructionText string
}

// Load parses the embedded document and prebuilds the instruction sheet.
func Load() (*Store, error) {
	var doc document
	if err := json.Unmarshal(embeddingSource, &doc); err != nil {
		return nil, fmt.Errorf("parse embedded knowledge document: %w", err)
	}
	s := &Store{chunks: doc.Chunks}
	s.instructionText = s.buildInstructionText()
	return s, nil
}

// MustLoad is Load for callers where a broken embedded document is a
// programming error.
func MustLoad() *Store {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// FindChunk returns the chunk whose id, title, or retrieval keys contain
// the case-insensitive, trimmed keyword. No partial or fuzzy matching;
// nil when nothing matches.
func (s *Store) FindChunk(keyword string) *Chunk {
	normalized := strings.ToLower(strings.TrimSpace(keyword))
	if normalized == "" {
		return nil
	}
	for i := range s.chunks {
		chunk := &s.chunks[i]
		if strings.ToLower(chunk.ID) == normalized || strings.ToLower(chunk.Title) == normalized {
			return chunk
		}
		for _, key := range chunk.RetrievalKeys {
			if strings.ToLower(key) == normalized {
				return chunk
			}
		}
	}
	return nil
}

// FormatChunk renders a found chunk's canonical facts as pretty-printed,
// key-sorted JSON. Returns "" when the keyword matches nothing.
func (s *Store) FormatChunk(keyword string) string {
	chunk := s.FindChunk(keyword)
	if chunk == nil {
		return ""
	}
	return sortedIndentedJSON(chunk.Facts)
}

// InstructionText returns the static help sheet built at load time. The
// result is byte-for-byte stable across calls.
func (s *Store) InstructionText() string {
	return s.instructionText
}

func (s *Store) buildInstructionText() string {
	parts := []string{
		"Foldspace T2V • Enter a prompt, choose image & video models, then render.",
		"Supported Image Models:",
		s.summarizeModels("models.image.v1"),
		"Supported Video Models:",
		s.summarizeModels("models.video.v1"),
		"Pricing Highlights:",
		s.summarizePricing(),
		"API Essentials:",
		"- POST /create (Bearer auth) with prompt, duration (<=180s), image_model, video_model, tone, aspect_ratio.",
		"- GET /status?request_id=<id> to poll progress (fields: prompt/image/audio/frame/video generation, etc.).",
		"- Creator plan: $49.99/mo, 5k credits, $10 per extra 1k credits.",
	}
	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "\n")
}

type modelEntry struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Notes string `json:"notes"`
}

func (s *Store) summarizeModels(chunkID string) string {
	chunk := s.FindChunk(chunkID)
	if chunk == nil {
		return ""
	}
	var facts struct {
		Models  []modelEntry `json:"models"`
		Aliases *struct {
			Aliases map[string]string `json:"aliases"`
		} `json:"aliases_and_inconsistencies"`
	}
	if err := json.Unmarshal(chunk.Facts, &facts); err != nil {
		return ""
	}

	lines := make([]string, 0, len(facts.Models))
	for _, entry := range facts.Models {
		lines = append(lines, fmt.Sprintf("- %s (`%s`)", entry.Name, entry.Key))
	}
	out := strings.Join(lines, "\n")
	if facts.Aliases != nil && len(facts.Aliases.Aliases) > 0 {
		keys := make([]string, 0, len(facts.Aliases.Aliases))
		for k := range facts.Aliases.Aliases {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s→%s", k, facts.Aliases.Aliases[k]))
		}
		out += "\n  Aliases: " + strings.Join(pairs, ", ")
	}
	return out
}

func (s *Store) summarizePricing() string {
	chunk := s.FindChunk("pricing.api.v1")
	if chunk == nil {
		return ""
	}
	var facts struct {
		Rates []struct {
			Model         string  `json:"model"`
			VideoModelKey string  `json:"video_model_key"`
			CreditsPerSec float64 `json:"credits_per_sec"`
		} `json:"per_second_rates_credits"`
		Multipliers []struct {
			ImageModelKey string  `json:"image_model_key"`
			Multiplier    float64 `json:"multiplier"`
		} `json:"image_multiplier"`
		Formula string `json:"effective_credits_formula"`
	}
	if err := json.Unmarshal(chunk.Facts, &facts); err != nil {
		return ""
	}

	lines := make([]string, 0, len(facts.Rates)+2)
	for _, rate := range facts.Rates {
		lines = append(lines, fmt.Sprintf("- %s (`%s`): %s credits/sec", rate.Model, rate.VideoModelKey, formatNumber(rate.CreditsPerSec)))
	}
	if len(facts.Multipliers) > 0 {
		m := facts.Multipliers[0]
		lines = append(lines, fmt.Sprintf("- Image multiplier: `%s` x%s", m.ImageModelKey, formatNumber(m.Multiplier)))
	}
	lines = append(lines, "- Formula: "+facts.Formula)
	return strings.Join(lines, "\n")
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// sortedIndentedJSON re-marshals raw JSON so that all object keys appear
// in lexicographic order, indented two spaces.
func sortedIndentedJSON(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ""
	}
	var b strings.Builder
	writeSorted(&b, v, 0)
	return b.String()
}

func writeSorted(b *strings.Builder, v any, depth int) {
	indent := strings.Repeat("  ", depth)
	childIndent := strings.Repeat("  ", depth+1)

	switch val := v.(type) {
	case map[string]any:
		if len(val) == 0 {
			b.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(childIndent)
			keyJSON, _ := json.Marshal(k)
			b.Write(keyJSON)
			b.WriteString(": ")
			writeSorted(b, val[k], depth+1)
			if i < len(keys)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent + "}")
	case []any:
		if len(val) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range val {
			b.WriteString(childIndent)
			writeSorted(b, item, depth+1)
			if i < len(val)-1 {
				b.WriteString(",")
			}
			b.WriteString("\n")
		}
		b.WriteString(indent + "]")
	default:
		encoded, _ := json.Marshal(val)
		b.Write(encoded)
	}
}
