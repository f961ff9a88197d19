package knowledge

import (
	"encoding/json"
	"strings"
	"testing"
)

func loadStore(t *testing.T) *Store {
	t.Helper()
	s, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestLoad(t *testing.T) {
	s := loadStore(t)
	if len(s.chunks) == 0 {
		t.Fatal("embedded document has no chunks")
	}
	for _, chunk := range s.chunks {
		if chunk.ID == "" || chunk.Title == "" {
			t.Fatalf("chunk missing id or title: %+v", chunk)
		}
		if !json.Valid(chunk.Facts) {
			t.Fatalf("chunk %s has invalid canonical facts", chunk.ID)
		}
	}
}

func TestFindChunk(t *testing.T) {
	s := loadStore(t)

	cases := []struct {
		keyword string
		wantID  string
	}{
		{"models.image.v1", "models.image.v1"},        // by id
		{"Supported Image Models", "models.image.v1"}, // by title
		{"supported image models", "models.image.v1"}, // case-insensitive
		{"  IMAGE  ", "models.image.v1"},              // trimmed retrieval key
		{"hunyuan", "models.image.v1"},
		{"pricing", "pricing.api.v1"},
		{"plan", "pricing.plans.v1"},
	}
	for _, tc := range cases {
		chunk := s.FindChunk(tc.keyword)
		if chunk == nil {
			t.Fatalf("FindChunk(%q) = nil", tc.keyword)
		}
		if chunk.ID != tc.wantID {
			t.Fatalf("FindChunk(%q) = %s, want %s", tc.keyword, chunk.ID, tc.wantID)
		}
	}
}

func TestFindChunkMisses(t *testing.T) {
	s := loadStore(t)
	for _, keyword := range []string{"", "   ", "no such thing", "imag"} {
		if chunk := s.FindChunk(keyword); chunk != nil {
			t.Fatalf("FindChunk(%q) = %s, want nil", keyword, chunk.ID)
		}
	}
}

func TestFormatChunk(t *testing.T) {
	s := loadStore(t)

	out := s.FormatChunk("pricing")
	if out == "" {
		t.Fatal("FormatChunk returned empty for a known chunk")
	}
	if !json.Valid([]byte(out)) {
		t.Fatalf("formatted chunk is not valid JSON:\n%s", out)
	}

	// top-level keys (two-space indent) must come out sorted
	var keys []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, `  "`) {
			end := strings.Index(line[3:], `"`)
			if end >= 0 {
				keys = append(keys, line[3:3+end])
			}
		}
	}
	if len(keys) < 2 {
		t.Fatalf("expected several top-level keys, got %v", keys)
	}
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}

	if s.FormatChunk("unknown keyword") != "" {
		t.Fatal("FormatChunk must return empty for unknown keywords")
	}
}

func TestInstructionTextStable(t *testing.T) {
	s := loadStore(t)
	text := s.InstructionText()
	if text != s.InstructionText() {
		t.Fatal("instruction text must be stable across calls")
	}

	for _, want := range []string{
		"Foldspace T2V",
		"Supported Image Models:",
		"Supported Video Models:",
		"Pricing Highlights:",
		"API Essentials:",
		"POST /create",
		"GET /status",
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("instruction text missing %q:\n%s", want, text)
		}
	}

	other := loadStore(t)
	if other.InstructionText() != text {
		t.Fatal("instruction text differs between loads")
	}
}

func TestHandleUserTextHelp(t *testing.T) {
	s := loadStore(t)
	want := s.InstructionText()

	for _, input := range []string{"", "   ", "help", "HELP", "/help", "instructions", "menu", " Menu "} {
		if got := s.HandleUserText(input); got != want {
			t.Fatalf("HandleUserText(%q) did not return the instruction sheet", input)
		}
	}
}

func TestHandleUserTextSections(t *testing.T) {
	s := loadStore(t)

	out := s.HandleUserText("what are your image models?")
	if !strings.Contains(out, "models.image.v1 facts:") {
		t.Fatalf("image query missing image facts:\n%s", out)
	}
	if !strings.Contains(out, "```json") {
		t.Fatal("section answer must fence facts as json")
	}

	// a query touching several sections returns them in fixed order
	out = s.HandleUserText("video pricing please")
	videoIdx := strings.Index(out, "models.video.v1 facts:")
	pricingIdx := strings.Index(out, "pricing.api.v1 facts:")
	if videoIdx < 0 || pricingIdx < 0 {
		t.Fatalf("combined query missing sections:\n%s", out)
	}
	if videoIdx > pricingIdx {
		t.Fatal("sections must come out in registry order")
	}
}

func TestHandleUserTextEcho(t *testing.T) {
	s := loadStore(t)
	out := s.HandleUserText("render a sunset over mars")
	if !strings.Contains(out, "You said: render a sunset over mars") {
		t.Fatalf("echo answer missing original text:\n%s", out)
	}
	if !strings.Contains(out, "Send `instructions` for the cheat sheet.") {
		t.Fatalf("echo answer missing hint:\n%s", out)
	}
}
