package knowledge

import (
	"fmt"
	"strings"
)

// sectionKeywords maps query tokens to the chunk answering them. Order
// matters: matched sections are emitted in this sequence.
var sectionKeywords = []struct {
	token   string
	chunkID string
}{
	{"image", "models.image.v1"},
	{"video", "models.video.v1"},
	{"pricing", "pricing.api.v1"},
	{"plan", "pricing.plans.v1"},
	{"create", "endpoints.create.v1"},
	{"status", "endpoints.status.v1"},
}

// helpAliases trigger the instruction sheet verbatim.
var helpAliases = map[string]bool{
	"help":         true,
	"/help":        true,
	"instructions": true,
	"menu":         true,
}

// HandleUserText answers a free-text query: the instruction sheet for
// empty input or help aliases, chunked facts for recognized tokens, or
// an echo prompt otherwise.
func (s *Store) HandleUserText(text string) string {
	normalized := strings.TrimSpace(text)
	if normalized == "" {
		return s.instructionText
	}

	lowered := strings.ToLower(normalized)
	if helpAliases[lowered] {
		return s.instructionText
	}

	var snippets []string
	for _, section := range sectionKeywords {
		if strings.Contains(lowered, section.token) {
			facts := s.FormatChunk(section.chunkID)
			if facts != "" {
				snippets = append(snippets, fmt.Sprintf("%s facts:\n```json\n%s\n```", section.chunkID, facts))
			}
		}
	}

	if len(snippets) > 0 {
		return fmt.Sprintf("Foldspace T2V references for `%s`:\n\n%s", normalized, strings.Join(snippets, "\n\n"))
	}

	return fmt.Sprintf(
		"Foldspace T2V ready. Enter your prompt plus model choices.\nYou said: %s\n\nSend `instructions` for the cheat sheet.",
		normalized,
	)
}
