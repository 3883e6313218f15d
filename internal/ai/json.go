package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// cleanCodeFence removes markdown code block wrappers from model replies.
// Models often wrap JSON in ```json ... ``` blocks even when instructed not to.
func cleanCodeFence(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// extractJSONObject returns the first balanced {...} block in text. String
// literals are respected so braces inside values don't confuse the scan.
func extractJSONObject(text string) (string, error) {
	start := strings.Index(text, "{")
	if start < 0 {
		return "", fmt.Errorf("no JSON object found in reply")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced JSON object in reply")
}

// decodeReply extracts the first balanced JSON object from a model reply and
// unmarshals it into out. It fails closed: any ambiguity or parse failure is
// reported as an InvalidResponseError carrying the raw reply.
func decodeReply(provider, op, reply string, out any) error {
	cleaned := cleanCodeFence(reply)

	obj, err := extractJSONObject(cleaned)
	if err != nil {
		return &InvalidResponseError{
			ProviderError: newProviderError(provider, op, "reply contains no parseable JSON object", err),
			Raw:           reply,
		}
	}

	if err := json.Unmarshal([]byte(obj), out); err != nil {
		return &InvalidResponseError{
			ProviderError: newProviderError(provider, op, "failed to decode reply JSON", err),
			Raw:           reply,
		}
	}

	return nil
}
