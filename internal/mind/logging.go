package mind

import (
	"log"
	"strings"

	"github.com/keshon/reverie/internal/ai"
)

// LogModelCall logs params and a preview of the prompt before a provider
// call. Call immediately before provider.Generate.
func LogModelCall(action string, messages []ai.Message, params map[string]string) {
	var parts []string
	for k, v := range params {
		if v != "" {
			parts = append(parts, k+"="+v)
		}
	}
	log.Printf("[MIND] action=%s %s messages=%d", action, strings.Join(parts, " "), len(messages))
	if len(messages) == 0 {
		return
	}
	log.Printf("[MIND] system_len=%d system_preview: %s", len(messages[0].Content), previewForLog(messages[0].Content, 500))
}

func previewForLog(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
