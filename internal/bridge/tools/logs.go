package tools

import "github.com/p1va/lspbridge/internal/bridge/store"

// Logs returns a snapshot of the LogRing with no server interaction.
func (t *Tools) Logs() []LogEntry {
	entries := t.LogRing.Snapshot()
	out := make([]LogEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, LogEntry{
			Type:      logLevelName(e.Level),
			Message:   e.Message,
			Timestamp: e.ReceivedAt.Unix(),
		})
	}
	return out
}

func logLevelName(level store.LogLevel) string {
	switch level {
	case store.LogError:
		return "error"
	case store.LogWarning:
		return "warning"
	case store.LogInfo:
		return "info"
	case store.LogLog:
		return "log"
	default:
		return "log"
	}
}
