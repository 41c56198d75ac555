package model

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"persona-l/config"
)

// CheckBackend pings the configured backend once at startup so an
// unreachable server surfaces before the first persona request.
func (m *Model) CheckBackend() tea.Cmd {
	backend := m.Backend
	if backend == nil {
		return nil
	}

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return BackendStatusMsg{Backend: backend.Name(), Err: backend.Ping(ctx)}
	}
}

// RefreshQuota fetches the current quota snapshot from the backend
func (m *Model) RefreshQuota() tea.Cmd {
	idsvc := m.Identity
	if idsvc == nil {
		return nil
	}

	return func() tea.Msg {
		info, err := idsvc.RequestInfo(context.Background())
		return QuotaMsg{Info: info, Err: err}
	}
}

// ApplyQuota commits a quota refresh. Failures keep the previous
// snapshot; the quota display is informational only.
func (m *Model) ApplyQuota(msg QuotaMsg) {
	if msg.Err != nil {
		// Quota is informational; a failed refresh keeps the last
		// known snapshot without bothering the user.
		if config.DebugLog != nil {
			config.DebugLog.Printf("[Model] quota refresh failed: %v", msg.Err)
		}
		return
	}
	m.Quota = msg.Info
	m.QuotaKnown = true
}
