// Package pages renders the dashboard.
package pages

// Helper functions for dashboard components

func dotClass(enabled bool) string {
	if enabled {
		return "status-dot on"
	}
	return "status-dot off"
}
