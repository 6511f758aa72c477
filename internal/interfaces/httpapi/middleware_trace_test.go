package httpapi

import "testing"

func TestShouldTraceRequest(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "/healthz", want: false},
		{path: " /readyz ", want: false},
		{path: "/v1/sessions/42/notifications", want: false},
		{path: "/v1/navigation/stream", want: false},
		{path: "/v1/sessions/42/view", want: true},
		{path: "/v1/sessions/42/events", want: true},
		{path: "/v1/favorites/team", want: true},
		{path: "/", want: true},
	}

	for _, tt := range tests {
		if got := shouldTraceRequest(tt.path); got != tt.want {
			t.Fatalf("shouldTraceRequest(%q)=%v want=%v", tt.path, got, tt.want)
		}
	}
}

func TestSpanRoute_FoldsNumericSegments(t *testing.T) {
	tests := map[string]string{
		"/v1/sessions/42/view":              "/v1/sessions/{id}/view",
		"/v1/games/7/players/p10/stats":     "/v1/games/{id}/players/p10/stats",
		"/v1/favorites/competitions/1001":   "/v1/favorites/competitions/{id}",
		"/v1/live-activities":               "/v1/live-activities",
		"/v1/games/2024/players/2025/stats": "/v1/games/{id}/players/{id}/stats",
	}
	for in, want := range tests {
		if got := spanRoute(in); got != want {
			t.Fatalf("spanRoute(%q)=%q want=%q", in, got, want)
		}
	}
}
