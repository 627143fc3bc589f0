package home

import (
	"net/http"

	"go.uber.org/zap"
)

// runningMessage is what GET / answers; uptime checks match on it.
const runningMessage = "clubsphere server is running now"

// Handler serves the service root.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – liveness text                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(runningMessage))
}
