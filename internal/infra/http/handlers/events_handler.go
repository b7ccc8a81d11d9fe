package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vportela/leadcrm/internal/entity"
	"github.com/vportela/leadcrm/internal/infra/http/middleware"
	"github.com/vportela/leadcrm/internal/usecase"
)

// EventsHandler streams lead change events over SSE. Clients keep a local
// cache and merge events by id; a dropped event is recovered by refetching
// the list, so delivery here is best-effort.
type EventsHandler struct {
	Feed *usecase.Feed
}

func NewEventsHandler(feed *usecase.Feed) *EventsHandler {
	return &EventsHandler{Feed: feed}
}

func (h *EventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	auth := middleware.AuthFromContext(r.Context())
	sub := h.Feed.Subscribe(scopePredicate(auth), 32)
	defer sub.Cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-sub.C:
			if !open {
				return
			}
			body, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, body)
			flusher.Flush()
		}
	}
}

// scopePredicate applies the same visibility rule as the list endpoint.
// Deletes carry no row, so non-admins only learn the id of rows they could
// already see; a stale delete for a foreign id is a no-op merge client-side.
func scopePredicate(auth entity.AuthContext) usecase.Predicate {
	if auth.IsAdmin() {
		return nil
	}
	return func(ev entity.ChangeEvent) bool {
		if ev.Lead == nil {
			return ev.Type == entity.ChangeDelete
		}
		return ev.Lead.OwnerID == auth.UserID
	}
}
