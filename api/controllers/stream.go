package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mvalledor/stocktrace-backend/api/responses"
	pkgerrors "github.com/mvalledor/stocktrace-backend/pkg/errors"
	"github.com/mvalledor/stocktrace-backend/pkg/logger"
	"github.com/mvalledor/stocktrace-backend/pkg/watch"
)

const streamHeartbeatInterval = 30 * time.Second

type streamEvent struct {
	Collection string `json:"collection"`
	At         string `json:"at"`
}

// WatchCollection streams change notifications for one collection as
// server-sent events. Each event only means the collection changed; clients
// re-fetch their projection through the list endpoints.
func WatchCollection(hub *watch.Hub, collection watch.Collection, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if hub == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "watch hub unavailable"))
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "streaming unsupported"))
			return
		}

		sub, cancel := hub.Subscribe(collection)
		defer cancel()

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		heartbeat := time.NewTicker(streamHeartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-heartbeat.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()
			case event, open := <-sub.C:
				if !open {
					return
				}
				payload, err := json.Marshal(streamEvent{
					Collection: string(event.Collection),
					At:         event.At.Format(time.RFC3339Nano),
				})
				if err != nil {
					continue
				}
				fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
				flusher.Flush()
			}
		}
	}
}
