package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"news-crawler/domain"
	"news-crawler/logger"
)

const (
	streamPollInterval = 2 * time.Second
	streamHeartbeat    = 10 * time.Second
)

// StreamStatus pushes crawl progress over SSE. An update event is sent
// whenever the snapshot changes; the stream closes with an end event once
// the session completes. Unknown sessions get a plain 404 before any SSE
// bytes go out.
func (h *Handler) StreamStatus(c echo.Context) error {
	searchID := c.Param("search_id")
	ctx := c.Request().Context()

	first, err := h.status.Snapshot(ctx, searchID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Status: "error", Message: notFound.Error()})
		}
		return serverError(c, err)
	}

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)

	flusher, ok := res.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	poll := time.NewTicker(streamPollInterval)
	defer poll.Stop()
	heartbeat := time.NewTicker(streamHeartbeat)
	defer heartbeat.Stop()

	var prev *domain.ProgressSnapshot

	emit := func(snap *domain.ProgressSnapshot) (done bool) {
		if snap.Changed(prev) {
			writeEvent(res, flusher, "update", snapshotJSON(snap))
			prev = snap
		}
		if snap.Status == domain.SessionCompleted {
			writeEvent(res, flusher, "end", map[string]any{
				"search_id":   searchID,
				"final_count": snap.TotalSaved,
			})
			return true
		}
		return false
	}

	pollOnce := func() (done bool) {
		snap, err := h.status.Snapshot(ctx, searchID)
		if err != nil {
			// A session swept away mid-stream ends the stream; transient
			// store failures keep it open.
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				return true
			}
			logger.Logger.Warn("progress snapshot failed", "search_id", searchID, "error", err)
			return false
		}
		return emit(snap)
	}

	if emit(first) {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-heartbeat.C:
			fmt.Fprint(res, ": heartbeat\n\n")
			flusher.Flush()
		case <-poll.C:
			if pollOnce() {
				return nil
			}
		}
	}
}

func writeEvent(res *echo.Response, flusher http.Flusher, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Logger.Error("marshal sse payload", "error", err)
		return
	}
	fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, data)
	flusher.Flush()
}
