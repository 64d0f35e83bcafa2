package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/novocode/novocode-api/pkg/logger"
	"go.uber.org/zap"
)

// LogsHandler ingests log batches from the public site and appends them as
// JSON lines to a writer (a rotated file in production).
type LogsHandler struct {
	out io.Writer
	mu  sync.Mutex
}

type LogEntry struct {
	Timestamp string         `json:"timestamp" binding:"required,max=64"`
	Level     string         `json:"level" binding:"required,oneof=debug info warn error"`
	Message   string         `json:"message" binding:"required,max=2000"`
	Context   map[string]any `json:"context,omitempty"`
}

type LogBatchRequest struct {
	Logs []LogEntry `json:"logs" binding:"required,min=1,max=100,dive"`
}

// Keys the site may not override.
var reservedLogKeys = map[string]struct{}{
	"ts": {}, "level": {}, "msg": {}, "service": {},
}

func NewLogsHandler(out io.Writer) *LogsHandler {
	return &LogsHandler{out: out}
}

func (h *LogsHandler) ReceiveSiteLogs(c *gin.Context) {
	var req LogBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	if err := h.write(req.Logs); err != nil {
		logger.Error("Failed to write site logs", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "Failed to write logs", err)
		return
	}

	logger.Debug("Received site logs", zap.Int("count", len(req.Logs)))
	c.JSON(http.StatusOK, gin.H{"success": true, "received": len(req.Logs)})
}

func (h *LogsHandler) write(entries []LogEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	encoder := json.NewEncoder(h.out)
	for _, entry := range entries {
		line := make(map[string]any, len(entry.Context)+4)
		for k, v := range entry.Context {
			if _, reserved := reservedLogKeys[k]; !reserved {
				line[k] = v
			}
		}
		line["ts"] = entry.Timestamp
		line["level"] = entry.Level
		line["msg"] = entry.Message
		line["service"] = "site"

		if err := encoder.Encode(line); err != nil {
			return fmt.Errorf("failed to encode log entry: %w", err)
		}
	}

	return nil
}
