package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/novocode/novocode-api/pkg/httpclient"
	"github.com/novocode/novocode-api/pkg/logger"
	"go.uber.org/zap"
)

// CallAsync calls a trigger URL asynchronously with the record id appended.
// Used to notify automations after a record is created. Failures are logged
// but don't block the operation.
func CallAsync(triggerURL, recordID string, httpClient httpclient.Client) {
	if triggerURL == "" {
		// No trigger URL configured, skip silently
		return
	}

	go func() {
		targetURL := fmt.Sprintf("%s%s", triggerURL, url.QueryEscape(recordID))

		logger.Info("Calling trigger URL",
			zap.String("url", targetURL),
			zap.String("record_id", recordID))

		resp, err := httpClient.Get(targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.String("record_id", recordID))
			return
		}
		defer resp.Body.Close()

		logStatus("Trigger URL", resp.StatusCode, zap.String("url", targetURL), zap.String("record_id", recordID))
	}()
}

// RevalidateAsync asks the public site to rebuild the given paths, so that
// moderation results show up without waiting for the page cache to expire.
func RevalidateAsync(revalidateURL, secret string, paths []string, httpClient httpclient.Client) {
	if revalidateURL == "" || len(paths) == 0 {
		return
	}

	go func() {
		payload, err := json.Marshal(map[string]interface{}{"paths": paths})
		if err != nil {
			logger.Error("Failed to encode revalidation payload", zap.Error(err))
			return
		}

		req, err := http.NewRequest(http.MethodPost, revalidateURL, bytes.NewReader(payload))
		if err != nil {
			logger.Error("Failed to build revalidation request", zap.Error(err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		if secret != "" {
			req.Header.Set("Authorization", "Bearer "+secret)
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			logger.Error("Failed to call revalidation URL",
				zap.Error(err),
				zap.Strings("paths", paths))
			return
		}
		defer resp.Body.Close()

		logStatus("Revalidation", resp.StatusCode, zap.Strings("paths", paths))
	}()
}

func logStatus(what string, statusCode int, fields ...zap.Field) {
	fields = append(fields, zap.Int("status_code", statusCode))
	if statusCode >= 200 && statusCode < 300 {
		logger.Info(what+" called successfully", fields...)
		return
	}
	logger.Warn(what+" returned non-success status", fields...)
}
