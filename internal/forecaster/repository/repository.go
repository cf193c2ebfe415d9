package repository

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang-stock-forecaster/pkg/common"
	"golang-stock-forecaster/pkg/logger"

	"go.uber.org/zap"
)

// maxBodyBytes bounds how much of an upstream response is read.
const maxBodyBytes = 32 << 20

// httpStatusError is returned by getBody for non-2xx responses.
type httpStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// getBody performs a GET with browser-like headers and returns the response body.
// Non-2xx responses yield *httpStatusError carrying the body.
func getBody(ctx context.Context, client *http.Client, log *logger.Logger, url string, accept string) ([]byte, error) {
	fields := []zap.Field{
		logger.StringField("url", url),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		fields = append(fields, logger.ErrorField(err))
		log.ErrorContext(ctx, "Failed to create new http request", fields...)
		return nil, err
	}
	req.Header.Set("User-Agent", common.BrowserUserAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := client.Do(req)
	if err != nil {
		fields = append(fields, logger.ErrorField(err))
		log.ErrorContext(ctx, "Failed to send request", fields...)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		fields = append(fields, logger.ErrorField(err))
		log.ErrorContext(ctx, "Failed to read response body", fields...)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fields = append(fields, logger.IntField("status_code", resp.StatusCode))
		log.WarnContext(ctx, "Received non-OK response", fields...)
		return body, &httpStatusError{StatusCode: resp.StatusCode, Body: body}
	}

	return body, nil
}
