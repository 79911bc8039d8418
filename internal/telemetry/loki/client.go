// Package loki pushes attendance event lines to Grafana Loki.
package loki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// PushRequest is the Loki push API request body (v1).
type PushRequest struct {
	Streams []Stream `json:"streams"`
}

// Stream is a single labeled stream; each value is [timestamp_ns, log_line].
type Stream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

// Loki label names must match [a-zA-Z_:][a-zA-Z0-9_:]*; values are freeform
// but problematic characters are replaced anyway.
var labelSanitize = regexp.MustCompile(`[^a-zA-Z0-9_\-:]`)

// eventFields picks out the attendance event fields used for stream labels and
// the entry timestamp. The rest of the event stays in the raw line.
type eventFields struct {
	EmployeeID string `json:"employeeId"`
	EventType  string `json:"eventType"`
	Source     string `json:"source"`
	CreatedAt  string `json:"createdAt"`
}

// PushEventJSON pushes one attendance event (a Kafka message value) to Loki,
// labeled by employee, event type, and source. An unparseable message is still
// pushed as a raw line stamped with the current time.
func PushEventJSON(ctx context.Context, baseURL string, rawJSON []byte) error {
	labels := map[string]string{}
	ts := time.Now().UTC()

	var fields eventFields
	if err := json.Unmarshal(rawJSON, &fields); err == nil {
		if fields.EmployeeID != "" {
			labels["employee_id"] = fields.EmployeeID
		}
		if fields.EventType != "" {
			labels["event_type"] = fields.EventType
		}
		if fields.Source != "" {
			labels["source"] = fields.Source
		}
		if t, ok := parseEventTime(fields.CreatedAt); ok {
			ts = t
		}
	}
	return PushEvent(ctx, baseURL, ts, string(rawJSON), labels)
}

func parseEventTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// PushEvent sends a single log line to Loki at baseURL (e.g. http://localhost:3100).
// Returns an error if the HTTP request fails or Loki responds non-2xx.
func PushEvent(ctx context.Context, baseURL string, timestamp time.Time, line string, labels map[string]string) error {
	if baseURL == "" {
		return fmt.Errorf("loki: base URL is empty")
	}

	stream := make(map[string]string, len(labels)+1)
	stream["job"] = "punchgate"
	for k, v := range labels {
		if s := labelSanitize.ReplaceAllString(strings.TrimSpace(v), "_"); s != "" {
			stream[k] = s
		}
	}

	payload, err := json.Marshal(PushRequest{
		Streams: []Stream{{
			Stream: stream,
			Values: [][]string{{strconv.FormatInt(timestamp.UnixNano(), 10), line}},
		}},
	})
	if err != nil {
		return err
	}

	endpoint := strings.TrimSuffix(baseURL, "/") + "/loki/api/v1/push"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("loki: push returned %s", resp.Status)
	}
	return nil
}
