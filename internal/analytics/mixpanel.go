package analytics

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Tracker emits product analytics events. Implementations are fire-and-forget:
// they must never block or fail the calling flow.
type Tracker interface {
	Track(userID int64, event string, props map[string]any)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Track(int64, string, map[string]any) {}

const defaultEndpoint = "https://api.mixpanel.com/track"

// Mixpanel posts events to the Mixpanel ingestion endpoint. Each event is sent
// from its own goroutine with a bounded timeout; delivery failures are logged
// and dropped.
type Mixpanel struct {
	token    string
	endpoint string
	client   *http.Client
}

func NewMixpanel(token string) *Mixpanel {
	return &Mixpanel{
		token:    token,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NewMixpanelWithEndpoint is test-only for pointing at a local server.
func NewMixpanelWithEndpoint(token, endpoint string) *Mixpanel {
	m := NewMixpanel(token)
	m.endpoint = endpoint
	return m
}

func (m *Mixpanel) Track(userID int64, event string, props map[string]any) {
	properties := map[string]any{
		"token":       m.token,
		"distinct_id": strconv.FormatInt(userID, 10),
		"$insert_id":  uuid.NewString(),
		"time":        time.Now().Unix(),
	}
	for k, v := range props {
		properties[k] = v
	}
	payload, err := json.Marshal(map[string]any{
		"event":      event,
		"properties": properties,
	})
	if err != nil {
		log.Printf("analytics marshal failed: %v", err)
		return
	}

	go m.send(event, payload)
}

func (m *Mixpanel) send(event string, payload []byte) {
	form := url.Values{"data": {base64.StdEncoding.EncodeToString(payload)}}
	resp, err := m.client.Post(m.endpoint, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		log.Printf("analytics event %q not delivered: %v", event, err)
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64))
	// The ingestion endpoint answers "1" on success.
	if strings.TrimSpace(string(body)) != "1" {
		log.Printf("analytics event %q rejected: %s", event, string(body))
	}
}
