// Package whatsapp wraps the WAHA-compatible HTTP bridge used to push
// media messages to customers.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/colombiang/sales-mcp/internal/shared"
)

const (
	// DefaultSession is the bridge session used for visual media.
	DefaultSession = "default"
	// AudioSession is the bridge session provisioned for voice notes.
	AudioSession = "Demo"
)

// Client wraps interactions with the WhatsApp bridge API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	mediaClient *http.Client
}

// NewClient constructs a new client. timeout guards control calls,
// mediaTimeout guards media sends, which the bridge serves slowly.
func NewClient(baseURL string, timeout, mediaTimeout time.Duration) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		mediaClient: &http.Client{Timeout: mediaTimeout},
	}
}

// MediaRequest describes one outbound media message. Port overrides the
// bridge port when > 0; Session overrides the per-kind default.
type MediaRequest struct {
	Phone    string
	URL      string
	Caption  string
	Filename string
	Port     int
	Session  string
}

// Ping checks that the bridge is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransport(err, "whatsapp bridge unreachable")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		return shared.NewTransportError(shared.TransportUpstream,
			fmt.Sprintf("whatsapp bridge health returned status %d", resp.StatusCode), nil)
	}
	return nil
}

// SendImage pushes an image by URL with an optional caption.
func (c *Client) SendImage(ctx context.Context, req MediaRequest) error {
	return c.sendMedia(ctx, "/api/sendImage", req, DefaultSession)
}

// SendAudio pushes a voice note by URL. Captions are not supported by
// the bridge for voice messages and are dropped.
func (c *Client) SendAudio(ctx context.Context, req MediaRequest) error {
	req.Caption = ""
	return c.sendMedia(ctx, "/api/sendVoice", req, AudioSession)
}

// SendVideo pushes a video by URL with an optional caption.
func (c *Client) SendVideo(ctx context.Context, req MediaRequest) error {
	return c.sendMedia(ctx, "/api/sendVideo", req, DefaultSession)
}

// SendPDF pushes a PDF document by URL with an optional filename.
func (c *Client) SendPDF(ctx context.Context, req MediaRequest) error {
	if req.Filename == "" {
		req.Filename = "document.pdf"
	}
	return c.sendMedia(ctx, "/api/sendFile", req, DefaultSession)
}

type mediaFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
}

type sendPayload struct {
	Session string    `json:"session"`
	ChatID  string    `json:"chatId"`
	File    mediaFile `json:"file"`
	Caption string    `json:"caption,omitempty"`
}

func (c *Client) sendMedia(ctx context.Context, path string, req MediaRequest, defaultSession string) error {
	chatID, err := chatIDFromPhone(req.Phone)
	if err != nil {
		return err
	}
	if err := validateMediaURL(req.URL); err != nil {
		return err
	}
	session := req.Session
	if session == "" {
		session = defaultSession
	}

	payload, err := json.Marshal(sendPayload{
		Session: session,
		ChatID:  chatID,
		File:    mediaFile{URL: req.URL, Filename: req.Filename},
		Caption: req.Caption,
	})
	if err != nil {
		return err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.endpoint(req.Port)+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.mediaClient.Do(httpReq)
	if err != nil {
		return classifyTransport(err, "whatsapp send failed")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return shared.NewTransportError(shared.TransportUpstream,
			fmt.Sprintf("whatsapp bridge returned status %d", resp.StatusCode),
			fmt.Errorf("%s", strings.TrimSpace(string(body))))
	}
	return nil
}

// endpoint returns the base URL, with the port swapped when the caller
// asked for one the base URL does not already carry.
func (c *Client) endpoint(port int) string {
	if port <= 0 {
		return c.baseURL
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return c.baseURL
	}
	if u.Port() == strconv.Itoa(port) {
		return c.baseURL
	}
	u.Host = net.JoinHostPort(u.Hostname(), strconv.Itoa(port))
	return strings.TrimRight(u.String(), "/")
}

// chatIDFromPhone normalizes a phone to the bridge chat id form: digits
// only, at least ten of them, suffixed with "@c.us".
func chatIDFromPhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < 10 {
		return "", shared.NewValidationError("phone", "must contain at least 10 digits")
	}
	return digits + "@c.us", nil
}

// validateMediaURL accepts only http(s) URLs. Local and inline schemes
// would make the bridge read from its own filesystem.
func validateMediaURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return shared.NewValidationError("url", "is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return shared.NewValidationError("url", "is not a valid URL")
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return nil
	case "file", "data":
		return shared.NewValidationError("url", "scheme %q is not allowed", u.Scheme)
	default:
		return shared.NewValidationError("url", "must use http or https")
	}
}

func classifyTransport(err error, message string) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return shared.NewTransportError(shared.TransportTimeout, message+": timed out", err)
	}
	return shared.NewTransportError(shared.TransportUnavailable, message, err)
}
