package livekit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is the real provider variant, speaking the room service's Twirp
// JSON protocol over HTTP.
type Client struct {
	url       string
	apiKey    string
	apiSecret string
	http      *http.Client
}

// NewClient creates a room provider client. url may use ws/wss scheme;
// API calls are made against the equivalent http/https host.
func NewClient(url, apiKey, apiSecret string) *Client {
	return &Client{
		url:       url,
		apiKey:    apiKey,
		apiSecret: apiSecret,
		http:      &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *Client) URL() string      { return c.url }
func (c *Client) Configured() bool { return true }

// AccessToken mints a signed join credential scoped to the room.
func (c *Client) AccessToken(identity, room string, isAgent bool) (string, error) {
	return mintToken(c.apiKey, c.apiSecret, identity, participantGrant(room, isAgent))
}

// EnsureRoom creates the room. The provider answering "already exists" is
// treated as success, making creation idempotent.
func (c *Client) EnsureRoom(ctx context.Context, name string) error {
	req := map[string]any{"name": name}
	if err := c.call(ctx, "CreateRoom", name, req, nil); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return err
	}
	return nil
}

// RoomExists lists rooms filtered by name and reports a non-empty result.
func (c *Client) RoomExists(ctx context.Context, name string) (bool, error) {
	req := map[string]any{"names": []string{name}}
	var resp struct {
		Rooms []struct {
			Name string `json:"name"`
		} `json:"rooms"`
	}
	if err := c.call(ctx, "ListRooms", name, req, &resp); err != nil {
		return false, err
	}
	return len(resp.Rooms) > 0, nil
}

// RemoveParticipant evicts the identity from the live session.
func (c *Client) RemoveParticipant(ctx context.Context, room, identity string) error {
	req := map[string]any{"room": room, "identity": identity}
	return c.call(ctx, "RemoveParticipant", room, req, nil)
}

// call issues one Twirp RPC against the RoomService, authenticated with a
// short-lived admin token.
func (c *Client) call(ctx context.Context, method, room string, body, out any) error {
	token, err := mintToken(c.apiKey, c.apiSecret, c.apiKey, adminGrant(room))
	if err != nil {
		return fmt.Errorf("failed to mint admin token: %w", err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	endpoint := httpURL(c.url) + "/twirp/livekit.RoomService/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("room service %s failed: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("room service %s returned %d: %s", method, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode %s response: %w", method, err)
		}
	}
	return nil
}

// httpURL maps a ws/wss connection URL onto its http/https API host.
func httpURL(url string) string {
	switch {
	case strings.HasPrefix(url, "wss://"):
		return "https://" + strings.TrimPrefix(url, "wss://")
	case strings.HasPrefix(url, "ws://"):
		return "http://" + strings.TrimPrefix(url, "ws://")
	default:
		return strings.TrimSuffix(url, "/")
	}
}
