package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
)

// SearchUsers finds user ids by name or email fragment.
func (c *Client) SearchUsers(ctx context.Context, token, query string) any {
	return c.call(ctx, token, http.MethodGet, "/users/search", url.Values{"query": {query}}, nil)
}

// GetRooms lists all meeting rooms with their ids.
func (c *Client) GetRooms(ctx context.Context, token string) any {
	return c.call(ctx, token, http.MethodGet, "/rooms", nil, nil)
}

// GetDevices lists all bookable devices.
func (c *Client) GetDevices(ctx context.Context, token string) any {
	return c.call(ctx, token, http.MethodGet, "/devices", nil, nil)
}

// FindAvailableRooms lists rooms free in the given window. Capacity defaults
// to 5 when unspecified.
func (c *Client) FindAvailableRooms(ctx context.Context, token, startTime, endTime string, capacity int) any {
	if capacity <= 0 {
		capacity = 5
	}
	q := url.Values{
		"startTime": {startTime},
		"endTime":   {endTime},
		"capacity":  {strconv.Itoa(capacity)},
	}
	return c.call(ctx, token, http.MethodGet, "/rooms/available", q, nil)
}

// FindAvailableDevices lists devices free in the given window.
func (c *Client) FindAvailableDevices(ctx context.Context, token, startTime, endTime string) any {
	q := url.Values{
		"startTime": {startTime},
		"endTime":   {endTime},
	}
	return c.call(ctx, token, http.MethodGet, "/devices/available", q, nil)
}

// GetNotifications lists the caller's notifications, unwrapped from the
// paginated envelope.
func (c *Client) GetNotifications(ctx context.Context, token string) any {
	status, body, err := c.request(ctx, token, http.MethodGet, "/notifications", nil, nil)
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}

	var page struct {
		Content []any `json:"content"`
	}
	if jerr := json.Unmarshal(body, &page); jerr != nil {
		return errResult(jerr)
	}
	if page.Content == nil {
		return []any{}
	}
	return page.Content
}

// GetContactGroups lists the caller's contact groups.
func (c *Client) GetContactGroups(ctx context.Context, token string) any {
	return c.call(ctx, token, http.MethodGet, "/contact-groups", nil, nil)
}
