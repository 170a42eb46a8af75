package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// myMeetingsPageSize is deliberately large so client-side date filtering
// over the returned page stays reliable.
const myMeetingsPageSize = 50

// MeetingParams carries the fields shared by create/update calls. The
// Recurrence map, when present, is forwarded opaquely to the backend under
// its "recurrenceRule" field name.
type MeetingParams struct {
	Title          string
	Description    string
	StartTime      string
	EndTime        string
	RoomID         int
	ParticipantIDs []int
	DeviceIDs      []int
	Recurrence     map[string]any
}

// payload maps tool-facing names onto the backend's camelCase contract.
func (p MeetingParams) payload(includeDevices bool) map[string]any {
	participants := p.ParticipantIDs
	if participants == nil {
		participants = []int{}
	}
	devices := []int{}
	if includeDevices && p.DeviceIDs != nil {
		devices = p.DeviceIDs
	}

	body := map[string]any{
		"title":          p.Title,
		"description":    p.Description,
		"startTime":      p.StartTime,
		"endTime":        p.EndTime,
		"roomId":         p.RoomID,
		"participantIds": participants,
		"deviceIds":      devices,
		"guestEmails":    []string{},
	}
	if p.Recurrence != nil {
		body["recurrenceRule"] = p.Recurrence
	}
	return body
}

// GetMyMeetings returns the caller's meetings, optionally filtered to a
// single day. The filter matches the exact date prefix of each startTime.
// A filter that matches nothing yields a human-readable sentence rather
// than an empty list, so the model can relay it directly.
func (c *Client) GetMyMeetings(ctx context.Context, token, dateFilter string) any {
	q := url.Values{"size": {fmt.Sprint(myMeetingsPageSize)}}
	status, body, err := c.request(ctx, token, http.MethodGet, "/meetings/my-meetings", q, nil)
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}

	var page struct {
		Content []map[string]any `json:"content"`
	}
	if jerr := json.Unmarshal(body, &page); jerr != nil {
		return errResult(jerr)
	}
	meetings := page.Content
	if meetings == nil {
		meetings = []map[string]any{}
	}

	if dateFilter == "" {
		return meetings
	}

	filtered := make([]map[string]any, 0, len(meetings))
	for _, m := range meetings {
		start, _ := m["startTime"].(string)
		if strings.HasPrefix(start, dateFilter) {
			filtered = append(filtered, m)
		}
	}
	if len(filtered) == 0 {
		return fmt.Sprintf("No meetings found for %s.", dateFilter)
	}
	return filtered
}

// GetMeetingDetails fetches one meeting, including its seriesId when the
// meeting belongs to a recurring series.
func (c *Client) GetMeetingDetails(ctx context.Context, token string, meetingID int) any {
	return c.call(ctx, token, http.MethodGet, fmt.Sprintf("/meetings/%d", meetingID), nil, nil)
}

// CreateMeeting books a single or recurring meeting.
func (c *Client) CreateMeeting(ctx context.Context, token string, p MeetingParams) any {
	return c.call(ctx, token, http.MethodPost, "/meetings", nil, p.payload(true),
		http.StatusOK, http.StatusCreated)
}

// UpdateMeeting rewrites one single occurrence.
func (c *Client) UpdateMeeting(ctx context.Context, token string, meetingID int, p MeetingParams) any {
	return c.call(ctx, token, http.MethodPut, fmt.Sprintf("/meetings/%d", meetingID), nil, p.payload(false))
}

// CancelMeeting cancels one single occurrence.
func (c *Client) CancelMeeting(ctx context.Context, token string, meetingID int, reason string) any {
	status, body, err := c.request(ctx, token, http.MethodDelete,
		fmt.Sprintf("/meetings/%d", meetingID), nil, map[string]any{"reason": reason})
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}
	return map[string]any{"success": true, "message": "Cancelled successfully."}
}

// UpdateMeetingSeries rewrites an entire recurring series, keyed by its
// string series id.
func (c *Client) UpdateMeetingSeries(ctx context.Context, token, seriesID string, p MeetingParams) any {
	return c.call(ctx, token, http.MethodPut, "/meetings/series/"+url.PathEscape(seriesID), nil, p.payload(false))
}

// CancelMeetingSeries cancels an entire recurring series.
func (c *Client) CancelMeetingSeries(ctx context.Context, token, seriesID, reason string) any {
	status, body, err := c.request(ctx, token, http.MethodDelete,
		"/meetings/series/"+url.PathEscape(seriesID), nil, map[string]any{"reason": reason})
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}
	return map[string]any{"success": true, "message": "Series cancelled successfully."}
}

// RespondInvitation accepts or declines a meeting invitation.
func (c *Client) RespondInvitation(ctx context.Context, token string, meetingID int, status string) any {
	code, body, err := c.request(ctx, token, http.MethodPost,
		fmt.Sprintf("/meetings/%d/respond", meetingID), nil, map[string]any{"status": status})
	if err != nil {
		return errResult(err)
	}
	if code != http.StatusOK {
		return errText(string(body))
	}
	return map[string]any{"success": true}
}

// CheckInMeeting checks the caller into the meeting running in a room.
func (c *Client) CheckInMeeting(ctx context.Context, token string, roomID int) any {
	status, body, err := c.request(ctx, token, http.MethodPost,
		"/meetings/check-in", nil, map[string]any{"roomId": roomID})
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}
	return map[string]any{"success": true, "message": string(body)}
}

// CheckInByQR checks the caller in with a scanned QR code string.
func (c *Client) CheckInByQR(ctx context.Context, token, qrCode string) any {
	status, body, err := c.request(ctx, token, http.MethodPost,
		"/meetings/check-in/qr", nil, map[string]any{"qrCode": qrCode})
	if err != nil {
		return errResult(err)
	}
	if status != http.StatusOK {
		return errText(string(body))
	}
	return map[string]any{"success": true, "message": string(body)}
}

// SuggestMeetingTime asks the backend for a slot where all participants are
// free. Duration defaults to 30 minutes.
func (c *Client) SuggestMeetingTime(ctx context.Context, token string, participantIDs []int, startDate, endDate string, duration int) any {
	if duration <= 0 {
		duration = 30
	}
	if participantIDs == nil {
		participantIDs = []int{}
	}
	payload := map[string]any{
		"participantIds":  participantIDs,
		"rangeStart":      startDate,
		"rangeEnd":        endDate,
		"durationMinutes": duration,
	}
	return c.call(ctx, token, http.MethodPost, "/meetings/suggest-time", nil, payload)
}
