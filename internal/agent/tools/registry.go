package tools

import (
	"context"
	"sync"

	"github.com/cmc-meeting/ai-service/internal/backend"
	"github.com/cmc-meeting/ai-service/internal/policy"
)

// Handler executes one tool against already-coerced arguments. Handlers
// never return a Go error; failures come back as {"error": ...} values so
// the model can see and react to them.
type Handler func(ctx context.Context, args Arguments) any

// Registry maps tool names to their implementations.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry wires every manifest tool to the backend client and the
// policy retriever.
func NewRegistry(api *backend.Client, policies *policy.Retriever) *Registry {
	r := &Registry{handlers: make(map[string]Handler)}

	r.Register("search_policy", func(ctx context.Context, args Arguments) any {
		return policies.Search(ctx, args.String("query"))
	})
	r.Register("search_users", func(ctx context.Context, args Arguments) any {
		return api.SearchUsers(ctx, args.Token(), args.String("query"))
	})
	r.Register("get_rooms", func(ctx context.Context, args Arguments) any {
		return api.GetRooms(ctx, args.Token())
	})
	r.Register("get_devices", func(ctx context.Context, args Arguments) any {
		return api.GetDevices(ctx, args.Token())
	})
	r.Register("find_available_rooms", func(ctx context.Context, args Arguments) any {
		return api.FindAvailableRooms(ctx, args.Token(), args.String("start_time"), args.String("end_time"), args.Int("capacity"))
	})
	r.Register("find_available_devices", func(ctx context.Context, args Arguments) any {
		return api.FindAvailableDevices(ctx, args.Token(), args.String("start_time"), args.String("end_time"))
	})
	r.Register("get_my_meetings", func(ctx context.Context, args Arguments) any {
		return api.GetMyMeetings(ctx, args.Token(), args.String("date_filter"))
	})
	r.Register("get_meeting_details", func(ctx context.Context, args Arguments) any {
		return api.GetMeetingDetails(ctx, args.Token(), args.Int("meeting_id"))
	})
	r.Register("create_meeting", func(ctx context.Context, args Arguments) any {
		return api.CreateMeeting(ctx, args.Token(), meetingParams(args))
	})
	r.Register("update_meeting", func(ctx context.Context, args Arguments) any {
		return api.UpdateMeeting(ctx, args.Token(), args.Int("meeting_id"), meetingParams(args))
	})
	r.Register("cancel_meeting", func(ctx context.Context, args Arguments) any {
		return api.CancelMeeting(ctx, args.Token(), args.Int("meeting_id"), args.String("reason"))
	})
	r.Register("update_meeting_series", func(ctx context.Context, args Arguments) any {
		return api.UpdateMeetingSeries(ctx, args.Token(), args.String("series_id"), meetingParams(args))
	})
	r.Register("cancel_meeting_series", func(ctx context.Context, args Arguments) any {
		return api.CancelMeetingSeries(ctx, args.Token(), args.String("series_id"), args.String("reason"))
	})
	r.Register("respond_invitation", func(ctx context.Context, args Arguments) any {
		return api.RespondInvitation(ctx, args.Token(), args.Int("meeting_id"), args.String("status"))
	})
	r.Register("check_in_meeting", func(ctx context.Context, args Arguments) any {
		return api.CheckInMeeting(ctx, args.Token(), args.Int("room_id"))
	})
	r.Register("check_in_by_qr", func(ctx context.Context, args Arguments) any {
		return api.CheckInByQR(ctx, args.Token(), args.String("qr_code"))
	})
	r.Register("suggest_meeting_time", func(ctx context.Context, args Arguments) any {
		return api.SuggestMeetingTime(ctx, args.Token(), args.IntList("participant_ids"), args.String("start_date"), args.String("end_date"), args.Int("duration"))
	})
	r.Register("get_notifications", func(ctx context.Context, args Arguments) any {
		return api.GetNotifications(ctx, args.Token())
	})
	r.Register("get_contact_groups", func(ctx context.Context, args Arguments) any {
		return api.GetContactGroups(ctx, args.Token())
	})

	return r
}

// Register inserts or replaces a handler.
func (r *Registry) Register(name string, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = h
}

// Resolve fetches a handler by tool name.
func (r *Registry) Resolve(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

func meetingParams(args Arguments) backend.MeetingParams {
	return backend.MeetingParams{
		Title:          args.String("title"),
		Description:    args.String("description"),
		StartTime:      args.String("start_time"),
		EndTime:        args.String("end_time"),
		RoomID:         args.Int("room_id"),
		ParticipantIDs: args.IntList("participant_ids"),
		DeviceIDs:      args.IntList("device_ids"),
		Recurrence:     args.Map(recurrenceField),
	}
}
