package tools

import "google.golang.org/genai"

// The manifest is declared once at startup and bound to every chat. Names
// and parameter shapes are the contract the model calls against; handlers
// in registry.go must stay in sync with it.

func recurrenceSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"frequency": {
				Type: genai.TypeString,
				Enum: []string{"DAILY", "WEEKLY", "MONTHLY", "YEARLY"},
			},
			"interval": {
				Type:        genai.TypeInteger,
				Description: "1 repeats every period, 2 every second period, and so on.",
			},
			"repeatUntil": {
				Type:        genai.TypeString,
				Description: "Last date of the recurrence. Format: YYYY-MM-DD",
			},
			"daysOfWeek": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeString,
					Enum: []string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"},
				},
			},
		},
		Required: []string{"frequency", "interval", "repeatUntil"},
	}
}

// Declarations returns the full tool manifest presented to the model.
func Declarations() []*genai.FunctionDeclaration {
	isoTime := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc + " ISO 8601 format: YYYY-MM-DDTHH:mm:ss"}
	}
	intList := func(desc string) *genai.Schema {
		return &genai.Schema{
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeInteger},
			Description: desc,
		}
	}

	return []*genai.FunctionDeclaration{
		{
			Name:        "search_users",
			Description: "Find user ids by name or email.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"query": {Type: genai.TypeString}},
				Required:   []string{"query"},
			},
		},
		{
			Name:        "get_rooms",
			Description: "List all meeting rooms and their ids.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "get_devices",
			Description: "List all bookable devices.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "find_available_rooms",
			Description: "Find rooms that are free in a time window.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_time": isoTime("Window start."),
					"end_time":   isoTime("Window end."),
					"capacity":   {Type: genai.TypeInteger},
				},
				Required: []string{"start_time", "end_time"},
			},
		},
		{
			Name:        "find_available_devices",
			Description: "Find devices that are free in a time window.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_time": isoTime("Window start."),
					"end_time":   isoTime("Window end."),
				},
				Required: []string{"start_time", "end_time"},
			},
		},
		{
			Name:        "get_my_meetings",
			Description: "View the caller's meetings. Use date_filter to narrow to one specific day.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"date_filter": {Type: genai.TypeString, Description: "Optional day filter. Format: YYYY-MM-DD"},
				},
			},
		},
		{
			Name:        "get_meeting_details",
			Description: "View one meeting's details (also the way to obtain its seriesId).",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"meeting_id": {Type: genai.TypeInteger}},
				Required:   []string{"meeting_id"},
			},
		},
		{
			Name:        "create_meeting",
			Description: "Create a new meeting, single or recurring.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":           {Type: genai.TypeString},
					"start_time":      isoTime("Meeting start."),
					"end_time":        isoTime("Meeting end."),
					"room_id":         {Type: genai.TypeInteger},
					"participant_ids": intList("Ids of invited users."),
					"device_ids":      intList("Ids of reserved devices."),
					"description":     {Type: genai.TypeString},
					"recurrence":      recurrenceSchema(),
				},
				Required: []string{"title", "start_time", "end_time", "room_id"},
			},
		},
		{
			Name:        "update_meeting",
			Description: "Update ONE single meeting occurrence.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"meeting_id":      {Type: genai.TypeInteger},
					"title":           {Type: genai.TypeString},
					"start_time":      isoTime("Meeting start."),
					"end_time":        isoTime("Meeting end."),
					"room_id":         {Type: genai.TypeInteger},
					"participant_ids": intList("Ids of invited users."),
					"description":     {Type: genai.TypeString},
				},
				Required: []string{"meeting_id", "title", "start_time", "end_time", "room_id"},
			},
		},
		{
			Name:        "cancel_meeting",
			Description: "Cancel ONE single meeting occurrence.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"meeting_id": {Type: genai.TypeInteger},
					"reason":     {Type: genai.TypeString},
				},
				Required: []string{"meeting_id", "reason"},
			},
		},
		{
			Name:        "update_meeting_series",
			Description: "Update an ENTIRE recurring meeting series.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"series_id":       {Type: genai.TypeString},
					"title":           {Type: genai.TypeString},
					"start_time":      isoTime("Meeting start."),
					"end_time":        isoTime("Meeting end."),
					"room_id":         {Type: genai.TypeInteger},
					"participant_ids": intList("Ids of invited users."),
					"description":     {Type: genai.TypeString},
					"recurrence":      recurrenceSchema(),
				},
				Required: []string{"series_id", "title", "start_time", "end_time", "room_id", "recurrence"},
			},
		},
		{
			Name:        "cancel_meeting_series",
			Description: "Cancel an ENTIRE recurring meeting series.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"series_id": {Type: genai.TypeString},
					"reason":    {Type: genai.TypeString},
				},
				Required: []string{"series_id", "reason"},
			},
		},
		{
			Name:        "respond_invitation",
			Description: "Accept or decline a meeting invitation.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"meeting_id": {Type: genai.TypeInteger},
					"status":     {Type: genai.TypeString, Enum: []string{"ACCEPTED", "DECLINED"}},
				},
				Required: []string{"meeting_id", "status"},
			},
		},
		{
			Name:        "check_in_meeting",
			Description: "Check in to the meeting running in a room.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"room_id": {Type: genai.TypeInteger}},
				Required:   []string{"room_id"},
			},
		},
		{
			Name:        "check_in_by_qr",
			Description: "Check in with a scanned QR code.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"qr_code": {Type: genai.TypeString}},
				Required:   []string{"qr_code"},
			},
		},
		{
			Name:        "suggest_meeting_time",
			Description: "Suggest a meeting slot where all participants are free.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"participant_ids": intList("Ids of required participants."),
					"start_date":      {Type: genai.TypeString, Description: "Search range start. Format: YYYY-MM-DD"},
					"end_date":        {Type: genai.TypeString, Description: "Search range end. Format: YYYY-MM-DD"},
					"duration":        {Type: genai.TypeInteger, Description: "Meeting length in minutes."},
				},
				Required: []string{"participant_ids", "start_date", "end_date"},
			},
		},
		{
			Name:        "get_notifications",
			Description: "View the caller's notifications.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "get_contact_groups",
			Description: "List the caller's contact groups.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		{
			Name:        "search_policy",
			Description: "Look up internal meeting rules and company policy.",
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{"query": {Type: genai.TypeString}},
				Required:   []string{"query"},
			},
		},
	}
}
