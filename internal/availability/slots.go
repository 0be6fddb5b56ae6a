package availability

import (
	"time"

	"github.com/careport/booking-gateway/internal/hms"
)

// DayPart buckets slots by start time for the booking UI tabs.
type DayPart string

const (
	Morning   DayPart = "morning"   // before 12:00
	Afternoon DayPart = "afternoon" // 12:00-16:59
	Evening   DayPart = "evening"   // 17:00 onward
)

// On-hold label shown instead of the raw Hold status.
const displayOnHold = "On Hold"

// GroupedSlots is a derived view over a slot list. It is recomputed from the
// source list, never stored.
type GroupedSlots struct {
	Morning   []hms.Slot `json:"morning"`
	Afternoon []hms.Slot `json:"afternoon"`
	Evening   []hms.Slot `json:"evening"`
}

// GroupSlots buckets slots into morning/afternoon/evening by start time.
// Slots whose time cannot be parsed land in the morning bucket so they stay
// visible rather than disappearing.
func GroupSlots(slots []hms.Slot) GroupedSlots {
	var grouped GroupedSlots
	for _, slot := range slots {
		switch PartOfDay(slot.SlotTime) {
		case Afternoon:
			grouped.Afternoon = append(grouped.Afternoon, slot)
		case Evening:
			grouped.Evening = append(grouped.Evening, slot)
		default:
			grouped.Morning = append(grouped.Morning, slot)
		}
	}
	return grouped
}

// PartOfDay classifies a raw slot time string.
func PartOfDay(raw string) DayPart {
	parsed, ok := parseSlotTime(raw)
	if !ok {
		return Morning
	}
	switch {
	case parsed.Hour() < 12:
		return Morning
	case parsed.Hour() < 17:
		return Afternoon
	default:
		return Evening
	}
}

// DisplayStatus derives the label governing click-ability. A slot already
// marked Booked/Cancelled/Completed keeps that label, Hold displays as
// "On Hold", and anything else is Available only while capacity remains.
func DisplayStatus(slot hms.Slot) string {
	switch slot.Status {
	case hms.SlotBooked, hms.SlotCancelled, hms.SlotCompleted:
		return slot.Status
	case hms.SlotHold:
		return displayOnHold
	}
	if slot.AvailableSlots > 0 {
		return hms.SlotAvailable
	}
	return hms.SlotBooked
}

// Selectable reports whether the derived label permits selecting the slot.
func Selectable(slot hms.Slot) bool {
	return DisplayStatus(slot) == hms.SlotAvailable
}

// FormatTime renders a slot time for display. Unparsable values pass through
// unformatted.
func FormatTime(raw string) string {
	parsed, ok := parseSlotTime(raw)
	if !ok {
		return raw
	}
	return parsed.Format("3:04 PM")
}

// parseSlotTime attempts HH:mm:ss first, then HH:mm.
func parseSlotTime(raw string) (time.Time, bool) {
	if parsed, err := time.Parse("15:04:05", raw); err == nil {
		return parsed, true
	}
	if parsed, err := time.Parse("15:04", raw); err == nil {
		return parsed, true
	}
	return time.Time{}, false
}
