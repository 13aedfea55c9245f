package appointments

import "time"

const (
	// joinLead is how early a participant may enter the call.
	joinLead = 15 * time.Minute
	// joinGrace is how long after the scheduled start joining stays open.
	joinGrace = 60 * time.Minute
)

// CanJoin reports whether the join-call action should be offered right now.
// The predicate is pure and recomputed on every call; both window boundaries
// are inclusive.
func CanJoin(appt *Appointment, now time.Time) bool {
	if appt == nil || appt.Status != StatusConfirmed || appt.Type != TypeVirtual {
		return false
	}
	start, err := appt.StartTime()
	if err != nil {
		return false
	}
	opens := start.Add(-joinLead)
	closes := start.Add(joinGrace)
	return !now.Before(opens) && !now.After(closes)
}

// Cancellable reports whether a patient may still cancel: the appointment is
// confirmed and its scheduled start has not passed.
func Cancellable(appt *Appointment, now time.Time) bool {
	if appt == nil || appt.Status != StatusConfirmed {
		return false
	}
	start, err := appt.StartTime()
	if err != nil {
		return false
	}
	return now.Before(start)
}
