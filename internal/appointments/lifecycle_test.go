package appointments

import (
	"testing"
	"time"
)

func virtualConfirmed() *Appointment {
	return &Appointment{
		ID:     "appt_1",
		Date:   "2026-03-10",
		Time:   "14:00",
		Type:   TypeVirtual,
		Status: StatusConfirmed,
	}
}

func TestCanJoinWindowBoundaries(t *testing.T) {
	appt := virtualConfirmed()
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{"sixteen minutes early", start.Add(-16 * time.Minute), false},
		{"fifteen minutes early", start.Add(-15 * time.Minute), true},
		{"at start", start, true},
		{"sixty minutes late", start.Add(60 * time.Minute), true},
		{"sixty-one minutes late", start.Add(61 * time.Minute), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanJoin(appt, tc.now); got != tc.want {
				t.Fatalf("CanJoin at %s = %v, want %v", tc.now, got, tc.want)
			}
		})
	}
}

func TestCanJoinRequiresConfirmedVirtual(t *testing.T) {
	inWindow := time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC)

	appt := virtualConfirmed()
	appt.Status = StatusCancelled
	if CanJoin(appt, inWindow) {
		t.Fatal("cancelled appointment must never be joinable")
	}

	appt = virtualConfirmed()
	appt.Type = TypePersonal
	if CanJoin(appt, inWindow) {
		t.Fatal("in-clinic appointment must never be joinable")
	}

	appt = virtualConfirmed()
	appt.Status = StatusCompleted
	if CanJoin(appt, inWindow) {
		t.Fatal("completed appointment must never be joinable")
	}
}

func TestCanJoinBadSchedule(t *testing.T) {
	appt := virtualConfirmed()
	appt.Time = "2pm"
	if CanJoin(appt, time.Now()) {
		t.Fatal("unparseable schedule must not be joinable")
	}
}

func TestCancellable(t *testing.T) {
	start := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	appt := virtualConfirmed()
	if !Cancellable(appt, start.Add(-time.Hour)) {
		t.Fatal("confirmed future appointment should be cancellable")
	}
	if Cancellable(appt, start) {
		t.Fatal("appointment at its start time is no longer cancellable")
	}
	if Cancellable(appt, start.Add(time.Minute)) {
		t.Fatal("past appointment is not cancellable")
	}

	appt.Status = StatusCancelled
	if Cancellable(appt, start.Add(-time.Hour)) {
		t.Fatal("cancelled appointment is not cancellable again")
	}
}
