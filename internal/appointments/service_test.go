package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

type fakeBookingStore struct {
	appts   map[string]*Appointment
	bookErr error
	booked  *Appointment
}

func newFakeBookingStore() *fakeBookingStore {
	return &fakeBookingStore{appts: make(map[string]*Appointment)}
}

func (f *fakeBookingStore) Book(_ context.Context, appt *Appointment) error {
	if f.bookErr != nil {
		return f.bookErr
	}
	stored := *appt
	f.appts[appt.ID] = &stored
	f.booked = &stored
	return nil
}

func (f *fakeBookingStore) Get(_ context.Context, id string) (*Appointment, error) {
	appt, ok := f.appts[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	copy := *appt
	return &copy, nil
}

func (f *fakeBookingStore) ListByDoctor(_ context.Context, doctorID string) ([]*Appointment, error) {
	var out []*Appointment
	for _, appt := range f.appts {
		if appt.DoctorID == doctorID {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListByPatient(_ context.Context, patientID string) ([]*Appointment, error) {
	var out []*Appointment
	for _, appt := range f.appts {
		if appt.PatientID == patientID {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) ListDoctorDay(_ context.Context, doctorID, date string) ([]*Appointment, error) {
	var out []*Appointment
	for _, appt := range f.appts {
		if appt.DoctorID == doctorID && appt.Date == date {
			out = append(out, appt)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) Cancel(_ context.Context, appt *Appointment, now time.Time) error {
	stored, ok := f.appts[appt.ID]
	if !ok {
		return ErrAppointmentNotFound
	}
	if stored.Status != StatusConfirmed {
		return ErrNotCancellable
	}
	stored.Status = StatusCancelled
	stored.CancelledAt = now.Format(time.RFC3339Nano)
	return nil
}

type fakeLedger struct {
	marked map[string]string
	err    error
}

func (f *fakeLedger) MarkSucceeded(_ context.Context, intentID, appointmentID string) error {
	if f.err != nil {
		return f.err
	}
	if f.marked == nil {
		f.marked = make(map[string]string)
	}
	f.marked[intentID] = appointmentID
	return nil
}

type fakeOutbox struct {
	events []string
	err    error
}

func (f *fakeOutbox) Enqueue(_ context.Context, eventType, _ string, _ any) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, eventType)
	return nil
}

type fakeEmails struct {
	sent int
	err  error
}

func (f *fakeEmails) SendBookingConfirmation(_ context.Context, _ *Appointment) error {
	f.sent++
	return f.err
}

type fakeVideo struct {
	token string
	err   error

	roomID, userID, userName string
}

func (f *fakeVideo) MeetingToken(_ context.Context, roomID, userID, userName string) (string, error) {
	f.roomID, f.userID, f.userName = roomID, userID, userName
	return f.token, f.err
}

func validBooking() BookingRequest {
	return BookingRequest{
		PaymentIntentID: "pi_123",
		DoctorID:        "doc_1",
		DoctorName:      "Dr. Rivera",
		PatientID:       "pat_1",
		PatientName:     "Sam Lee",
		PatientEmail:    "sam@example.com",
		Date:            "2026-03-10",
		Time:            "14:00",
		Type:            TypeVirtual,
		ConsultationFee: 120,
		VideoRoomID:     "room_1",
	}
}

func newTestService(store *fakeBookingStore) (*Service, *fakeLedger, *fakeOutbox, *fakeEmails, *fakeVideo) {
	ledger := &fakeLedger{}
	outbox := &fakeOutbox{}
	emails := &fakeEmails{}
	video := &fakeVideo{token: "tok_abc"}
	svc := NewService(ServiceDeps{
		Store:  store,
		Ledger: ledger,
		Outbox: outbox,
		Emails: emails,
		Video:  video,
		Logger: logging.Default(),
	})
	return svc, ledger, outbox, emails, video
}

func TestBookHappyPath(t *testing.T) {
	store := newFakeBookingStore()
	svc, ledger, outbox, emails, _ := newTestService(store)

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.NotNil(t, store.booked)
	assert.Equal(t, StatusConfirmed, store.booked.Status)
	assert.Equal(t, "paid", store.booked.PaymentStatus)
	assert.Equal(t, "pi_123", store.booked.PaymentIntentID)
	assert.NotEmpty(t, store.booked.CreatedAt)

	assert.Equal(t, id, ledger.marked["pi_123"])
	assert.Equal(t, []string{"appointment.booked"}, outbox.events)
	assert.Equal(t, 1, emails.sent)
}

func TestBookPreconditionsWriteNothing(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BookingRequest)
		want   error
	}{
		{"missing payment ref", func(r *BookingRequest) { r.PaymentIntentID = " " }, ErrMissingPaymentRef},
		{"missing doctor", func(r *BookingRequest) { r.DoctorID = "" }, ErrMissingDoctor},
		{"missing patient", func(r *BookingRequest) { r.PatientID = "" }, ErrMissingPatient},
		{"missing time", func(r *BookingRequest) { r.Time = "" }, ErrMissingSchedule},
		{"bad type", func(r *BookingRequest) { r.Type = "telepathic" }, ErrInvalidType},
		{"negative fee", func(r *BookingRequest) { r.ConsultationFee = -1 }, ErrNegativeFee},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeBookingStore()
			svc, ledger, outbox, emails, _ := newTestService(store)

			req := validBooking()
			tc.mutate(&req)
			_, err := svc.Book(context.Background(), req)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, store.booked, "precondition failure must not write")
			assert.Empty(t, ledger.marked)
			assert.Empty(t, outbox.events)
			assert.Zero(t, emails.sent)
		})
	}
}

func TestBookStorageFailureSkipsSideEffects(t *testing.T) {
	store := newFakeBookingStore()
	store.bookErr = errors.New("transaction canceled")
	svc, ledger, outbox, emails, _ := newTestService(store)

	_, err := svc.Book(context.Background(), validBooking())
	require.Error(t, err)
	assert.Empty(t, ledger.marked)
	assert.Empty(t, outbox.events)
	assert.Zero(t, emails.sent)
}

func TestBookSideEffectFailuresDoNotFailBooking(t *testing.T) {
	store := newFakeBookingStore()
	svc, ledger, outbox, emails, _ := newTestService(store)
	ledger.err = errors.New("postgres down")
	outbox.err = errors.New("postgres down")
	emails.err = errors.New("sendgrid down")

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestCancelConfirmedFuture(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, outbox, _, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), id))
	appt, err := store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, appt.Status)
	assert.NotEmpty(t, appt.CancelledAt)
	assert.Contains(t, outbox.events, "appointment.cancelled")

	// Cancellation is terminal.
	err = svc.Cancel(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestCancelPastAppointment(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, _, _, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 14, 1, 0, 0, time.UTC) }
	err = svc.Cancel(context.Background(), id)
	assert.ErrorIs(t, err, ErrNotCancellable)
}

func TestJoinIssuesToken(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, _, _, video := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 13, 50, 0, 0, time.UTC) }

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	grant, err := svc.Join(context.Background(), id, "pat_1", "Sam Lee")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc", grant.Token)
	assert.Equal(t, "room_1", grant.RoomID)
	assert.Equal(t, "room_1", video.roomID)
	assert.Equal(t, "pat_1", video.userID)
	assert.Equal(t, "Sam Lee", video.userName)
}

func TestJoinOutsideWindow(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, _, _, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC) }

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), id, "pat_1", "Sam Lee")
	assert.ErrorIs(t, err, ErrNotJoinable)
}

func TestJoinWithoutRoomIsTerminal(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, _, _, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) }

	req := validBooking()
	req.VideoRoomID = ""
	id, err := svc.Book(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Join(context.Background(), id, "pat_1", "Sam Lee")
	assert.ErrorIs(t, err, ErrVideoUnavailable)
}

func TestJoinCancelledAppointment(t *testing.T) {
	store := newFakeBookingStore()
	svc, _, _, _, _ := newTestService(store)
	svc.now = func() time.Time { return time.Date(2026, 3, 9, 12, 0, 0, 0, time.UTC) }

	id, err := svc.Book(context.Background(), validBooking())
	require.NoError(t, err)
	require.NoError(t, svc.Cancel(context.Background(), id))

	svc.now = func() time.Time { return time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC) }
	_, err = svc.Join(context.Background(), id, "pat_1", "Sam Lee")
	assert.ErrorIs(t, err, ErrNotJoinable)
}
