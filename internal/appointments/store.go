package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/bookmydoc/bookmydoc-server/pkg/logging"
)

type dynamoAPI interface {
	TransactWriteItems(context.Context, *dynamodb.TransactWriteItemsInput, ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(context.Context, *dynamodb.QueryInput, ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Tables names the four locations a booking is written to.
type Tables struct {
	Appointments        string
	DoctorAppointments  string
	PatientAppointments string
	DailyAppointments   string
}

// Store persists appointments across the global table, the doctor and
// patient copies, and the per-doctor-per-date index.
type Store struct {
	client dynamoAPI
	tables Tables
	logger *logging.Logger
}

// NewStore builds an appointment store over the given tables.
func NewStore(client dynamoAPI, tables Tables, logger *logging.Logger) *Store {
	if client == nil {
		panic("appointments: dynamodb client cannot be nil")
	}
	if tables.Appointments == "" || tables.DoctorAppointments == "" ||
		tables.PatientAppointments == "" || tables.DailyAppointments == "" {
		panic("appointments: all table names are required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{client: client, tables: tables, logger: logger}
}

// Book writes the appointment to all four locations in a single transaction:
// the global record, the doctor copy, the patient copy, and an append onto
// the per-date index. The append uses list_append with if_not_exists so two
// concurrent bookings for the same doctor and date both land in the index.
func (s *Store) Book(ctx context.Context, appt *Appointment) error {
	item, err := attributevalue.MarshalMap(appt)
	if err != nil {
		return fmt.Errorf("appointments: failed to encode appointment: %w", err)
	}

	newID, err := attributevalue.Marshal([]string{appt.ID})
	if err != nil {
		return fmt.Errorf("appointments: failed to encode index entry: %w", err)
	}
	now := &types.AttributeValueMemberS{Value: appt.CreatedAt}

	_, err = s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:           aws.String(s.tables.Appointments),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(appointmentId)"),
			}},
			{Put: &types.Put{
				TableName: aws.String(s.tables.DoctorAppointments),
				Item:      item,
			}},
			{Put: &types.Put{
				TableName: aws.String(s.tables.PatientAppointments),
				Item:      item,
			}},
			{Update: &types.Update{
				TableName: aws.String(s.tables.DailyAppointments),
				Key: map[string]types.AttributeValue{
					"doctorId":        &types.AttributeValueMemberS{Value: appt.DoctorID},
					"appointmentDate": &types.AttributeValueMemberS{Value: appt.Date},
				},
				UpdateExpression: aws.String(
					"SET appointmentIds = list_append(if_not_exists(appointmentIds, :empty), :new), " +
						"createdAt = if_not_exists(createdAt, :now), updatedAt = :now"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
					":new":   newID,
					":now":   now,
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("appointments: failed to book appointment %s: %w", appt.ID, err)
	}
	return nil
}

// Get reads the canonical record from the global table.
func (s *Store) Get(ctx context.Context, appointmentID string) (*Appointment, error) {
	if appointmentID == "" {
		return nil, ErrAppointmentNotFound
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.Appointments),
		Key: map[string]types.AttributeValue{
			"appointmentId": &types.AttributeValueMemberS{Value: appointmentID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to get appointment %s: %w", appointmentID, err)
	}
	if out.Item == nil {
		return nil, ErrAppointmentNotFound
	}
	var appt Appointment
	if err := attributevalue.UnmarshalMap(out.Item, &appt); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode appointment %s: %w", appointmentID, err)
	}
	return &appt, nil
}

// ListByDoctor returns the doctor's copy of every appointment.
func (s *Store) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return s.queryCopies(ctx, s.tables.DoctorAppointments, "doctorId", doctorID)
}

// ListByPatient returns the patient's copy of every appointment.
func (s *Store) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.queryCopies(ctx, s.tables.PatientAppointments, "patientId", patientID)
}

func (s *Store) queryCopies(ctx context.Context, table, keyAttr, keyValue string) ([]*Appointment, error) {
	if keyValue == "" {
		return nil, fmt.Errorf("appointments: %s is required", keyAttr)
	}
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(table),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": keyAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: keyValue},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to list appointments for %s=%s: %w", keyAttr, keyValue, err)
	}

	appts := make([]*Appointment, 0, len(out.Items))
	for _, item := range out.Items {
		var appt Appointment
		if err := attributevalue.UnmarshalMap(item, &appt); err != nil {
			return nil, fmt.Errorf("appointments: failed to decode appointment: %w", err)
		}
		appts = append(appts, &appt)
	}
	return appts, nil
}

// GetDayIndex reads the per-date index entry. A missing entry comes back as
// an empty index, not an error.
func (s *Store) GetDayIndex(ctx context.Context, doctorID, date string) (*DayIndex, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tables.DailyAppointments),
		Key: map[string]types.AttributeValue{
			"doctorId":        &types.AttributeValueMemberS{Value: doctorID},
			"appointmentDate": &types.AttributeValueMemberS{Value: date},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("appointments: failed to get day index %s/%s: %w", doctorID, date, err)
	}
	idx := &DayIndex{DoctorID: doctorID, Date: date}
	if out.Item == nil {
		return idx, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, idx); err != nil {
		return nil, fmt.Errorf("appointments: failed to decode day index %s/%s: %w", doctorID, date, err)
	}
	return idx, nil
}

// ListDoctorDay resolves the per-date index into full records, preserving
// index order. Ids that no longer resolve are skipped; the index may hold
// stale entries for cancelled appointments.
func (s *Store) ListDoctorDay(ctx context.Context, doctorID, date string) ([]*Appointment, error) {
	idx, err := s.GetDayIndex(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	appts := make([]*Appointment, 0, len(idx.AppointmentIDs))
	for _, id := range idx.AppointmentIDs {
		appt, err := s.Get(ctx, id)
		if errors.Is(err, ErrAppointmentNotFound) {
			s.logger.Warn("day index references missing appointment", "appointment_id", id, "doctor_id", doctorID, "date", date)
			continue
		}
		if err != nil {
			return nil, err
		}
		appts = append(appts, appt)
	}
	return appts, nil
}

// Cancel flips all three record copies to cancelled in one transaction. The
// guard on the global record keeps the transition one-way: anything but a
// confirmed appointment fails with ErrNotCancellable. The per-date index is
// left untouched and retains the id.
func (s *Store) Cancel(ctx context.Context, appt *Appointment, now time.Time) error {
	stamp := now.UTC().Format(time.RFC3339Nano)
	values := map[string]types.AttributeValue{
		":cancelled": &types.AttributeValueMemberS{Value: string(StatusCancelled)},
		":now":       &types.AttributeValueMemberS{Value: stamp},
	}
	names := map[string]string{"#status": "status"}
	expr := aws.String("SET #status = :cancelled, cancelledAt = :now, updatedAt = :now")

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName: aws.String(s.tables.Appointments),
				Key: map[string]types.AttributeValue{
					"appointmentId": &types.AttributeValueMemberS{Value: appt.ID},
				},
				UpdateExpression:         expr,
				ExpressionAttributeNames: names,
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":cancelled": values[":cancelled"],
					":now":       values[":now"],
					":confirmed": &types.AttributeValueMemberS{Value: string(StatusConfirmed)},
				},
				ConditionExpression: aws.String("attribute_exists(appointmentId) AND #status = :confirmed"),
			}},
			{Update: &types.Update{
				TableName: aws.String(s.tables.DoctorAppointments),
				Key: map[string]types.AttributeValue{
					"doctorId":      &types.AttributeValueMemberS{Value: appt.DoctorID},
					"appointmentId": &types.AttributeValueMemberS{Value: appt.ID},
				},
				UpdateExpression:          expr,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}},
			{Update: &types.Update{
				TableName: aws.String(s.tables.PatientAppointments),
				Key: map[string]types.AttributeValue{
					"patientId":     &types.AttributeValueMemberS{Value: appt.PatientID},
					"appointmentId": &types.AttributeValueMemberS{Value: appt.ID},
				},
				UpdateExpression:          expr,
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}},
		},
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			for _, reason := range canceled.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return ErrNotCancellable
				}
			}
		}
		return fmt.Errorf("appointments: failed to cancel appointment %s: %w", appt.ID, err)
	}
	return nil
}
