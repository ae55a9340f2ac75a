package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
)

// mockReservationStore is a test double for the reservation repository.
type mockReservationStore struct {
	createErr     error
	createdSlotID string
	created       *db.Reservation

	cancelErr    error
	cancelSlotID string

	reservations map[string]*db.Reservation
	byEmail      []db.Reservation
	listedEmail  string
}

func (m *mockReservationStore) CreateReservation(res *db.Reservation, slotID string) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = res
	m.createdSlotID = slotID
	return nil
}

func (m *mockReservationStore) CancelReservation(id, slotID string) (*db.Reservation, error) {
	if m.cancelErr != nil {
		return nil, m.cancelErr
	}
	m.cancelSlotID = slotID
	res := *m.reservations[id]
	res.Status = db.StatusCancelled
	return &res, nil
}

func (m *mockReservationStore) MoveReservation(id, oldSlotID, newSlotID string, visitDate time.Time, visitTime string) (*db.Reservation, error) {
	res := *m.reservations[id]
	res.VisitDate = visitDate
	res.VisitTime = visitTime
	return &res, nil
}

func (m *mockReservationStore) CompleteReservation(id string) (*db.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if res.Status == db.StatusCancelled || res.Status == db.StatusCompleted {
		return nil, repository.ErrAlreadyTerminal
	}
	completed := *res
	completed.Status = db.StatusCompleted
	return &completed, nil
}

func (m *mockReservationStore) GetReservationByID(id string) (*db.Reservation, error) {
	res, ok := m.reservations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return res, nil
}

func (m *mockReservationStore) GetReservationByNumber(number string) (*db.Reservation, error) {
	for _, res := range m.reservations {
		if res.ReservationNumber == number {
			return res, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockReservationStore) ListReservationsByEmail(email string) ([]db.Reservation, error) {
	m.listedEmail = email
	return m.byEmail, nil
}

func (m *mockReservationStore) SearchReservations(number, userName, visitDate, status string, limit int) ([]db.Reservation, error) {
	return m.byEmail, nil
}

// mockProductStore serves a static catalog.
type mockProductStore struct {
	products map[string]*db.Product
}

func (m *mockProductStore) ListProducts() ([]db.Product, error) {
	var products []db.Product
	for _, p := range m.products {
		products = append(products, *p)
	}
	return products, nil
}

func (m *mockProductStore) GetProduct(id string) (*db.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

// mockNotifier records delivered notifications.
type mockNotifier struct {
	emails []string
	sms    []string
}

func (m *mockNotifier) SendReservationEmail(res entities.ReservationResponse, status string) {
	m.emails = append(m.emails, status)
}

func (m *mockNotifier) SendReservationSMS(res entities.ReservationResponse, status string) {
	m.sms = append(m.sms, status)
}

func newTestReservationService(store *mockReservationStore, notifier *mockNotifier, now time.Time) *ReservationService {
	svc := NewReservationService(store, &mockProductStore{products: map[string]*db.Product{
		"prod-1": {ID: "prod-1", Name: "Acrylic Stand", Price: 1500},
	}}, notifier)
	svc.now = func() time.Time { return now }
	return svc
}

func validCreateRequest() entities.CreateReservationRequest {
	return entities.CreateReservationRequest{
		UserEmail: "gojo@example.com",
		UserName:  "Satoru Gojo",
		UserPhone: "090-1234-5678",
		VisitDate: "2025-06-01",
		VisitTime: "10:00",
		Products: []entities.ProductOrder{
			{ProductID: "prod-1", Quantity: 2},
		},
	}
}

func TestCreateReservation(t *testing.T) {
	store := &mockReservationStore{}
	notifier := &mockNotifier{}
	svc := newTestReservationService(store, notifier, time.Date(2025, 5, 20, 10, 0, 0, 0, time.UTC))

	res, err := svc.CreateReservation(validCreateRequest())
	require.NoError(t, err)

	assert.Equal(t, db.StatusConfirmed, res.Status)
	assert.Equal(t, "gojo@example.com", res.UserEmail)
	assert.Equal(t, "2025-06-01", res.VisitDate)
	assert.Regexp(t, regexp.MustCompile(`^JJS-2025-[0-9A-F]{6}$`), res.ReservationNumber)
	assert.NotEmpty(t, res.ReservationID)

	// The reservation occupies exactly one slot unit; the two ordered
	// products do not consume extra seats.
	assert.Equal(t, "2025-06-01_1000", store.createdSlotID)
	require.Len(t, store.created.Products, 1)
	assert.Equal(t, 2, store.created.Products[0].Quantity)

	require.Len(t, res.ProductDetails, 1)
	assert.Equal(t, "Acrylic Stand", res.ProductDetails[0].Name)

	assert.Equal(t, []string{"confirmed"}, notifier.emails)
	assert.Equal(t, []string{"confirmed"}, notifier.sms)
}

func TestCreateReservation_Validation(t *testing.T) {
	svc := newTestReservationService(&mockReservationStore{}, &mockNotifier{}, time.Now())

	tests := []struct {
		name   string
		mutate func(*entities.CreateReservationRequest)
	}{
		{"empty name", func(r *entities.CreateReservationRequest) { r.UserName = "  " }},
		{"empty email", func(r *entities.CreateReservationRequest) { r.UserEmail = "" }},
		{"phone with letters", func(r *entities.CreateReservationRequest) { r.UserPhone = "abc123" }},
		{"empty phone", func(r *entities.CreateReservationRequest) { r.UserPhone = "" }},
		{"missing date", func(r *entities.CreateReservationRequest) { r.VisitDate = "" }},
		{"bad date format", func(r *entities.CreateReservationRequest) { r.VisitDate = "01-06-2025" }},
		{"missing time", func(r *entities.CreateReservationRequest) { r.VisitTime = "" }},
		{"bad time format", func(r *entities.CreateReservationRequest) { r.VisitTime = "10am" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			_, err := svc.CreateReservation(req)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestCreateReservation_SlotFull(t *testing.T) {
	store := &mockReservationStore{createErr: repository.ErrSlotFull}
	notifier := &mockNotifier{}
	svc := newTestReservationService(store, notifier, time.Now())

	_, err := svc.CreateReservation(validCreateRequest())
	assert.ErrorIs(t, err, repository.ErrSlotFull)
	assert.Empty(t, notifier.emails, "failed bookings must not notify")
}

func TestCreateReservation_SlotNotFound(t *testing.T) {
	store := &mockReservationStore{createErr: repository.ErrSlotNotFound}
	svc := newTestReservationService(store, &mockNotifier{}, time.Now())

	_, err := svc.CreateReservation(validCreateRequest())
	assert.ErrorIs(t, err, repository.ErrSlotNotFound)
}

func storedReservation(id, email, date string, status string) *db.Reservation {
	visitDate, _ := time.Parse("2006-01-02", date)
	return &db.Reservation{
		ID:                id,
		ReservationNumber: "JJS-2025-AB12CD",
		UserEmail:         email,
		UserName:          "Satoru Gojo",
		UserPhone:         "090-1234-5678",
		VisitDate:         visitDate,
		VisitTime:         "10:00",
		Status:            status,
	}
}

func TestCancelReservation(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusConfirmed),
		},
	}
	notifier := &mockNotifier{}
	svc := newTestReservationService(store, notifier, now)

	res, err := svc.CancelReservation("res-1", "gojo@example.com")
	require.NoError(t, err)
	assert.Equal(t, db.StatusCancelled, res.Status)
	assert.Equal(t, "2025-06-01_1000", store.cancelSlotID)
	assert.Equal(t, []string{"cancelled"}, notifier.emails)
}

func TestCancelReservation_NotFound(t *testing.T) {
	svc := newTestReservationService(&mockReservationStore{reservations: map[string]*db.Reservation{}}, &mockNotifier{}, time.Now())
	_, err := svc.CancelReservation("missing", "gojo@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCancelReservation_Forbidden(t *testing.T) {
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusConfirmed),
		},
	}
	svc := newTestReservationService(store, &mockNotifier{}, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC))

	_, err := svc.CancelReservation("res-1", "sukuna@example.com")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestCancelReservation_TooLate(t *testing.T) {
	now := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	tests := []struct {
		name      string
		visitDate string
	}{
		{"visit today", "2025-06-01"},
		{"visit already past", "2025-05-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockReservationStore{
				reservations: map[string]*db.Reservation{
					"res-1": storedReservation("res-1", "gojo@example.com", tt.visitDate, db.StatusConfirmed),
				},
			}
			notifier := &mockNotifier{}
			svc := newTestReservationService(store, notifier, now)

			_, err := svc.CancelReservation("res-1", "gojo@example.com")
			assert.ErrorIs(t, err, ErrTooLateToCancel)
			assert.Empty(t, notifier.emails)
		})
	}
}

func TestCancelReservation_DayBeforeVisitStillAllowed(t *testing.T) {
	now := time.Date(2025, 5, 31, 23, 0, 0, 0, time.UTC)
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusConfirmed),
		},
	}
	svc := newTestReservationService(store, &mockNotifier{}, now)

	_, err := svc.CancelReservation("res-1", "gojo@example.com")
	assert.NoError(t, err)
}

func TestCancelReservation_AlreadyTerminal(t *testing.T) {
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-10", db.StatusCancelled),
		},
		cancelErr: repository.ErrAlreadyTerminal,
	}
	notifier := &mockNotifier{}
	svc := newTestReservationService(store, notifier, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))

	_, err := svc.CancelReservation("res-1", "gojo@example.com")
	assert.ErrorIs(t, err, repository.ErrAlreadyTerminal)
	assert.Empty(t, notifier.emails, "terminal cancels must not notify")
}

func TestListReservationsByEmail(t *testing.T) {
	store := &mockReservationStore{
		byEmail: []db.Reservation{
			*storedReservation("res-2", "gojo@example.com", "2025-06-02", db.StatusConfirmed),
			*storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusCancelled),
		},
	}
	svc := newTestReservationService(store, &mockNotifier{}, time.Now())

	reservations, err := svc.ListReservationsByEmail("Gojo@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "gojo@example.com", store.listedEmail, "lookup is case-insensitive on email")
	require.Len(t, reservations, 2)
	assert.Equal(t, "res-2", reservations[0].ReservationID)
}

func TestCompleteReservation(t *testing.T) {
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusConfirmed),
			"res-2": storedReservation("res-2", "gojo@example.com", "2025-06-01", db.StatusCompleted),
		},
	}
	svc := newTestReservationService(store, &mockNotifier{}, time.Now())

	res, err := svc.CompleteReservation("res-1")
	require.NoError(t, err)
	assert.Equal(t, db.StatusCompleted, res.Status)

	_, err = svc.CompleteReservation("res-2")
	assert.ErrorIs(t, err, repository.ErrAlreadyTerminal)
}

func TestUpdateReservationVisit(t *testing.T) {
	store := &mockReservationStore{
		reservations: map[string]*db.Reservation{
			"res-1": storedReservation("res-1", "gojo@example.com", "2025-06-01", db.StatusConfirmed),
		},
	}
	svc := newTestReservationService(store, &mockNotifier{}, time.Now())

	res, err := svc.UpdateReservationVisit("res-1", entities.UpdateReservationRequest{
		VisitDate: "2025-06-02",
		VisitTime: "11:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-06-02", res.VisitDate)
	assert.Equal(t, "11:00", res.VisitTime)
}

func TestGenerateReservationNumberFormat(t *testing.T) {
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^JJS-2024-[0-9A-F]{6}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		number := generateReservationNumber(now)
		assert.Regexp(t, pattern, number)
		seen[number] = true
	}
	assert.Greater(t, len(seen), 1, "numbers should not repeat")
}
