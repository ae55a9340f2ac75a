package service

import (
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
)

var phonePattern = regexp.MustCompile(`^[0-9+\-() ]+$`)

type ReservationStore interface {
	CreateReservation(res *db.Reservation, slotID string) error
	CancelReservation(id, slotID string) (*db.Reservation, error)
	MoveReservation(id, oldSlotID, newSlotID string, visitDate time.Time, visitTime string) (*db.Reservation, error)
	CompleteReservation(id string) (*db.Reservation, error)
	GetReservationByID(id string) (*db.Reservation, error)
	GetReservationByNumber(number string) (*db.Reservation, error)
	ListReservationsByEmail(email string) ([]db.Reservation, error)
	SearchReservations(number, userName, visitDate, status string, limit int) ([]db.Reservation, error)
}

type ProductStore interface {
	ListProducts() ([]db.Product, error)
	GetProduct(id string) (*db.Product, error)
}

// Notifier delivers reservation confirmations and cancellation notices.
// Implementations must not block the request path.
type Notifier interface {
	SendReservationEmail(res entities.ReservationResponse, status string)
	SendReservationSMS(res entities.ReservationResponse, status string)
}

type ReservationService struct {
	Repo     ReservationStore
	Products ProductStore
	Sender   Notifier
	now      func() time.Time
}

func NewReservationService(repo ReservationStore, products ProductStore, sender Notifier) *ReservationService {
	return &ReservationService{
		Repo:     repo,
		Products: products,
		Sender:   sender,
		now:      time.Now,
	}
}

// CreateReservation validates the request, takes one seat in the target slot
// and persists the reservation record. Seat and record move together in one
// repository transaction; if admission control rejects the slot no record is
// written.
func (s *ReservationService) CreateReservation(req entities.CreateReservationRequest) (*entities.ReservationResponse, error) {
	if strings.TrimSpace(req.UserName) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if strings.TrimSpace(req.UserEmail) == "" {
		return nil, fmt.Errorf("%w: email is required", ErrValidation)
	}
	if !phonePattern.MatchString(req.UserPhone) {
		return nil, fmt.Errorf("%w: phone may contain only digits, spaces, +, hyphens and parentheses", ErrValidation)
	}
	if req.VisitDate == "" || req.VisitTime == "" {
		return nil, fmt.Errorf("%w: visit date and time are required", ErrValidation)
	}
	visitDate, err := time.Parse("2006-01-02", req.VisitDate)
	if err != nil {
		return nil, fmt.Errorf("%w: visit date must be YYYY-MM-DD", ErrValidation)
	}
	if !timePattern.MatchString(req.VisitTime) {
		return nil, fmt.Errorf("%w: visit time must be HH:MM", ErrValidation)
	}

	res := &db.Reservation{
		ID:                uuid.NewString(),
		ReservationNumber: generateReservationNumber(s.now()),
		UserEmail:         strings.TrimSpace(strings.ToLower(req.UserEmail)),
		UserName:          strings.TrimSpace(req.UserName),
		UserPhone:         req.UserPhone,
		VisitDate:         visitDate,
		VisitTime:         req.VisitTime,
		Status:            db.StatusConfirmed,
	}
	for _, p := range req.Products {
		res.Products = append(res.Products, db.ReservationProduct{
			ReservationID: res.ID,
			ProductID:     p.ProductID,
			Quantity:      p.Quantity,
		})
	}

	slotID := GenerateSlotID(visitDate, req.VisitTime)
	if err := s.Repo.CreateReservation(res, slotID); err != nil {
		return nil, err
	}

	response := s.toResponse(res, true)
	s.notify(response, "confirmed")
	return &response, nil
}

// CancelReservation cancels an owned, non-terminal reservation whose visit is
// at least one day away, releasing the seat back to the slot.
func (s *ReservationService) CancelReservation(id, requesterEmail string) (*entities.ReservationResponse, error) {
	res, err := s.Repo.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(res.UserEmail, strings.TrimSpace(requesterEmail)) {
		return nil, ErrForbidden
	}
	if res.Status == db.StatusCancelled || res.Status == db.StatusCompleted {
		return nil, repository.ErrAlreadyTerminal
	}
	if daysUntil(s.now(), res.VisitDate) < 1 {
		return nil, ErrTooLateToCancel
	}

	cancelled, err := s.Repo.CancelReservation(id, GenerateSlotID(res.VisitDate, res.VisitTime))
	if err != nil {
		return nil, err
	}

	response := s.toResponse(cancelled, true)
	s.notify(response, "cancelled")
	return &response, nil
}

// ListReservationsByEmail returns the user's reservations newest first.
func (s *ReservationService) ListReservationsByEmail(email string) ([]entities.ReservationResponse, error) {
	reservations, err := s.Repo.ListReservationsByEmail(strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		return nil, err
	}
	responses := make([]entities.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, s.toResponse(&reservations[i], false))
	}
	return responses, nil
}

func (s *ReservationService) GetReservationByID(id string) (*entities.ReservationResponse, error) {
	res, err := s.Repo.GetReservationByID(id)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(res, true)
	return &response, nil
}

func (s *ReservationService) GetReservationByNumber(number string) (*entities.ReservationResponse, error) {
	res, err := s.Repo.GetReservationByNumber(number)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(res, true)
	return &response, nil
}

// UpdateReservationVisit moves a reservation to another slot (staff
// operation). Capacity in the new slot is re-checked under the same admission
// control as creation.
func (s *ReservationService) UpdateReservationVisit(id string, req entities.UpdateReservationRequest) (*entities.ReservationResponse, error) {
	res, err := s.Repo.GetReservationByID(id)
	if err != nil {
		return nil, err
	}

	newDate := res.VisitDate
	if req.VisitDate != "" {
		newDate, err = time.Parse("2006-01-02", req.VisitDate)
		if err != nil {
			return nil, fmt.Errorf("%w: visit date must be YYYY-MM-DD", ErrValidation)
		}
	}
	newTime := res.VisitTime
	if req.VisitTime != "" {
		if !timePattern.MatchString(req.VisitTime) {
			return nil, fmt.Errorf("%w: visit time must be HH:MM", ErrValidation)
		}
		newTime = req.VisitTime
	}

	oldSlotID := GenerateSlotID(res.VisitDate, res.VisitTime)
	newSlotID := GenerateSlotID(newDate, newTime)
	if oldSlotID == newSlotID {
		response := s.toResponse(res, true)
		return &response, nil
	}

	moved, err := s.Repo.MoveReservation(id, oldSlotID, newSlotID, newDate, newTime)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(moved, true)
	return &response, nil
}

// CompleteReservation marks a visit as completed (staff operation).
func (s *ReservationService) CompleteReservation(id string) (*entities.ReservationResponse, error) {
	res, err := s.Repo.CompleteReservation(id)
	if err != nil {
		return nil, err
	}
	response := s.toResponse(res, true)
	return &response, nil
}

// SearchReservations filters reservations for the staff dashboard.
func (s *ReservationService) SearchReservations(number, userName, visitDate, status string, limit int) ([]entities.ReservationResponse, error) {
	if limit <= 0 || limit > 1000 {
		limit = 100
	}
	reservations, err := s.Repo.SearchReservations(number, userName, visitDate, status, limit)
	if err != nil {
		return nil, err
	}
	responses := make([]entities.ReservationResponse, 0, len(reservations))
	for i := range reservations {
		responses = append(responses, s.toResponse(&reservations[i], false))
	}
	return responses, nil
}

func (s *ReservationService) toResponse(res *db.Reservation, withProductDetails bool) entities.ReservationResponse {
	response := entities.ReservationResponse{
		ReservationID:     res.ID,
		ReservationNumber: res.ReservationNumber,
		UserEmail:         res.UserEmail,
		UserName:          res.UserName,
		UserPhone:         res.UserPhone,
		VisitDate:         res.VisitDate.Format("2006-01-02"),
		VisitTime:         res.VisitTime,
		Status:            res.Status,
		Products:          make([]entities.ProductOrder, 0, len(res.Products)),
		CreatedAt:         res.CreatedAt,
		UpdatedAt:         res.UpdatedAt,
	}
	for _, p := range res.Products {
		response.Products = append(response.Products, entities.ProductOrder{ProductID: p.ProductID, Quantity: p.Quantity})
	}

	if withProductDetails && s.Products != nil {
		for _, p := range res.Products {
			product, err := s.Products.GetProduct(p.ProductID)
			if err != nil {
				log.Printf("Could not load product %s for reservation %s: %v", p.ProductID, res.ID, err)
				response.ProductDetails = append(response.ProductDetails, entities.ProductDetail{
					ProductID: p.ProductID,
					Quantity:  p.Quantity,
				})
				continue
			}
			response.ProductDetails = append(response.ProductDetails, entities.ProductDetail{
				ProductID:   product.ID,
				Name:        product.Name,
				Description: product.Description,
				Price:       product.Price,
				Quantity:    p.Quantity,
			})
		}
	}
	return response
}

func (s *ReservationService) notify(res entities.ReservationResponse, status string) {
	if s.Sender == nil {
		return
	}
	s.Sender.SendReservationEmail(res, status)
	s.Sender.SendReservationSMS(res, status)
}

// generateReservationNumber builds the human-facing booking code,
// e.g. "JJS-2025-9F2A1C".
func generateReservationNumber(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("JJS-%d-%s", now.Year(), random)
}

// daysUntil counts whole calendar days between now and the visit date.
func daysUntil(now, visitDate time.Time) int {
	return int(truncateToDay(visitDate).Sub(truncateToDay(now)).Hours() / 24)
}
