package service

import (
	"fmt"
	"log"

	"github.com/munakata1001/jujutsukaisenapp/internal/db"
	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
)

type JobService struct {
	Repo *repository.JobRepository
}

func NewJobService(repo *repository.JobRepository) *JobService {
	return &JobService{Repo: repo}
}

// CompletePastReservations finds confirmed reservations whose visit date has
// passed and marks them completed.
func (s *JobService) CompletePastReservations() error {
	log.Println("Cron Job: Checking for reservations to mark as 'completed'...")

	reservationIDs, err := s.Repo.GetConfirmedReservationIDsPastVisitDate()
	if err != nil {
		return fmt.Errorf("cron job: failed to get confirmed reservations past visit date: %w", err)
	}

	if len(reservationIDs) == 0 {
		log.Println("Cron Job: No confirmed reservations found past their visit date.")
		return nil
	}

	log.Printf("Cron Job: Found %d reservations to mark as 'completed'.", len(reservationIDs))

	if err := s.Repo.UpdateReservationStatuses(reservationIDs, db.StatusCompleted); err != nil {
		return fmt.Errorf("cron job: failed to update reservation statuses: %w", err)
	}

	log.Printf("Cron Job: Successfully updated %d reservations to 'completed'.", len(reservationIDs))
	return nil
}
