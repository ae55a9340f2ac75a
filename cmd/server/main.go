package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/munakata1001/jujutsukaisenapp/internal/api"
	"github.com/munakata1001/jujutsukaisenapp/internal/auth"
	"github.com/munakata1001/jujutsukaisenapp/internal/config"
	"github.com/munakata1001/jujutsukaisenapp/internal/repository"
	"github.com/munakata1001/jujutsukaisenapp/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	timeSlotRepo := repository.NewTimeSlotRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	productRepo := repository.NewProductRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)

	sender := service.NewSenderService()
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, cfg.LimitedThreshold)
	reservationSvc := service.NewReservationService(reservationRepo, productRepo, sender)
	productSvc := service.NewProductService(productRepo)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(jobRepo)

	userReservationHandler := api.NewUserReservationHandler(reservationSvc)
	timeSlotHandler := api.NewTimeSlotHandler(timeSlotSvc)
	productHandler := api.NewProductHandler(productSvc)
	adminHandler := api.NewAdminHandler(reservationSvc, timeSlotSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()
	r.Use(api.MetricsMiddleware)

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}).Methods("GET")

	// Public endpoints
	r.HandleFunc("/api/calendar", timeSlotHandler.GetCalendar).Methods("GET")
	r.HandleFunc("/api/timeslots/availability", timeSlotHandler.CheckAvailability).Methods("GET")
	r.HandleFunc("/api/timeslots", timeSlotHandler.GetTimeSlots).Methods("GET")
	r.HandleFunc("/api/products", productHandler.ListProducts).Methods("GET")
	r.HandleFunc("/api/products/{id}", productHandler.GetProduct).Methods("GET")
	r.HandleFunc("/api/reservations", userReservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations", userReservationHandler.ListReservations).Methods("GET")
	r.HandleFunc("/api/reservations/by-number/{number}", userReservationHandler.GetReservationByNumber).Methods("GET")
	r.HandleFunc("/api/reservations/{id}", userReservationHandler.GetReservation).Methods("GET")
	r.HandleFunc("/api/reservations/{id}", userReservationHandler.CancelReservation).Methods("DELETE")

	// Admin endpoints (protected)
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/register", adminAuthHandler.CreateUserAdmin).Methods("POST")
	admin.HandleFunc("/timeslots", adminHandler.CreateTimeSlot).Methods("POST")
	admin.HandleFunc("/timeslots/{slotId}", adminHandler.UpdateTimeSlot).Methods("PUT")
	admin.HandleFunc("/timeslots/{slotId}", adminHandler.DeleteTimeSlot).Methods("DELETE")
	admin.HandleFunc("/reservations", adminHandler.SearchReservations).Methods("GET")
	admin.HandleFunc("/reservations/{id}", adminHandler.UpdateReservation).Methods("PUT")
	admin.HandleFunc("/reservations/{id}/complete", adminHandler.CompleteReservation).Methods("POST")

	// Completion sweep: confirmed reservations whose visit date passed become completed.
	c := cron.New()
	if _, err := c.AddFunc(cfg.CompletionCronSpec, func() {
		if err := jobSvc.CompletePastReservations(); err != nil {
			log.Printf("Completion sweep failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule completion sweep: %v", err)
	}
	c.Start()

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORSAllowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-User-Email"}),
	)(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	c.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("Server stopped")
}
