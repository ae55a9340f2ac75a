package service

import (
	"bytes"
	"fmt"
	"html/template"
	"log"
	"path/filepath"
	"time"

	"github.com/munakata1001/jujutsukaisenapp/internal/entities"
)

// SenderService implements Notifier on top of SendGrid and Twilio. Delivery is
// fire-and-forget: failures are logged, never surfaced to the booking flow.
type SenderService struct {
}

func NewSenderService() *SenderService {
	return &SenderService{}
}

func (s *SenderService) SendReservationEmail(reservation entities.ReservationResponse, status string) {
	visitDate, err := time.Parse("2006-01-02", reservation.VisitDate)
	if err != nil {
		visitDate = time.Now()
	}

	emailData := entities.ReservationEmailData{
		UserName:           reservation.UserName,
		ReservationNumber:  reservation.ReservationNumber,
		VisitDateFormatted: visitDate.Format("02 Jan 2006"),
		VisitTime:          reservation.VisitTime,
		Status:             status,
		Products:           reservation.ProductDetails,
		CurrentYear:        time.Now().Year(),
	}

	emailSubject := fmt.Sprintf("Your JJS Pop-up Store reservation is %s - %s", status, emailData.ReservationNumber)
	plainTextBody := fmt.Sprintf(
		"Hello %s,\n\nYour reservation at the JJS Pop-up Store is %s.\n\n"+
			"Reservation Details:\n"+
			"Reservation Number: %s\n"+
			"Visit Date: %s\n"+
			"Visit Time: %s\n\n"+
			"Thank you for choosing the JJS Pop-up Store.\n\n"+
			"JJS Pop-up Store. All rights reserved.",
		emailData.UserName, status, emailData.ReservationNumber,
		emailData.VisitDateFormatted, emailData.VisitTime,
	)

	tmplPath := filepath.Join("internal", "templates", "reservation_email.html")
	tmpl, err := template.ParseFiles(tmplPath)
	if err != nil {
		log.Printf("ALERT: could not parse HTML email template (%s): %v", tmplPath, err)
		return
	}

	var htmlBodyBuffer bytes.Buffer
	if err := tmpl.Execute(&htmlBodyBuffer, emailData); err != nil {
		log.Printf("ALERT: could not execute HTML email template for reservation %s: %v", emailData.ReservationNumber, err)
	}
	htmlBody := htmlBodyBuffer.String()

	go func(toEmail, userName, subject, plainBody, htmlBodyContent string) {
		if err := SendEmailWithSendGrid(toEmail, userName, subject, plainBody, htmlBodyContent); err != nil {
			log.Printf("ALERT (async): email delivery failed for reservation %s: %v", emailData.ReservationNumber, err)
		}
	}(reservation.UserEmail, emailData.UserName, emailSubject, plainTextBody, htmlBody)
}

func (s *SenderService) SendReservationSMS(reservation entities.ReservationResponse, status string) {
	smsMessage := fmt.Sprintf("JJS Pop-up Store: reservation %s has been %s!\nVisit: %s %s.\nMore details in your email.",
		reservation.ReservationNumber, status,
		reservation.VisitDate, reservation.VisitTime,
	)

	go func(toNumber, body, number string) {
		if err := SendSMS(toNumber, body); err != nil {
			log.Printf("ALERT (async): SMS delivery failed for reservation %s: %v", number, err)
		}
	}(reservation.UserPhone, smsMessage, reservation.ReservationNumber)
}
