package email

import (
	"fmt"
	"strings"
)

// StatusEmail is a rendered booking status notification.
type StatusEmail struct {
	Subject string
	Body    string
}

// BookingDetails carries the display values for a status notification.
type BookingDetails struct {
	FieldDescription string
	Date             string
	TimeRange        string
	Room             string
}

// BuildConfirmationEmail renders the notification sent when an administrator
// confirms a booking request.
func BuildConfirmationEmail(details BookingDetails) StatusEmail {
	var body strings.Builder
	body.WriteString("Your booking has been confirmed.\n\n")
	writeDetails(&body, details)
	body.WriteString("\nSee you on the field!\n")

	return StatusEmail{
		Subject: fmt.Sprintf("Booking confirmed: %s on %s", details.FieldDescription, details.Date),
		Body:    body.String(),
	}
}

// BuildRejectionEmail renders the notification sent when a booking request
// is rejected.
func BuildRejectionEmail(details BookingDetails) StatusEmail {
	var body strings.Builder
	body.WriteString("Unfortunately your booking request could not be accepted.\n\n")
	writeDetails(&body, details)
	body.WriteString("\nPlease pick another slot and try again.\n")

	return StatusEmail{
		Subject: fmt.Sprintf("Booking request declined: %s on %s", details.FieldDescription, details.Date),
		Body:    body.String(),
	}
}

func writeDetails(body *strings.Builder, details BookingDetails) {
	fmt.Fprintf(body, "Field: %s\n", details.FieldDescription)
	fmt.Fprintf(body, "Date: %s\n", details.Date)
	fmt.Fprintf(body, "Time: %s\n", details.TimeRange)
	if details.Room != "" {
		fmt.Fprintf(body, "Locker room: %s\n", details.Room)
	}
}

// FormatTimeRange renders a booking interval for display.
func FormatTimeRange(startTime, endTime string) string {
	return fmt.Sprintf("%s - %s", startTime, endTime)
}
