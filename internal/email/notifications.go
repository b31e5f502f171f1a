package email

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appdb "github.com/fieldbook/fieldbook/internal/db"
)

const statusEmailTimeout = 5 * time.Second

// SendStatusEmail sends a booking status notification asynchronously. Only
// registered requesters with an email address are notified; unregistered
// walk-in names have no address to deliver to.
func SendStatusEmail(ctx context.Context, q *appdb.Queries, client EmailSender, userID int64, notification StatusEmail, logger *zerolog.Logger) {
	if client == nil || q == nil {
		return
	}
	if notification.Subject == "" || notification.Body == "" {
		return
	}

	user, err := q.GetUserByID(ctx, userID)
	if err != nil {
		if logger != nil {
			logger.Error().Err(err).Int64("user_id", userID).Msg("Failed to load user for status email")
		}
		return
	}
	if !user.Email.Valid {
		return
	}
	recipient := strings.TrimSpace(user.Email.String)
	if recipient == "" {
		return
	}

	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), statusEmailTimeout)
		defer cancel()
		if err := client.Send(sendCtx, recipient, notification.Subject, notification.Body); err != nil && logger != nil {
			logger.Error().Err(err).Str("recipient", recipient).Msg("Failed to send status email")
		}
	}()
}
