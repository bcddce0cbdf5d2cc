package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/YelzhanWeb/restaurant/internal/adapter/logger"
	"github.com/YelzhanWeb/restaurant/internal/interfaces"
)

type NotificationHandler struct {
	logger logger.Logger
	out    io.Writer
}

func NewNotificationHandler(logger logger.Logger, out io.Writer) *NotificationHandler {
	return &NotificationHandler{
		logger: logger,
		out:    out,
	}
}

func (h *NotificationHandler) HandleNotification(ctx context.Context, body []byte) error {
	var msg interfaces.StatusUpdateMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		h.logger.Error("message_parse_failed", "Failed to parse notification", "", nil, err)
		return err
	}

	h.logger.Debug("notification_received", fmt.Sprintf("Received status update for %s %s", msg.Entity, msg.Reference),
		msg.Reference, map[string]interface{}{
			"entity_id":  msg.EntityID,
			"company_id": msg.CompanyID,
			"new_status": msg.NewStatus,
		})

	fmt.Fprintf(h.out, "Notification for %s %s: status changed from '%s' to '%s'%s\n",
		msg.Entity, msg.Reference, displayStatus(msg.OldStatus), msg.NewStatus, changedBy(msg.ChangedBy))

	return nil
}

func displayStatus(s string) string {
	if s == "" {
		return "none"
	}
	return s
}

func changedBy(actor *int64) string {
	if actor == nil {
		return ""
	}
	return fmt.Sprintf(" by user %d", *actor)
}
