package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/staymate-io/staymate-backend/pkg/db/models"
	"github.com/staymate-io/staymate-backend/pkg/enums"
	"github.com/staymate-io/staymate-backend/pkg/logger"
	"github.com/staymate-io/staymate-backend/pkg/outbox"
	"github.com/staymate-io/staymate-backend/pkg/outbox/idempotency"
	"github.com/staymate-io/staymate-backend/pkg/outbox/payloads"
)

const domainNotificationConsumer = "domain-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches domain events and fans them out as in-app notifications.
// Notification failures never feed back into the originating flow; a nack
// only retries the notification itself.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds the domain event notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("domain subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	})

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil {
		c.logg.Info(logCtx, "skipping unknown event type")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, domainNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	notifications, err := c.buildNotifications(eventType, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	for _, notification := range notifications {
		if err := c.repo.Create(ctx, notification); err != nil {
			c.logg.Error(logCtx, "notification insert failed", err)
			_ = c.idempotency.Delete(ctx, domainNotificationConsumer, eventID)
			return processResult{nack: true}
		}
	}
	if len(notifications) > 0 {
		c.logg.Info(logCtx, "notifications created")
	}

	return processResult{ack: true}
}

func (c *Consumer) buildNotifications(eventType enums.OutboxEventType, data json.RawMessage) ([]*models.Notification, error) {
	switch eventType {
	case enums.EventBookingRequested:
		var payload payloads.BookingRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{bookingRequestedNotification(payload)}, nil
	case enums.EventBookingConfirmed:
		var payload payloads.BookingDecisionEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{{
			UserID:  payload.StudentID,
			Type:    enums.NotificationTypeBookingAlert,
			Title:   "Booking confirmed",
			Message: "Your booking has been confirmed. A bed is reserved for you.",
			Link:    bookingLink(payload.BookingID),
		}}, nil
	case enums.EventBookingCancelled:
		var payload payloads.BookingCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{{
			UserID:  payload.StudentID,
			Type:    enums.NotificationTypeBookingAlert,
			Title:   "Booking cancelled",
			Message: "Your booking has been cancelled.",
			Link:    bookingLink(payload.BookingID),
		}}, nil
	case enums.EventBookingExpired:
		var payload payloads.BookingExpiredEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{{
			UserID:  payload.StudentID,
			Type:    enums.NotificationTypeBookingAlert,
			Title:   "Booking expired",
			Message: "Your booking request expired before the owner responded.",
			Link:    bookingLink(payload.BookingID),
		}}, nil
	case enums.EventSubscriptionStarted:
		var payload payloads.SubscriptionStartedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{{
			UserID:  payload.OwnerID,
			Type:    enums.NotificationTypeSubscriptionAlert,
			Title:   "New mess subscriber",
			Message: "A student subscribed to your mess service.",
			Link:    messLink(payload.MessID),
		}}, nil
	case enums.EventSubscriptionCancelled:
		var payload payloads.SubscriptionCancelledEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		return []*models.Notification{{
			UserID:  payload.StudentID,
			Type:    enums.NotificationTypeSubscriptionAlert,
			Title:   "Subscription cancelled",
			Message: "Your mess subscription has been cancelled.",
			Link:    messLink(payload.MessID),
		}}, nil
	case enums.EventNotificationRequested:
		var payload payloads.NotificationRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, err
		}
		notificationType, err := enums.ParseNotificationType(payload.Type)
		if err != nil {
			notificationType = enums.NotificationTypeSystemAnnouncement
		}
		notification := &models.Notification{
			UserID:  payload.UserID,
			Type:    notificationType,
			Title:   payload.Title,
			Message: payload.Message,
		}
		if payload.Link != "" {
			notification.Link = stringPtr(payload.Link)
		}
		return []*models.Notification{notification}, nil
	default:
		return nil, nil
	}
}

func bookingRequestedNotification(payload payloads.BookingRequestedEvent) *models.Notification {
	return &models.Notification{
		UserID: payload.OwnerID,
		Type:   enums.NotificationTypeBookingAlert,
		Title:  "New booking request",
		Message: fmt.Sprintf(
			"A student requested a bed starting %s. Confirm or cancel the booking.",
			payload.StartDate.Format(time.DateOnly),
		),
		Link: bookingLink(payload.BookingID),
	}
}

func bookingLink(bookingID uuid.UUID) *string {
	return stringPtr(fmt.Sprintf("/bookings/%s", bookingID))
}

func messLink(messID uuid.UUID) *string {
	return stringPtr(fmt.Sprintf("/mess-services/%s", messID))
}

func stringPtr(value string) *string {
	return &value
}
