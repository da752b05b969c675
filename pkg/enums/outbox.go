package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateRoomBooking      OutboxAggregateType = "room_booking"
	AggregateMessSubscription OutboxAggregateType = "mess_subscription"
	AggregateHostel           OutboxAggregateType = "hostel"
	AggregateMessService      OutboxAggregateType = "mess_service"
	AggregateNotification     OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateRoomBooking,
	AggregateMessSubscription,
	AggregateHostel,
	AggregateMessService,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventBookingRequested      OutboxEventType = "booking_requested"
	EventBookingConfirmed      OutboxEventType = "booking_confirmed"
	EventBookingCancelled      OutboxEventType = "booking_cancelled"
	EventBookingExpired        OutboxEventType = "booking_expired"
	EventSubscriptionStarted   OutboxEventType = "subscription_started"
	EventSubscriptionCancelled OutboxEventType = "subscription_cancelled"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventBookingRequested,
	EventBookingConfirmed,
	EventBookingCancelled,
	EventBookingExpired,
	EventSubscriptionStarted,
	EventSubscriptionCancelled,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
