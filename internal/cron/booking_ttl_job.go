package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/staymate-io/staymate-backend/pkg/logger"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type bookingExpirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int, error)
}

// BookingTTLJobParams configures the stale booking expiry job.
type BookingTTLJobParams struct {
	Logger  *logger.Logger
	Expirer bookingExpirer
}

// NewBookingTTLJob builds the cron job that expires pending bookings past their TTL.
func NewBookingTTLJob(params BookingTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Expirer == nil {
		return nil, fmt.Errorf("booking expirer required")
	}
	return &bookingTTLJob{
		logg:    params.Logger,
		expirer: params.Expirer,
		now:     time.Now,
	}, nil
}

type bookingTTLJob struct {
	logg    *logger.Logger
	expirer bookingExpirer
	now     func() time.Time
}

func (j *bookingTTLJob) Name() string { return "booking-ttl" }

func (j *bookingTTLJob) Run(ctx context.Context) error {
	expired, err := j.expirer.ExpireStale(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("expire stale bookings: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": expired})
	j.logg.Info(logCtx, "booking expiration loop complete")
	return nil
}
