package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/novafest/registration-backend/internal/models"
	"github.com/novafest/registration-backend/internal/telemetry"
)

const sweepLockKey = "verification_sweep_lock"

// sweepLockTTL caps how long a crashed sweep can hold the lock.
const sweepLockTTL = 10 * time.Minute

// ErrSweepInProgress is returned when another verify-all sweep already
// holds the lock.
var ErrSweepInProgress = errors.New("verification sweep already in progress")

// VerifyAll walks every registration that references a gateway order and
// verifies each in turn. Dispatch is strictly sequential with SweepDelay
// between calls so a sweep cannot trip upstream throttling; a per-order
// failure is recorded in the report and the sweep moves on.
func (v *Verifier) VerifyAll(ctx context.Context) (*models.SweepReport, error) {
	if v.gateway == nil {
		return nil, ErrNotConfigured
	}

	if v.redis != nil {
		locked := v.redis.SetNX(ctx, sweepLockKey, "1", sweepLockTTL)
		if !locked.Val() {
			return nil, ErrSweepInProgress
		}
		defer v.redis.Del(context.Background(), sweepLockKey)
	}

	regs, err := v.repo.ListWithOrders(ctx)
	if err != nil {
		telemetry.SweepCount.WithLabelValues("error").Inc()
		return nil, err
	}

	report := &models.SweepReport{
		Total:   len(regs),
		Entries: make([]models.SweepEntry, 0, len(regs)),
	}

	for i := range regs {
		entry := models.SweepEntry{
			RegistrationID: regs[i].ID,
			OrderID:        regs[i].OrderID,
		}

		result, err := v.VerifyOrder(ctx, regs[i].OrderID)
		if err != nil {
			entry.Error = err.Error()
			report.Errors++
			telemetry.Logger.Warn("Sweep verification failed",
				zap.String("order_id", regs[i].OrderID),
				zap.Error(err),
			)
		} else {
			entry.VerificationStatus = result.VerificationStatus
			report.Verified++
		}
		report.Entries = append(report.Entries, entry)

		if i < len(regs)-1 {
			time.Sleep(v.SweepDelay)
		}
	}

	telemetry.SweepCount.WithLabelValues("completed").Inc()
	telemetry.Logger.Info("Verification sweep complete",
		zap.Int("total", report.Total),
		zap.Int("verified", report.Verified),
		zap.Int("errors", report.Errors),
	)

	return report, nil
}
