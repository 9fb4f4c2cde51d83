package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go-payroll/internal/events"
	"go-payroll/internal/shared/apperror"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is satisfied by *kafkago.Reader.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// PayslipArchiver renders one slip and stores it, returning the stored path.
type PayslipArchiver interface {
	ArchivePayslip(ctx context.Context, employeeID string, year, month int) (string, error)
}

var (
	fetchErrorBackoff = time.Second
	retryBackoff      = time.Second
	maxRetryBackoff   = 30 * time.Second
)

func ConsumePayrollPayslipRequested(
	ctx context.Context,
	reader MessageReader,
	archiver PayslipArchiver,
	logger *zap.Logger,
) {
	if logger == nil {
		logger = zap.L()
	}
	log := logger.Named("kafka.consumer.payroll_payslip")
	log.Info("payroll payslip consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("payroll payslip consumer stopped")
				return
			}
			log.Error("fetch payroll payslip message failed", zap.Error(err))
			if !sleepCtx(ctx, fetchErrorBackoff) {
				log.Info("payroll payslip consumer stopped")
				return
			}
			continue
		}

		// Offset bersifat posisional: commit pesan berikutnya ikut meng-commit
		// pesan ini, jadi pesan yang gagal diulang di tempat sampai berhasil.
		backoff := retryBackoff
		for attempt := 1; !handlePayslipMessage(ctx, msg, archiver, log); attempt++ {
			log.Warn("retrying payroll payslip message",
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff),
			)
			if !sleepCtx(ctx, backoff) {
				log.Info("payroll payslip consumer stopped")
				return
			}
			backoff *= 2
			if backoff > maxRetryBackoff {
				backoff = maxRetryBackoff
			}
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit payroll payslip message failed", zap.Error(err))
		}
	}
}

// sleepCtx waits for d and reports false when ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// handlePayslipMessage reports whether the message should be committed.
// Undecodable payloads and permanent domain errors are committed so they do
// not block the partition.
func handlePayslipMessage(
	ctx context.Context,
	msg kafkago.Message,
	archiver PayslipArchiver,
	log *zap.Logger,
) bool {
	var event events.PayrollPayslipRequestedEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode payroll payslip event failed", zap.Error(err))
		return true
	}

	path, err := archiver.ArchivePayslip(ctx, event.EmployeeID, event.Year, event.Month)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.HTTPStatus < 500 {
			log.Warn("payslip request rejected, skipping",
				zap.String("batch_id", event.BatchID),
				zap.String("employee_id", event.EmployeeID),
				zap.String("reason", appErr.Message),
			)
			return true
		}

		log.Error("archive payslip failed",
			zap.String("batch_id", event.BatchID),
			zap.String("employee_id", event.EmployeeID),
			zap.Error(err),
		)
		return false
	}

	log.Info("payroll payslip archived",
		zap.String("request_id", event.RequestID),
		zap.String("batch_id", event.BatchID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("path", path),
	)
	return true
}
