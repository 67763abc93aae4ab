package sync

import (
	"context"
	"errors"
	"fmt"

	"lmis/internal/domain/requisition"
	"lmis/pkg/logger"
)

// Transport pushes serialized requisitions to the central server. Retry
// and backoff policy live in the implementation, not here.
type Transport interface {
	SubmitRequisition(ctx context.Context, payload []byte) error
}

// UpManager drains the queue of authorized, unsynced forms. Forms are
// uploaded one at a time; a failing form is skipped and retried on the
// next run rather than blocking the rest of the queue.
type UpManager struct {
	requisitions *requisition.Service
	codec        *Codec
	transport    Transport
}

// NewUpManager creates a sync-up manager.
func NewUpManager(requisitions *requisition.Service, codec *Codec, transport Transport) *UpManager {
	return &UpManager{
		requisitions: requisitions,
		codec:        codec,
		transport:    transport,
	}
}

// SyncUp uploads every authorized, unsynced form. It returns the number of
// forms synced, the number that failed, and the joined errors of the
// failures.
func (m *UpManager) SyncUp(ctx context.Context) (synced, failed int, err error) {
	forms, listErr := m.requisitions.ListUnsynced(ctx)
	if listErr != nil {
		return 0, 0, fmt.Errorf("list unsynced forms: %w", listErr)
	}
	if len(forms) == 0 {
		return 0, 0, nil
	}

	var errs []error
	for _, form := range forms {
		if err := m.syncOne(ctx, form); err != nil {
			logger.Warn(ctx, "requisition sync failed",
				"form_id", form.ID,
				"program_code", form.ProgramCode,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("form %s: %w", form.ID, err))
			continue
		}
		synced++
	}

	logger.Info(ctx, "sync up finished", "synced", synced, "failed", len(errs))
	return synced, len(errs), errors.Join(errs...)
}

func (m *UpManager) syncOne(ctx context.Context, form *requisition.RnRForm) error {
	payload, err := m.codec.Marshal(ctx, form)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := m.transport.SubmitRequisition(ctx, payload); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	return m.requisitions.MarkSynced(ctx, form.ID)
}
