package handlers

import (
	"github.com/gin-gonic/gin"

	"lmis/internal/domain/sync"
)

// SyncHandler handles upstream synchronization endpoints.
type SyncHandler struct {
	*BaseHandler
	manager *sync.UpManager
}

// NewSyncHandler creates a sync handler.
func NewSyncHandler(base *BaseHandler, manager *sync.UpManager) *SyncHandler {
	return &SyncHandler{
		BaseHandler: base,
		manager:     manager,
	}
}

// SyncUp handles POST /sync/up
// Pushes all authorized, unsynced requisitions to the central server.
// Forms that fail stay queued for the next run and show up in the
// failed count, so a partial drain is visible without parsing errors.
func (h *SyncHandler) SyncUp(c *gin.Context) {
	ctx := c.Request.Context()

	synced, failed, err := h.manager.SyncUp(ctx)
	if err != nil && synced == 0 && failed == 0 {
		// Nothing was attempted, the queue itself could not be read.
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"synced": synced,
		"failed": failed,
	})
}
