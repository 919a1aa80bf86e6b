package handler

import (
	"context"
	"time"

	"github.com/codedrop-dev/codedrop/internal/service"
)

// Pinger is the liveness hook for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the operational HTTP surface: probes, service stats
// and sweeper status. The user-facing surface lives in the bot
// transport, not here.
type Handler struct {
	vault     *service.Vault
	sweeper   *service.ExpirySweeper
	health    Pinger
	startedAt time.Time
}

func New(vault *service.Vault, sweeper *service.ExpirySweeper, health Pinger) *Handler {
	return &Handler{vault: vault, sweeper: sweeper, health: health, startedAt: time.Now()}
}
