package setup

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/codedrop-dev/codedrop/internal/config"
	"github.com/codedrop-dev/codedrop/internal/handler"
	"github.com/codedrop-dev/codedrop/internal/retry"
	"github.com/codedrop-dev/codedrop/internal/service"
	"github.com/codedrop-dev/codedrop/internal/storage/pg"
	"github.com/codedrop-dev/codedrop/internal/telegram"
	"github.com/codedrop-dev/codedrop/internal/utils"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage *pg.Storage
	Sweeper *service.ExpirySweeper
	Handler *handler.Handler
	Bot     *telegram.Bot
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg.Public.Pg)
	if err != nil {
		return nil, fmt.Errorf("storage setup: %w", err)
	}

	api, err := tgbotapi.NewBotAPI(cfg.Private.BotToken)
	if err != nil {
		return nil, fmt.Errorf("provider client setup: %w", err)
	}

	// yaml durations hold plain seconds
	retryPolicy := retry.Policy{
		MaxAttempts: cfg.Public.DeliveryMaxAttempts,
		Delay:       cfg.Public.DeliveryRetryDelay * time.Second,
	}

	courier := telegram.NewCourier(api)
	staging := service.NewStaging(storage, utils.GenerateCode)
	redemption := service.NewRedemption(storage, service.NewDelivery(courier, retryPolicy))
	policies := service.NewPolicies(storage)
	vault := service.NewVault(storage, cfg.Public.VaultPageSize)
	broadcaster := service.NewBroadcaster(storage, courier, retryPolicy, cfg.Public.BroadcastConfirmThreshold)
	sweeper := service.NewExpirySweeper(storage)

	bot := telegram.NewBot(api, api.Self.UserName, telegram.BotDeps{
		Auth:                   service.NewAuthorizer(cfg.Private.Uploaders),
		Staging:                staging,
		Redemption:             redemption,
		Policies:               policies,
		Vault:                  vault,
		Broadcaster:            broadcaster,
		Sessions:               service.NewSessions(),
		Recipients:             storage,
		PendingNoticeThreshold: cfg.Public.PendingNoticeThreshold,
	})

	return &Dependencies{
		Storage: storage,
		Sweeper: sweeper,
		Handler: handler.New(vault, sweeper, storage),
		Bot:     bot,
	}, nil
}
