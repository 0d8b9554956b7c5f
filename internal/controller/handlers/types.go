package handlers

import (
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService     *service.UserService
	bookingService  *service.BookingService
	settingsService *service.SettingsService
	reviewService   *service.ReviewService
	catalogService  *service.CatalogService
	stateManager    callbacktypes.StateManager
	// deps общие с callback handlers: сценарии записи и отзывов
	deps      *callbacktypes.Handler
	webAppURL string
	logger    *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(deps *callbacktypes.Handler, webAppURL string) *Handlers {
	return &Handlers{
		userService:     deps.UserService,
		bookingService:  deps.BookingService,
		settingsService: deps.SettingsService,
		reviewService:   deps.ReviewService,
		catalogService:  deps.CatalogService,
		stateManager:    deps.StateManager,
		deps:            deps,
		webAppURL:       webAppURL,
		logger:          deps.Logger,
	}
}
