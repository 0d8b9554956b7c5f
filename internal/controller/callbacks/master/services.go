package master

import (
	"context"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ServicesScreen каталог для мастера, включая скрытые услуги
func ServicesScreen(ctx context.Context, h *callbacktypes.Handler, lang string) (string, *models.InlineKeyboardMarkup, error) {
	services, err := h.CatalogService.List(ctx, false)
	if err != nil {
		return "", nil, err
	}
	text, kb := common.ServicesAdminScreen(services, lang)
	return text, kb, nil
}

// HandleServiceToggle скрывает или показывает услугу
func HandleServiceToggle(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			svc, err := h.CatalogService.ToggleActive(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "toggle service")
				return
			}
			h.Logger.Info("Service toggled", zap.Int64("service_id", svc.ID), zap.Bool("active", svc.IsActive))

			text, kb, err := ServicesScreen(ctx, h, hc.Lang())
			if err != nil {
				common.HandleError(hc, err, "list services")
				return
			}
			_ = hc.EditMessage(text, kb)

			if svc.IsActive {
				hc.Answer("▶️ Услуга доступна для записи")
				return
			}
			hc.Answer("⏸ Услуга скрыта")
		})
	})
}
