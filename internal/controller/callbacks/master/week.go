package master

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// SendWeek отправляет картинку недели, начинающейся с понедельника для date
func SendWeek(ctx context.Context, b *bot.Bot, h *callbacktypes.Handler, chatID int64, date time.Time, lang string) error {
	weekStart := common.WeekStart(date)

	list, err := h.BookingService.Week(ctx, weekStart)
	if err != nil {
		return fmt.Errorf("list week: %w", err)
	}

	imageData, err := common.GenerateWeekImage(weekStart, h.SettingsService.Now(), list, lang)
	if err != nil {
		return fmt.Errorf("render week: %w", err)
	}

	_, err = b.SendPhoto(ctx, &bot.SendPhotoParams{
		ChatID:      chatID,
		Photo:       &models.InputFileUpload{Filename: "week.png", Data: bytes.NewReader(imageData)},
		Caption:     common.WeekCaption(weekStart, list),
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: common.WeekKeyboard(weekStart),
	})
	if err != nil {
		return fmt.Errorf("send week image: %w", err)
	}

	h.Logger.Info("Week image sent",
		zap.Int64("chat_id", chatID),
		zap.String("week_start", weekStart.Format("2006-01-02")),
		zap.Int("appointments", len(list)))
	return nil
}

// HandleWeek неделя: week:YYYY-MM-DD
func HandleWeek(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		date, err := h.SettingsService.ParseDate(strings.TrimPrefix(callback.Data, common.MasterWeek))
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse week")
			return
		}

		if err := SendWeek(ctx, b, h, hc.ChatID, date, hc.Lang()); err != nil {
			common.HandleError(hc, err, "send week")
			return
		}

		// Удаляем старое сообщение
		_ = hc.DeleteMessage()
		hc.Answer("")
	})
}
