package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/client"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/master"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ========================
// Main Callback Router
// ========================
// Форматы callback data описаны в common/callbackdata.go

// Route распределяет callback query по соответствующим обработчикам
func Route(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID),
		zap.String("user_name", callback.From.FirstName))

	switch {
	// ===== Common Navigation =====
	case data == common.BackToMain:
		common.HandleBackToMain(ctx, b, callback, h)
	case data == common.Noop:
		common.HandleNoop(ctx, b, callback)

	// ===== Client: Booking =====
	case data == common.BookStart:
		client.HandleBookStart(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookService):
		client.HandleBookService(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookDatesPage):
		client.HandleBookDatesPage(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookDate):
		client.HandleBookDate(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookSlot):
		client.HandleBookSlot(ctx, b, callback, h)
	case strings.HasPrefix(data, common.BookConfirm):
		client.HandleBookConfirm(ctx, b, callback, h)
	case data == common.BookAbort:
		client.HandleBookAbort(ctx, b, callback, h)
	case data == common.BookDayClosed:
		client.HandleDayClosed(ctx, b, callback)
	case data == common.BookDayFull:
		client.HandleDayFull(ctx, b, callback)

	// ===== Client: Appointments =====
	case data == common.MyBookings:
		client.HandleMyBookings(ctx, b, callback, h)
	case strings.HasPrefix(data, common.CancelBooking):
		client.HandleCancelBooking(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ConfirmCancel):
		client.HandleConfirmCancel(ctx, b, callback, h)

	// ===== Client: Reviews =====
	case strings.HasPrefix(data, common.ReviewStart):
		client.HandleReviewStart(ctx, b, callback, h)
	case strings.HasPrefix(data, common.Rate):
		client.HandleRate(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ReviewLater):
		client.HandleReviewLater(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ReviewClose):
		client.HandleReviewClose(ctx, b, callback, h)
	case data == common.ReviewSkipComment:
		client.HandleSkipComment(ctx, b, callback, h)

	// ===== Master: Schedule =====
	case strings.HasPrefix(data, common.MasterDay):
		master.HandleDay(ctx, b, callback, h)
	case strings.HasPrefix(data, common.MasterWeek):
		master.HandleWeek(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ApptConfirm):
		master.HandleApptConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ApptComplete):
		master.HandleApptComplete(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ApptCancelConfirm):
		master.HandleApptCancelConfirm(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ApptCancel):
		master.HandleApptCancel(ctx, b, callback, h)

	// ===== Master: Reviews =====
	case strings.HasPrefix(data, common.ReviewsPage):
		master.HandleReviewsPage(ctx, b, callback, h)
	case data == common.ReviewsReadAll:
		master.HandleReviewsReadAll(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ReviewRead):
		master.HandleReviewRead(ctx, b, callback, h)
	case strings.HasPrefix(data, common.ReviewReply):
		master.HandleReviewReply(ctx, b, callback, h)

	// ===== Master: Services =====
	case strings.HasPrefix(data, common.ServiceToggle):
		master.HandleServiceToggle(ctx, b, callback, h)

	default:
		h.Logger.Warn("Unknown callback data", zap.String("data", data))
		common.AnswerCallback(ctx, b, callback.ID, "❓ Неизвестная команда")
	}
}
