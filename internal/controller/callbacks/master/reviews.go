package master

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// ReviewsScreen страница отзывов с общей статистикой
func ReviewsScreen(ctx context.Context, h *callbacktypes.Handler, page int) (string, *models.InlineKeyboardMarkup, error) {
	avg, total, err := h.ReviewService.Stats(ctx)
	if err != nil {
		return "", nil, err
	}
	unread, err := h.ReviewService.UnreadCount(ctx)
	if err != nil {
		return "", nil, err
	}

	totalPages := keyboard.TotalPages(total, common.ReviewsPerPage)
	if page >= totalPages {
		page = totalPages - 1
	}
	if page < 0 {
		page = 0
	}

	reviews, err := h.ReviewService.List(ctx, false, common.ReviewsPerPage, page*common.ReviewsPerPage)
	if err != nil {
		return "", nil, err
	}

	text, kb := common.ReviewsScreen(reviews, page, common.ReviewsStats{Average: avg, Total: total, Unread: unread})
	return text, kb, nil
}

func showReviews(hc *common.HandlerContext, page int) {
	text, kb, err := ReviewsScreen(hc.Ctx, hc.Handler, page)
	if err != nil {
		common.HandleError(hc, err, "list reviews")
		return
	}
	_ = hc.EditMessage(text, kb)
}

// HandleReviewsPage reviews_page:N
func HandleReviewsPage(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		page, err := strconv.Atoi(strings.TrimPrefix(callback.Data, common.ReviewsPage))
		if err != nil {
			common.HandleError(hc, common.ErrInvalidFormat, "parse reviews page")
			return
		}
		showReviews(hc, page)
		hc.Answer("")
	})
}

// HandleReviewRead отмечает отзыв прочитанным
func HandleReviewRead(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			changed, err := h.ReviewService.MarkRead(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "mark review read")
				return
			}
			showReviews(hc, 0)
			if changed {
				hc.Answer("👁 Прочитано")
				return
			}
			hc.Answer("")
		})
	})
}

// HandleReviewsReadAll отмечает все отзывы прочитанными
func HandleReviewsReadAll(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		count, err := h.ReviewService.MarkAllRead(ctx)
		if err != nil {
			common.HandleError(hc, err, "mark all reviews read")
			return
		}
		showReviews(hc, 0)
		hc.Answer(fmt.Sprintf("✅ Прочитано: %d", count))
	})
}

// HandleReviewReply начинает диалог ответа на отзыв
func HandleReviewReply(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	common.WithMaster(ctx, b, callback, h, func(hc *common.HandlerContext) {
		common.WithID(hc, func(id int64) {
			review, err := h.ReviewService.Get(ctx, id)
			if err != nil {
				common.HandleError(hc, err, "get review")
				return
			}

			hc.SetState(callbacktypes.StateReviewReply)
			hc.SetData(callbacktypes.DataReviewID, review.ID)

			_ = hc.SendMessage(fmt.Sprintf(
				"💬 Напишите ответ на отзыв <b>#%d</b> одним сообщением.\n\nОтмена - /cancel",
				review.ID,
			), nil)
			hc.Answer("")
		})
	})
}

// PendingReply отзыв, на который мастер пишет ответ
func PendingReply(sm callbacktypes.StateManager, telegramID int64) (int64, bool) {
	if sm.GetState(telegramID) != callbacktypes.StateReviewReply {
		return 0, false
	}
	raw, ok := sm.GetData(telegramID, callbacktypes.DataReviewID)
	if !ok {
		return 0, false
	}
	id, ok := raw.(int64)
	return id, ok
}

// SubmitReply сохраняет ответ мастера и уведомляет клиента
func SubmitReply(ctx context.Context, h *callbacktypes.Handler, reviewID int64, text string) (*model.Review, error) {
	review, err := h.ReviewService.Reply(ctx, reviewID, text)
	if err != nil {
		return nil, err
	}

	h.Logger.Info("Review replied", zap.Int64("review_id", review.ID))
	if h.Notifier != nil {
		h.Notifier.ReviewReplied(ctx, review)
	}
	return review, nil
}
