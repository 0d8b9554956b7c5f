package common

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Helper functions для всех callback handlers

// AnswerCallback отвечает на callback query (без alert)
func AnswerCallback(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       false,
	})
}

// AnswerCallbackAlert отвечает на callback query с alert (всплывающее окно)
func AnswerCallbackAlert(ctx context.Context, b *bot.Bot, callbackID string, text string) {
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: callbackID,
		Text:            text,
		ShowAlert:       true,
	})
}

// GetMessageFromCallback извлекает сообщение из callback query
func GetMessageFromCallback(callback *models.CallbackQuery) *models.Message {
	if callback.Message.Message != nil {
		return callback.Message.Message
	}
	return nil
}

// ParseIDFromCallback извлекает ID из callback data
// Например: "cancel_booking:123" -> 123
func ParseIDFromCallback(data string) (int64, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 2 {
		return 0, ErrInvalidFormat
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	return id, nil
}

// ParseArgs аргументы после префикса, ровно n штук
// Например: ParseArgs("rate:12:5", "rate:", 2) -> ["12", "5"]
func ParseArgs(data, prefix string, n int) ([]string, error) {
	if !strings.HasPrefix(data, prefix) {
		return nil, ErrInvalidFormat
	}
	args := strings.Split(strings.TrimPrefix(data, prefix), ":")
	if len(args) != n {
		return nil, ErrInvalidFormat
	}
	return args, nil
}

// SlotArgs разобранные аргументы book_slot / book_confirm
type SlotArgs struct {
	ServiceID int64
	Date      string
	Time      model.TimeOfDay
}

// ParseSlotArgs разбирает service_id:YYYY-MM-DD:minutes
func ParseSlotArgs(data, prefix string) (SlotArgs, error) {
	args, err := ParseArgs(data, prefix, 3)
	if err != nil {
		return SlotArgs{}, err
	}
	serviceID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return SlotArgs{}, ErrInvalidFormat
	}
	minutes, err := strconv.Atoi(args[2])
	if err != nil || !model.TimeOfDay(minutes).Valid() {
		return SlotArgs{}, ErrInvalidFormat
	}
	return SlotArgs{ServiceID: serviceID, Date: args[1], Time: model.TimeOfDay(minutes)}, nil
}

// ParseRateArgs разбирает appointment_id:rating
func ParseRateArgs(data string) (int64, int, error) {
	args, err := ParseArgs(data, Rate, 2)
	if err != nil {
		return 0, 0, err
	}
	appointmentID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, ErrInvalidFormat
	}
	rating, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, ErrInvalidFormat
	}
	return appointmentID, rating, nil
}

// UserLanguage язык пользователя для названий услуг
func UserLanguage(user *model.User) string {
	if user == nil || user.LanguageCode == "" {
		return model.FallbackLanguage
	}
	return user.LanguageCode
}
