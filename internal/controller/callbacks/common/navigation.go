package common

import (
	"context"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// MainMenuText список команд в зависимости от роли
func MainMenuText(user *model.User) string {
	text := "📋 <b>Главное меню</b>\n\n" +
		"/book - Записаться\n" +
		"/mybookings - Мои записи\n" +
		"/phone - Изменить телефон\n" +
		"/hours - Часы работы\n" +
		"/help - Справка\n"

	if user != nil && user.IsMaster() {
		text += "\n<b>Мастер:</b>\n" +
			"/today - Записи на сегодня\n" +
			"/week - Неделя картинкой\n" +
			"/reviews - Отзывы\n" +
			"/services - Услуги\n" +
			"/checkin - Отметить визит по коду\n" +
			"/sethours - Часы работы по дням\n" +
			"/closeday, /openday, /clearday - Исключения в графике"
	}
	return text
}

// HandleBackToMain возвращает пользователя к главному меню
func HandleBackToMain(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *callbacktypes.Handler) {
	hc := NewHandlerContext(ctx, b, callback, h)
	if hc.Message == nil {
		hc.AnswerAlert(ErrorMessage(ErrNoMessage))
		return
	}

	// Возврат в меню прерывает любой диалог
	hc.ClearState()

	if err := hc.LoadUser(); err != nil {
		_ = hc.EditMessage("❌ Ошибка. Используйте /start", nil)
		hc.Answer("")
		return
	}

	_ = hc.EditMessage(MainMenuText(hc.User), nil)
	hc.Answer("Главное меню")
}

// HandleNoop кнопка-подпись
func HandleNoop(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery) {
	AnswerCallback(ctx, b, callback.ID, "")
}
