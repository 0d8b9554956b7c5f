package notify

import (
	"context"
	"fmt"
	"html"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/keyboard"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Sender часть *bot.Bot, нужная для уведомлений
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// Directory поиск получателей уведомлений
type Directory interface {
	Masters(ctx context.Context) ([]*model.User, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// Notifier рассылает уведомления о записях и отзывах.
// Ошибки доставки логируются и не прерывают основную операцию.
type Notifier struct {
	sender Sender
	users  Directory
	logger *zap.Logger
}

var _ callbacktypes.Notifier = (*Notifier)(nil)

func NewNotifier(sender Sender, users Directory, logger *zap.Logger) *Notifier {
	return &Notifier{sender: sender, users: users, logger: logger}
}

func (n *Notifier) send(ctx context.Context, chatID int64, text string, kb *models.InlineKeyboardMarkup) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if kb != nil {
		params.ReplyMarkup = kb
	}
	_, err := n.sender.SendMessage(ctx, params)
	return err
}

// toMasters отправляет сообщение всем мастерам
func (n *Notifier) toMasters(ctx context.Context, event, text string, kb *models.InlineKeyboardMarkup) {
	masters, err := n.users.Masters(ctx)
	if err != nil {
		n.logger.Error("Failed to load masters for notification", zap.String("event", event), zap.Error(err))
		return
	}

	var errs error
	for _, m := range masters {
		if err := n.send(ctx, m.TelegramID, text, kb); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("master %d: %w", m.TelegramID, err))
		}
	}
	if errs != nil {
		n.logger.Warn("Failed to notify masters", zap.String("event", event), zap.Error(errs))
	}
}

// toClient отправляет сообщение клиенту записи
func (n *Notifier) toClient(ctx context.Context, event string, clientID int64, text string, kb *models.InlineKeyboardMarkup) {
	client, err := n.users.GetByID(ctx, clientID)
	if err != nil || client == nil {
		n.logger.Warn("Client for notification not found",
			zap.String("event", event), zap.Int64("client_id", clientID), zap.Error(err))
		return
	}
	if err := n.send(ctx, client.TelegramID, text, kb); err != nil {
		n.logger.Warn("Failed to notify client",
			zap.String("event", event), zap.Int64("client_id", clientID), zap.Error(err))
	}
}

// AppointmentCreated новая запись: мастерам, с кнопками подтверждения если нужно
func (n *Notifier) AppointmentCreated(ctx context.Context, a *model.Appointment, client *model.User) {
	if a.Client == nil {
		a.Client = client
	}

	text := fmt.Sprintf("🆕 <b>Новая запись</b>\n\n%s", formatting.FormatAppointmentForMaster(a, model.FallbackLanguage))
	if a.Comment != "" {
		text += fmt.Sprintf("\n💬 %s", html.EscapeString(a.Comment))
	}
	text += "\n📅 " + formatting.FormatDateWithWeekday(a.Date)

	kb := keyboard.NewBuilder()
	if a.Status == model.AppointmentStatusPending {
		kb.Row(
			keyboard.Button("✅ Подтвердить", common.IDData(common.ApptConfirm, a.ID)),
			keyboard.Button("❌ Отклонить", common.IDData(common.ApptCancel, a.ID)),
		)
	}
	kb.Row(keyboard.Button("📋 Записи на день", common.MasterDay+a.DateKey()))

	n.toMasters(ctx, "appointment_created", text, kb.Build())
}

// AppointmentConfirmed мастер подтвердил: клиенту
func (n *Notifier) AppointmentConfirmed(ctx context.Context, a *model.Appointment) {
	text := fmt.Sprintf("✅ <b>Мастер подтвердил запись</b>\n\n%s", formatting.FormatAppointmentInfo(a, model.FallbackLanguage))
	n.toClient(ctx, "appointment_confirmed", a.ClientID, text, nil)
}

// AppointmentCancelled отмена: клиенту если отменил мастер, иначе мастерам
func (n *Notifier) AppointmentCancelled(ctx context.Context, a *model.Appointment, byMaster bool) {
	if byMaster {
		text := fmt.Sprintf("❌ <b>Мастер отменил запись</b>\n\n%s\n\nВыбрать другое время - /book",
			formatting.FormatAppointmentInfo(a, model.FallbackLanguage))
		n.toClient(ctx, "appointment_cancelled", a.ClientID, text, nil)
		return
	}

	text := fmt.Sprintf("❌ <b>Клиент отменил запись</b>\n\n%s\n📅 %s",
		formatting.FormatAppointmentForMaster(a, model.FallbackLanguage),
		formatting.FormatDateWithWeekday(a.Date))
	n.toMasters(ctx, "appointment_cancelled", text, nil)
}

// ReviewSubmitted новый отзыв: мастерам
func (n *Notifier) ReviewSubmitted(ctx context.Context, review *model.Review, a *model.Appointment) {
	client := "Клиент"
	if review.Client != nil {
		client = review.Client.DisplayName()
	}

	text := fmt.Sprintf("⭐ <b>Новый отзыв</b> %s\n👤 %s", formatting.RatingStars(review.Rating), html.EscapeString(client))
	if a != nil && a.Service != nil {
		text += fmt.Sprintf("\n💇 %s, %s", html.EscapeString(a.Service.DisplayName(model.FallbackLanguage)), formatting.FormatDate(a.Date))
	}
	if review.Comment != "" {
		text += fmt.Sprintf("\n\n<i>%s</i>", html.EscapeString(review.Comment))
	}

	kb := keyboard.NewBuilder().
		Row(
			keyboard.Button("👁 Прочитано", common.IDData(common.ReviewRead, review.ID)),
			keyboard.Button("💬 Ответить", common.IDData(common.ReviewReply, review.ID)),
		).
		Build()
	n.toMasters(ctx, "review_submitted", text, kb)
}

// ReviewReplied мастер ответил на отзыв: клиенту
func (n *Notifier) ReviewReplied(ctx context.Context, review *model.Review) {
	if !review.HasReply() {
		return
	}
	text := fmt.Sprintf("💬 <b>Мастер ответил на ваш отзыв</b> %s\n\n%s",
		formatting.RatingStars(review.Rating), html.EscapeString(*review.Reply))
	n.toClient(ctx, "review_replied", review.ClientID, text, nil)
}

// SendReviewPrompt отправляет запрос отзыва, найденный фоновым сканированием.
// Запрос уже помечен показанным; при ошибке планировщик снимает его.
func (n *Notifier) SendReviewPrompt(ctx context.Context, candidate service.PromptCandidate) error {
	text, kb := common.ReviewPromptScreen(candidate.Appointment, common.UserLanguage(candidate.Client), false)
	if err := n.send(ctx, candidate.Client.TelegramID, text, kb); err != nil {
		return fmt.Errorf("send review prompt: %w", err)
	}
	return nil
}
