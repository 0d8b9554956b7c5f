package service

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"go.uber.org/zap"
)

type UserService struct {
	users     UserStore
	masterIDs map[int64]struct{}
	logger    *zap.Logger
}

// NewUserService masterIDs - Telegram ID мастеров салона из конфигурации
func NewUserService(users UserStore, masterIDs []int64, logger *zap.Logger) *UserService {
	ids := make(map[int64]struct{}, len(masterIDs))
	for _, id := range masterIDs {
		ids[id] = struct{}{}
	}

	return &UserService{
		users:     users,
		masterIDs: ids,
		logger:    logger,
	}
}

// TelegramProfile данные пользователя из Telegram
type TelegramProfile struct {
	TelegramID   int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
}

// IsMasterTelegramID входит ли Telegram ID в список мастеров
func (s *UserService) IsMasterTelegramID(telegramID int64) bool {
	_, ok := s.masterIDs[telegramID]
	return ok
}

func (s *UserService) roleFor(telegramID int64) model.UserRole {
	if s.IsMasterTelegramID(telegramID) {
		return model.RoleMaster
	}
	return model.RoleClient
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, profile TelegramProfile) (*model.User, error) {
	// Проверяем существует ли пользователь
	existingUser, err := s.users.GetByTelegramID(ctx, profile.TelegramID)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	language := model.NormalizeLanguage(profile.LanguageCode)

	// Если пользователь уже существует, обновляем данные
	if existingUser != nil {
		existingUser.Username = profile.Username
		existingUser.FirstName = profile.FirstName
		existingUser.LastName = profile.LastName
		existingUser.LanguageCode = language
		existingUser.Role = s.roleFor(profile.TelegramID)

		if err := s.users.Update(ctx, existingUser); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		return existingUser, nil
	}

	// Создаём нового пользователя
	user := &model.User{
		TelegramID:   profile.TelegramID,
		Username:     profile.Username,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		LanguageCode: language,
		Role:         s.roleFor(profile.TelegramID),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", profile.TelegramID),
		zap.String("username", profile.Username),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	return s.users.GetByTelegramID(ctx, telegramID)
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}

// Masters все мастера салона (для уведомлений)
func (s *UserService) Masters(ctx context.Context) ([]*model.User, error) {
	masters, err := s.users.ListMasters(ctx)
	if err != nil {
		return nil, fmt.Errorf("list masters: %w", err)
	}
	return masters, nil
}

// NormalizePhone оставляет цифры и ведущий плюс; 8XXXXXXXXXX приводится к +7XXXXXXXXXX
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	for i, r := range raw {
		switch {
		case unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhone
		}
	}

	phone := b.String()
	digits := strings.TrimPrefix(phone, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}

	if !strings.HasPrefix(phone, "+") {
		if len(digits) == 11 && digits[0] == '8' {
			digits = "7" + digits[1:]
		}
		phone = "+" + digits
	}
	return phone, nil
}

// SetPhone сохраняет телефон клиента
func (s *UserService) SetPhone(ctx context.Context, user *model.User, raw string) error {
	phone, err := NormalizePhone(raw)
	if err != nil {
		return err
	}

	if err := s.users.SetPhone(ctx, user.ID, phone); err != nil {
		return fmt.Errorf("set phone: %w", err)
	}
	user.Phone = phone
	return nil
}
