package state

import (
	"time"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/callbacktypes"
)

// UserState общий тип состояния с callback handlers, Manager реализует callbacktypes.StateManager напрямую
type UserState = callbacktypes.UserState

const (
	StateNone          = callbacktypes.StateNone
	StateBookingPhone  = callbacktypes.StateBookingPhone
	StateEnteringPhone = callbacktypes.StateEnteringPhone
	StateReviewComment = callbacktypes.StateReviewComment
	StateReviewReply   = callbacktypes.StateReviewReply
)

var _ callbacktypes.StateManager = (*Manager)(nil)

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State UserState
	Data  map[string]interface{} // Временные данные для текущего диалога

	touchedAt time.Time
}
