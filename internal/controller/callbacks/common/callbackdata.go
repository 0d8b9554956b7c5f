package common

import (
	"fmt"

	"github.com/Freeeeeet/salon_bot/internal/model"
)

// ========================
// Callback Data Patterns
// ========================
// Форматы callback data, которые используют экраны и роутер

// Common callbacks
const (
	Noop       = "noop"
	BackToMain = "back_to_main"
)

// Client callbacks - запись
const (
	BookStart     = "book_start"
	BookService   = "book_service:"  // book_service:service_id
	BookDatesPage = "book_dates:"    // book_dates:service_id:page
	BookDate      = "book_date:"     // book_date:service_id:YYYY-MM-DD
	BookSlot      = "book_slot:"     // book_slot:service_id:YYYY-MM-DD:minutes
	BookConfirm   = "book_confirm:"  // book_confirm:service_id:YYYY-MM-DD:minutes
	BookAbort     = "book_abort"
	BookDayClosed = "book_closed"
	BookDayFull   = "book_full"

	MyBookings    = "my_bookings"
	CancelBooking = "cancel_booking:" // cancel_booking:appointment_id
	ConfirmCancel = "confirm_cancel:" // confirm_cancel:appointment_id
)

// Review callbacks - запрос отзыва
const (
	ReviewStart       = "review_start:" // review_start:appointment_id
	Rate              = "rate:"         // rate:appointment_id:rating
	ReviewLater       = "review_later:" // review_later:appointment_id
	ReviewClose       = "review_close:" // review_close:appointment_id
	ReviewSkipComment = "review_skip_comment"
)

// Master callbacks - расписание, записи, отзывы, услуги
const (
	MasterDay         = "day:"            // day:YYYY-MM-DD
	MasterWeek        = "week:"           // week:YYYY-MM-DD
	ApptConfirm       = "appt_confirm:"   // appt_confirm:appointment_id
	ApptComplete      = "appt_complete:"  // appt_complete:appointment_id
	ApptCancel        = "appt_cancel:"    // appt_cancel:appointment_id
	ApptCancelConfirm = "appt_cancel_ok:" // appt_cancel_ok:appointment_id
	ReviewsPage       = "reviews_page:"   // reviews_page:page
	ReviewRead        = "review_read:"    // review_read:review_id
	ReviewsReadAll    = "reviews_read_all"
	ReviewReply       = "review_reply:" // review_reply:review_id
	ServiceToggle     = "svc_toggle:"   // svc_toggle:service_id
)

// IDData callback data вида prefix:id
func IDData(prefix string, id int64) string {
	return fmt.Sprintf("%s%d", prefix, id)
}

// BookDatesData страница календаря записи
func BookDatesData(serviceID int64, page int) string {
	return fmt.Sprintf("%s%d:%d", BookDatesPage, serviceID, page)
}

// BookDateData выбор дня
func BookDateData(serviceID int64, date string) string {
	return fmt.Sprintf("%s%d:%s", BookDate, serviceID, date)
}

// BookSlotData выбор времени. Время в минутах от полуночи: двоеточие разделяет аргументы.
func BookSlotData(prefix string, serviceID int64, date string, at model.TimeOfDay) string {
	return fmt.Sprintf("%s%d:%s:%d", prefix, serviceID, date, int(at))
}

// RateData оценка визита
func RateData(appointmentID int64, rating int) string {
	return fmt.Sprintf("%s%d:%d", Rate, appointmentID, rating)
}
