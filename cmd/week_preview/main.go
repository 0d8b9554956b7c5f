// Команда week_preview рисует картинку недели на тестовых записях и сохраняет её в PNG.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common"
	"github.com/Freeeeeet/salon_bot/internal/model"
)

func main() {
	out := flag.String("out", "week.png", "куда сохранить картинку")
	lang := flag.String("lang", model.FallbackLanguage, "язык названий услуг")
	flag.Parse()

	now := time.Now()
	monday := common.WeekStart(now)

	haircut := &model.Service{
		ID:              1,
		Name:            model.Localized(map[string]string{"ru": "Стрижка", "en": "Haircut"}),
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(1500),
		IsActive:        true,
	}
	coloring := &model.Service{
		ID:              2,
		Name:            model.Localized(map[string]string{"ru": "Окрашивание", "en": "Coloring"}),
		DurationMinutes: 120,
		Price:           decimal.NewFromInt(3500),
		IsActive:        true,
	}

	appointments := []*model.Appointment{
		appointment(1, monday, "10:00", haircut, model.AppointmentStatusConfirmed),
		appointment(2, monday, "14:30", coloring, model.AppointmentStatusPending),
		appointment(3, monday.AddDate(0, 0, 1), "11:00", haircut, model.AppointmentStatusCompleted),
		appointment(4, monday.AddDate(0, 0, 2), "16:00", haircut, model.AppointmentStatusCancelled),
		appointment(5, monday.AddDate(0, 0, 4), "12:00", coloring, model.AppointmentStatusConfirmed),
		appointment(6, monday.AddDate(0, 0, 5), "09:30", haircut, model.AppointmentStatusPending),
	}

	data, err := common.GenerateWeekImage(monday, now, appointments, *lang)
	if err != nil {
		fmt.Printf("Ошибка генерации изображения: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Printf("Ошибка сохранения файла: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Изображение сохранено в %s\n", *out)
	fmt.Printf("📅 Неделя: %s - %s\n", monday.Format("02.01.2006"), monday.AddDate(0, 0, 6).Format("02.01.2006"))
	fmt.Printf("📊 Записей: %d\n", len(appointments))
}

func appointment(id int64, date time.Time, at string, svc *model.Service, status model.AppointmentStatus) *model.Appointment {
	return &model.Appointment{
		ID:              id,
		ClientID:        100 + id,
		ServiceID:       svc.ID,
		Date:            date,
		Time:            model.MustTime(at),
		DurationMinutes: svc.DurationMinutes,
		Status:          status,
		Service:         svc,
		Client:          &model.User{ID: 100 + id, FirstName: fmt.Sprintf("Клиент %d", id)},
	}
}
