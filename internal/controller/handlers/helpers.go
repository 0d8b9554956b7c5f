package handlers

import (
	"strings"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CommandMatch совпадение с командой: "/cmd", "/cmd args", "/cmd@bot_name"
func CommandMatch(command string) bot.MatchFunc {
	return func(update *models.Update) bool {
		if update.Message == nil {
			return false
		}
		name, _ := splitCommand(update.Message.Text)
		return name == command
	}
}

// DialogMatch обычный текст без команды: ответы в диалогах
func DialogMatch(update *models.Update) bool {
	return update.Message != nil &&
		update.Message.Text != "" &&
		!strings.HasPrefix(update.Message.Text, "/")
}

// splitCommand "/cmd@bot a b" -> "/cmd", "a b"
func splitCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	name, args, _ := strings.Cut(text, " ")
	if at := strings.Index(name, "@"); at >= 0 {
		name = name[:at]
	}
	return name, strings.TrimSpace(args)
}

// commandArgs аргументы команды через пробел
func commandArgs(update *models.Update) []string {
	_, args := splitCommand(update.Message.Text)
	return strings.Fields(args)
}

var userDateLayouts = []string{model.DateLayout, "02.01.2006", "2.1.2006"}

// ParseUserDate дата, введённая мастером: 2024-01-20, 20.01.2024 или 20.01.
// Без года берётся ближайшая будущая дата.
func ParseUserDate(value string, today time.Time) (time.Time, bool) {
	loc := today.Location()
	for _, layout := range userDateLayouts {
		if d, err := time.ParseInLocation(layout, value, loc); err == nil {
			return d, true
		}
	}

	for _, layout := range []string{"02.01", "2.1"} {
		d, err := time.ParseInLocation(layout, value, loc)
		if err != nil {
			continue
		}
		d = time.Date(today.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
		if d.Before(today) {
			d = d.AddDate(1, 0, 0)
		}
		return d, true
	}
	return time.Time{}, false
}

var russianWeekdays = map[string]model.Weekday{
	"понедельник": model.Monday, "пн": model.Monday,
	"вторник": model.Tuesday, "вт": model.Tuesday,
	"среда": model.Wednesday, "ср": model.Wednesday,
	"четверг": model.Thursday, "чт": model.Thursday,
	"пятница": model.Friday, "пт": model.Friday,
	"суббота": model.Saturday, "сб": model.Saturday,
	"воскресенье": model.Sunday, "вс": model.Sunday,
}

// ParseWeekdayArg день недели по-английски или по-русски
func ParseWeekdayArg(s string) (model.Weekday, bool) {
	if wd, ok := russianWeekdays[strings.ToLower(strings.TrimSpace(s))]; ok {
		return wd, true
	}
	return model.ParseWeekday(s)
}
