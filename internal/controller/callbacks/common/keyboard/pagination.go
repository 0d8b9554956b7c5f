package keyboard

import (
	"fmt"

	"github.com/go-telegram/bot/models"
)

// PaginationButtons создаёт ряд кнопок пагинации
// prefix - префикс для callback (например "reviews_page:")
// currentPage - текущая страница (0-based)
// totalPages - всего страниц
func PaginationButtons(prefix string, currentPage, totalPages int) []models.InlineKeyboardButton {
	if totalPages <= 1 {
		return nil
	}

	var buttons []models.InlineKeyboardButton

	// Кнопка "Предыдущая"
	if currentPage > 0 {
		buttons = append(buttons, Button("⬅️", fmt.Sprintf("%s%d", prefix, currentPage-1)))
	}

	// Индикатор страницы
	buttons = append(buttons, NoopButton(fmt.Sprintf("📄 %d/%d", currentPage+1, totalPages)))

	// Кнопка "Следующая"
	if currentPage < totalPages-1 {
		buttons = append(buttons, Button("➡️", fmt.Sprintf("%s%d", prefix, currentPage+1)))
	}

	return buttons
}

// AddPagination добавляет пагинацию к builder
func (b *Builder) AddPagination(prefix string, currentPage, totalPages int) *Builder {
	buttons := PaginationButtons(prefix, currentPage, totalPages)
	if len(buttons) > 0 {
		b.Row(buttons...)
	}
	return b
}

// DayPagination навигация по дням: предыдущий, подпись, следующий. Пустой callback - кнопки нет.
func DayPagination(prevData, label, nextData string) []models.InlineKeyboardButton {
	var buttons []models.InlineKeyboardButton
	if prevData != "" {
		buttons = append(buttons, Button("◀️", prevData))
	}
	buttons = append(buttons, NoopButton(label))
	if nextData != "" {
		buttons = append(buttons, Button("▶️", nextData))
	}
	return buttons
}

// TotalPages число страниц для count элементов
func TotalPages(count, perPage int) int {
	if perPage <= 0 || count <= 0 {
		return 1
	}
	return (count + perPage - 1) / perPage
}
