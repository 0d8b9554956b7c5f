package common

import (
	"bytes"
	"image/color"
	"strconv"
	"sync"
	"time"

	"github.com/Freeeeeet/salon_bot/internal/controller/callbacks/common/formatting"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontStyle определяет стиль шрифта
type FontStyle string

const (
	FontStyleDefault FontStyle = "" // Regular
	FontStyleMedium  FontStyle = "medium"
	FontStyleBold    FontStyle = "bold"
)

// Константы размеров и отступов
const (
	imageWidth          = 1400
	imageHeight         = 900
	headerHeight        = 100
	leftLabelsWidth     = 80
	legendWidth         = 140
	dayPaddingX         = 8
	minAppointmentH     = 8.0
	appointmentRadius   = 6.0
	shadowOffset        = 3.0
	totalDaysInWeek     = 7
	hourPaddingTop      = 1
	hourPaddingBot      = 1
	defaultMinHour      = 9
	defaultMaxHour      = 20
	appointmentTextRune = 18
)

// Константы шрифтов
const (
	titleFontSize      = 25.0
	dayFontSize        = 27.0
	hourLabelFontSize  = 18.0
	slotTimeFontSize   = 17.0
	legendItemFontSize = 13.0
)

// Цветовая схема
var (
	bgColor          = color.RGBA{245, 246, 248, 255}
	textColor        = color.RGBA{80, 85, 90, 220}
	hourLabelColor   = color.RGBA{110, 115, 120, 200}
	hourLineColor    = color.NRGBA{150, 150, 150, 255}
	todayBgColor     = color.NRGBA{255, 99, 71, 125}
	evenDayColor     = color.NRGBA{240, 240, 240, 255}
	oddDayColor      = color.NRGBA{220, 220, 220, 255}
	currentTimeColor = color.NRGBA{255, 80, 80, 200}

	pendingColor       = color.RGBA{255, 214, 102, 230}
	confirmedColor     = color.RGBA{255, 182, 193, 255} // Светло-розовый для подтверждённых
	completedColor     = color.RGBA{133, 193, 85, 220}
	cancelledColor     = color.RGBA{158, 158, 158, 200}
	defaultColor       = color.RGBA{220, 220, 220, 200}
	appointmentText    = color.RGBA{20, 24, 28, 230}
	confirmedTextColor = color.RGBA{120, 40, 50, 255} // Темно-красный текст для подтверждённых
	shadowColor        = color.RGBA{0, 0, 0, 20}

	legendItemColor = color.RGBA{70, 74, 78, 220}
)

// weekBounds содержит границы недели
type weekBounds struct {
	start time.Time
	end   time.Time
}

// hourRange содержит диапазон часов для отображения
type hourRange struct {
	start int
	end   int
	total int
}

var (
	fontsMu     sync.Mutex
	cachedFonts = make(map[FontStyle]*opentype.Font)
)

func fontData(style FontStyle) []byte {
	switch style {
	case FontStyleMedium:
		return gomedium.TTF
	case FontStyleBold:
		return gobold.TTF
	default:
		return goregular.TTF
	}
}

// loadFont загружает шрифт указанного стиля или использует basicfont как fallback
func loadFont(dc *gg.Context, size float64, style ...FontStyle) {
	fontStyle := FontStyleDefault
	if len(style) > 0 {
		fontStyle = style[0]
	}

	fontsMu.Lock()
	parsed, ok := cachedFonts[fontStyle]
	if !ok {
		var err error
		parsed, err = opentype.Parse(fontData(fontStyle))
		if err != nil {
			fontsMu.Unlock()
			dc.SetFontFace(basicfont.Face7x13)
			return
		}
		cachedFonts[fontStyle] = parsed
	}
	fontsMu.Unlock()

	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// fallback к встроенному шрифту
		dc.SetFontFace(basicfont.Face7x13)
		return
	}
	dc.SetFontFace(face)
}

// GenerateWeekImage рисует неделю записей салона (Пн-Вс недели, в которую попадает weekDay).
// now задаёт подсветку сегодняшнего дня и линию текущего времени, lang - язык названий услуг.
func GenerateWeekImage(weekDay, now time.Time, appointments []*model.Appointment, lang string) ([]byte, error) {
	week := normalizeToWeekBounds(weekDay)
	today := normalizeToDay(now)
	shouldHighlightToday := isTodayInWeek(today, week)

	byDay := groupByDay(appointments)
	hours := calculateHourRange(appointments)

	dc := createCanvas()
	dayWidth := (imageWidth - leftLabelsWidth - legendWidth) / totalDaysInWeek
	dayHeight := imageHeight - headerHeight
	cellHeight := float64(dayHeight) / float64(hours.total)

	drawHeader(dc, week)
	drawHourLabels(dc, hours, cellHeight)
	drawDays(dc, week, today, shouldHighlightToday, byDay, hours, dayWidth, dayHeight, cellHeight, lang)
	if shouldHighlightToday {
		drawCurrentTimeLine(dc, now, hours, cellHeight, dayWidth)
	}
	drawLegend(dc, dayWidth)

	return encodeImage(dc)
}

// normalizeToWeekBounds нормализует дату к границам недели (Пн-Вс)
func normalizeToWeekBounds(date time.Time) weekBounds {
	normalized := normalizeToDay(date)

	daysSinceMonday := int(normalized.Weekday()) - 1
	if normalized.Weekday() == time.Sunday {
		daysSinceMonday = 6
	}

	start := normalized.AddDate(0, 0, -daysSinceMonday)
	end := start.AddDate(0, 0, 6)

	return weekBounds{start: start, end: end}
}

// WeekStart понедельник недели, в которую попадает дата
func WeekStart(date time.Time) time.Time {
	return normalizeToWeekBounds(date).start
}

// normalizeToDay нормализует время к началу дня
func normalizeToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// isTodayInWeek проверяет, попадает ли сегодня в отображаемую неделю
func isTodayInWeek(today time.Time, week weekBounds) bool {
	return !today.Before(week.start) && !today.After(week.end)
}

// groupByDay группирует записи по дням, отменённые не рисуются
func groupByDay(appointments []*model.Appointment) map[string][]*model.Appointment {
	byDay := make(map[string][]*model.Appointment)
	for _, a := range appointments {
		if !a.BlocksTime() {
			continue
		}
		byDay[a.DateKey()] = append(byDay[a.DateKey()], a)
	}
	return byDay
}

// calculateHourRange определяет диапазон часов для отображения
func calculateHourRange(appointments []*model.Appointment) hourRange {
	minHour := 24
	maxHour := 0

	for _, a := range appointments {
		if !a.BlocksTime() {
			continue
		}
		end := a.Time.Add(a.DurationMinutes)
		startH := a.Time.Hour()
		endH := end.Hour()
		if end.Minute() > 0 {
			endH++
		}
		if startH < minHour {
			minHour = startH
		}
		if endH > maxHour {
			maxHour = endH
		}
	}

	if minHour == 24 {
		minHour = defaultMinHour
		maxHour = defaultMaxHour
	}

	startHour := minHour - hourPaddingTop
	endHour := maxHour + hourPaddingBot
	if startHour < 0 {
		startHour = 0
	}
	if endHour > 23 {
		endHour = 23
	}

	return hourRange{
		start: startHour,
		end:   endHour,
		total: endHour - startHour + 1,
	}
}

// createCanvas создает новый контекст рисования с фоном
func createCanvas() *gg.Context {
	dc := gg.NewContext(imageWidth, imageHeight)
	dc.SetColor(bgColor)
	dc.Clear()
	return dc
}

// drawHeader рисует заголовок с названием месяца
func drawHeader(dc *gg.Context, week weekBounds) {
	startMonth := week.start.Month()
	endMonth := week.end.Month()

	title := formatting.GetMonthName(startMonth)
	if startMonth != endMonth {
		title += " - " + formatting.GetMonthName(endMonth)
	}
	title += " " + strconv.Itoa(week.end.Year())

	loadFont(dc, titleFontSize, FontStyleBold)
	dc.SetColor(textColor)
	w, h := dc.MeasureString(title)
	dc.DrawStringAnchored(title, w/2+10, float64(headerHeight)/8+h/2, 0, 0)
}

// drawHourLabels рисует колонку с часами слева
func drawHourLabels(dc *gg.Context, hours hourRange, cellHeight float64) {
	loadFont(dc, hourLabelFontSize, FontStyleMedium)
	dc.SetColor(hourLabelColor)

	for hIdx := 0; hIdx < hours.total; hIdx++ {
		y := float64(headerHeight) + float64(hIdx)*cellHeight
		dc.DrawStringAnchored(formatHourLabel(hours.start+hIdx), float64(leftLabelsWidth)-10, y, 1, 0.5)
	}
}

// drawDays рисует все дни недели с записями
func drawDays(dc *gg.Context, week weekBounds, today time.Time, shouldHighlightToday bool,
	byDay map[string][]*model.Appointment, hours hourRange, dayWidth, dayHeight int, cellHeight float64, lang string) {

	currentDate := week.start

	for dayIndex := 0; dayIndex < totalDaysInWeek; dayIndex++ {
		x := float64(leftLabelsWidth + dayIndex*dayWidth)
		y := float64(headerHeight)

		isToday := shouldHighlightToday && currentDate.Equal(today)

		drawDayBackground(dc, x, y, dayWidth, dayHeight, dayIndex, isToday)
		drawDayHeader(dc, currentDate, x, y, dayWidth)
		drawHourLines(dc, x, y, dayWidth, hours, cellHeight)
		for _, a := range byDay[currentDate.Format(model.DateLayout)] {
			drawAppointment(dc, a, x, y, dayWidth, hours, cellHeight, lang)
		}

		currentDate = currentDate.AddDate(0, 0, 1)
	}
}

// drawDayBackground рисует фон дня
func drawDayBackground(dc *gg.Context, x, y float64, dayWidth, dayHeight, dayIndex int, isToday bool) {
	switch {
	case isToday:
		dc.SetColor(todayBgColor)
	case dayIndex%2 == 0:
		dc.SetColor(evenDayColor)
	default:
		dc.SetColor(oddDayColor)
	}
	dc.DrawRectangle(x, y, float64(dayWidth), float64(dayHeight))
	dc.Fill()
}

// drawDayHeader рисует название дня недели и дату
func drawDayHeader(dc *gg.Context, date time.Time, x, y float64, dayWidth int) {
	loadFont(dc, dayFontSize, FontStyleBold)
	dc.SetColor(textColor)
	dc.DrawStringAnchored(date.Format("02.01"), x+float64(dayWidth)/2, y, 0.5, -1)
	dc.DrawStringAnchored(formatting.GetWeekdayShort(int(date.Weekday())), x+float64(dayWidth)/2, y, 0.5, -0.2)
}

// drawHourLines рисует горизонтальные линии часов
func drawHourLines(dc *gg.Context, x, y float64, dayWidth int, hours hourRange, cellHeight float64) {
	dc.SetLineWidth(0.3)
	dc.SetColor(hourLineColor)

	for hIdx := 0; hIdx <= hours.total; hIdx++ {
		hy := y + float64(hIdx)*cellHeight
		dc.DrawLine(x, hy, x+float64(dayWidth), hy)
		dc.Stroke()
	}
}

// drawAppointment рисует одну запись: время, клиент, услуга
func drawAppointment(dc *gg.Context, a *model.Appointment, x, y float64, dayWidth int, hours hourRange, cellHeight float64, lang string) {
	startHour := float64(a.Time) / 60.0
	endHour := float64(a.Time.Add(a.DurationMinutes)) / 60.0

	boxY := y + (startHour-float64(hours.start))*cellHeight
	boxHeight := (endHour - startHour) * cellHeight
	if boxHeight < minAppointmentH {
		boxHeight = minAppointmentH
	}

	fillColor := statusColor(a.Status)
	boxWidth := float64(dayWidth) - float64(dayPaddingX*2)

	// Тень
	dc.SetColor(shadowColor)
	dc.DrawRoundedRectangle(x+dayPaddingX+shadowOffset, boxY+2+shadowOffset, boxWidth, boxHeight-4, appointmentRadius)
	dc.Fill()

	dc.SetColor(fillColor)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), boxY+2, boxWidth, boxHeight-4, appointmentRadius)
	dc.Fill()

	// Рамка
	dc.SetColor(darkenColor(fillColor, 0.8))
	dc.SetLineWidth(1)
	dc.DrawRoundedRectangle(x+float64(dayPaddingX), boxY+2, boxWidth, boxHeight-4, appointmentRadius)
	dc.Stroke()

	txtColor := appointmentText
	if a.Status == model.AppointmentStatusConfirmed {
		txtColor = confirmedTextColor
	}

	loadFont(dc, slotTimeFontSize, FontStyleMedium)
	dc.SetColor(txtColor)
	txtX := x + float64(dayPaddingX) + 8
	txtY := boxY + 8 + 10
	dc.DrawStringAnchored(a.Time.String(), txtX, txtY, 0, 0)

	// Имя клиента и услуга, если хватает высоты
	var lines []string
	if a.Client != nil {
		lines = append(lines, a.Client.DisplayName())
	}
	if a.Service != nil {
		lines = append(lines, a.Service.DisplayName(lang))
	}

	loadFont(dc, slotTimeFontSize-3)
	for i, line := range lines {
		lineY := txtY + float64(16*(i+1))
		if lineY > boxY+boxHeight-6 {
			break
		}
		dc.DrawStringAnchored(truncateRunes(line, appointmentTextRune), txtX, lineY, 0, 0)
	}
}

// truncateRunes обрезает строку по символам, а не байтам
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}

// statusColor возвращает цвет записи по её статусу
func statusColor(status model.AppointmentStatus) color.RGBA {
	switch status {
	case model.AppointmentStatusPending:
		return pendingColor
	case model.AppointmentStatusConfirmed:
		return confirmedColor
	case model.AppointmentStatusCompleted:
		return completedColor
	case model.AppointmentStatusCancelled:
		return cancelledColor
	default:
		return defaultColor
	}
}

// darkenColor затемняет цвет на указанный множитель
func darkenColor(c color.RGBA, factor float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * factor),
		G: uint8(float64(c.G) * factor),
		B: uint8(float64(c.B) * factor),
		A: c.A,
	}
}

// drawCurrentTimeLine рисует красную линию текущего времени
func drawCurrentTimeLine(dc *gg.Context, now time.Time, hours hourRange, cellHeight float64, dayWidth int) {
	currentHour := float64(now.Hour()) + float64(now.Minute())/60.0
	if currentHour < float64(hours.start) || currentHour > float64(hours.end) {
		return
	}

	currentTimeY := float64(headerHeight) + (currentHour-float64(hours.start))*cellHeight
	dc.SetColor(currentTimeColor)
	dc.SetLineWidth(2.0)
	dc.DrawLine(float64(leftLabelsWidth), currentTimeY, float64(leftLabelsWidth+totalDaysInWeek*dayWidth), currentTimeY)
	dc.Stroke()
}

// drawLegend рисует легенду справа
func drawLegend(dc *gg.Context, dayWidth int) {
	legendX := float64(leftLabelsWidth + totalDaysInWeek*dayWidth + 10)
	legendY := float64(imageHeight) - 130.0

	legendItems := []struct {
		Label string
		Clr   color.Color
	}{
		{"Ожидает", pendingColor},
		{"Подтверждена", confirmedColor},
		{"Завершена", completedColor},
	}

	boxW := 20.0
	boxH := 14.0
	liY := legendY + 22

	for _, item := range legendItems {
		dc.SetColor(item.Clr)
		dc.DrawRoundedRectangle(legendX, liY, boxW, boxH, 3)
		dc.Fill()

		loadFont(dc, legendItemFontSize)
		dc.SetColor(legendItemColor)
		dc.DrawStringAnchored(item.Label, legendX+boxW+8, liY+boxH/2+1, 0, 0.2)
		liY += boxH + 14
	}
}

// encodeImage кодирует изображение в PNG
func encodeImage(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatHourLabel(h int) string {
	if h < 10 {
		return "0" + strconv.Itoa(h) + ":00"
	}
	return strconv.Itoa(h) + ":00"
}
