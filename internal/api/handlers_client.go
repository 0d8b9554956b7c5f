package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
	"github.com/Freeeeeet/salon_bot/internal/service"
)

type authRequest struct {
	InitData string `json:"initData" binding:"required"`
}

type bookRequest struct {
	ServiceID int64  `json:"serviceId" binding:"required"`
	Date      string `json:"date" binding:"required"`
	Time      string `json:"time" binding:"required"`
	Phone     string `json:"phone"`
	Comment   string `json:"comment" binding:"max=500"`
}

type reviewRequest struct {
	AppointmentID int64  `json:"appointmentId" binding:"required"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment" binding:"max=1000"`
}

type phoneRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// background контекст для уведомлений, переживающий обрыв запроса
func background(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Неверный идентификатор")
		return 0, false
	}
	return id, true
}

func queryID(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		badRequest(c, "Неверный параметр "+name)
		return 0, false
	}
	return id, true
}

func (s *Server) authTelegram(c *gin.Context) {
	var req authRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужен initData")
		return
	}

	tgUser, err := ValidateInitData(req.InitData, s.botToken, InitDataMaxAge, s.now())
	if err != nil {
		abort(c, http.StatusUnauthorized, "invalid_init_data", "Данные Telegram не прошли проверку")
		return
	}

	user, err := s.svc.Users.RegisterUser(c.Request.Context(), service.TelegramProfile{
		TelegramID:   tgUser.ID,
		Username:     tgUser.Username,
		FirstName:    tgUser.FirstName,
		LastName:     tgUser.LastName,
		LanguageCode: tgUser.LanguageCode,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": expiresAt,
		"user":      user,
	})
}

func (s *Server) getMe(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (s *Server) listServices(c *gin.Context) {
	list, err := s.svc.Catalog.List(c.Request.Context(), true)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

func (s *Server) getCalendar(c *gin.Context) {
	serviceID, ok := queryID(c, "serviceId")
	if !ok {
		return
	}

	days, err := s.svc.Availability.Calendar(c.Request.Context(), serviceID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	window, err := s.svc.Settings.BookingWindow(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from": availability.DateKey(window.From),
		"to":   availability.DateKey(window.To),
		"days": days,
	})
}

func (s *Server) getSlots(c *gin.Context) {
	serviceID, ok := queryID(c, "serviceId")
	if !ok {
		return
	}
	date, err := s.svc.Settings.ParseDate(c.Query("date"))
	if err != nil {
		badRequest(c, "Дата в формате ГГГГ-ММ-ДД")
		return
	}

	slots, err := s.svc.Availability.SlotsForDate(c.Request.Context(), date, serviceID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if slots == nil {
		slots = []model.TimeOfDay{}
	}
	c.JSON(http.StatusOK, gin.H{
		"date":  availability.DateKey(date),
		"slots": slots,
	})
}

func (s *Server) createAppointment(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужны serviceId, date и time")
		return
	}
	date, err := s.svc.Settings.ParseDate(req.Date)
	if err != nil {
		badRequest(c, "Дата в формате ГГГГ-ММ-ДД")
		return
	}
	at, err := model.ParseTimeOfDay(req.Time)
	if err != nil {
		badRequest(c, "Время в формате ЧЧ:ММ")
		return
	}

	ctx := c.Request.Context()
	if req.Phone != "" {
		if err := s.svc.Users.SetPhone(ctx, user, req.Phone); err != nil {
			s.respondError(c, err)
			return
		}
	}
	if user.Phone == "" {
		badRequest(c, "Укажите номер телефона")
		return
	}

	a, err := s.svc.Bookings.Book(ctx, service.BookRequest{
		ClientID:  user.ID,
		ServiceID: req.ServiceID,
		Date:      date,
		Time:      at,
		Phone:     user.Phone,
		Comment:   req.Comment,
	})
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.svc.Notifier.AppointmentCreated(background(c), a, user)
	c.JSON(http.StatusCreated, gin.H{"appointment": a})
}

func (s *Server) listAppointments(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	list, err := s.svc.Bookings.ClientAppointments(c.Request.Context(), user.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if list == nil {
		list = []*model.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

func (s *Server) cancelAppointment(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := s.svc.Bookings.Cancel(c.Request.Context(), id, user)
	if err != nil {
		s.respondError(c, err)
		return
	}

	s.svc.Notifier.AppointmentCancelled(background(c), a, user.IsMaster())
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

func (s *Server) getReviewPrompt(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	a, err := s.svc.Reviews.NextPrompt(c.Request.Context(), user)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": a})
}

func (s *Server) markPromptShown(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.svc.Reviews.MarkPrompted(c.Request.Context(), user, id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) deferPrompt(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	showHint, err := s.svc.Reviews.Defer(c.Request.Context(), user, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"showHint": showHint})
}

func (s *Server) dismissPrompt(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.svc.Reviews.Dismiss(c.Request.Context(), user, id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) submitReview(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужны appointmentId и rating")
		return
	}

	ctx := c.Request.Context()
	review, err := s.svc.Reviews.Submit(ctx, user, req.AppointmentID, req.Rating, req.Comment)
	if err != nil {
		s.respondError(c, err)
		return
	}

	a, err := s.svc.Bookings.Get(ctx, req.AppointmentID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.svc.Notifier.ReviewSubmitted(background(c), review, a)
	c.JSON(http.StatusCreated, gin.H{"review": review})
}

func (s *Server) updatePhone(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req phoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужен phone")
		return
	}
	if err := s.svc.Users.SetPhone(c.Request.Context(), user, req.Phone); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
