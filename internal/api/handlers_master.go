package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Freeeeeet/salon_bot/internal/availability"
	"github.com/Freeeeeet/salon_bot/internal/model"
)

const (
	defaultReviewsLimit = 20
	maxReviewsLimit     = 100
)

type replyRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

type serviceRequest struct {
	Name            model.LocalizedName `json:"name"`
	Description     string              `json:"description" binding:"max=1000"`
	DurationMinutes int                 `json:"durationMinutes" binding:"required,min=5,max=720"`
	Price           decimal.Decimal     `json:"price"`
	Currency        string              `json:"currency"`
}

func (r serviceRequest) apply(svc *model.Service) {
	svc.Name = r.Name
	svc.Description = r.Description
	svc.DurationMinutes = r.DurationMinutes
	svc.Price = r.Price
	if r.Currency != "" {
		svc.Currency = r.Currency
	}
}

func (s *Server) masterAppointments(c *gin.Context) {
	date := s.svc.Settings.Today()
	if raw := c.Query("date"); raw != "" {
		parsed, err := s.svc.Settings.ParseDate(raw)
		if err != nil {
			badRequest(c, "Дата в формате ГГГГ-ММ-ДД")
			return
		}
		date = parsed
	}

	list, err := s.svc.Bookings.AppointmentsForDate(c.Request.Context(), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if list == nil {
		list = []*model.Appointment{}
	}
	c.JSON(http.StatusOK, gin.H{
		"date":         availability.DateKey(date),
		"appointments": list,
	})
}

func (s *Server) confirmAppointment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := s.svc.Bookings.Confirm(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.svc.Notifier.AppointmentConfirmed(background(c), a)
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

func (s *Server) completeAppointment(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := s.svc.Bookings.Complete(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

func (s *Server) masterCancelAppointment(c *gin.Context) {
	master, ok := s.currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}

	a, err := s.svc.Bookings.Cancel(c.Request.Context(), id, master)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.svc.Notifier.AppointmentCancelled(background(c), a, true)
	c.JSON(http.StatusOK, gin.H{"appointment": a})
}

func (s *Server) listReviews(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultReviewsLimit)))
	if err != nil || limit <= 0 {
		limit = defaultReviewsLimit
	}
	if limit > maxReviewsLimit {
		limit = maxReviewsLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	onlyUnread := c.Query("unread") == "true"

	ctx := c.Request.Context()
	reviews, err := s.svc.Reviews.List(ctx, onlyUnread, limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	unread, err := s.svc.Reviews.UnreadCount(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	average, total, err := s.svc.Reviews.Stats(ctx)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []*model.Review{}
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
		"unread":  unread,
		"average": average,
		"total":   total,
	})
}

func (s *Server) markReviewRead(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	updated, err := s.svc.Reviews.MarkRead(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (s *Server) markAllReviewsRead(c *gin.Context) {
	updated, err := s.svc.Reviews.MarkAllRead(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (s *Server) replyReview(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужен текст ответа")
		return
	}

	review, err := s.svc.Reviews.Reply(c.Request.Context(), id, req.Text)
	if err != nil {
		s.respondError(c, err)
		return
	}
	s.svc.Notifier.ReviewReplied(background(c), review)
	c.JSON(http.StatusOK, gin.H{"review": review})
}

func (s *Server) getSettings(c *gin.Context) {
	settings, err := s.svc.Settings.Get(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) putSettings(c *gin.Context) {
	var next model.SalonSettings
	if err := c.ShouldBindJSON(&next); err != nil {
		badRequest(c, "Неверный формат настроек")
		return
	}

	settings, err := s.svc.Settings.Replace(c.Request.Context(), next)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) listOverrides(c *gin.Context) {
	overrides, err := s.svc.Settings.Overrides(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	if overrides == nil {
		overrides = model.Overrides{}
	}
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

func (s *Server) putOverride(c *gin.Context) {
	date, err := s.svc.Settings.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, "Дата в формате ГГГГ-ММ-ДД")
		return
	}

	var day model.DaySchedule
	if err := c.ShouldBindJSON(&day); err != nil {
		badRequest(c, "Неверный формат дня")
		return
	}

	if err := s.svc.Settings.SetOverride(c.Request.Context(), date, day); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": availability.DateKey(date), "day": day})
}

func (s *Server) deleteOverride(c *gin.Context) {
	date, err := s.svc.Settings.ParseDate(c.Param("date"))
	if err != nil {
		badRequest(c, "Дата в формате ГГГГ-ММ-ДД")
		return
	}

	removed, err := s.svc.Settings.ClearOverride(c.Request.Context(), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

func (s *Server) masterServices(c *gin.Context) {
	list, err := s.svc.Catalog.List(c.Request.Context(), false)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

func (s *Server) createService(c *gin.Context) {
	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужны name и durationMinutes")
		return
	}

	svc := &model.Service{}
	req.apply(svc)
	if err := s.svc.Catalog.Create(c.Request.Context(), svc); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}

func (s *Server) updateService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var req serviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Нужны name и durationMinutes")
		return
	}

	ctx := c.Request.Context()
	svc, err := s.svc.Catalog.Get(ctx, id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	req.apply(svc)
	if err := s.svc.Catalog.Update(ctx, svc); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

func (s *Server) toggleService(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	svc, err := s.svc.Catalog.ToggleActive(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}
