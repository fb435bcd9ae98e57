package handler

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"roast-server/internal/geo"
	"roast-server/internal/messaging"
	"roast-server/internal/models"
	"roast-server/internal/payments"
	"roast-server/internal/repository"
)

// APIError - стандартная структура ошибки API.
type APIError struct {
	Message string `json:"error"`
}

// RoastHandler обрабатывает HTTP запросы публичного API.
type RoastHandler struct {
	roastRepo     repository.RoastRepository
	publisher     messaging.EventPublisher
	webhookSecret string
	logger        *zap.Logger
}

// NewRoastHandler создает новый экземпляр RoastHandler.
func NewRoastHandler(
	roastRepo repository.RoastRepository,
	publisher messaging.EventPublisher,
	webhookSecret string,
	logger *zap.Logger,
) *RoastHandler {
	return &RoastHandler{
		roastRepo:     roastRepo,
		publisher:     publisher,
		webhookSecret: webhookSecret,
		logger:        logger.Named("RoastHandler"),
	}
}

// RegisterRoutes регистрирует маршруты API на роутере Gin.
func (h *RoastHandler) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)

	api := router.Group("/api")
	{
		api.POST("/roast", h.CreateRoast)
		api.GET("/roast/:id", h.GetRoast)
		api.GET("/cities", h.SearchCities)
		api.POST("/webhook/payment", h.PaymentWebhook)
	}
}

// Health обрабатывает healthcheck.
// GET /health
func (h *RoastHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateRoastRequest - тело запроса на создание роаста.
type CreateRoastRequest struct {
	Name      string `json:"name"`
	BirthDate string `json:"birthDate"` // YYYY-MM-DD
	BirthTime string `json:"birthTime"` // HH:MM
	City      string `json:"city"`
}

// CreateRoast принимает данные рождения, создает запись в статусе generating
// и ставит задачу генерации в очередь.
// POST /api/roast
func (h *RoastHandler) CreateRoast(c *gin.Context) {
	var req CreateRoastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body"})
		return
	}

	if req.Name == "" || len(req.Name) > 100 {
		c.JSON(http.StatusBadRequest, APIError{Message: "Name is required and must be at most 100 characters"})
		return
	}

	birthDate, err := time.Parse("2006-01-02", req.BirthDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid birth date, expected YYYY-MM-DD"})
		return
	}
	if birthDate.Year() < 1900 || birthDate.After(time.Now()) {
		c.JSON(http.StatusBadRequest, APIError{Message: "Birth date out of range"})
		return
	}

	birthTime, err := time.Parse("15:04", req.BirthTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid birth time, expected HH:MM"})
		return
	}

	city, ok := geo.Lookup(req.City)
	if !ok {
		c.JSON(http.StatusBadRequest, APIError{Message: "Unknown city"})
		return
	}

	roastID := uuid.NewString()
	record := &models.Roast{
		ID:        roastID,
		Status:    models.RoastStatusGenerating,
		Name:      req.Name,
		Paid:      false,
		CreatedAt: time.Now().UTC(),
	}

	ctx := c.Request.Context()
	if err := h.roastRepo.Save(ctx, roastID, record); err != nil {
		h.logger.Error("Failed to create roast record", zap.Error(err), zap.String("roastID", roastID))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to create roast"})
		return
	}

	task := messaging.RoastTaskPayload{
		RoastID: roastID,
		Name:    req.Name,
		Year:    birthDate.Year(),
		Month:   int(birthDate.Month()),
		Day:     birthDate.Day(),
		Hour:    birthTime.Hour(),
		Minute:  birthTime.Minute(),
		Lat:     city.Lat,
		Lon:     city.Lon,
		Tz:      city.Tz,
	}
	if err := h.publisher.PublishRoastTask(ctx, task); err != nil {
		h.logger.Error("Failed to enqueue generation task", zap.Error(err), zap.String("roastID", roastID))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to enqueue roast generation"})
		return
	}

	h.logger.Info("Roast generation queued",
		zap.String("roastID", roastID),
		zap.String("city", req.City),
	)
	c.JSON(http.StatusOK, gin.H{"id": roastID})
}

// roastStatusResponse - ответ эндпоинта статуса. Состав полей зависит от
// статуса записи и флага оплаты: до оплаты платные поля не сериализуются.
type roastStatusResponse struct {
	ID             string                `json:"id"`
	Status         models.RoastStatus    `json:"status"`
	Name           string                `json:"name,omitempty"`
	Paid           bool                  `json:"paid"`
	CreatedAt      *time.Time            `json:"createdAt,omitempty"`
	SunSign        string                `json:"sunSign,omitempty"`
	MoonSign       string                `json:"moonSign,omitempty"`
	Rising         string                `json:"rising,omitempty"`
	Mercury        string                `json:"mercury,omitempty"`
	Venus          string                `json:"venus,omitempty"`
	Mars           string                `json:"mars,omitempty"`
	Jupiter        string                `json:"jupiter,omitempty"`
	Saturn         string                `json:"saturn,omitempty"`
	Teaser         string                `json:"teaser,omitempty"`
	SectionHeaders []string              `json:"sectionHeaders,omitempty"`
	Sections       []models.RoastSection `json:"sections,omitempty"`
	Error          string                `json:"error,omitempty"`
}

// GetRoast возвращает состояние записи. Пока оплата не подтверждена, платный
// контент не попадает в ответ ни в каком виде (только заголовки секций).
// GET /api/roast/:id
func (h *RoastHandler) GetRoast(c *gin.Context) {
	roastID := c.Param("id")

	roast, err := h.roastRepo.Get(c.Request.Context(), roastID)
	if err != nil {
		if err == repository.ErrRoastNotFound {
			c.JSON(http.StatusNotFound, APIError{Message: "Roast not found"})
			return
		}
		h.logger.Error("Failed to load roast record", zap.Error(err), zap.String("roastID", roastID))
		c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to load roast"})
		return
	}

	resp := roastStatusResponse{
		ID:     roast.ID,
		Status: roast.Status,
		Paid:   roast.Paid,
	}

	switch roast.Status {
	case models.RoastStatusGenerating:
		// Идет генерация: клиенту достаточно статуса для поллинга
	case models.RoastStatusError:
		// Провал генерации отдаем как 500: для клиента это отказ сервиса,
		// а не состояние для поллинга
		resp.Error = roast.Error
		c.JSON(http.StatusInternalServerError, resp)
		return
	case models.RoastStatusReady:
		createdAt := roast.CreatedAt
		resp.Name = roast.Name
		resp.CreatedAt = &createdAt
		resp.SunSign = roast.SunSign
		resp.MoonSign = roast.MoonSign
		resp.Rising = roast.Rising
		resp.Teaser = roast.Teaser
		if roast.Paid {
			resp.Mercury = roast.Mercury
			resp.Venus = roast.Venus
			resp.Mars = roast.Mars
			resp.Jupiter = roast.Jupiter
			resp.Saturn = roast.Saturn
			resp.Sections = roast.Sections
		} else {
			headers := make([]string, 0, len(roast.Sections))
			for _, section := range roast.Sections {
				headers = append(headers, section.Title)
			}
			resp.SectionHeaders = headers
		}
	}

	c.JSON(http.StatusOK, resp)
}

// SearchCities возвращает подсказки городов для автодополнения.
// GET /api/cities?q=
func (h *RoastHandler) SearchCities(c *gin.Context) {
	query := c.Query("q")
	matches := geo.Search(query)
	if matches == nil {
		matches = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"cities": matches})
}

// PaymentWebhook принимает уведомления платежного провайдера.
// Подпись проверяется над сырым телом запроса ДО разбора JSON.
// POST /api/webhook/payment
func (h *RoastHandler) PaymentWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "Failed to read request body"})
		return
	}

	signature := c.GetHeader("X-Signature")
	if err := payments.VerifySignature(rawBody, signature, h.webhookSecret); err != nil {
		h.logger.Warn("Webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, APIError{Message: "Invalid signature"})
		return
	}

	event, err := payments.ParseOrderEvent(rawBody)
	if err != nil {
		h.logger.Warn("Failed to parse webhook payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, APIError{Message: "Invalid payload"})
		return
	}

	// Неизвестные события подтверждаем без обработки, чтобы провайдер
	// не повторял доставку
	if event.EventName == payments.EventOrderCreated && event.RoastID != "" {
		payload := messaging.UnlockPayload{RoastID: event.RoastID}
		if err := h.publisher.PublishUnlock(c.Request.Context(), payload); err != nil {
			h.logger.Error("Failed to enqueue unlock event",
				zap.Error(err), zap.String("roastID", event.RoastID))
			c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to process webhook"})
			return
		}
		h.logger.Info("Unlock event queued", zap.String("roastID", event.RoastID))
	} else {
		h.logger.Info("Ignoring webhook event",
			zap.String("eventName", event.EventName))
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
