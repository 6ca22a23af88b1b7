// Package rest is the HTTP surface: search/crawl, session history, the
// chatbot retrieval contract and the admin endpoints.
package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"news-crawler/domain"
	"news-crawler/logger"
	"news-crawler/textutil"
	"news-crawler/usecase"
	"news-crawler/utils"
)

// TopicRunner is the scheduler surface the admin endpoints drive.
type TopicRunner interface {
	Trigger(ctx context.Context, website string, forceDaysBack int)
	Reschedule(ctx context.Context, minutes int) error
	Minutes() int
}

type Handler struct {
	hybrid     *usecase.HybridSearchUsecase
	status     *usecase.CrawlStatusUsecase
	history    *usecase.HistoryUsecase
	retrieve   *usecase.RetrieveContextUsecase
	initTopics *usecase.InitTopicsUsecase
	sweep      *usecase.SweepHistoryUsecase
	topics     TopicRunner
}

func NewHandler(
	hybrid *usecase.HybridSearchUsecase,
	status *usecase.CrawlStatusUsecase,
	history *usecase.HistoryUsecase,
	retrieve *usecase.RetrieveContextUsecase,
	initTopics *usecase.InitTopicsUsecase,
	sweep *usecase.SweepHistoryUsecase,
	topics TopicRunner,
) *Handler {
	return &Handler{
		hybrid:     hybrid,
		status:     status,
		history:    history,
		retrieve:   retrieve,
		initTopics: initTopics,
		sweep:      sweep,
		topics:     topics,
	}
}

// Register wires every route onto the router.
func (h *Handler) Register(e *echo.Echo) {
	e.GET("/health", h.Health)

	e.POST("/crawl", h.Crawl)
	e.GET("/crawl/status/:search_id", h.CrawlStatus)
	e.GET("/crawl/stream-status/:search_id", h.StreamStatus)

	e.GET("/history", h.History)
	e.GET("/history/:search_id/articles", h.HistoryArticles)

	e.POST("/chatbot/retrieve-context", h.RetrieveContext)

	e.POST("/topics/init-from-html", h.InitTopics)
	e.POST("/admin/trigger-auto-crawl", h.TriggerAutoCrawl)
	e.POST("/admin/auto-crawl/:website", h.AutoCrawlWebsite)
	e.POST("/admin/schedule", h.Schedule)
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, errorResponse{Status: "error", Message: msg})
}

func serverError(c echo.Context, err error) error {
	logger.Logger.Error("request failed", "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, errorResponse{Status: "error", Message: "internal error"})
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type crawlRequest struct {
	Websites       []string `json:"websites"`
	KeywordSearch  string   `json:"keyword_search"`
	KeywordContent string   `json:"keyword_content"`
	MaxArticles    int      `json:"max_articles"`
	StartDate      string   `json:"start_date"`
	EndDate        string   `json:"end_date"`
	UserID         string   `json:"user_id"`
	Page           int      `json:"page"`
	PageSize       int      `json:"page_size"`
}

type crawlMeta struct {
	TotalAvailableNow int `json:"total_available_now"`
	Page              int `json:"page"`
	PageSize          int `json:"page_size"`
}

type crawlResponse struct {
	Status    string    `json:"status"`
	SearchID  string    `json:"search_id"`
	Meta      crawlMeta `json:"meta"`
	StreamURL string    `json:"stream_url"`
}

// Crawl runs a hybrid search and, when the stores cannot meet the
// requested count, leaves a crawl running in the background. The response
// always returns immediately.
func (h *Handler) Crawl(c echo.Context) error {
	var body crawlRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	keyword, err := utils.SanitizeKeyword(body.KeywordSearch)
	if err != nil {
		return badRequest(c, err.Error())
	}

	startDate, err := textutil.ParseRequestDate(body.StartDate)
	if err != nil {
		return badRequest(c, "start_date must be DD/MM/YYYY")
	}
	endDate, err := textutil.ParseRequestDate(body.EndDate)
	if err != nil {
		return badRequest(c, "end_date must be DD/MM/YYYY")
	}

	req := domain.CrawlRequest{
		Websites:       body.Websites,
		KeywordSearch:  keyword,
		KeywordContent: body.KeywordContent,
		MaxArticles:    body.MaxArticles,
		StartDate:      startDate,
		EndDate:        endDate,
		UserID:         strings.TrimSpace(body.UserID),
		Page:           body.Page,
		PageSize:       body.PageSize,
	}
	if req.Page == 0 {
		req.Page = 1
	}
	if req.PageSize == 0 {
		req.PageSize = 10
	}

	result, err := h.hybrid.Execute(c.Request().Context(), req)
	if err != nil {
		// Validation failures come back as plain errors; anything the
		// session store raises is not the caller's fault.
		var repoErr *domain.RepositoryError
		if errors.As(err, &repoErr) {
			return serverError(c, err)
		}
		return badRequest(c, err.Error())
	}

	// Retention runs after every new session so a user never holds more
	// than the history limit.
	go func(userID string) {
		swept, err := h.sweep.Execute(context.WithoutCancel(c.Request().Context()), userID)
		if err != nil {
			logger.Logger.Error("history sweep failed", "user_id", userID, "error", err)
			return
		}
		if swept > 0 {
			logger.Logger.Info("history swept", "user_id", userID, "sessions", swept)
		}
	}(req.UserID)

	return c.JSON(http.StatusOK, crawlResponse{
		Status:   string(result.Status),
		SearchID: result.SearchID,
		Meta: crawlMeta{
			TotalAvailableNow: result.TotalAvailableNow,
			Page:              result.Page,
			PageSize:          result.PageSize,
		},
		StreamURL: result.StreamURL,
	})
}

type statusResponse struct {
	SearchID   string `json:"search_id"`
	Status     string `json:"status"`
	TotalSaved int    `json:"total_saved"`
	UpdatedAt  string `json:"updated_at"`
}

func (h *Handler) CrawlStatus(c echo.Context) error {
	searchID := c.Param("search_id")
	snap, err := h.status.Snapshot(c.Request().Context(), searchID)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Status: "error", Message: notFound.Error()})
		}
		return serverError(c, err)
	}
	return c.JSON(http.StatusOK, snapshotJSON(snap))
}

func snapshotJSON(snap *domain.ProgressSnapshot) statusResponse {
	return statusResponse{
		SearchID:   snap.SearchID,
		Status:     string(snap.Status),
		TotalSaved: snap.TotalSaved,
		UpdatedAt:  snap.UpdatedAt.Format(time.RFC3339),
	}
}

type sessionJSON struct {
	SearchID             string `json:"search_id"`
	KeywordSearch        string `json:"keyword_search"`
	KeywordContent       string `json:"keyword_content,omitempty"`
	MaxArticlesRequested int    `json:"max_articles_requested"`
	TotalSaved           int    `json:"total_saved"`
	Status               string `json:"status"`
	TimeRange            string `json:"time_range"`
	CreatedAt            string `json:"created_at"`
}

func (h *Handler) History(c echo.Context) error {
	userID := strings.TrimSpace(c.QueryParam("user_id"))
	if userID == "" {
		return badRequest(c, "user_id is required")
	}

	sessions, err := h.history.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return serverError(c, err)
	}

	out := make([]sessionJSON, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionJSON{
			SearchID:             s.SearchID,
			KeywordSearch:        s.KeywordSearch,
			KeywordContent:       s.KeywordContent,
			MaxArticlesRequested: s.MaxArticlesRequested,
			TotalSaved:           s.TotalSaved,
			Status:               string(s.Status),
			TimeRange:            s.TimeRange,
			CreatedAt:            s.CreatedAt.Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"sessions": out})
}

type articleJSON struct {
	ArticleID      string   `json:"article_id"`
	URL            string   `json:"url"`
	Title          string   `json:"title"`
	Summary        string   `json:"summary,omitempty"`
	Website        string   `json:"website"`
	SiteCategories []string `json:"site_categories,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	PublishDate    string   `json:"publish_date,omitempty"`
	Status         string   `json:"status"`
	AISummary      []string `json:"ai_summary,omitempty"`
	SentimentLabel string   `json:"sentiment_label,omitempty"`
	SentimentScore float64  `json:"sentiment_score"`
}

func (h *Handler) HistoryArticles(c echo.Context) error {
	searchID := c.Param("search_id")
	userID := strings.TrimSpace(c.QueryParam("user_id"))
	if userID == "" {
		return badRequest(c, "user_id is required")
	}
	page, _ := strconv.Atoi(c.QueryParam("page"))
	pageSize, _ := strconv.Atoi(c.QueryParam("page_size"))

	result, err := h.history.SessionArticles(c.Request().Context(), searchID, userID, page, pageSize)
	if err != nil {
		var notFound *domain.NotFoundError
		if errors.As(err, &notFound) {
			return c.JSON(http.StatusNotFound, errorResponse{Status: "error", Message: notFound.Error()})
		}
		return serverError(c, err)
	}

	articles := make([]articleJSON, 0, len(result.Articles))
	for _, a := range result.Articles {
		out := articleJSON{
			ArticleID:      a.ArticleID,
			URL:            a.URL,
			Title:          a.Title,
			Summary:        a.Summary,
			Website:        a.Website,
			SiteCategories: a.SiteCategories,
			Tags:           a.Tags,
			Status:         string(a.Status),
			AISummary:      a.AISummary,
			SentimentLabel: string(a.AISentimentLabel),
			SentimentScore: a.AISentimentScore,
		}
		if a.PublishDate != nil {
			out.PublishDate = a.PublishDate.Format(time.RFC3339)
		}
		articles = append(articles, out)
	}

	return c.JSON(http.StatusOK, map[string]any{
		"articles":    articles,
		"total":       result.Total,
		"page":        result.Page,
		"page_size":   result.PageSize,
		"total_pages": result.TotalPages,
	})
}

type retrieveContextRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
	TopK     int    `json:"top_k"`
}

type contextJSON struct {
	Text           string  `json:"text"`
	Title          string  `json:"title"`
	URL            string  `json:"url"`
	Score          float32 `json:"score"`
	PublishDate    string  `json:"publish_date,omitempty"`
	SentimentLabel string  `json:"sentiment_label,omitempty"`
}

func (h *Handler) RetrieveContext(c echo.Context) error {
	var body retrieveContextRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(body.Question) == "" {
		return badRequest(c, "question is required")
	}

	contexts, err := h.retrieve.Execute(c.Request().Context(), body.Question, body.UserID, body.TopK)
	if err != nil {
		return serverError(c, err)
	}

	out := make([]contextJSON, 0, len(contexts))
	for _, ctx := range contexts {
		out = append(out, contextJSON{
			Text:           ctx.Text,
			Title:          ctx.Title,
			URL:            ctx.URL,
			Score:          ctx.Score,
			PublishDate:    ctx.PublishDate,
			SentimentLabel: string(ctx.SentimentLabel),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"contexts": out})
}

// InitTopics scrapes a site's navigation into the topic registry and, when
// anything was found, kicks a crawl of that site's topics.
func (h *Handler) InitTopics(c echo.Context) error {
	website := strings.TrimSpace(c.QueryParam("website"))
	if website == "" {
		return badRequest(c, "website is required")
	}

	count, err := h.initTopics.Execute(c.Request().Context(), website)
	if err != nil {
		return badRequest(c, err.Error())
	}

	if count > 0 {
		h.topics.Trigger(c.Request().Context(), website, 0)
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "topics": count})
}

func (h *Handler) TriggerAutoCrawl(c echo.Context) error {
	website := strings.TrimSpace(c.QueryParam("website"))
	forceDaysBack, _ := strconv.Atoi(c.QueryParam("force_days_back"))

	h.topics.Trigger(c.Request().Context(), website, forceDaysBack)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started"})
}

func (h *Handler) AutoCrawlWebsite(c echo.Context) error {
	website := c.Param("website")
	forceDaysBack, _ := strconv.Atoi(c.QueryParam("force_days_back"))

	h.topics.Trigger(c.Request().Context(), website, forceDaysBack)
	return c.JSON(http.StatusAccepted, map[string]string{"status": "started", "website": website})
}

type scheduleRequest struct {
	Minutes int `json:"minutes"`
}

func (h *Handler) Schedule(c echo.Context) error {
	var body scheduleRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := h.topics.Reschedule(c.Request().Context(), body.Minutes); err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ok", "interval_minutes": h.topics.Minutes()})
}
