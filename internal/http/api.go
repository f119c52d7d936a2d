package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"devlogger/internal/domain"
	"devlogger/internal/export"
	"devlogger/internal/service"
	"devlogger/internal/storage"
	"devlogger/internal/token"
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users       service.UserService
	logs        service.LogService
	tokens      *token.Service
	renderer    export.Renderer
	archive     storage.Service
	bucket      string
	keyPrefix   string
	exportTitle string
	authRPS     rate.Limit
	authBurst   int
	logger      *logrus.Logger
}

type Options struct {
	Users       service.UserService
	Logs        service.LogService
	Tokens      *token.Service
	Renderer    export.Renderer
	Archive     storage.Service
	Bucket      string
	KeyPrefix   string
	ExportTitle string
	AuthRPS     float64
	AuthBurst   int
	Logger      *logrus.Logger
}

func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:       opts.Users,
		logs:        opts.Logs,
		tokens:      opts.Tokens,
		renderer:    opts.Renderer,
		archive:     opts.Archive,
		bucket:      opts.Bucket,
		keyPrefix:   opts.KeyPrefix,
		exportTitle: opts.ExportTitle,
		authRPS:     rate.Limit(opts.AuthRPS),
		authBurst:   opts.AuthBurst,
		logger:      logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(corsMiddleware())

	api := router.Group("/api")
	{
		api.GET("/health", func(ctx *gin.Context) {
			ctx.JSON(http.StatusOK, gin.H{"ok": "ok"})
		})

		auth := api.Group("/auth")
		if h.authRPS > 0 {
			auth.Use(newRateLimiter(h.authRPS, h.authBurst).middleware())
		}
		{
			auth.POST("/register", h.register)
			auth.POST("/login", h.login)
		}

		protected := api.Group("")
		protected.Use(authMiddleware(h.tokens))
		{
			protected.GET("/logs", h.listLogs)
			protected.POST("/logs", h.createLog)
			protected.GET("/logs/:id", h.getLog)
			protected.PUT("/logs/:id", h.updateLog)
			protected.DELETE("/logs/:id", h.deleteLog)
			protected.POST("/export/markdown", h.exportMarkdown)
			protected.POST("/export/pdf", h.exportPDF)
			protected.GET("/export/archive", h.listArchive)
		}
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type exportRequest struct {
	Logs []string `json:"logs"`
}

type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type LogResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	OwnerID   string   `json:"ownerId"`
	CreatedAt string   `json:"createdAt"`
	UpdatedAt string   `json:"updatedAt"`
}

type ArchiveEntryResponse struct {
	Key          string  `json:"key"`
	Size         int64   `json:"size"`
	LastModified *string `json:"lastModified,omitempty"`
	URL          string  `json:"url,omitempty"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	signed, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: signed,
		User:  userToResponse(user),
	})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	signed, err := h.tokens.Generate(user.ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Token: signed,
		User:  userToResponse(user),
	})
}

type createLogRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

func (h *Handler) listLogs(c *gin.Context) {
	var tags []string
	if raw := strings.TrimSpace(c.Query("tags")); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	logs, err := h.logs.List(c.Request.Context(), currentUserID(c), tags)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]LogResponse, len(logs))
	for i := range logs {
		resp[i] = logToResponse(logs[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, err := h.logs.Create(c.Request.Context(), currentUserID(c), req.Title, req.Content, req.Tags)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, logToResponse(*log))
}

func (h *Handler) getLog(c *gin.Context) {
	log, err := h.logs.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, logToResponse(*log))
}

func (h *Handler) updateLog(c *gin.Context) {
	var req createLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	log, err := h.logs.Update(c.Request.Context(), currentUserID(c), c.Param("id"), req.Title, req.Content, req.Tags)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, logToResponse(*log))
}

func (h *Handler) deleteLog(c *gin.Context) {
	if err := h.logs.Delete(c.Request.Context(), currentUserID(c), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "log deleted successfully"})
}

func (h *Handler) exportMarkdown(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ownerID := currentUserID(c)
	logs, err := h.logs.ResolveForExport(c.Request.Context(), ownerID, req.Logs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	doc := export.ToMarkdown(h.exportTitle, time.Now(), logs)
	h.archiveExport(c, ownerID, "md", "text/markdown", doc)

	c.Header("Content-Disposition", `attachment; filename="devlogger-export.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(doc))
}

func (h *Handler) exportPDF(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	ownerID := currentUserID(c)
	logs, err := h.logs.ResolveForExport(c.Request.Context(), ownerID, req.Logs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	doc, err := export.ToHTMLDocument(h.exportTitle, time.Now(), logs)
	if err != nil {
		h.writeError(c, err)
		return
	}

	// Without a configured render service the HTML document itself is
	// the deliverable.
	if h.renderer == nil {
		h.archiveExport(c, ownerID, "html", "text/html", doc)
		c.Header("Content-Disposition", `attachment; filename="devlogger-export.html"`)
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc))
		return
	}

	pdf, err := h.renderer.RenderPDF(c.Request.Context(), doc)
	if err != nil {
		h.logger.Warnf("render pdf: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	h.archiveExport(c, ownerID, "pdf", "application/pdf", string(pdf))
	c.Header("Content-Disposition", `attachment; filename="devlogger-export.pdf"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) listArchive(c *gin.Context) {
	if h.archive == nil || h.bucket == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "export archive not configured"})
		return
	}

	prefix := h.archiveKey(currentUserID(c), "")
	objects, err := h.archive.List(c.Request.Context(), h.bucket, prefix)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ArchiveEntryResponse, len(objects))
	for i, obj := range objects {
		resp[i] = ArchiveEntryResponse{
			Key:  obj.Key,
			Size: obj.Size,
		}
		if obj.LastModified != nil && !obj.LastModified.IsZero() {
			v := obj.LastModified.Format(time.RFC3339)
			resp[i].LastModified = &v
		}
		if url, err := h.archive.PresignGet(c.Request.Context(), h.bucket, obj.Key, 15*time.Minute); err == nil {
			resp[i].URL = url
		} else {
			h.logger.Warnf("presign archive entry %s: %v", obj.Key, err)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// archiveExport uploads a generated document to the archive bucket.
// Best effort: a failed upload is logged and never fails the export.
func (h *Handler) archiveExport(c *gin.Context, ownerID, ext, contentType, body string) {
	if h.archive == nil || h.bucket == "" {
		return
	}

	key := h.archiveKey(ownerID, fmt.Sprintf("devlogger-export-%s.%s", time.Now().UTC().Format("20060102-150405"), ext))
	if _, err := h.archive.Put(c.Request.Context(), h.bucket, key, contentType, strings.NewReader(body)); err != nil {
		h.logger.Warnf("archive export %s: %v", key, err)
	}
}

func (h *Handler) archiveKey(ownerID, name string) string {
	parts := []string{}
	if prefix := strings.Trim(h.keyPrefix, "/"); prefix != "" {
		parts = append(parts, prefix)
	}
	parts = append(parts, ownerID)
	if name != "" {
		parts = append(parts, name)
	}
	return strings.Join(parts, "/")
}

// writeError maps domain errors to status codes in one place. Internal
// failures never leak driver detail to the client.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrEmailTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, domain.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
	default:
		h.logger.Errorf("internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
	}
}

func logToResponse(log domain.Log) LogResponse {
	tags := log.Tags
	if tags == nil {
		tags = []string{}
	}
	return LogResponse{
		ID:        log.ID,
		Title:     log.Title,
		Content:   log.Content,
		Tags:      tags,
		OwnerID:   log.OwnerID,
		CreatedAt: log.CreatedAt.Format(time.RFC3339),
		UpdatedAt: log.UpdatedAt.Format(time.RFC3339),
	}
}
