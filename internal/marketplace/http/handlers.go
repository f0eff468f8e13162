package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/um8r/bridge-master-fyp-sub001/internal/auth"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/agreement"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/catalog"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/classify"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/domain"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/search"
	"github.com/um8r/bridge-master-fyp-sub001/internal/marketplace/tracks"
)

// Handler serves the marketplace listing and the agreement workflow.
type Handler struct {
	builder  *catalog.Builder
	workflow *agreement.Workflow
	now      func() time.Time
}

// NewHandler creates the marketplace handler.
func NewHandler(builder *catalog.Builder, workflow *agreement.Workflow) *Handler {
	return &Handler{
		builder:  builder,
		workflow: workflow,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Used by tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// ListMarketplace builds a fresh catalog snapshot, classifies it, splits it
// into the buy and sponsor tracks, and applies the faculty filter and free-
// text search to the requested track.
func (h *Handler) ListMarketplace(c *gin.Context) {
	track := c.DefaultQuery("track", domain.TrackBuy)
	if !domain.ValidTrack(track) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track must be buy or sponsor"})
		return
	}

	cat, err := h.builder.Build(c.Request.Context(), auth.TokenFrom(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load marketplace projects"})
		return
	}

	classify.Apply(cat.Projects)
	split := tracks.SplitRecords(cat.Projects, h.now().Year())
	filtered := search.Filter(split.For(track), c.DefaultQuery("faculty", search.FacultyAll), c.Query("q"))

	c.JSON(http.StatusOK, gin.H{
		"track":    track,
		"count":    len(filtered),
		"projects": filtered,
	})
}

// ListFaculties serves the faculty filter control.
func (h *Handler) ListFaculties(c *gin.Context) {
	cat, err := h.builder.Build(c.Request.Context(), auth.TokenFrom(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load faculties"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"faculties": cat.Faculties})
}

// OpenAgreement starts an agreement session for one selected project.
func (h *Handler) OpenAgreement(c *gin.Context) {
	submitterID := submitterID(c)
	if submitterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body struct {
		ProjectID string `json:"project_id"`
		Track     string `json:"track"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.ProjectID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if !domain.ValidTrack(body.Track) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "track must be buy or sponsor"})
		return
	}

	cat, err := h.builder.Build(c.Request.Context(), auth.TokenFrom(c))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to load marketplace projects"})
		return
	}
	rec, ok := cat.FindProject(body.ProjectID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
		return
	}

	session, err := h.workflow.Open(c.Request.Context(), submitterID, rec, body.Track)
	if err != nil {
		if errors.Is(err, domain.ErrSessionExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open agreement"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetAgreement returns a session's current state, including any error from a
// failed submission attempt.
func (h *Handler) GetAgreement(c *gin.Context) {
	submitterID := submitterID(c)
	if submitterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	session, err := h.workflow.Get(c.Request.Context(), submitterID, c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "agreement session not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get agreement"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// AttachDocument accepts the counter-signed agreement PDF. Anything other
// than a PDF is rejected with a message and the session stays open.
func (h *Handler) AttachDocument(c *gin.Context) {
	submitterID := submitterID(c)
	if submitterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	fileHeader, err := c.FormFile("agreement")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "agreement file is required"})
		return
	}
	if fileHeader.Size > agreement.MaxDocumentBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrDocumentTooLarge.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read agreement file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read agreement file"})
		return
	}

	session, err := h.workflow.AttachDocument(
		c.Request.Context(), submitterID, c.Param("id"),
		fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data,
	)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "agreement session not found"})
		case errors.Is(err, domain.ErrNotPDF), errors.Is(err, domain.ErrDocumentTooLarge):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to attach document"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SubmitAgreement confirms the agreement and forwards the track-specific
// request to the platform backend. Failures keep the session open (with its
// document) so the user can retry.
func (h *Handler) SubmitAgreement(c *gin.Context) {
	submitterID := submitterID(c)
	if submitterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body struct {
		Price int `json:"price"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	result, err := h.workflow.Submit(c.Request.Context(), auth.TokenFrom(c), submitterID, c.Param("id"), body.Price)
	if err != nil {
		var subErr *domain.SubmissionError
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "agreement session not found"})
		case errors.Is(err, domain.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case agreement.IsValidationError(err):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		case errors.As(err, &subErr):
			c.JSON(http.StatusBadGateway, gin.H{"error": subErr.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "submission failed, please try again"})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelAgreement destroys a session without submitting.
func (h *Handler) CancelAgreement(c *gin.Context) {
	submitterID := submitterID(c)
	if submitterID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	if err := h.workflow.Cancel(c.Request.Context(), submitterID, c.Param("id")); err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "agreement session not found"})
		case errors.Is(err, domain.ErrSubmitInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel agreement"})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "agreement cancelled"})
}

// submitterID identifies the industry expert making the request. Identity
// claims live in the token, which only the platform backend can decode, so
// the caller supplies its id explicitly.
func submitterID(c *gin.Context) string {
	return c.GetHeader("X-User-Id")
}
