package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/tutorauth/adapters/store"
	"github.com/layer-3/tutorauth/adapters/tokenizer"
	"github.com/layer-3/tutorauth/core"
	"github.com/layer-3/tutorauth/ports"
	"github.com/layer-3/tutorauth/service"
	"github.com/rs/zerolog"
)

// AuthHandlers contains HTTP handlers for session endpoints
type AuthHandlers struct {
	guard        *service.Guard
	publisher    ports.EventPublisher
	bearer       ports.Tokenizer
	cookies      ports.Tokenizer
	cookieDomain string
	logger       zerolog.Logger
}

// NewAuthHandlers creates session handlers. publisher may be nil.
func NewAuthHandlers(guard *service.Guard, publisher ports.EventPublisher, cookieDomain string, logger zerolog.Logger) *AuthHandlers {
	return &AuthHandlers{
		guard:        guard,
		publisher:    publisher,
		bearer:       tokenizer.NewBearerTokenizer(),
		cookies:      tokenizer.NewCookieTokenizer(),
		cookieDomain: cookieDomain,
		logger:       logger,
	}
}

// Establish verifies a client-built session and mirrors it into the scheme
// cookie for server-rendered pages. The response carries a bearer token
// for clients without a cookie jar.
func (h *AuthHandlers) Establish(c *gin.Context) {
	scheme, err := core.SchemeByName(c.Query("scheme"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	var session core.Session
	if err := c.ShouldBindJSON(&session); err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return
	}

	id, err := h.guard.Authorize(c.Request.Context(), &core.Credentials{Scheme: scheme, Session: session})
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	value, err := h.cookies.SessionToToken(session)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	token, err := h.bearer.SessionToToken(session)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	http.SetCookie(c.Writer, store.NewCookie(scheme.StorageKey, value, session.Expiry(), h.cookieDomain))

	if h.publisher != nil {
		if err := h.publisher.PublishSessionEstablished(c.Request.Context(), scheme.Name, id.Address); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish session event")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"address":   id.Address,
		"scheme":    scheme.Name,
		"expiresAt": session.ExpiresAt,
		"token":     token,
	})
}

// Logout expires the session cookie of the given scheme, or of every
// scheme when none is named. It succeeds without a session.
func (h *AuthHandlers) Logout(c *gin.Context) {
	schemes := core.Schemes()
	if name := c.Query("scheme"); name != "" {
		scheme, err := core.SchemeByName(name)
		if err != nil {
			abortWithError(c, h.logger, err)
			return
		}
		schemes = []core.Scheme{scheme}
	}

	for _, scheme := range schemes {
		session, err := store.SessionFromRequest(c.Request, scheme)
		http.SetCookie(c.Writer, store.ExpiredCookie(scheme.StorageKey, h.cookieDomain))

		if err != nil || h.publisher == nil {
			continue
		}
		address := scheme.NormalizeAddress(session.Address)
		if err := h.publisher.PublishSessionCleared(c.Request.Context(), scheme.Name, address); err != nil {
			h.logger.Warn().Err(err).Msg("failed to publish session event")
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the identity behind the presented session
func (h *AuthHandlers) Me(c *gin.Context) {
	creds := credentialsFrom(c)
	id, err := h.guard.Authorize(c.Request.Context(), creds)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"address":   id.Address,
		"scheme":    id.Scheme.Name,
		"expiresAt": creds.Session.ExpiresAt,
	})
}

// CatalogHandlers contains HTTP handlers for courses, lessons and profiles
type CatalogHandlers struct {
	catalog *service.CatalogService
	logger  zerolog.Logger
}

// NewCatalogHandlers creates catalog handlers
func NewCatalogHandlers(catalog *service.CatalogService, logger zerolog.Logger) *CatalogHandlers {
	return &CatalogHandlers{catalog: catalog, logger: logger}
}

// ListCourses lists courses, optionally filtered by ?owner=
func (h *CatalogHandlers) ListCourses(c *gin.Context) {
	owner := c.Query("owner")
	if owner != "" {
		scheme, err := core.SchemeByName(c.Query("scheme"))
		if err != nil {
			abortWithError(c, h.logger, err)
			return
		}
		owner = scheme.NormalizeAddress(owner)
	}

	courses, err := h.catalog.ListCourses(c.Request.Context(), owner)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

func (h *CatalogHandlers) GetCourse(c *gin.Context) {
	course, err := h.catalog.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CatalogHandlers) ListLessons(c *gin.Context) {
	lessons, err := h.catalog.ListLessons(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessons": lessons})
}

func (h *CatalogHandlers) GetProfile(c *gin.Context) {
	scheme, err := core.SchemeByName(c.Query("scheme"))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}

	profile, err := h.catalog.GetProfile(c.Request.Context(), scheme.NormalizeAddress(c.Param("address")))
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *CatalogHandlers) CreateCourse(c *gin.Context) {
	var in core.CourseInput
	if !h.bind(c, &in) {
		return
	}

	course, err := h.catalog.CreateCourse(c.Request.Context(), credentialsFrom(c), in)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

func (h *CatalogHandlers) UpdateCourse(c *gin.Context) {
	var in core.CourseInput
	if !h.bind(c, &in) {
		return
	}

	course, err := h.catalog.UpdateCourse(c.Request.Context(), credentialsFrom(c), c.Param("id"), in)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *CatalogHandlers) DeleteCourse(c *gin.Context) {
	if err := h.catalog.DeleteCourse(c.Request.Context(), credentialsFrom(c), c.Param("id")); err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandlers) CreateLesson(c *gin.Context) {
	var in core.LessonInput
	if !h.bind(c, &in) {
		return
	}

	lesson, err := h.catalog.CreateLesson(c.Request.Context(), credentialsFrom(c), c.Param("id"), in)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, lesson)
}

func (h *CatalogHandlers) UpdateLesson(c *gin.Context) {
	var in core.LessonInput
	if !h.bind(c, &in) {
		return
	}

	lesson, err := h.catalog.UpdateLesson(c.Request.Context(), credentialsFrom(c), c.Param("id"), in)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, lesson)
}

func (h *CatalogHandlers) DeleteLesson(c *gin.Context) {
	if err := h.catalog.DeleteLesson(c.Request.Context(), credentialsFrom(c), c.Param("id")); err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SaveProfile handles PUT /profiles/:address; "me" targets the caller
func (h *CatalogHandlers) SaveProfile(c *gin.Context) {
	var in core.ProfileInput
	if !h.bind(c, &in) {
		return
	}

	profile, err := h.catalog.SaveProfile(c.Request.Context(), credentialsFrom(c), profileTarget(c), in)
	if err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *CatalogHandlers) DeleteProfile(c *gin.Context) {
	if err := h.catalog.DeleteProfile(c.Request.Context(), credentialsFrom(c), profileTarget(c)); err != nil {
		abortWithError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandlers) bind(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		abortWithError(c, h.logger, fmt.Errorf("%w: %v", core.ErrInvalidInput, err))
		return false
	}
	return true
}

func profileTarget(c *gin.Context) string {
	if address := c.Param("address"); address != "me" {
		return address
	}
	return ""
}
