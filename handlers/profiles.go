package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/profiles"
	"github.com/profilekit/profilekit/internal/render"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// ProfilesHandler serves owner-scoped profile CRUD and exports.
type ProfilesHandler struct {
	svc      *profiles.Service
	exporter render.Exporter
}

// NewProfilesHandler uses exporter for /:id/pdf; nil exports printable HTML.
func NewProfilesHandler(svc *profiles.Service, exporter render.Exporter) *ProfilesHandler {
	if exporter == nil {
		exporter = render.HTMLExporter{}
	}
	return &ProfilesHandler{svc: svc, exporter: exporter}
}

// Register routes under /profiles on an authenticated group.
func (h *ProfilesHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/profiles")
	p.GET("", h.List)
	p.POST("", h.Create)
	p.GET("/:id", h.Get)
	p.PUT("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
	p.GET("/:id/pdf", h.Export)
}

func (h *ProfilesHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	if list == nil {
		list = []models.ExpandedProfile{}
	}
	c.JSON(http.StatusOK, gin.H{"profiles": list})
}

func (h *ProfilesHandler) Create(c *gin.Context) {
	var sub models.ProfileSubmission
	if !bindJSON(c, &sub) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), sub)
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Profile created successfully", "profile": p})
}

func (h *ProfilesHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *ProfilesHandler) Update(c *gin.Context) {
	var sub models.ProfileSubmission
	if !bindJSON(c, &sub) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), sub)
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully", "profile": p})
}

func (h *ProfilesHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile deleted successfully"})
}

// Export downloads the portfolio as PDF, or as printable HTML without a browser.
func (h *ProfilesHandler) Export(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	doc, err := h.exporter.Export(c.Request.Context(), p)
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}

// PortfolioHandler serves published portfolios without authentication.
type PortfolioHandler struct {
	svc *profiles.Service
}

func NewPortfolioHandler(svc *profiles.Service) *PortfolioHandler {
	return &PortfolioHandler{svc: svc}
}

func (h *PortfolioHandler) Register(r gin.IRoutes) {
	r.GET("/api/public/portfolio/:id", h.JSON)
	r.GET("/portfolio/:id", h.Page)
}

func (h *PortfolioHandler) JSON(c *gin.Context) {
	p, err := h.svc.Public(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p})
}

func (h *PortfolioHandler) Page(c *gin.Context) {
	p, err := h.svc.Public(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	var buf bytes.Buffer
	if err := render.WriteHTML(&buf, p); err != nil {
		respondErrorFor(c, err, "Profile")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
