package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/profilekit/profilekit/internal/models"
	"github.com/profilekit/profilekit/internal/projects"
	"github.com/profilekit/profilekit/pkg/middleware"
)

// ProjectsHandler exposes the caller's project library.
type ProjectsHandler struct {
	svc *projects.Service
}

func NewProjectsHandler(svc *projects.Service) *ProjectsHandler {
	return &ProjectsHandler{svc: svc}
}

// Register routes under /projects on an authenticated group.
func (h *ProjectsHandler) Register(rg *gin.RouterGroup) {
	p := rg.Group("/projects")
	p.GET("", h.List)
	p.POST("", h.Create)
	p.GET("/techstacks", h.TechStacks)
	p.GET("/:id", h.Get)
	p.PUT("/:id", h.Update)
	p.DELETE("/:id", h.Delete)
}

func (h *ProjectsHandler) List(c *gin.Context) {
	list, err := h.svc.List(c.Request.Context(), middleware.UserID(c), c.Query("techStack"))
	if err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	if list == nil {
		list = []models.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": list})
}

func (h *ProjectsHandler) TechStacks(c *gin.Context) {
	stacks, err := h.svc.TechStacks(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	if stacks == nil {
		stacks = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"techStacks": stacks})
}

func (h *ProjectsHandler) Get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": p})
}

func (h *ProjectsHandler) Create(c *gin.Context) {
	var in models.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Project created successfully", "project": p})
}

func (h *ProjectsHandler) Update(c *gin.Context) {
	var in models.ProjectInput
	if !bindJSON(c, &in) {
		return
	}
	p, err := h.svc.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project updated successfully", "project": p})
}

// Delete removes the project and unlinks it from the caller's profiles.
func (h *ProjectsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), middleware.UserID(c), c.Param("id")); err != nil {
		respondErrorFor(c, err, "Project")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Project deleted successfully"})
}
