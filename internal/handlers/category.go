package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/BorisNikolic/timeline-app-sub001/internal/middleware"
	"github.com/BorisNikolic/timeline-app-sub001/internal/services"
	"github.com/BorisNikolic/timeline-app-sub001/pkg/response"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// List returns a timeline's categories
// GET /api/timelines/:id/categories
func (h *CategoryHandler) List(c *gin.Context) {
	categories, err := h.categoryService.List(c.Param("id"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, categories)
}

// Create adds a category to a timeline
// POST /api/timelines/:id/categories
func (h *CategoryHandler) Create(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Create(c.Param("id"), middleware.GetUserID(c), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Created(c, category)
}

// Update renames or recolors a category
// PUT /api/timelines/:id/categories/:categoryId
func (h *CategoryHandler) Update(c *gin.Context) {
	var req services.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.categoryService.Update(c.Param("id"), c.Param("categoryId"), &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, category)
}

// Delete removes a category and detaches its events
// DELETE /api/timelines/:id/categories/:categoryId
func (h *CategoryHandler) Delete(c *gin.Context) {
	if err := h.categoryService.Delete(c.Param("id"), c.Param("categoryId")); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": true})
}
