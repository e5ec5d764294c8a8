package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

type categoryPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// CreateCategory adds a category with a generated slug.
func (a *API) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if !bindJSON(c, &payload, "invalid category payload") {
		return
	}

	category, err := a.categories.Create(service.CategoryInput(payload))
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

// UpdateCategory renames or restyles a category.
func (a *API) UpdateCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var payload categoryPayload
	if !bindJSON(c, &payload, "invalid category payload") {
		return
	}

	category, err := a.categories.Update(id, service.CategoryInput(payload))
	if err != nil {
		respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

// DeleteCategory removes a category; member posts just lose the label.
func (a *API) DeleteCategory(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.categories.Delete(id); err != nil {
		respondCategoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func respondCategoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "category not found")
	case errors.Is(err, service.ErrCategoryNameRequired),
		errors.Is(err, service.ErrCategoryNameTaken):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "category operation failed")
	}
}
