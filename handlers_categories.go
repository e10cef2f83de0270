package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"darlingdetails/models"
	"darlingdetails/pkg/catalog"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type categoryInput struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
}

// findCategory resolves a numeric id or a slug.
func (s *server) findCategory(c *gin.Context, identifier string) (*models.Category, error) {
	q := s.db.WithContext(c.Request.Context())
	var cat models.Category
	var err error
	if id, perr := strconv.ParseUint(identifier, 10, 0); perr == nil {
		err = q.First(&cat, uint(id)).Error
	} else {
		err = q.Where("slug = ?", identifier).First(&cat).Error
	}
	if err != nil {
		return nil, err
	}
	return &cat, nil
}

func (s *server) categoryLookupFailed(c *gin.Context, err error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Category not found")
		return
	}
	s.serverError(c, err, "category lookup failed")
}

func (s *server) listCategoriesHandler(c *gin.Context) {
	cats := make([]models.Category, 0)
	if err := s.db.WithContext(c.Request.Context()).Order("name ASC").Find(&cats).Error; err != nil {
		s.serverError(c, err, "list categories failed")
		return
	}
	respond(c, http.StatusOK, "", cats)
}

func (s *server) getCategoryHandler(c *gin.Context) {
	cat, err := s.findCategory(c, c.Param("identifier"))
	if err != nil {
		s.categoryLookupFailed(c, err)
		return
	}
	respond(c, http.StatusOK, "", cat)
}

func (s *server) categoryProductsHandler(c *gin.Context) {
	cat, err := s.findCategory(c, c.Param("identifier"))
	if err != nil {
		s.categoryLookupFailed(c, err)
		return
	}
	items, err := s.products.List(c.Request.Context(), catalog.Filter{CategoryID: &cat.ID})
	if err != nil {
		s.serverError(c, err, "list category products failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": items, "categoryId": cat.ID})
}

func (s *server) createCategoryHandler(c *gin.Context) {
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	cat := models.Category{Description: in.Description, Image: in.Image}
	if in.Name != nil {
		cat.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil {
		cat.Slug = slugify(*in.Slug)
	}
	if cat.Slug == "" {
		cat.Slug = slugify(cat.Name)
	}
	if msg := validateCategory(cat); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	err := s.db.WithContext(c.Request.Context()).Create(&cat).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		fail(c, http.StatusBadRequest, "A category with this slug already exists")
		return
	}
	if err != nil {
		s.serverError(c, err, "create category failed")
		return
	}
	respond(c, http.StatusCreated, "Category created successfully", cat)
}

func (s *server) updateCategoryHandler(c *gin.Context) {
	cat, err := s.findCategory(c, c.Param("identifier"))
	if err != nil {
		s.categoryLookupFailed(c, err)
		return
	}
	var in categoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		cat.Name = strings.TrimSpace(*in.Name)
	}
	if in.Slug != nil && slugify(*in.Slug) != "" {
		cat.Slug = slugify(*in.Slug)
	}
	if in.Description != nil {
		cat.Description = in.Description
	}
	if in.Image != nil && *in.Image != "" {
		cat.Image = in.Image
	}
	if msg := validateCategory(*cat); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	err = s.db.WithContext(c.Request.Context()).Save(cat).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		fail(c, http.StatusBadRequest, "A category with this slug already exists")
		return
	}
	if err != nil {
		s.serverError(c, err, "update category failed")
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", cat)
}

func (s *server) deleteCategoryHandler(c *gin.Context) {
	cat, err := s.findCategory(c, c.Param("identifier"))
	if err != nil {
		s.categoryLookupFailed(c, err)
		return
	}
	db := s.db.WithContext(c.Request.Context())
	var n int64
	if err := db.Model(&models.Product{}).Where("category_id = ?", cat.ID).Count(&n).Error; err != nil {
		s.serverError(c, err, "count category products failed")
		return
	}
	if n > 0 {
		fail(c, http.StatusBadRequest, fmt.Sprintf("Cannot delete this category because it has %d products associated with it", n))
		return
	}
	if err := db.Delete(cat).Error; err != nil {
		s.serverError(c, err, "delete category failed")
		return
	}
	respond(c, http.StatusOK, "Category deleted successfully", nil)
}

func validateCategory(cat models.Category) string {
	switch {
	case len([]rune(cat.Name)) < 2 || len([]rune(cat.Name)) > 255:
		return "Category name must be between 2 and 255 characters"
	case cat.Slug == "":
		return "Category slug is required"
	}
	return ""
}
