package main

import (
	"errors"
	"net/http"
	"strings"

	"darlingdetails/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type testimonialInput struct {
	Name    *string `json:"name"`
	Content *string `json:"content"`
	Rating  *int    `json:"rating"`
}

func validRating(r int) bool { return r >= 1 && r <= 5 }

func (s *server) listTestimonialsHandler(c *gin.Context) {
	items := make([]models.Testimonial, 0)
	if err := s.db.WithContext(c.Request.Context()).Order("date DESC").Find(&items).Error; err != nil {
		s.serverError(c, err, "list testimonials failed")
		return
	}
	respond(c, http.StatusOK, "", items)
}

func (s *server) createTestimonialHandler(c *gin.Context) {
	var in testimonialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" ||
		in.Content == nil || strings.TrimSpace(*in.Content) == "" || in.Rating == nil {
		fail(c, http.StatusBadRequest, "Name, content and rating are required")
		return
	}
	if !validRating(*in.Rating) {
		fail(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	t := models.Testimonial{
		ID:      uuid.New(),
		Name:    strings.TrimSpace(*in.Name),
		Content: strings.TrimSpace(*in.Content),
		Rating:  *in.Rating,
		Date:    s.now().UTC(),
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&t).Error; err != nil {
		s.serverError(c, err, "create testimonial failed")
		return
	}
	respond(c, http.StatusCreated, "Testimonial created successfully", t)
}

func (s *server) findTestimonial(c *gin.Context) (*models.Testimonial, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "Testimonial not found")
		return nil, false
	}
	var t models.Testimonial
	err = s.db.WithContext(c.Request.Context()).First(&t, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "Testimonial not found")
		return nil, false
	}
	if err != nil {
		s.serverError(c, err, "testimonial lookup failed")
		return nil, false
	}
	return &t, true
}

func (s *server) updateTestimonialHandler(c *gin.Context) {
	t, ok := s.findTestimonial(c)
	if !ok {
		return
	}
	var in testimonialInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Rating != nil && !validRating(*in.Rating) {
		fail(c, http.StatusBadRequest, "Rating must be between 1 and 5")
		return
	}
	if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if in.Content != nil && strings.TrimSpace(*in.Content) != "" {
		t.Content = strings.TrimSpace(*in.Content)
	}
	if in.Rating != nil {
		t.Rating = *in.Rating
	}
	if err := s.db.WithContext(c.Request.Context()).Save(t).Error; err != nil {
		s.serverError(c, err, "update testimonial failed")
		return
	}
	respond(c, http.StatusOK, "Testimonial updated successfully", t)
}

func (s *server) deleteTestimonialHandler(c *gin.Context) {
	t, ok := s.findTestimonial(c)
	if !ok {
		return
	}
	if err := s.db.WithContext(c.Request.Context()).Delete(t).Error; err != nil {
		s.serverError(c, err, "delete testimonial failed")
		return
	}
	respond(c, http.StatusOK, "Testimonial deleted successfully", nil)
}
