package main

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"darlingdetails/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type storeSettingsInput struct {
	StoreName        *string `json:"storeName"`
	StoreDescription *string `json:"storeDescription"`
	StoreAddress     *string `json:"storeAddress"`
	ContactEmail     *string `json:"contactEmail"`
	ContactPhone     *string `json:"contactPhone"`
	FacebookURL      *string `json:"facebookUrl"`
	InstagramURL     *string `json:"instagramUrl"`
}

func (in storeSettingsInput) apply(st *models.StoreSettings) {
	if in.StoreName != nil {
		st.StoreName = strings.TrimSpace(*in.StoreName)
	}
	if in.StoreDescription != nil {
		st.StoreDescription = in.StoreDescription
	}
	if in.StoreAddress != nil {
		st.StoreAddress = in.StoreAddress
	}
	if in.ContactEmail != nil {
		st.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}
	if in.ContactPhone != nil {
		st.ContactPhone = in.ContactPhone
	}
	if in.FacebookURL != nil {
		st.FacebookURL = in.FacebookURL
	}
	if in.InstagramURL != nil {
		st.InstagramURL = in.InstagramURL
	}
}

func validateStoreSettings(st models.StoreSettings) string {
	if st.StoreName == "" {
		return "Store name is required"
	}
	if _, err := mail.ParseAddress(st.ContactEmail); err != nil {
		return "Contact email must be a valid email address"
	}
	return ""
}

// firstSettings loads the singleton row. found is false when none exists.
func (s *server) firstSettings(c *gin.Context) (st models.StoreSettings, found bool, err error) {
	err = s.db.WithContext(c.Request.Context()).Order("id ASC").First(&st).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return st, false, nil
	}
	return st, err == nil, err
}

func (s *server) getStoreSettingsHandler(c *gin.Context) {
	st, found, err := s.firstSettings(c)
	if err != nil {
		s.serverError(c, err, "load store settings failed")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "Store settings not found")
		return
	}
	respond(c, http.StatusOK, "", st)
}

func (s *server) createStoreSettingsHandler(c *gin.Context) {
	_, found, err := s.firstSettings(c)
	if err != nil {
		s.serverError(c, err, "load store settings failed")
		return
	}
	if found {
		fail(c, http.StatusBadRequest, "Store settings already exist. Use update instead.")
		return
	}
	var in storeSettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	var st models.StoreSettings
	in.apply(&st)
	if msg := validateStoreSettings(st); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := s.db.WithContext(c.Request.Context()).Create(&st).Error; err != nil {
		s.serverError(c, err, "create store settings failed")
		return
	}
	respond(c, http.StatusCreated, "Store settings created successfully", st)
}

func (s *server) updateStoreSettingsHandler(c *gin.Context) {
	st, found, err := s.firstSettings(c)
	if err != nil {
		s.serverError(c, err, "load store settings failed")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "Store settings not found")
		return
	}
	var in storeSettingsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	in.apply(&st)
	if msg := validateStoreSettings(st); msg != "" {
		fail(c, http.StatusBadRequest, msg)
		return
	}
	if err := s.db.WithContext(c.Request.Context()).Save(&st).Error; err != nil {
		s.serverError(c, err, "update store settings failed")
		return
	}
	respond(c, http.StatusOK, "Store settings updated successfully", st)
}

func (s *server) deleteStoreSettingsHandler(c *gin.Context) {
	st, found, err := s.firstSettings(c)
	if err != nil {
		s.serverError(c, err, "load store settings failed")
		return
	}
	if !found {
		fail(c, http.StatusNotFound, "Store settings not found")
		return
	}
	if err := s.db.WithContext(c.Request.Context()).Delete(&st).Error; err != nil {
		s.serverError(c, err, "delete store settings failed")
		return
	}
	respond(c, http.StatusOK, "Store settings deleted successfully", nil)
}
