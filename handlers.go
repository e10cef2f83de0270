package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"darlingdetails/models"
	"darlingdetails/pkg/catalog"
	"darlingdetails/pkg/media"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type productService interface {
	List(ctx context.Context, f catalog.Filter) ([]models.Product, error)
	Get(ctx context.Context, id uint) (*models.Product, error)
	Create(ctx context.Context, d catalog.Draft, upload *media.UploadCandidate) (*models.Product, error)
	Update(ctx context.Context, id uint, ch catalog.Changes, upload *media.UploadCandidate) (*models.Product, error)
	Delete(ctx context.Context, id uint) error
}

type derivativeReader interface {
	Open(ctx context.Context, area, name string) (io.ReadCloser, error)
}

// server carries the dependencies shared by all handlers.
type server struct {
	db        *gorm.DB
	products  productService
	files     derivativeReader
	jwtSecret []byte
	jwtTTL    time.Duration
	spoolDir  string
	maxUpload int64
	log       zerolog.Logger
	now       func() time.Time
}

func setupRoutes(r *gin.Engine, s *server) {
	r.GET("/uploads/:area/:name", s.serveDerivative)
	r.HEAD("/uploads/:area/:name", s.serveDerivative)

	api := r.Group("/api")
	api.GET("/health", s.healthHandler)

	auth := jwtAuthMiddleware(s.jwtSecret)

	users := api.Group("/users")
	users.POST("/login", s.loginHandler)
	users.GET("/profile", auth, s.profileHandler)
	users.GET("/verify-token", auth, s.verifyTokenHandler)

	products := api.Group("/products")
	products.GET("", s.listProductsHandler)
	products.GET("/:id", s.getProductHandler)
	products.POST("", auth, s.createProductHandler)
	products.PUT("/:id", auth, s.updateProductHandler)
	products.DELETE("/:id", auth, s.deleteProductHandler)

	categories := api.Group("/categories")
	categories.GET("", s.listCategoriesHandler)
	categories.GET("/:identifier", s.getCategoryHandler)
	categories.GET("/:identifier/products", s.categoryProductsHandler)
	categories.POST("", auth, s.createCategoryHandler)
	categories.PUT("/:identifier", auth, s.updateCategoryHandler)
	categories.DELETE("/:identifier", auth, s.deleteCategoryHandler)

	testimonials := api.Group("/testimonials")
	testimonials.GET("", s.listTestimonialsHandler)
	testimonials.POST("", s.createTestimonialHandler)
	testimonials.PUT("/:id", auth, s.updateTestimonialHandler)
	testimonials.DELETE("/:id", auth, s.deleteTestimonialHandler)

	settings := api.Group("/store-settings")
	settings.GET("", s.getStoreSettingsHandler)
	settings.POST("", auth, s.createStoreSettingsHandler)
	settings.PUT("", auth, s.updateStoreSettingsHandler)
	settings.DELETE("", auth, s.deleteStoreSettingsHandler)
}

// respond writes the success envelope. Empty message and nil data are omitted.
func respond(c *gin.Context, status int, message string, data any) {
	body := gin.H{"success": true}
	if message != "" {
		body["message"] = message
	}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// serverError logs err with the request context and answers 500.
func (s *server) serverError(c *gin.Context, err error, msg string) {
	s.log.Error().Err(err).Str("method", c.Request.Method).Str("path", c.FullPath()).Msg(msg)
	fail(c, http.StatusInternalServerError, "Server error")
}

func (s *server) healthHandler(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok", "time": s.now().UTC()}
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		}
	}
	c.JSON(status, body)
}

func (s *server) loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}
	user, err := authenticate(c.Request.Context(), s.db, req.Email, req.Password)
	if errors.Is(err, errInvalidCredentials) {
		s.log.Info().Str("email", req.Email).Msg("failed login attempt")
		fail(c, http.StatusBadRequest, "Invalid credentials")
		return
	}
	if err != nil {
		s.serverError(c, err, "login failed")
		return
	}
	token, err := issueToken(s.jwtSecret, s.jwtTTL, user, s.now())
	if err != nil {
		s.serverError(c, err, "failed to sign token")
		return
	}
	s.log.Info().Uint("user_id", user.ID).Msg("login successful")
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    tokenUser{ID: user.ID, Email: user.Email, Name: user.Name},
	})
}

func (s *server) profileHandler(c *gin.Context) {
	u, ok := currentUser(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "Token is not valid")
		return
	}
	var user models.User
	err := s.db.WithContext(c.Request.Context()).First(&user, u.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		s.serverError(c, err, "profile lookup failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Profile data retrieved",
		"user": gin.H{
			"id":        user.ID,
			"name":      user.Name,
			"email":     user.Email,
			"createdAt": user.CreatedAt,
		},
	})
}

func (s *server) verifyTokenHandler(c *gin.Context) {
	u, _ := currentUser(c)
	c.JSON(http.StatusOK, gin.H{"valid": true, "user": u})
}
