package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"darlingdetails/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var errInvalidCredentials = errors.New("invalid credentials")

// tokenUser is the identity embedded in access tokens and echoed by verify-token.
type tokenUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type userClaims struct {
	User tokenUser `json:"user"`
	jwt.RegisteredClaims
}

// authenticate looks the user up by email and checks the bcrypt hash.
func authenticate(ctx context.Context, db *gorm.DB, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var user models.User
	err := db.WithContext(ctx).Where("lower(email) = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, errInvalidCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword(user.HashedPassword, []byte(password)); err != nil {
		return models.User{}, errInvalidCredentials
	}
	return user, nil
}

func issueToken(secret []byte, ttl time.Duration, user models.User, now time.Time) (string, error) {
	claims := userClaims{
		User: tokenUser{ID: user.ID, Email: user.Email, Name: user.Name},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprint(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func parseToken(secret []byte, tokenString string) (*userClaims, error) {
	var claims userClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrInvalidKeyType
		}
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return &claims, nil
}

const userContextKey = "user"

func jwtAuthMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "No token, authorization denied"})
			return
		}
		claims, err := parseToken(secret, strings.TrimSpace(tokenString))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Token is not valid"})
			return
		}
		c.Set(userContextKey, claims.User)
		c.Next()
	}
}

// currentUser returns the identity set by jwtAuthMiddleware.
func currentUser(c *gin.Context) (tokenUser, bool) {
	v, ok := c.Get(userContextKey)
	if !ok {
		return tokenUser{}, false
	}
	u, ok := v.(tokenUser)
	return u, ok
}
