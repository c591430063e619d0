package handlers

import (
	"feedbackapp/internal/middleware"
	"feedbackapp/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// establishSession records the logged-in user in the cookie session, which the auth
// middleware accepts when no bearer token is sent.
func establishSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(middleware.UserIDKey, user.ID)
	session.Set(middleware.UserRoleKey, string(user.Role))
	return session.Save()
}

// clearSession removes any principal from the cookie session.
func clearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
