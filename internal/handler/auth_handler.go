package handler

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/letopis/letopis/internal/service"
)

// Login authenticates an admin author and opens a session.
func (a *API) Login(c *gin.Context) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !bindJSON(c, &credentials, "invalid login payload") {
		return
	}

	author, err := a.authors.Authenticate(credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredential) {
			respondError(c, http.StatusUnauthorized, "invalid username or password")
			return
		}
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", author.ID)
	session.Set("username", author.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"author": gin.H{
		"id":       author.ID,
		"name":     author.Name,
		"username": author.Username,
	}})
}

// Logout clears the admin session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AuthRequired guards the admin routes.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// currentUserID returns the authenticated author id, or 0 when anonymous.
func currentUserID(c *gin.Context) uint {
	session := sessions.Default(c)
	if id, ok := session.Get("user_id").(uint); ok {
		return id
	}
	return 0
}
