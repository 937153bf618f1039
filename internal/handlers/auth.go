package handlers

import (
	"errors"
	"net/http"

	"Tracker/internal/auth"
	"Tracker/internal/config"
	"Tracker/internal/dto"
	"Tracker/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles register, login and logout.
type AuthHandler struct {
	sessions auth.Sessions
	userSvc  *service.UserService
	cfg      config.SessionConfig
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(sessions auth.Sessions, userSvc *service.UserService, cfg config.SessionConfig) *AuthHandler {
	return &AuthHandler{sessions: sessions, userSvc: userSvc, cfg: cfg}
}

// ShowRegister godoc
// @Summary      Registration page data
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /register [get]
func (h *AuthHandler) ShowRegister(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

// Register godoc
// @Summary      Register
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.CredentialsForm
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Username and password are required.")
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}
	_, err := h.userSvc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) {
			setFlash(c, "Username already exists.")
			c.Redirect(http.StatusSeeOther, "/register")
			return
		}
		if errors.Is(err, service.ErrInvalidCredentials) {
			setFlash(c, "Username and password are required.")
			c.Redirect(http.StatusSeeOther, "/register")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	setFlash(c, "Registration successful! Please log in.")
	c.Redirect(http.StatusSeeOther, "/login")
}

// ShowLogin godoc
// @Summary      Login page data
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /login [get]
func (h *AuthHandler) ShowLogin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"flash": popFlash(c)})
}

// Login godoc
// @Summary      Login
// @Tags         auth
// @Accept       x-www-form-urlencoded
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      303
// @Failure      500  {object}  map[string]string
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.CredentialsForm
	if err := c.ShouldBind(&req); err != nil {
		setFlash(c, "Invalid login credentials.")
		c.Redirect(http.StatusSeeOther, "/login")
		return
	}
	user, err := h.userSvc.ValidateCredentials(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			setFlash(c, "Invalid login credentials.")
			c.Redirect(http.StatusSeeOther, "/login")
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	sessionID, err := h.sessions.Create(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	maxAge := int(h.cfg.TTL.Duration().Seconds())
	c.SetCookie(auth.CookieName, sessionID, maxAge, "/", "", h.cfg.CookieSecure, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout godoc
// @Summary      Logout
// @Tags         auth
// @Success      302
// @Router       /logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	sessionID, err := c.Cookie(auth.CookieName)
	if err == nil && sessionID != "" {
		_ = h.sessions.Delete(c.Request.Context(), sessionID)
	}
	c.SetCookie(auth.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
	c.Redirect(http.StatusFound, "/login")
}
