package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"newsroom/internal/db"
	"newsroom/internal/middleware"
	"newsroom/internal/models"
	"newsroom/internal/services"
	"newsroom/internal/utils"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const captchaSessionKey = "captcha_answer"

type AuthHandler struct {
	db             *gorm.DB
	captchaService *services.CaptchaService
}

func NewAuthHandler(db *gorm.DB, captcha *services.CaptchaService) *AuthHandler {
	return &AuthHandler{db: db, captchaService: captcha}
}

type signinForm struct {
	Name                 string `form:"name" validate:"required,max=255"`
	Email                string `form:"email" validate:"required,email,max=255"`
	Password             string `form:"password" validate:"required,min=8"`
	PasswordConfirmation string `form:"password_confirmation" validate:"eqfield=Password"`
	Captcha              string `form:"captcha"`
}

type loginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

// renderSignin issues a fresh captcha each time the form is shown.
func (h *AuthHandler) renderSignin(c *gin.Context, code int, obj gin.H) {
	question, answer := h.captchaService.GenerateMathProblem()
	session := sessions.Default(c)
	session.Set(captchaSessionKey, answer)
	session.Save()

	if obj == nil {
		obj = gin.H{}
	}
	obj["Title"] = "Sign up"
	obj["Captcha"] = question
	Render(c, code, "auth/signin.html", obj)
}

func (h *AuthHandler) ShowSignin(c *gin.Context) {
	h.renderSignin(c, http.StatusOK, gin.H{"Form": signinForm{}})
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var form signinForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSignin(c, http.StatusBadRequest, gin.H{"Form": signinForm{}, "Error": "Malformed form."})
		return
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))
	// never echo passwords back into the form
	echo := signinForm{Name: form.Name, Email: form.Email}

	session := sessions.Default(c)
	expected, ok := session.Get(captchaSessionKey).(int)
	session.Delete(captchaSessionKey)
	if !ok || !h.captchaService.Verify(form.Captcha, expected) {
		h.renderSignin(c, http.StatusUnprocessableEntity, gin.H{
			"Form":   echo,
			"Errors": FieldErrors{"captcha": "The answer is not correct."},
		})
		return
	}

	if errs := validateForm(&form); errs != nil {
		h.renderSignin(c, http.StatusUnprocessableEntity, gin.H{"Form": echo, "Errors": errs})
		return
	}

	emailTaken := FieldErrors{"email": "The email has already been taken."}

	var existing int64
	if err := h.db.WithContext(c.Request.Context()).Model(&models.User{}).Where("email = ?", form.Email).Count(&existing).Error; err != nil {
		slog.Error("check email failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}
	if existing > 0 {
		h.renderSignin(c, http.StatusUnprocessableEntity, gin.H{"Form": echo, "Errors": emailTaken})
		return
	}

	hash, err := utils.HashPassword(form.Password)
	if err != nil {
		slog.Error("hash password failed", "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}

	user := models.User{Name: form.Name, Email: form.Email, Password: hash}
	if role, err := db.FindRole(h.db.WithContext(c.Request.Context()), models.RoleReader); err == nil {
		user.RoleID = &role.ID
	} else {
		slog.Warn("reader role missing, creating user without role", "error", err)
	}

	if err := h.db.WithContext(c.Request.Context()).Omit("Role").Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			h.renderSignin(c, http.StatusUnprocessableEntity, gin.H{"Form": echo, "Errors": emailTaken})
			return
		}
		slog.Error("create user failed", "email", form.Email, "error", err)
		RenderError(c, http.StatusInternalServerError, "Could not create the account.")
		return
	}
	slog.Info("user registered", "user_id", user.ID)

	session.Set(middleware.SessionUserKey, user.ID)
	redirectWithFlash(c, "/articles", "Welcome, "+user.Name)
}

func (h *AuthHandler) ShowLogin(c *gin.Context) {
	Render(c, http.StatusOK, "auth/login.html", gin.H{"Title": "Log in"})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	_ = c.ShouldBind(&form)
	form.Email = strings.ToLower(strings.TrimSpace(form.Email))

	fail := func(code int, errs FieldErrors) {
		Render(c, code, "auth/login.html", gin.H{
			"Title":  "Log in",
			"Email":  form.Email,
			"Errors": errs,
		})
	}

	if errs := validateForm(&form); errs != nil {
		fail(http.StatusUnprocessableEntity, errs)
		return
	}

	var user models.User
	if err := h.db.WithContext(c.Request.Context()).Where("email = ?", form.Email).First(&user).Error; err != nil {
		fail(http.StatusUnauthorized, FieldErrors{"email": "These credentials do not match our records."})
		return
	}
	if !utils.CheckPasswordHash(form.Password, user.Password) {
		fail(http.StatusUnauthorized, FieldErrors{"email": "These credentials do not match our records."})
		return
	}

	session := sessions.Default(c)
	session.Set(middleware.SessionUserKey, user.ID)
	redirectWithFlash(c, "/articles", "Logged in")
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Redirect(http.StatusFound, "/")
}
