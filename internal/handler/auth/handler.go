package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/servir-hc/internal/handler"
	"github.com/jwalitptl/servir-hc/internal/model"
	"github.com/jwalitptl/servir-hc/internal/service/auth"
)

type Handler struct {
	svc   *auth.Service
	limit gin.HandlerFunc
}

// NewHandler builds the auth routes. limit, when not nil, guards the
// credential-checking endpoints.
func NewHandler(svc *auth.Service, limit gin.HandlerFunc) *Handler {
	if limit == nil {
		limit = func(c *gin.Context) { c.Next() }
	}
	return &Handler{svc: svc, limit: limit}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.limit, h.Register)
		auth.POST("/login", h.limit, h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/security-question", h.SecurityQuestion)
		auth.POST("/recover", h.limit, h.RecoverPassword)
		auth.GET("/me", h.Me)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(user))
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}

func (h *Handler) Logout(c *gin.Context) {
	h.svc.Logout(c.Request.Context())
	c.JSON(http.StatusOK, handler.NewSuccessResponse("logged out successfully"))
}

func (h *Handler) SecurityQuestion(c *gin.Context) {
	question, err := h.svc.GetSecurityQuestion(c.Request.Context(), c.Query("username"))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"securityQuestion": question}))
}

func (h *Handler) RecoverPassword(c *gin.Context) {
	var req model.RecoverPasswordRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	err := h.svc.RecoverPassword(c.Request.Context(), req.Username, req.SecurityAnswer, req.NewPassword)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse("password updated"))
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.svc.Me()
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(user))
}
