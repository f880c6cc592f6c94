package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"user-entity-service/internal/usecase/user"
	pkgerrors "user-entity-service/pkg/errors"
	"user-entity-service/pkg/logger"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// CreateUserRequest is the body of POST /v1/users. Omit name to leave it absent.
type CreateUserRequest struct {
	Email    string  `json:"email" binding:"required,email,max=64"`
	Name     *string `json:"name" binding:"omitempty,max=64"`
	Password string  `json:"password" binding:"required,max=64"`
	Token    int64   `json:"token"`
}

// UpdateUserRequest is the body of PUT /v1/users/:email. Omitted or null
// fields keep their stored value. Clear names fields to reset to absent,
// e.g. {"clear":["name"]}.
type UpdateUserRequest struct {
	Name     *string  `json:"name" binding:"omitempty,max=64"`
	Password *string  `json:"password" binding:"omitempty,max=64"`
	Token    *int64   `json:"token"`
	Clear    []string `json:"clear" binding:"omitempty,dive,oneof=name password"`
}

// UserResponse is a user without its password. An absent name is null.
type UserResponse struct {
	Email string  `json:"email"`
	Name  *string `json:"name"`
	Token int64   `json:"token"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid create user request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx := logger.ContextWithUserEmail(c.Request.Context(), req.Email)
	resp, err := h.uc.CreateUser(ctx, user.CreateUserRequest{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Token:    req.Token,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"email": resp.Email,
	})
}

// GetUser handles GET /v1/users/:email
func (h *UserHandler) GetUser(c *gin.Context) {
	email := c.Param("email")

	ctx := logger.ContextWithUserEmail(c.Request.Context(), email)
	resp, err := h.uc.GetUser(ctx, user.GetUserRequest{Email: email})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// UpdateUser handles PUT /v1/users/:email
func (h *UserHandler) UpdateUser(c *gin.Context) {
	email := c.Param("email")

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update user request", zap.String("email", email), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx := logger.ContextWithUserEmail(c.Request.Context(), email)
	resp, err := h.uc.UpdateUser(ctx, user.UpdateUserRequest{
		Email:    email,
		Name:     req.Name,
		Password: req.Password,
		Token:    req.Token,
		Clear:    req.Clear,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toResponse(resp.User))
}

// DeleteUser handles DELETE /v1/users/:email
func (h *UserHandler) DeleteUser(c *gin.Context) {
	email := c.Param("email")

	ctx := logger.ContextWithUserEmail(c.Request.Context(), email)
	resp, err := h.uc.DeleteUser(ctx, user.DeleteUserRequest{Email: email})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"email": resp.Email,
	})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := strconv.ParseInt(c.DefaultQuery("page", "1"), 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "10"), 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: c.Query("query"),
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toResponse(u)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

func toResponse(u user.User) UserResponse {
	return UserResponse{
		Email: u.Email,
		Name:  u.Name,
		Token: u.Token,
	}
}

// handleError maps typed errors onto HTTP responses. Internal errors are
// logged and hidden from the client.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	status, code := pkgerrors.HTTPStatusOf(err)

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), h.log).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, ErrorResponse{
			Error:   code,
			Message: "An internal error occurred",
		})
		return
	}

	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
