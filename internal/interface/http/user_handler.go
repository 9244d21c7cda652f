package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	userapp "github.com/dittoaji/user-profile-service/internal/application"
	"github.com/dittoaji/user-profile-service/internal/domain/entity"
	"github.com/dittoaji/user-profile-service/pkg/response"
	"github.com/dittoaji/user-profile-service/pkg/validation"
)

// UserService is the application surface the handlers drive.
type UserService interface {
	ListUsers(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error)
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	CreateUser(ctx context.Context, dto userapp.CreateUserDto) (*entity.User, error)
	UpdateUser(ctx context.Context, id string, dto userapp.UpdateUserDto) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) (bool, error)
	UploadAvatar(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error)
	SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error)
}

type UserHandler struct {
	Svc    UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

type createUserRequest struct {
	Email  string  `json:"email"`
	Name   *string `json:"name"`
	Role   *string `json:"role"`
	Status *string `json:"status"`
	Avatar *string `json:"avatar"`
}

type updateUserRequest struct {
	Email       *string  `json:"email"`
	Name        *string  `json:"name"`
	Role        *string  `json:"role"`
	Status      *string  `json:"status"`
	Avatar      *string  `json:"avatar"`
	ReviewCount *float64 `json:"reviewCount"`
}

// userResponse is the external user shape. Field naming is normalized to
// camelCase here and nowhere else.
type userResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        *string    `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Avatar      *string    `json:"avatar"`
	ReviewCount int        `json:"reviewCount"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Status:      u.Status,
		Avatar:      u.Avatar,
		ReviewCount: u.ReviewCount,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

func (h *UserHandler) List(c *gin.Context) {
	q := entity.NormalizeListQuery(entity.RawListQuery{
		Search:    c.Query("search"),
		Status:    c.Query("status"),
		Role:      c.Query("role"),
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	})

	result, err := h.Svc.ListUsers(c.Request.Context(), q)
	if err != nil {
		h.writeError(c, err)
		return
	}

	data := make([]userResponse, 0, len(result.Data))
	for i := range result.Data {
		data = append(data, toUserResponse(&result.Data[i]))
	}
	response.List(c, data, result.Pagination)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	u, err := h.Svc.GetUserByID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": validation.ToDetails(err)})
		return
	}

	u, err := h.Svc.CreateUser(c.Request.Context(), userapp.CreateUserDto{
		Email:  req.Email,
		Name:   req.Name,
		Role:   req.Role,
		Status: req.Status,
		Avatar: req.Avatar,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, toUserResponse(u))
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload", "details": validation.ToDetails(err)})
		return
	}

	u, err := h.Svc.UpdateUser(c.Request.Context(), id, userapp.UpdateUserDto{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		Status:      req.Status,
		Avatar:      req.Avatar,
		ReviewCount: req.ReviewCount,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	deleted, err := h.Svc.DeleteUser(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !deleted {
		response.Error(c, http.StatusNotFound, "Not found")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	id, ok := h.userID(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Missing file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Unreadable file")
		return
	}
	defer func() { _ = f.Close() }()

	u, err := h.Svc.UploadAvatar(c.Request.Context(), id, f, fh.Filename, fh.Header.Get("Content-Type"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toUserResponse(u))
}

func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	hits, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Data(c, hits)
}

// userID validates the :id path param; a malformed UUID can never be an
// existing record, so it is rejected before touching the service.
func (h *UserHandler) userID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if !validation.IsUUID(id) {
		response.Error(c, http.StatusBadRequest, "Invalid user ID")
		return "", false
	}
	return id, true
}

// writeError maps the service error taxonomy onto status codes. Unclassified
// failures become a generic 500 so internals never leak to the caller.
func (h *UserHandler) writeError(c *gin.Context, err error) {
	var ve *userapp.ValidationError
	if errors.As(err, &ve) {
		response.Error(c, http.StatusBadRequest, ve.Message)
		return
	}
	var nf *userapp.NotFoundError
	if errors.As(err, &nf) {
		response.Error(c, http.StatusNotFound, nf.Message)
		return
	}
	var ce *userapp.ConflictError
	if errors.As(err, &ce) {
		response.Error(c, http.StatusConflict, ce.Message)
		return
	}
	if h.Logger != nil {
		h.Logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	response.Error(c, http.StatusInternalServerError, "Internal server error")
}
