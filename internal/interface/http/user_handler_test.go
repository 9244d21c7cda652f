package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dittoaji/user-profile-service/internal/application"
	"github.com/dittoaji/user-profile-service/internal/domain/entity"
	handlers "github.com/dittoaji/user-profile-service/internal/interface/http"
)

const knownID = "5f6e0a1a-9d1e-4c9e-8a8e-2f0f4a6c1b2d"

type fakeUserService struct {
	listUsers    func(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error)
	getUserByID  func(ctx context.Context, id string) (*entity.User, error)
	createUser   func(ctx context.Context, dto application.CreateUserDto) (*entity.User, error)
	updateUser   func(ctx context.Context, id string, dto application.UpdateUserDto) (*entity.User, error)
	deleteUser   func(ctx context.Context, id string) (bool, error)
	uploadAvatar func(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error)
	searchUsers  func(ctx context.Context, q string, size int) ([]map[string]any, error)
}

func (f *fakeUserService) ListUsers(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error) {
	return f.listUsers(ctx, q)
}

func (f *fakeUserService) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	return f.getUserByID(ctx, id)
}

func (f *fakeUserService) CreateUser(ctx context.Context, dto application.CreateUserDto) (*entity.User, error) {
	return f.createUser(ctx, dto)
}

func (f *fakeUserService) UpdateUser(ctx context.Context, id string, dto application.UpdateUserDto) (*entity.User, error) {
	return f.updateUser(ctx, id, dto)
}

func (f *fakeUserService) DeleteUser(ctx context.Context, id string) (bool, error) {
	return f.deleteUser(ctx, id)
}

func (f *fakeUserService) UploadAvatar(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error) {
	return f.uploadAvatar(ctx, id, r, filename, contentType)
}

func (f *fakeUserService) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	return f.searchUsers(ctx, q, size)
}

func newRouter(svc handlers.UserService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handlers.NewUserHandler(svc, nil)
	r := gin.New()
	users := r.Group("/users")
	users.GET("", h.List)
	users.GET("/search", h.Search)
	users.GET("/:id", h.GetByID)
	users.POST("", h.Create)
	users.PATCH("/:id", h.Update)
	users.DELETE("/:id", h.Delete)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func sampleUser() *entity.User {
	name := "Ayu"
	return &entity.User{
		ID:          knownID,
		Email:       "ayu@example.com",
		Name:        &name,
		Role:        entity.RoleUser,
		Status:      entity.StatusActive,
		ReviewCount: 3,
		CreatedAt:   time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestListUsers_NormalizesQueryParams(t *testing.T) {
	var got entity.ListQuery
	svc := &fakeUserService{
		listUsers: func(_ context.Context, q entity.ListQuery) (*entity.ListUsersResult, error) {
			got = q
			return &entity.ListUsersResult{
				Data:       []entity.User{*sampleUser()},
				Pagination: entity.Pagination{Page: 1, Limit: 100, Total: 1, TotalPages: 1},
			}, nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users?page=0&limit=999&search=%20ayu%20&role=wizard&sortBy=bogus&sortOrder=ASC", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 100, got.Limit)
	assert.Equal(t, "ayu", got.Search)
	assert.Empty(t, got.Role, "unrecognized role filter is dropped")
	assert.Equal(t, "createdAt", got.SortBy)
	assert.Equal(t, entity.SortDesc, got.SortOrder, "only lowercase asc flips the order")

	body := decodeBody(t, w)
	require.Contains(t, body, "data")
	require.Contains(t, body, "pagination")
	pg := body["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pg["totalPages"])
}

func TestListUsers_EmptyResultKeepsDataArray(t *testing.T) {
	svc := &fakeUserService{
		listUsers: func(_ context.Context, _ entity.ListQuery) (*entity.ListUsersResult, error) {
			return &entity.ListUsersResult{
				Data:       []entity.User{},
				Pagination: entity.Pagination{Page: 1, Limit: 10, Total: 0, TotalPages: 1},
			}, nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"data":[]`)
}

func TestGetUser_RejectsMalformedID(t *testing.T) {
	svc := &fakeUserService{
		getUserByID: func(_ context.Context, _ string) (*entity.User, error) {
			t.Fatal("service must not be reached for a malformed id")
			return nil, nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users/not-a-uuid", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid user ID", decodeBody(t, w)["error"])
}

func TestGetUser_NotFound(t *testing.T) {
	svc := &fakeUserService{
		getUserByID: func(_ context.Context, _ string) (*entity.User, error) {
			return nil, &application.NotFoundError{Message: "Not found"}
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users/"+knownID, "")

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Not found", decodeBody(t, w)["error"])
}

func TestGetUser_CamelCaseResponse(t *testing.T) {
	svc := &fakeUserService{
		getUserByID: func(_ context.Context, id string) (*entity.User, error) {
			return sampleUser(), nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users/"+knownID, "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(3), body["reviewCount"])
	assert.Contains(t, body, "createdAt")
	assert.Nil(t, body["updatedAt"])
	assert.NotContains(t, body, "review_count")
}

func TestCreateUser_Success(t *testing.T) {
	var got application.CreateUserDto
	svc := &fakeUserService{
		createUser: func(_ context.Context, dto application.CreateUserDto) (*entity.User, error) {
			got = dto
			return sampleUser(), nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodPost, "/users", `{"email":"ayu@example.com","name":"Ayu"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ayu@example.com", got.Email)
	require.NotNil(t, got.Name)
	assert.Nil(t, got.Role, "absent fields stay nil")
	assert.Equal(t, knownID, decodeBody(t, w)["id"])
}

func TestCreateUser_ValidationAndConflict(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", &application.ValidationError{Message: "Valid email is required"}, http.StatusBadRequest, "Valid email is required"},
		{"conflict", &application.ConflictError{Message: "Email already exists"}, http.StatusConflict, "Email already exists"},
		{"internal", errors.New("pool exhausted"), http.StatusInternalServerError, "Internal server error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeUserService{
				createUser: func(_ context.Context, _ application.CreateUserDto) (*entity.User, error) {
					return nil, tc.err
				},
			}

			w := doJSON(t, newRouter(svc), http.MethodPost, "/users", `{"email":"x@y.com"}`)

			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.msg, decodeBody(t, w)["error"])
		})
	}
}

func TestCreateUser_MalformedJSON(t *testing.T) {
	svc := &fakeUserService{
		createUser: func(_ context.Context, _ application.CreateUserDto) (*entity.User, error) {
			t.Fatal("service must not be reached for malformed json")
			return nil, nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodPost, "/users", `{"email":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "Invalid payload", body["error"])
	assert.Contains(t, body, "details")
}

func TestUpdateUser_PassesPresentFieldsOnly(t *testing.T) {
	var got application.UpdateUserDto
	svc := &fakeUserService{
		updateUser: func(_ context.Context, id string, dto application.UpdateUserDto) (*entity.User, error) {
			got = dto
			return sampleUser(), nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodPatch, "/users/"+knownID, `{"reviewCount":4}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, got.ReviewCount)
	assert.Equal(t, 4.0, *got.ReviewCount)
	assert.Nil(t, got.Email)
	assert.Nil(t, got.Name)
}

func TestDeleteUser(t *testing.T) {
	t.Run("deleted", func(t *testing.T) {
		svc := &fakeUserService{
			deleteUser: func(_ context.Context, _ string) (bool, error) { return true, nil },
		}

		w := doJSON(t, newRouter(svc), http.MethodDelete, "/users/"+knownID, "")

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("absent", func(t *testing.T) {
		svc := &fakeUserService{
			deleteUser: func(_ context.Context, _ string) (bool, error) { return false, nil },
		}

		w := doJSON(t, newRouter(svc), http.MethodDelete, "/users/"+knownID, "")

		require.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not found", decodeBody(t, w)["error"])
	})
}

func TestSearchUsers_PassesQueryAndSize(t *testing.T) {
	svc := &fakeUserService{
		searchUsers: func(_ context.Context, q string, size int) ([]map[string]any, error) {
			assert.Equal(t, "ayu", q)
			assert.Equal(t, 5, size)
			return []map[string]any{{"id": knownID, "email": "ayu@example.com"}}, nil
		},
	}

	w := doJSON(t, newRouter(svc), http.MethodGet, "/users/search?q=ayu&size=5", "")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	hits := body["data"].([]any)
	require.Len(t, hits, 1)
}
