package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dittoaji/user-profile-service/internal/domain/entity"
	repo "github.com/dittoaji/user-profile-service/internal/domain/repository"
	"github.com/dittoaji/user-profile-service/pkg/helpers"
)

const (
	maxNameLength   = 255
	maxAvatarLength = 512
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service orchestrates repository calls and applies business-rule validation.
// Events, ES and GCS are optional side channels; any of them may be nil and
// their failures are logged, never surfaced to the caller.
type Service struct {
	Repo         repo.UserRepository
	Logger       *logrus.Logger
	Events       *helpers.RabbitPublisher
	ES           *elasticsearch.Client
	ESUsersIndex string
	GCS          *storage.Client
	GCSBucket    string
}

func NewService(repo repo.UserRepository, logger *logrus.Logger, events *helpers.RabbitPublisher, es *elasticsearch.Client, esUsersIndex string, gcs *storage.Client, gcsBucket string) *Service {
	return &Service{
		Repo:         repo,
		Logger:       logger,
		Events:       events,
		ES:           es,
		ESUsersIndex: esUsersIndex,
		GCS:          gcs,
		GCSBucket:    gcsBucket,
	}
}

// CreateUserDto is the pre-validation create payload. Pointer fields
// distinguish "absent" from "present but empty".
type CreateUserDto struct {
	Email  string
	Name   *string
	Role   *string
	Status *string
	Avatar *string
}

// UpdateUserDto is the pre-validation partial update payload. ReviewCount is
// a float so a fractional JSON number is caught here instead of as a decode
// failure.
type UpdateUserDto struct {
	Email       *string
	Name        *string
	Role        *string
	Status      *string
	Avatar      *string
	ReviewCount *float64
}

func (s *Service) ListUsers(ctx context.Context, q entity.ListQuery) (*entity.ListUsersResult, error) {
	return s.Repo.FindAll(ctx, q)
}

func (s *Service) GetUserByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &NotFoundError{Message: "Not found"}
		}
		return nil, err
	}
	return u, nil
}

// CreateUser validates and sanitizes the payload, then delegates the insert.
// Email uniqueness is enforced solely by the database constraint; a
// check-then-insert here would race.
func (s *Service) CreateUser(ctx context.Context, dto CreateUserDto) (*entity.User, error) {
	email := strings.TrimSpace(dto.Email)
	if email == "" || !emailRegex.MatchString(email) {
		return nil, &ValidationError{Message: "Valid email is required"}
	}

	role := entity.RoleUser
	if dto.Role != nil {
		if !entity.IsValidRole(*dto.Role) {
			return nil, &ValidationError{Message: "Invalid role"}
		}
		role = *dto.Role
	}
	status := entity.StatusActive
	if dto.Status != nil {
		if !entity.IsValidStatus(*dto.Status) {
			return nil, &ValidationError{Message: "Invalid status"}
		}
		status = *dto.Status
	}

	in := entity.CreateUserInput{
		Email:  email,
		Name:   sanitizeString(dto.Name, maxNameLength),
		Role:   role,
		Status: status,
		Avatar: sanitizeString(dto.Avatar, maxAvatarLength),
	}

	u, err := s.Repo.Create(ctx, in)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "Email already exists"}
		}
		return nil, err
	}

	s.publishEvent(ctx, "user.created", u)
	s.indexUser(ctx, u)
	return u, nil
}

// UpdateUser validates only the fields present in the payload, builds a
// patch and delegates to the repository. Absent ids surface as NotFoundError.
func (s *Service) UpdateUser(ctx context.Context, id string, dto UpdateUserDto) (*entity.User, error) {
	if _, err := s.Repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &NotFoundError{Message: "Not found"}
		}
		return nil, err
	}

	var patch entity.UserPatch

	if dto.Email != nil {
		email := strings.TrimSpace(*dto.Email)
		if !emailRegex.MatchString(email) {
			return nil, &ValidationError{Message: "Invalid email"}
		}
		patch.Email = &email
	}
	if dto.Name != nil {
		patch.Name = sanitizeString(dto.Name, maxNameLength)
	}
	if dto.Role != nil {
		if !entity.IsValidRole(*dto.Role) {
			return nil, &ValidationError{Message: "Invalid role"}
		}
		patch.Role = dto.Role
	}
	if dto.Status != nil {
		if !entity.IsValidStatus(*dto.Status) {
			return nil, &ValidationError{Message: "Invalid status"}
		}
		patch.Status = dto.Status
	}
	if dto.Avatar != nil {
		patch.Avatar = sanitizeString(dto.Avatar, maxAvatarLength)
	}
	if dto.ReviewCount != nil {
		n := *dto.ReviewCount
		if n != math.Trunc(n) || n < 0 {
			return nil, &ValidationError{Message: "reviewCount must be a non-negative integer"}
		}
		count := int(n)
		patch.ReviewCount = &count
	}

	u, err := s.Repo.Update(ctx, id, patch)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, &ConflictError{Message: "Email already exists"}
		}
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &NotFoundError{Message: "Not found"}
		}
		return nil, err
	}

	if !patch.IsEmpty() {
		s.publishEvent(ctx, "user.updated", u)
		s.indexUser(ctx, u)
	}
	return u, nil
}

func (s *Service) DeleteUser(ctx context.Context, id string) (bool, error) {
	deleted, err := s.Repo.Remove(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.publishPayload(ctx, "user.deleted", map[string]any{"id": id})
		s.removeUserDoc(ctx, id)
	}
	return deleted, nil
}

// UploadAvatar stores the uploaded file in GCS and records the resulting URL
// on the user's avatar field.
func (s *Service) UploadAvatar(ctx context.Context, id string, r io.Reader, filename, contentType string) (*entity.User, error) {
	if s.GCS == nil || s.GCSBucket == "" {
		return nil, errors.New("object storage not configured")
	}
	if _, err := s.Repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &NotFoundError{Message: "Not found"}
		}
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", id, uuid.NewString()+ext))
	url, err := helpers.UploadObject(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return nil, err
	}

	u, err := s.Repo.Update(ctx, id, entity.UserPatch{Avatar: &url})
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, &NotFoundError{Message: "Not found"}
		}
		return nil, err
	}

	s.publishEvent(ctx, "user.updated", u)
	s.indexUser(ctx, u)
	return u, nil
}

// SearchUsers performs a multi_match query on email and name against the
// secondary Elasticsearch index. Returns empty results when ES is not wired.
func (s *Service) SearchUsers(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(
		s.ES.Search.WithContext(c),
		s.ES.Search.WithIndex(s.ESUsersIndex),
		s.ES.Search.WithBody(strings.NewReader(string(b))),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}

// sanitizeString trims, truncates to maxLen runes, and maps empty to nil.
func sanitizeString(v *string, maxLen int) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	if runes := []rune(s); len(runes) > maxLen {
		s = string(runes[:maxLen])
	}
	return &s
}

func (s *Service) publishEvent(ctx context.Context, event string, u *entity.User) {
	s.publishPayload(ctx, event, userDoc(u))
}

func (s *Service) publishPayload(ctx context.Context, event string, user map[string]any) {
	if s.Events == nil {
		return
	}
	payload := map[string]any{
		"event":      event,
		"occurredAt": time.Now().UTC().Format(time.RFC3339Nano),
		"user":       user,
	}
	if err := s.Events.PublishJSON(ctx, payload); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("event", event).Warn("publish user event failed")
	}
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	b, _ := json.Marshal(userDoc(u))
	req := esapi.IndexRequest{
		Index:      s.ESUsersIndex,
		DocumentID: u.ID,
		Body:       strings.NewReader(string(b)),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
}

func (s *Service) removeUserDoc(ctx context.Context, id string) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	req := esapi.DeleteRequest{Index: s.ESUsersIndex, DocumentID: id}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", id).Warn("es delete failed")
		}
		return
	}
	_ = res.Body.Close()
}

func userDoc(u *entity.User) map[string]any {
	doc := map[string]any{
		"id":          u.ID,
		"email":       u.Email,
		"name":        u.Name,
		"role":        u.Role,
		"status":      u.Status,
		"avatar":      u.Avatar,
		"reviewCount": u.ReviewCount,
		"createdAt":   u.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if u.UpdatedAt != nil {
		doc["updatedAt"] = u.UpdatedAt.UTC().Format(time.RFC3339Nano)
	} else {
		doc["updatedAt"] = nil
	}
	return doc
}
