package directory

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"signaling-server/internal/database"
	"signaling-server/internal/model"
)

const lookupTimeout = 2 * time.Second

type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

func New(db *database.Database, table string, log *slog.Logger) *Service {
	return NewWithRepository(NewDynamoRepository(db, table), log, nil)
}

// NewWithRepository accepts a nil repo, in which case every lookup falls
// back to the identity-derived name.
func NewWithRepository(repo Repository, log *slog.Logger, now func() time.Time) *Service {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, log: log, now: now}
}

// DisplayName never fails: directory errors are logged and the fallback
// name is returned instead.
func (s *Service) DisplayName(ctx context.Context, userID, email string) string {
	if s.repo != nil && userID != "" {
		ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
		defer cancel()

		user, err := s.repo.GetUser(ctx, userID)
		switch {
		case err == nil:
			if name := strings.TrimSpace(user.Name); name != "" {
				return name
			}
			if username := strings.TrimSpace(user.Username); username != "" {
				return username
			}
		case errors.Is(err, ErrNotFound):
			s.log.Debug("directory user not found", "user_id", userID)
		default:
			s.log.Warn("directory lookup failed", "user_id", userID, "error", err)
		}
	}
	return FallbackDisplayName(userID, email)
}

func (s *Service) SaveUser(ctx context.Context, userID, email, name string) error {
	if s.repo == nil {
		return errors.New("directory: no repository configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return errors.New("directory: user id required")
	}
	return s.repo.PutUser(ctx, model.UserItem{
		UserID:    userID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		Name:      strings.TrimSpace(name),
		UpdatedAt: s.now().UTC().Format(time.RFC3339),
	})
}

// FallbackDisplayName derives a name from the email local part, or the raw
// identity when there is no usable email.
func FallbackDisplayName(userID, email string) string {
	email = strings.TrimSpace(email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return userID
}
