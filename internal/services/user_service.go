package services

import (
	"context"
	"errors"
	"log"
	"net/mail"
	"strings"
	"time"

	"task-assign.com/task-assign/internal/auth"
	"task-assign.com/task-assign/internal/cache"
	apperrors "task-assign.com/task-assign/internal/errors"
	model "task-assign.com/task-assign/internal/models"
	repository "task-assign.com/task-assign/internal/repositories"
)

// UserService is the user directory: signup, credential checks and name
// lookups for the task projections.
type UserService struct {
	repo   *repository.UserRepository
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
	names  cache.NameCache
}

type LoginResult struct {
	User  *model.User
	Token string
}

// NewUserService accepts a nil token manager (no tokens issued) and a nil
// name cache (every lookup goes to the database).
func NewUserService(
	repo *repository.UserRepository,
	hasher *auth.PasswordHasher,
	tokens *auth.TokenManager,
	names cache.NameCache,
) *UserService {
	return &UserService{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		names:  names,
	}
}

func (s *UserService) Signup(ctx context.Context, displayName, email, password string) (*model.User, error) {
	displayName = strings.TrimSpace(displayName)
	email = normalizeEmail(email)
	password = strings.TrimSpace(password)

	if displayName == "" {
		return nil, apperrors.Validation("display_name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.Validation("invalid email address")
	}
	if password == "" {
		return nil, apperrors.Validation("password is required")
	}
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperrors.Validation("password must be at most %d bytes", auth.MaxPasswordBytes)
	}

	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if exists {
		return nil, apperrors.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	user := &model.User{
		Name:         displayName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperrors.Storage(err)
	}

	log.Printf("user %d signed up", user.ID)
	return user, nil
}

// VerifyCredentials returns nil and ErrInvalidCredentials for both an unknown
// email and a wrong password.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Storage(err)
	}

	if !s.hasher.Verify(strings.TrimSpace(password), user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}

	result := &LoginResult{User: user}
	if s.tokens != nil {
		token, err := s.tokens.Issue(user.ID)
		if err != nil {
			return nil, apperrors.Storage(err)
		}
		result.Token = token
	}
	return result, nil
}

func (s *UserService) ListUsers(ctx context.Context, excludeID uint64) ([]model.User, error) {
	users, err := s.repo.List(ctx, excludeID)
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return users, nil
}

// ResolveUser returns nil without error when the id is unknown.
func (s *UserService) ResolveUser(ctx context.Context, id uint64) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, nil
		}
		return nil, apperrors.Storage(err)
	}
	return user, nil
}

// Names resolves display names for the given ids. Unknown ids and lookup
// failures leave the id out of the map; they are never an error.
func (s *UserService) Names(ctx context.Context, ids []uint64) map[uint64]string {
	ids = uniqueIDs(ids)
	names := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return names
	}

	missing := ids
	if s.names != nil {
		cached, err := s.names.GetNames(ctx, ids)
		if err != nil {
			log.Printf("name cache read failed: %v", err)
		} else {
			missing = missing[:0:0]
			for _, id := range ids {
				if name, ok := cached[id]; ok {
					names[id] = name
					continue
				}
				missing = append(missing, id)
			}
		}
	}

	if len(missing) == 0 {
		return names
	}

	users, err := s.repo.FindByIDs(ctx, missing)
	if err != nil {
		log.Printf("name lookup failed for %v: %v", missing, err)
		return names
	}

	loaded := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
		loaded[u.ID] = u.Name
	}

	if s.names != nil {
		if err := s.names.SetNames(ctx, loaded); err != nil {
			log.Printf("name cache write failed: %v", err)
		}
	}
	return names
}
