package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/avlasov/userhub/internal/common/clock"
	"github.com/avlasov/userhub/internal/common/constants"
	commoncrypto "github.com/avlasov/userhub/internal/common/crypto"
	"github.com/avlasov/userhub/internal/common/logger"
	"github.com/avlasov/userhub/internal/observability/metrics"
	"github.com/avlasov/userhub/internal/opaqueid"
	"github.com/avlasov/userhub/internal/user/domain"
	"github.com/avlasov/userhub/internal/user/repository"
	"github.com/avlasov/userhub/internal/user/service/dto"
	"github.com/avlasov/userhub/internal/user/service/mapper"
)

type UserServiceDeps struct {
	Repo   repository.Repository
	Codec  *opaqueid.Codec
	Hasher commoncrypto.PasswordHasher
	Clock  clock.Clock
	Log    *logger.Logger
}

type UserService struct {
	repo   repository.Repository
	codec  *opaqueid.Codec
	hasher commoncrypto.PasswordHasher
	clock  clock.Clock
	log    *logger.Logger
}

func NewUserService(deps UserServiceDeps) *UserService {
	return &UserService{
		repo:   deps.Repo,
		codec:  deps.Codec,
		hasher: deps.Hasher,
		clock:  deps.Clock,
		log:    deps.Log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func (s *UserService) Register(ctx context.Context, input RegisterInput) (dto.User, error) {
	s.log.WithFields(ctx, logger.Fields{
		"username": input.Username,
		"action":   "register_attempt",
	}).Info("register attempt")

	if err := validateRegistration(input.Username, input.Email, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_validation_failed",
		}).Warnf("register validation failed: %v", err)
		metrics.RegistrationFailuresTotal.WithLabelValues("validation").Inc()
		return dto.User{}, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		metrics.RegistrationFailuresTotal.WithLabelValues("hash").Inc()
		return dto.User{}, err
	}

	user := domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}

	id, err := s.repo.Create(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameAlreadyExists):
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_username_exists",
			}).Warn("register failed: username already exists")
			metrics.RegistrationFailuresTotal.WithLabelValues("username_taken").Inc()
			return dto.User{}, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailAlreadyExists):
			s.log.WithFields(ctx, logger.Fields{
				"username": input.Username,
				"action":   "register_email_exists",
			}).Warn("register failed: email already exists")
			metrics.RegistrationFailuresTotal.WithLabelValues("email_taken").Inc()
			return dto.User{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"action":   "register_create_failed",
		}).Errorf("register failed: %v", err)
		metrics.RegistrationFailuresTotal.WithLabelValues("db").Inc()
		return dto.User{}, fmt.Errorf("failed to create user: %w", err)
	}

	user.ID = id

	opaque, err := s.materializeOpaqueID(ctx, &user)
	if err != nil {
		// The row exists and the opaque id is a pure function of its id, so
		// reads fall back to recomputing it until a later write succeeds.
		s.log.WithFields(ctx, logger.Fields{
			"username": input.Username,
			"user_id":  id,
			"action":   "register_materialize_failed",
		}).Errorf("register: failed to persist opaque id: %v", err)
	}

	metrics.UsersRegisteredTotal.Inc()

	s.log.WithFields(ctx, logger.Fields{
		"username":  user.Username,
		"opaque_id": opaque,
		"action":    "register_success",
	}).Info("register success")

	return mapper.UserToDTO(user, opaque), nil
}

// materializeOpaqueID computes and persists the opaque id exactly once,
// immediately after the storage layer assigns the primary key. The repository
// guard makes a second call a no-op.
func (s *UserService) materializeOpaqueID(ctx context.Context, user *domain.User) (string, error) {
	if user.OpaqueID != "" {
		return user.OpaqueID, nil
	}

	opaque, err := s.codec.Encode(user.ID)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetOpaqueID(ctx, user.ID, opaque); err != nil {
		return opaque, err
	}

	user.OpaqueID = opaque
	metrics.OpaqueIDMaterializationsTotal.Inc()

	return opaque, nil
}

// GetOpaqueID is a pure read: the stored value when present, otherwise the
// encoding computed on the fly. It never persists.
func (s *UserService) GetOpaqueID(user domain.User) string {
	if user.OpaqueID != "" {
		return user.OpaqueID
	}

	opaque, err := s.codec.Encode(user.ID)
	if err != nil {
		return ""
	}
	return opaque
}

// FindIDByOpaque decodes without touching storage or needing a user value.
func (s *UserService) FindIDByOpaque(opaque string) (int64, bool) {
	return s.codec.Decode(opaque)
}

// Resolve maps an opaque string to the user it was issued for. The stored
// column is the fast path; rows created before materialization are found by
// decoding to the primary key. Anything else is a not-found, never a lookup
// with a missing id and never a different user.
func (s *UserService) Resolve(ctx context.Context, opaque string) (domain.User, error) {
	if opaque == "" {
		metrics.OpaqueIDResolutionsTotal.WithLabelValues("invalid").Inc()
		return domain.User{}, ErrUserNotFound
	}

	user, err := s.repo.FindByOpaqueID(ctx, opaque)
	if err == nil {
		metrics.OpaqueIDResolutionsTotal.WithLabelValues("hit").Inc()
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		s.log.WithFields(ctx, logger.Fields{
			"action": "resolve_lookup_failed",
		}).Errorf("resolve failed: %v", err)
		return domain.User{}, err
	}

	id, ok := s.codec.Decode(opaque)
	if !ok {
		metrics.OpaqueIDResolutionsTotal.WithLabelValues("invalid").Inc()
		return domain.User{}, ErrUserNotFound
	}

	user, err = s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			metrics.OpaqueIDResolutionsTotal.WithLabelValues("miss").Inc()
			return domain.User{}, ErrUserNotFound
		}
		s.log.WithFields(ctx, logger.Fields{
			"action": "resolve_fallback_failed",
		}).Errorf("resolve failed: %v", err)
		return domain.User{}, err
	}

	// A row with a persisted opaque id different from the input means the
	// string was minted under another configuration. Not a match.
	if user.OpaqueID != "" && user.OpaqueID != opaque {
		metrics.OpaqueIDResolutionsTotal.WithLabelValues("stale").Inc()
		return domain.User{}, ErrUserNotFound
	}

	metrics.OpaqueIDResolutionsTotal.WithLabelValues("hit").Inc()
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, opaque string) (dto.User, error) {
	user, err := s.Resolve(ctx, opaque)
	if err != nil {
		return dto.User{}, err
	}

	return mapper.UserToDTO(user, s.GetOpaqueID(user)), nil
}

func (s *UserService) Search(ctx context.Context, query string, limit int) ([]dto.UserSummary, error) {
	if query == "" {
		return nil, nil
	}
	if len(query) > constants.MaxSearchQueryLength {
		query = query[:constants.MaxSearchQueryLength]
	}
	if limit <= 0 || limit > constants.MaxSearchResultsLimit {
		limit = constants.DefaultSearchLimit
	}

	summaries, err := s.repo.SearchByUsername(ctx, query, limit)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "search_failed",
		}).Errorf("search failed: %v", err)
		return nil, err
	}

	result := make([]dto.UserSummary, 0, len(summaries))
	for _, summary := range summaries {
		if summary.OpaqueID == "" {
			if opaque, err := s.codec.Encode(summary.ID); err == nil {
				summary.OpaqueID = opaque
			}
		}
		result = append(result, mapper.SummaryToDTO(summary))
	}

	return result, nil
}
