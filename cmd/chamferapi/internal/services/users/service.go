// Package users owns account lifecycle: registration, profile updates, soft
// deletion and password sign-in, together with the role rules that guard them.
package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/auth"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/db/models"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/gqlerr"
	"github.com/seemspyo/chamfer/cmd/chamferapi/internal/repository"
)

// Digester hashes and compares passwords. *auth.Cipher satisfies it.
type Digester interface {
	Digest(data string) string
	DigestMatches(data, digest string) bool
}

// CreateInput carries a registration. Roles is nil when the caller did not ask for any.
type CreateInput struct {
	Email    string   `json:"email"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// Validate checks the fields a client must supply.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required, is.Email),
		validation.Field(&in.Username, validation.Required, validation.Length(1, 320)),
		validation.Field(&in.Password, validation.Required, validation.Length(1, 1024)),
	)
}

// UpdateInput carries a partial profile change. Nil fields are left unchanged.
type UpdateInput struct {
	Email    *string  `json:"email"`
	Username *string  `json:"username"`
	Password *string  `json:"password"`
	Roles    []string `json:"roles"`
}

// Validate checks the fields that were supplied.
func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.NilOrNotEmpty, is.Email),
		validation.Field(&in.Username, validation.NilOrNotEmpty, validation.Length(1, 320)),
		validation.Field(&in.Password, validation.NilOrNotEmpty, validation.Length(1, 1024)),
	)
}

// ListResult is one page of users and the total match count.
type ListResult struct {
	Total int
	Data  []models.User
}

// Service applies the account rules on top of the user repository.
type Service struct {
	repo   repository.UserRepository
	digest Digester
	now    func() time.Time
}

// NewService constructs a users Service.
func NewService(repo repository.UserRepository, digest Digester) *Service {
	return &Service{repo: repo, digest: digest, now: time.Now}
}

// Create registers a user on behalf of actor, which may be nil for self sign-up.
// Only the admin tier may choose roles and nobody may grant deus here.
func (s *Service) Create(ctx context.Context, actor *models.User, in CreateInput) (*models.User, error) {
	if len(in.Roles) > 0 && !auth.IsAdmin(actor) {
		return nil, gqlerr.PermissionDenied()
	}
	if containsDeus(in.Roles) {
		return nil, gqlerr.PermissionDenied()
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

// Provision registers a user without actor checks. deus may be granted; used by
// operator tooling and bootstrap only.
func (s *Service) Provision(ctx context.Context, in CreateInput) (*models.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.create(ctx, in)
}

func (s *Service) create(ctx context.Context, in CreateInput) (*models.User, error) {
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{models.RoleCommon}
	}
	password := s.digest.Digest(in.Password)

	user := &models.User{
		Email:    in.Email,
		Username: in.Username,
		Password: &password,
		Provider: models.ProviderEmail,
		Roles:    models.StringList(roles),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update changes user id on behalf of actor.
func (s *Service) Update(ctx context.Context, actor *models.User, id string, in UpdateInput) (*models.User, error) {
	if actor == nil {
		return nil, gqlerr.PermissionDenied()
	}
	crossUser := actor.ID != id
	actorIsAdmin := auth.IsAdmin(actor)

	if crossUser && !actorIsAdmin {
		return nil, gqlerr.PermissionDenied()
	}
	if in.Roles != nil && !actorIsAdmin {
		return nil, gqlerr.PermissionDenied()
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	target, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, gqlerr.NotFound()
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	// deus is neither granted nor revoked here, not even by a deus on itself.
	if in.Roles != nil && target.HasRole(models.RoleDeus) != containsDeus(in.Roles) {
		return nil, gqlerr.PermissionDenied()
	}
	if crossUser && target.HasRole(models.RoleDeus) {
		return nil, gqlerr.PermissionDenied()
	}
	if crossUser && auth.IsAdmin(target) && !actor.HasRole(models.RoleDeus) {
		return nil, gqlerr.PermissionDenied()
	}

	if in.Email != nil {
		target.Email = *in.Email
	}
	if in.Username != nil {
		target.Username = *in.Username
	}
	if in.Password != nil {
		digest := s.digest.Digest(*in.Password)
		target.Password = &digest
	}
	if in.Roles != nil {
		roles := in.Roles
		if len(roles) == 0 {
			roles = []string{models.RoleCommon}
		}
		target.Roles = models.StringList(roles)
	}

	if err := s.repo.Update(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Delete soft-deletes user id. A missing target reports false without error.
// Admin-tier accounts cannot be deleted through the API.
func (s *Service) Delete(ctx context.Context, actor *models.User, id string) (bool, error) {
	target, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("load user: %w", err)
	}

	if auth.IsAdmin(target) {
		return false, gqlerr.PermissionDenied()
	}
	if actor == nil || (actor.ID != target.ID && !auth.IsAdmin(actor)) {
		return false, gqlerr.PermissionDenied()
	}

	prefix := strconv.FormatInt(s.now().UnixMilli(), 16)
	target.Email = prefix + "." + s.digest.Digest(target.Email)
	target.Username = prefix + "." + s.digest.Digest(target.Username)
	target.Deleted = true

	if err := s.repo.Update(ctx, target); err != nil {
		return false, err
	}
	return true, nil
}

// SignIn checks a password against the user found by email or username.
func (s *Service) SignIn(ctx context.Context, email, username, password string) (*models.User, error) {
	if email == "" && username == "" {
		return nil, gqlerr.Invalid()
	}

	user, err := s.repo.FindActiveByLogin(ctx, models.ProviderEmail, email, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, gqlerr.NotFound()
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.Password == nil || !s.digest.DigestMatches(password, *user.Password) {
		return nil, gqlerr.InvalidPassword()
	}
	return user, nil
}

// Me returns the live user behind identity, or nil for anonymous callers.
func (s *Service) Me(ctx context.Context, identity *auth.Identity) (*models.User, error) {
	if identity == nil || identity.User == nil {
		return nil, nil
	}
	user, err := s.repo.GetActiveByID(ctx, identity.User.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// List returns one page of live users.
func (s *Service) List(ctx context.Context, search repository.ListSearch, paging *repository.Paging) (*ListResult, error) {
	users, total, err := s.repo.ListActive(ctx, search, paging)
	if err != nil {
		return nil, err
	}
	return &ListResult{Total: total, Data: users}, nil
}

// GetActive returns the live user id, or nil when there is none.
func (s *Service) GetActive(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}

// GetActiveMany returns the live users among ids.
func (s *Service) GetActiveMany(ctx context.Context, ids []string) ([]models.User, error) {
	return s.repo.GetActiveByIDs(ctx, ids)
}

// EnsureMaster creates the deus account unless a live user already holds the email or username.
func (s *Service) EnsureMaster(ctx context.Context, email, username, password string) (bool, error) {
	_, err := s.repo.FindActiveByLogin(ctx, models.ProviderEmail, email, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return false, fmt.Errorf("find master: %w", err)
	}

	_, err = s.Provision(ctx, CreateInput{
		Email:    email,
		Username: username,
		Password: password,
		Roles:    []string{models.RoleDeus},
	})
	if err != nil {
		return false, fmt.Errorf("create master: %w", err)
	}
	return true, nil
}

func containsDeus(roles []string) bool {
	for _, r := range roles {
		if r == models.RoleDeus {
			return true
		}
	}
	return false
}
