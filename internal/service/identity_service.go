package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"devcircle/internal/authz"
	"devcircle/internal/cache"
	"devcircle/internal/events"
	"devcircle/internal/middleware"
	"devcircle/internal/models"
	"devcircle/internal/observability"
	"devcircle/internal/repository"
	"devcircle/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// IdentityService owns accounts, credentials and profiles.
type IdentityService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	publisher  events.Publisher
	jwtSecret  string
	jwtTTL     time.Duration
	bcryptCost int
}

type SignupInput struct {
	Username   string
	Email      string
	Password   string
	FirstName  string
	LastName   string
	University string
}

// AuthResult is returned by signup and signin.
type AuthResult struct {
	User  *models.User            `json:"user"`
	Token *middleware.IssuedToken `json:"token"`
}

// UpdateProfileInput is a partial update: nil fields are left alone.
type UpdateProfileInput struct {
	Username   *string
	Email      *string
	FirstName  *string
	LastName   *string
	University *string
	Bio        *string
}

const maxBioLen = 500

func NewIdentityService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	publisher events.Publisher,
	jwtSecret string,
	jwtTTL time.Duration,
) *IdentityService {
	return &IdentityService{
		userRepo:   userRepo,
		followRepo: followRepo,
		publisher:  publisher,
		jwtSecret:  jwtSecret,
		jwtTTL:     jwtTTL,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost (tests use bcrypt.MinCost).
func (s *IdentityService) WithBcryptCost(cost int) *IdentityService {
	s.bcryptCost = cost
	return s
}

func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (res *AuthResult, err error) {
	ctx, span := startSpan(ctx, "identity.signup", 0)
	defer func() { observability.EndSpan(span, err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.Email = validation.NormalizeEmail(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username:   in.Username,
		Email:      in.Email,
		Password:   string(hashed),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		University: strings.TrimSpace(in.University),
		Role:       models.RoleUser,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := middleware.IssueToken(s.jwtSecret, user.ID, user.Username, s.jwtTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	events.Emit(ctx, s.publisher, events.New(events.UserSignedUp, user.ID, user.ID))
	return &AuthResult{User: user, Token: token}, nil
}

// Signin accepts a username or an email as login.
func (s *IdentityService) Signin(ctx context.Context, login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, models.NewValidationError("Login and password are required")
	}

	user, err := s.userRepo.GetByLogin(ctx, login)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if cmpErr := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); cmpErr != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := middleware.IssueToken(s.jwtSecret, user.ID, user.Username, s.jwtTTL)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Signout blacklists the token's id until it would have expired.
func (s *IdentityService) Signout(ctx context.Context, claims *middleware.Claims) error {
	if claims == nil || claims.ID == "" {
		return models.NewUnauthorizedError("Invalid token")
	}
	var exp time.Time
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}
	if err := cache.RevokeToken(ctx, claims.ID, exp); err != nil {
		return models.NewTransientError(err)
	}
	return nil
}

func (s *IdentityService) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Principal resolves the authorization subject for an authenticated user id.
func (s *IdentityService) Principal(ctx context.Context, userID uint) (authz.Principal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return authz.Principal{}, models.NewUnauthorizedError("User no longer exists")
		}
		return authz.Principal{}, err
	}
	return authz.NewPrincipal(user), nil
}

// GetProfile returns the user with both sides of their follow graph.
func (s *IdentityService) GetProfile(ctx context.Context, username string) (*models.Profile, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	followers, err := s.followRepo.Followers(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.followRepo.Following(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &models.Profile{User: user, Followers: followers, Following: following}, nil
}

// SetRole changes a user's platform role. It backs operator tooling and has no
// HTTP route. changed is false when the user already held role.
func (s *IdentityService) SetRole(ctx context.Context, username string, role models.Role) (user *models.User, changed bool, err error) {
	if !role.Valid() {
		return nil, false, models.NewValidationError(fmt.Sprintf("Unknown role %q", role))
	}
	user, err = s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, false, err
	}
	if user.Role == role {
		logNoop(ctx, "role unchanged", uintAttr("user_id", user.ID))
		return user, false, nil
	}
	if err := s.userRepo.SetRole(ctx, user.ID, role); err != nil {
		return nil, false, err
	}
	user.Role = role
	return user, true, nil
}

// Admins lists every user holding the Admin role.
func (s *IdentityService) Admins(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListByRole(ctx, models.RoleAdmin)
}

func (s *IdentityService) Search(ctx context.Context, query string, page Pagination) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}
	return s.userRepo.Search(ctx, query, page.Limit, page.Offset)
}

func (s *IdentityService) UpdateProfile(ctx context.Context, actor authz.Principal, username string, in UpdateProfileInput) (user *models.User, err error) {
	ctx, span := startSpan(ctx, "identity.update_profile", actor.UserID)
	defer func() { observability.EndSpan(span, err) }()

	user, err = s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !authz.CanModifyProfile(actor, user) {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	if in.Username != nil {
		name := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(name); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Username = name
	}
	if in.Email != nil {
		email := validation.NormalizeEmail(*in.Email)
		if err := validation.ValidateEmail(email); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		user.Email = email
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.University != nil {
		user.University = strings.TrimSpace(*in.University)
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if models.IsCode(err, models.CodeConflict) {
			return nil, models.NewConflictError("Username or email already taken")
		}
		return nil, err
	}
	return user, nil
}
