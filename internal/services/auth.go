package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartparking/backend/internal/apperr"
	"github.com/smartparking/backend/internal/hub"
	"github.com/smartparking/backend/internal/logging"
	"github.com/smartparking/backend/internal/models"
	"github.com/smartparking/backend/internal/repository"
	"github.com/smartparking/backend/internal/utils"
)

const bcryptCost = 10

type RegisterInput struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required,min=8" example:"password123"`
}

type LoginInput struct {
	Username string `json:"username" validate:"required" example:"alice"`
	Password string `json:"password" validate:"required" example:"password123"`
	// IPAddress and UserAgent are filled by the handler from the request.
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required" example:"password123"`
	NewPassword     string `json:"newPassword" validate:"required,min=8" example:"newpassword456"`
}

// Session is returned by register and login.
type Session struct {
	Token string               `json:"token"`
	User  models.PublicAccount `json:"user"`
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

// AuthService owns accounts, credentials and login history.
type AuthService struct {
	accounts repository.AccountRepository
	attempts repository.LoginAttemptRepository
	bus      hub.Broadcaster
	validate *validator.Validate
	cfg      AuthConfig
}

func NewAuthService(accounts repository.AccountRepository, attempts repository.LoginAttemptRepository, bus hub.Broadcaster, cfg AuthConfig) *AuthService {
	return &AuthService{
		accounts: accounts,
		attempts: attempts,
		bus:      bus,
		validate: NewValidator(),
		cfg:      cfg,
	}
}

// NewValidator returns a validator that reports fields by their json name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Register creates a USER account. Input is validated before the database is touched.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = utils.SanitizeString(in.Username)
	in.Email = strings.ToLower(utils.SanitizeString(in.Email))
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}

	exists, err := s.accounts.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if exists {
		return nil, apperr.New(apperr.KindConflict, "username or email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	account := &models.Account{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
		IsActive:     true,
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.New(apperr.KindConflict, "username or email already exists")
		}
		return nil, apperr.Internal(err)
	}

	logging.Info().Uint("account_id", account.ID).Str("username", account.Username).Msg("account registered")
	return s.session(account)
}

// Login checks credentials and records exactly one login attempt, successful or not,
// before returning.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Username = utils.SanitizeString(in.Username)
	if err := s.validate.Struct(in); err != nil {
		return nil, ValidationError(err)
	}

	account, err := s.accounts.GetByUsername(ctx, in.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	matched := account != nil &&
		bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.Password)) == nil

	attempt := &models.LoginAttempt{
		Username:  in.Username,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
		Success:   matched,
	}
	if account != nil {
		attempt.AccountID = &account.ID
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		logging.Error().Err(err).Str("username", in.Username).Msg("failed to record login attempt")
	} else {
		s.bus.Broadcast(hub.Message{Type: hub.LoginHistoryCreated, Payload: attempt})
	}

	if !matched {
		logging.Warn().Str("username", in.Username).Str("ip", in.IPAddress).Msg("login failed")
		return nil, apperr.New(apperr.KindInvalidCredentials, "invalid username or password")
	}
	if !account.IsActive {
		logging.Warn().Uint("account_id", account.ID).Msg("login to disabled account")
		return nil, apperr.New(apperr.KindAccountDisabled, "account is disabled")
	}

	return s.session(account)
}

func (s *AuthService) ChangePassword(ctx context.Context, accountID uint, in ChangePasswordInput) error {
	if err := s.validate.Struct(in); err != nil {
		return ValidationError(err)
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("account not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(in.CurrentPassword)) != nil {
		return apperr.New(apperr.KindInvalidCredentials, "current password is incorrect")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcryptCost)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := s.accounts.UpdatePasswordHash(ctx, accountID, string(hash)); err != nil {
		return apperr.Internal(err)
	}
	logging.Info().Uint("account_id", accountID).Msg("password changed")
	return nil
}

func (s *AuthService) Me(ctx context.Context, accountID uint) (*models.PublicAccount, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("account not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	public := account.Public()
	return &public, nil
}

// VerifyToken returns the claims of a valid session token.
func (s *AuthService) VerifyToken(token string) (*utils.Claims, error) {
	claims, err := utils.ValidateJWT(token, s.cfg.JWTSecret)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthenticated, "invalid or expired token", err)
	}
	return claims, nil
}

func (s *AuthService) LoginHistory(ctx context.Context, accountID uint, page, limit int) (*repository.Page[models.LoginAttempt], error) {
	p, err := s.attempts.ListByAccount(ctx, accountID, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *AuthService) AllLoginHistory(ctx context.Context, page, limit int) (*repository.Page[models.LoginAttemptWithAccount], error) {
	p, err := s.attempts.ListAll(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *AuthService) DeleteLoginAttempt(ctx context.Context, id uint) error {
	if err := s.attempts.Delete(ctx, id); err != nil {
		return notFoundOrInternal(err, "login history entry not found")
	}
	s.bus.Broadcast(hub.Message{Type: hub.LoginHistoryDeleted, Payload: hub.Deleted{ID: id}})
	return nil
}

func (s *AuthService) ListAccounts(ctx context.Context, page, limit int) (*repository.Page[models.PublicAccount], error) {
	p, err := s.accounts.List(ctx, page, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	items := make([]models.PublicAccount, 0, len(p.Items))
	for i := range p.Items {
		items = append(items, p.Items[i].Public())
	}
	return &repository.Page[models.PublicAccount]{Items: items, Total: p.Total, Page: p.Page, Limit: p.Limit}, nil
}

// SetAccountActive enables or disables an account. Disabled accounts get ACCOUNT_DISABLED on login.
func (s *AuthService) SetAccountActive(ctx context.Context, id uint, active bool) (*models.PublicAccount, error) {
	account, err := s.accounts.SetActive(ctx, id, active)
	if err != nil {
		return nil, notFoundOrInternal(err, "account not found")
	}
	logging.Info().Uint("account_id", id).Bool("is_active", active).Msg("account status changed")
	public := account.Public()
	return &public, nil
}

func (s *AuthService) session(account *models.Account) (*Session, error) {
	token, err := utils.GenerateJWT(account.ID, account.Username, account.Role, s.cfg.JWTSecret, s.cfg.JWTExpiry)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &Session{Token: token, User: account.Public()}, nil
}

// ValidationError converts validator failures into a VALIDATION error naming the first bad field.
func ValidationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, "invalid input", err)
	}
	fe := verrs[0]
	field := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address", field)
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return apperr.Wrap(apperr.KindValidation, msg, err)
}

func notFoundOrInternal(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msg)
	}
	return apperr.Internal(err)
}
