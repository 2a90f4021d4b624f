package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"agri_advisor/internal/model"
	"agri_advisor/internal/notify"
	"agri_advisor/internal/repository"
	"agri_advisor/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPasscodeNotFound   = errors.New("passcode not found or expired")
	ErrPasscodeExpired    = errors.New("passcode expired")
	ErrPasscodeMismatch   = errors.New("invalid passcode")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrPhoneRequired      = errors.New("phone number is required")
)

// AuthService provides authentication related services
type AuthService interface {
	IssuePasscode(ctx context.Context, phone string) error
	VerifyPasscode(ctx context.Context, phone, code string) (*model.User, string, error)
	Login(ctx context.Context, email, password string, role model.Role) (*model.User, string, error)
	FindUser(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error)
	SaveProfile(ctx context.Context, user *model.User) error
	ValidateToken(token string) (string, error)
}

// Option configures an AuthService.
type Option func(*authService)

// WithClock overrides the time source used for passcode expiry.
func WithClock(now func() time.Time) Option {
	return func(s *authService) { s.now = now }
}

// WithPasscodeGenerator overrides how passcodes are generated.
func WithPasscodeGenerator(gen func() (string, error)) Option {
	return func(s *authService) { s.generate = gen }
}

// WithMaxPasscodeAttempts sets how many wrong codes discard a pending
// passcode. Zero or less disables the limit.
func WithMaxPasscodeAttempts(n int) Option {
	return func(s *authService) { s.maxAttempts = n }
}

// WithPasscodeTTL sets the lifetime of issued passcodes.
func WithPasscodeTTL(ttl time.Duration) Option {
	return func(s *authService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

type authService struct {
	userRepo     repository.UserRepository
	passcodeRepo repository.PasscodeRepository
	sms          notify.SMSService
	jwtUtil      *utils.JWTUtil

	now         func() time.Time
	generate    func() (string, error)
	ttl         time.Duration
	maxAttempts int
	log         logrus.FieldLogger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, passcodeRepo repository.PasscodeRepository,
	sms notify.SMSService, jwtUtil *utils.JWTUtil, opts ...Option) AuthService {
	s := &authService{
		userRepo:     userRepo,
		passcodeRepo: passcodeRepo,
		sms:          sms,
		jwtUtil:      jwtUtil,
		now:          time.Now,
		generate:     utils.GeneratePasscode,
		ttl:          model.PasscodeTTL,
		maxAttempts:  model.MaxPasscodeAttempts,
		log:          logrus.WithField("component", "auth"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssuePasscode records a fresh passcode for phone, replacing any pending
// one, and sends it over SMS.
func (s *authService) IssuePasscode(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrPhoneRequired
	}

	code, err := s.generate()
	if err != nil {
		return err
	}

	now := s.now()
	pending := &model.PendingPasscode{
		Phone:     phone,
		Code:      code,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.passcodeRepo.Put(ctx, pending); err != nil {
		return fmt.Errorf("failed to record passcode: %w", err)
	}

	msg := &notify.SMS{
		To:   phone,
		Body: fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.ttl/time.Minute)),
	}
	if err := s.sms.SendSMS(ctx, msg); err != nil {
		return fmt.Errorf("failed to send passcode: %w", err)
	}

	s.log.WithField("phone", phone).Debug("passcode issued")
	return nil
}

// VerifyPasscode consumes the pending passcode for phone and signs in the
// matching user, creating a new farmer account on first sight. A passcode
// signs in at most one caller.
func (s *authService) VerifyPasscode(ctx context.Context, phone, code string) (*model.User, string, error) {
	phone = strings.TrimSpace(phone)
	code = strings.TrimSpace(code)
	now := s.now()

	pending, err := s.passcodeRepo.Get(ctx, phone)
	if err != nil {
		return nil, "", fmt.Errorf("failed to look up passcode: %w", err)
	}
	if pending == nil {
		return nil, "", ErrPasscodeNotFound
	}
	if pending.IsExpired(now) {
		return nil, "", ErrPasscodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(pending.Code), []byte(code)) != 1 {
		attempts, err := s.passcodeRepo.RecordFailedAttempt(ctx, phone, s.maxAttempts)
		if err != nil {
			return nil, "", err
		}
		s.log.WithFields(logrus.Fields{"phone": phone, "attempts": attempts}).Debug("passcode mismatch")
		return nil, "", ErrPasscodeMismatch
	}

	consumed, err := s.passcodeRepo.Consume(ctx, phone, pending.Code, now)
	if err != nil {
		return nil, "", err
	}
	if !consumed {
		// Used or replaced by a concurrent request since the lookup.
		return nil, "", ErrPasscodeNotFound
	}

	user, err := s.findOrCreateFarmer(ctx, phone)
	if err != nil {
		return nil, "", err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *authService) findOrCreateFarmer(ctx context.Context, phone string) (*model.User, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("error finding user by phone: %w", err)
	}
	if user != nil {
		return user, nil
	}

	now := s.now()
	user = &model.User{
		ID:               uuid.NewString(),
		Role:             model.RoleFarmer,
		Phone:            phone,
		ProfileCompleted: false,
		Locale:           model.LocaleMalayalam,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			// Another request registered the phone first.
			return s.existingFarmer(ctx, phone)
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}
	s.log.WithFields(logrus.Fields{"user_id": user.ID, "phone": phone}).Info("new farmer account created")
	return user, nil
}

func (s *authService) existingFarmer(ctx context.Context, phone string) (*model.User, error) {
	user, err := s.userRepo.FindByPhone(ctx, phone)
	if err != nil {
		return nil, fmt.Errorf("error finding user by phone: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user for phone %s vanished after duplicate insert", phone)
	}
	return user, nil
}

// Login authenticates an officer or admin by email, password and role
func (s *authService) Login(ctx context.Context, email, password string, role model.Role) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmailAndRole(ctx, strings.TrimSpace(email), role)
	if err != nil {
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		return nil, "", ErrInvalidCredentials
	}
	if user.PasswordHash == "" || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.jwtUtil.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	return user, token, nil
}

func (s *authService) FindUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateProfile merges update into the stored user and returns the result.
func (s *authService) UpdateProfile(ctx context.Context, id string, update model.ProfileUpdate) (*model.User, error) {
	user, err := s.FindUser(ctx, id)
	if err != nil {
		return nil, err
	}
	update.Apply(user)
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return user, nil
}

// SaveProfile writes a client-merged user record back to the directory.
// Users unknown to the directory are ignored.
func (s *authService) SaveProfile(ctx context.Context, user *model.User) error {
	u := user.Clone()
	u.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithField("user_id", user.ID).Debug("profile write-back skipped for unknown user")
			return nil
		}
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// ValidateToken returns the user ID carried by a session token.
func (s *authService) ValidateToken(token string) (string, error) {
	claims, err := s.jwtUtil.ValidateToken(token)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
