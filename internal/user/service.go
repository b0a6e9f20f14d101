package user

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jusastore/store-backend/internal/apperr"
	"github.com/jusastore/store-backend/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 6

	// bcrypt refuses longer input.
	maxPasswordBytes = 72
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Register(ctx context.Context, reg Registration) (User, error) {
	reg.Email = normalizeEmail(reg.Email)
	if err := validation.StructMsg(&reg, "Missing required fields"); err != nil {
		return User{}, err
	}
	if err := checkPasswordBytes("password", reg.Password); err != nil {
		return User{}, err
	}

	hashed, err := hashPassword(reg.Password)
	if err != nil {
		return User{}, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, User{
		ID:          uuid.NewString(),
		FirstName:   strings.TrimSpace(reg.FirstName),
		LastName:    strings.TrimSpace(reg.LastName),
		Email:       reg.Email,
		Password:    hashed,
		PhoneNumber: strings.TrimSpace(reg.PhoneNumber),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

// Authenticate checks an email/password pair. Unknown emails and wrong
// passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// SignInExternal finds or creates the account for an email vouched for by an
// external identity provider. New accounts get an unusable random password.
func (s *Service) SignInExternal(ctx context.Context, email, displayName string) (User, error) {
	email = normalizeEmail(email)
	user, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	secret, err := randomSecret()
	if err != nil {
		return User{}, err
	}
	hashed, err := hashPassword(secret)
	if err != nil {
		return User{}, err
	}

	first, last := splitName(displayName)
	now := s.now().UTC()
	created, err := s.repo.Create(ctx, User{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if errors.Is(err, ErrEmailExists) {
		// lost a race with a concurrent first sign-in
		return s.repo.GetByEmail(ctx, email)
	}
	return created, err
}

func (s *Service) GetByID(ctx context.Context, id string) (User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return User{}, ErrInvalidID
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateDetails(ctx context.Context, id string, d Details) (User, error) {
	d.Email = normalizeEmail(d.Email)
	if err := validation.Struct(&d); err != nil {
		return User{}, err
	}
	return s.mutate(ctx, id, func(u *User) {
		u.FirstName = strings.TrimSpace(d.FirstName)
		u.LastName = strings.TrimSpace(d.LastName)
		u.Email = d.Email
		u.PhoneNumber = strings.TrimSpace(d.PhoneNumber)
	})
}

func (s *Service) ChangePassword(ctx context.Context, id, current, next string) error {
	if len(next) < minPasswordLen {
		return apperr.Invalid("Validation failed", map[string]string{
			"newPassword": "must be at least 6 characters",
		})
	}
	if err := checkPasswordBytes("newPassword", next); err != nil {
		return err
	}

	user, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(current)) != nil {
		return ErrWrongPassword
	}

	hashed, err := hashPassword(next)
	if err != nil {
		return err
	}
	user.Password = hashed
	user.UpdatedAt = s.now().UTC()
	_, err = s.repo.Update(ctx, user)
	return err
}

func (s *Service) UpdateAddress(ctx context.Context, id string, a Address) (User, error) {
	a.AddressLine1 = strings.TrimSpace(a.AddressLine1)
	a.AddressLine2 = strings.TrimSpace(a.AddressLine2)
	a.City = strings.TrimSpace(a.City)
	a.Postcode = strings.TrimSpace(a.Postcode)
	a.Country = strings.TrimSpace(a.Country)
	if err := validation.Struct(&a); err != nil {
		return User{}, err
	}
	return s.mutate(ctx, id, func(u *User) { u.Address = a })
}

func (s *Service) UpdatePayment(ctx context.Context, id string, p PaymentDetails) (User, error) {
	p.CardNumber = strings.NewReplacer(" ", "", "-", "").Replace(p.CardNumber)
	p.NameOnCard = strings.TrimSpace(p.NameOnCard)
	if err := validation.Struct(&p); err != nil {
		return User{}, err
	}
	return s.mutate(ctx, id, func(u *User) { u.PaymentDetails = p })
}

func (s *Service) mutate(ctx context.Context, id string, apply func(u *User)) (User, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	apply(&user)
	user.UpdatedAt = s.now().UTC()
	return s.repo.Update(ctx, user)
}

func checkPasswordBytes(field, password string) error {
	if len(password) > maxPasswordBytes {
		return apperr.Invalid("Validation failed", map[string]string{
			field: "must be at most 72 bytes",
		})
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func randomSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// splitName turns "Jane van Dyke" into ("Jane", "van Dyke").
func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}
