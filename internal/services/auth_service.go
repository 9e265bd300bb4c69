package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auth-service/internal/mailer"
	"auth-service/internal/models"
	"auth-service/internal/repository"
	"auth-service/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Options carries the non-store collaborators of the auth service.
type Options struct {
	ClientURL   string
	AdminEmails func(email string) bool
}

type authService struct {
	users     repository.UserRepository
	tokens    repository.TokenRepository
	tm        *utils.TokenManager
	mail      mailer.Mailer
	clientURL string
	isAdmin   func(email string) bool
	logger    *zap.SugaredLogger
}

// NewAuthService creates the authentication service.
func NewAuthService(
	users repository.UserRepository,
	tokens repository.TokenRepository,
	tm *utils.TokenManager,
	mail mailer.Mailer,
	opts Options,
	logger *zap.SugaredLogger,
) AuthService {
	isAdmin := opts.AdminEmails
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &authService{
		users:     users,
		tokens:    tokens,
		tm:        tm,
		mail:      mail,
		clientURL: opts.ClientURL,
		isAdmin:   isAdmin,
		logger:    logger,
	}
}

func (s *authService) Signup(ctx context.Context, req *models.SignupRequest) (*SignupResult, error) {
	if _, err := s.users.FindByEmailFold(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := models.RoleUser
	if s.isAdmin(req.Email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		Name:            req.Name,
		Email:           req.Email,
		Password:        hash,
		ConfirmPassword: hash,
		Role:            role,
		Status:          models.StatusPending,
		AcceptTerms:     req.AcceptTerms || s.isAdmin(req.Email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	tokens, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	link := s.verifyEmailLink(user.ID, tokens.RefreshToken)
	s.sendAsync("verify", func(ctx context.Context) error {
		return s.mail.SendVerifyEmail(ctx, user.Email, user.Name, link)
	})

	return &SignupResult{Tokens: *tokens, VerifyEmailLink: link}, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.FindByEmailFold(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issuePair(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	res := &LoginResult{User: user, Tokens: *tokens, Verified: true}
	if !user.IsVerified || user.Status != models.StatusActive {
		res.Verified = false
		res.VerifyEmailLink = s.verifyEmailLink(user.ID, tokens.RefreshToken)
		link := res.VerifyEmailLink
		s.sendAsync("verify reminder", func(ctx context.Context) error {
			return s.mail.SendVerifyEmailReminder(ctx, user.Email, user.Name, link)
		})
	}
	return res, nil
}

func (s *authService) VerifyEmail(ctx context.Context, userID, token string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return false, ErrUserNotFound
	}

	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return false, ErrUserNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to find user: %w", err)
	}

	// Verifying twice is a no-op success.
	if user.IsVerified && user.Status == models.StatusActive {
		return true, nil
	}

	record, err := s.tokens.FindByUserAndRefreshToken(ctx, user.ID, token)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return false, ErrTokenNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to find verification token: %w", err)
	}

	user.IsVerified = true
	user.Status = models.StatusActive
	user.AcceptTerms = true
	if err := s.users.Update(ctx, user); err != nil {
		return false, fmt.Errorf("failed to update user: %w", err)
	}
	if err := s.tokens.DeleteByID(ctx, record.ID); err != nil {
		return false, fmt.Errorf("failed to delete consumed token: %w", err)
	}
	return false, nil
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokens.FindByRefreshToken(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("failed to find token: %w", err)
	}

	// The record stays untouched when the token does not verify.
	if _, err := s.tm.VerifyRefreshToken(refreshToken); err != nil {
		return ErrInvalidToken
	}

	if err := s.tokens.DeleteByRefreshToken(ctx, refreshToken); err != nil && !errors.Is(err, repository.ErrTokenNotFound) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func (s *authService) RefreshTokens(ctx context.Context, refreshToken string) (*models.AuthTokens, error) {
	record, err := s.tokens.FindByRefreshToken(ctx, refreshToken)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find token: %w", err)
	}

	if _, err := s.tm.VerifyRefreshToken(refreshToken); err != nil {
		return nil, ErrInvalidToken
	}

	return s.issuePair(ctx, record.UserID)
}

func (s *authService) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrEmailNotRegistered
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	accessToken, err := s.tm.SignAccessToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	// The reset link rides the refresh-token slot with its own short expiry.
	resetToken, err := s.tm.SignResetLinkToken(user.ID.Hex())
	if err != nil {
		return "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	if _, err := s.tokens.SetPair(ctx, user.ID, accessToken, resetToken); err != nil {
		return "", fmt.Errorf("failed to persist token pair: %w", err)
	}

	link := s.resetPasswordLink(user.ID, resetToken)
	s.sendAsync("password reset", func(ctx context.Context) error {
		return s.mail.SendResetPasswordEmail(ctx, user.Email, user.Name, link)
	})
	return link, nil
}

func (s *authService) ResetPassword(ctx context.Context, userID, token, password, confirmPassword string) (string, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return "", ErrUserNotFound
	}

	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	record, err := s.tokens.FindByUserAndRefreshToken(ctx, user.ID, token)
	if errors.Is(err, repository.ErrTokenNotFound) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find reset token: %w", err)
	}

	if _, err := s.tm.VerifyRefreshToken(token); err != nil {
		return "", ErrInvalidToken
	}

	hash, err := hashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = hash
	user.ConfirmPassword = hash
	if err := s.users.Update(ctx, user); err != nil {
		return "", fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.tokens.DeleteByID(ctx, record.ID); err != nil {
		return "", fmt.Errorf("failed to delete consumed token: %w", err)
	}

	loginLink := s.clientURL + "/login.html"
	s.sendAsync("reset confirmation", func(ctx context.Context) error {
		return s.mail.SendConfirmResetPasswordEmail(ctx, user.Email, user.Name, loginLink)
	})
	return loginLink, nil
}

func (s *authService) GetProfile(ctx context.Context, userID primitive.ObjectID) (*models.Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user.ToProfile(), nil
}

func (s *authService) UpdateProfile(ctx context.Context, actor *models.User, userID string, req *models.UpdateProfileRequest, imagePath string) (*models.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}

	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if actor.ID != user.ID && !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	if req.Email != "" {
		existing, err := s.users.FindByEmailFold(ctx, req.Email)
		if err == nil && existing.ID != user.ID {
			return nil, ErrEmailTaken
		}
		if err != nil && !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
		}
	}

	// Empty submitted values never clear a stored field.
	user.Name = firstNonEmpty(req.Name, user.Name)
	user.FirstName = firstNonEmpty(req.FirstName, user.FirstName)
	user.LastName = firstNonEmpty(req.LastName, user.LastName)
	user.FamilyName = firstNonEmpty(req.FamilyName, user.FamilyName)
	user.Email = firstNonEmpty(req.Email, user.Email)
	user.DateOfBirth = firstNonEmpty(req.DateOfBirth, user.DateOfBirth)
	user.Gender = firstNonEmpty(req.Gender, user.Gender)
	user.MobileNumber = firstNonEmpty(req.MobileNumber, user.MobileNumber)
	user.Status = firstNonEmpty(req.Status, user.Status)
	user.Role = firstNonEmpty(req.Role, user.Role)
	user.Bio = firstNonEmpty(req.Bio, user.Bio)
	user.CompanyName = firstNonEmpty(req.CompanyName, user.CompanyName)
	user.Nationality = firstNonEmpty(req.Nationality, user.Nationality)
	user.Address = firstNonEmpty(req.Address, user.Address)
	user.JobTitle = firstNonEmpty(req.JobTitle, user.JobTitle)
	user.FavoriteAnimal = firstNonEmpty(req.FavoriteAnimal, user.FavoriteAnimal)
	user.AcceptTerms = req.AcceptTerms || user.AcceptTerms
	user.ProfileImage = firstNonEmpty(imagePath, user.ProfileImage)

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user.ToProfile(), nil
}

func (s *authService) Remove(ctx context.Context, actor *models.User, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return ErrInvalidUserID
	}

	user, err := s.users.FindByID(ctx, oid)
	if errors.Is(err, repository.ErrUserNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if actor.ID != user.ID && !actor.IsAdmin() {
		return ErrForbidden
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// issuePair signs a fresh access/refresh pair and overwrites the user's token
// record in one upsert.
func (s *authService) issuePair(ctx context.Context, userID primitive.ObjectID) (*models.AuthTokens, error) {
	accessToken, err := s.tm.SignAccessToken(userID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refreshToken, err := s.tm.SignRefreshToken(userID.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if _, err := s.tokens.SetPair(ctx, userID, accessToken, refreshToken); err != nil {
		return nil, fmt.Errorf("failed to persist token pair: %w", err)
	}
	return &models.AuthTokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *authService) verifyEmailLink(userID primitive.ObjectID, token string) string {
	return fmt.Sprintf("%s/verify-email.html?id=%s&token=%s", s.clientURL, userID.Hex(), token)
}

func (s *authService) resetPasswordLink(userID primitive.ObjectID, token string) string {
	return fmt.Sprintf("%s/reset-password.html?id=%s&token=%s", s.clientURL, userID.Hex(), token)
}

// sendAsync fires an email without blocking the request. Delivery failures are
// logged, never surfaced to the caller.
func (s *authService) sendAsync(kind string, send func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := send(ctx); err != nil {
			s.logger.Warnf("failed to send %s email: %v", kind, err)
		}
	}()
}

func hashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func firstNonEmpty(submitted, current string) string {
	if submitted != "" {
		return submitted
	}
	return current
}
