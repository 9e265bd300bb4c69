package models

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=3,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AcceptTerms     bool   `json:"acceptTerms"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest is the body of POST /auth/refresh-token and POST /auth/logout.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// ForgotPasswordRequest is the body of POST /auth/forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password/:userId/:token.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// UpdateProfileRequest is the body of PATCH /auth/update/:userId. Every field
// is optional; empty submitted values are ignored by the merge.
type UpdateProfileRequest struct {
	Name           string `json:"name" form:"name"`
	FirstName      string `json:"firstName" form:"firstName"`
	LastName       string `json:"lastName" form:"lastName"`
	FamilyName     string `json:"familyName" form:"familyName"`
	Email          string `json:"email" form:"email" validate:"omitempty,email"`
	DateOfBirth    string `json:"dateOfBirth" form:"dateOfBirth"`
	Gender         string `json:"gender" form:"gender"`
	MobileNumber   string `json:"mobileNumber" form:"mobileNumber"`
	Status         string `json:"status" form:"status" validate:"omitempty,oneof=pending active"`
	Role           string `json:"role" form:"role" validate:"omitempty,oneof=user admin"`
	Bio            string `json:"bio" form:"bio"`
	AcceptTerms    bool   `json:"acceptTerms" form:"acceptTerms"`
	CompanyName    string `json:"companyName" form:"companyName"`
	Nationality    string `json:"nationality" form:"nationality"`
	Address        string `json:"address" form:"address"`
	JobTitle       string `json:"jobTitle" form:"jobTitle"`
	FavoriteAnimal string `json:"favoriteAnimal" form:"favoriteAnimal"`
}

// AuthTokens is the credential pair issued by token-issuing operations.
type AuthTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
