package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles and account statuses.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	StatusPending = "pending"
	StatusActive  = "active"
)

// User represents a user document in the authentication system.
type User struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	FirstName       string             `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName        string             `bson:"lastName,omitempty" json:"lastName,omitempty"`
	FamilyName      string             `bson:"familyName,omitempty" json:"familyName,omitempty"`
	Email           string             `bson:"email" json:"email"`
	Password        string             `bson:"password" json:"-"`
	ConfirmPassword string             `bson:"confirmPassword,omitempty" json:"-"`
	DateOfBirth     string             `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"`
	Gender          string             `bson:"gender,omitempty" json:"gender,omitempty"`
	MobileNumber    string             `bson:"mobileNumber,omitempty" json:"mobileNumber,omitempty"`
	Bio             string             `bson:"bio,omitempty" json:"bio,omitempty"`
	CompanyName     string             `bson:"companyName,omitempty" json:"companyName,omitempty"`
	Nationality     string             `bson:"nationality,omitempty" json:"nationality,omitempty"`
	Address         string             `bson:"address,omitempty" json:"address,omitempty"`
	JobTitle        string             `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	FavoriteAnimal  string             `bson:"favoriteAnimal,omitempty" json:"favoriteAnimal,omitempty"`
	ProfileImage    string             `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	Role            string             `bson:"role" json:"role"`
	Status          string             `bson:"status" json:"status"`
	IsVerified      bool               `bson:"isVerified" json:"isVerified"`
	IsDeleted       bool               `bson:"isDeleted" json:"isDeleted"`
	AcceptTerms     bool               `bson:"acceptTerms" json:"acceptTerms"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Profile is the user projection returned by the API. Password and
// confirmPassword never leave the service.
type Profile struct {
	ID             primitive.ObjectID `json:"_id"`
	Name           string             `json:"name"`
	FirstName      string             `json:"firstName,omitempty"`
	LastName       string             `json:"lastName,omitempty"`
	FamilyName     string             `json:"familyName,omitempty"`
	Email          string             `json:"email"`
	DateOfBirth    string             `json:"dateOfBirth,omitempty"`
	Gender         string             `json:"gender,omitempty"`
	MobileNumber   string             `json:"mobileNumber,omitempty"`
	Bio            string             `json:"bio,omitempty"`
	CompanyName    string             `json:"companyName,omitempty"`
	Nationality    string             `json:"nationality,omitempty"`
	Address        string             `json:"address,omitempty"`
	JobTitle       string             `json:"jobTitle,omitempty"`
	FavoriteAnimal string             `json:"favoriteAnimal,omitempty"`
	ProfileImage   string             `json:"profileImage,omitempty"`
	Role           string             `json:"role"`
	Status         string             `json:"status"`
	IsVerified     bool               `json:"isVerified"`
	IsDeleted      bool               `json:"isDeleted"`
	AcceptTerms    bool               `json:"acceptTerms"`
	CreatedAt      time.Time          `json:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt"`
}

// ToProfile strips credential fields from a user document.
func (u *User) ToProfile() *Profile {
	return &Profile{
		ID:             u.ID,
		Name:           u.Name,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FamilyName:     u.FamilyName,
		Email:          u.Email,
		DateOfBirth:    u.DateOfBirth,
		Gender:         u.Gender,
		MobileNumber:   u.MobileNumber,
		Bio:            u.Bio,
		CompanyName:    u.CompanyName,
		Nationality:    u.Nationality,
		Address:        u.Address,
		JobTitle:       u.JobTitle,
		FavoriteAnimal: u.FavoriteAnimal,
		ProfileImage:   u.ProfileImage,
		Role:           u.Role,
		Status:         u.Status,
		IsVerified:     u.IsVerified,
		IsDeleted:      u.IsDeleted,
		AcceptTerms:    u.AcceptTerms,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}
