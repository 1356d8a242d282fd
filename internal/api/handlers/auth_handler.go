package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/auth"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/core"
	"github.com/Swarajroy2006/SoulSync-CosmoHack1/internal/models"
)

var (
	validate  *validator.Validate
	nonDigits = regexp.MustCompile(`\D`)

	// Compared against when the email is unknown, so login takes the same
	// shape and roughly the same time as a wrong-password attempt.
	dummyHash []byte
)

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("phonedigits", validatePhoneDigits)
	dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)
}

// validatePhoneDigits accepts numbers of 10-15 digits after stripping any
// non-digit characters (international format).
func validatePhoneDigits(fl validator.FieldLevel) bool {
	digits := nonDigits.ReplaceAllString(fl.Field().String(), "")
	return len(digits) >= 10 && len(digits) <= 15
}

type AuthHandler struct {
	dbclient core.DbClient
	tokens   *auth.TokenManager
}

func NewAuthHandler(dbclient core.DbClient, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{dbclient: dbclient, tokens: tokens}
}

type emergencyContactRequest struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
	PhoneNumber  string `json:"phoneNumber" validate:"required,phonedigits"`
}

type signupRequest struct {
	Name             string                  `json:"name" validate:"required"`
	Email            string                  `json:"email" validate:"required,email"`
	Password         string                  `json:"password" validate:"required,min=8"`
	EmergencyContact emergencyContactRequest `json:"emergencyContact" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		fail(w, http.StatusBadRequest, signupValidationMessage(err))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		EmergencyContact: models.EmergencyContact{
			Name:         strings.TrimSpace(req.EmergencyContact.Name),
			Relationship: strings.TrimSpace(req.EmergencyContact.Relationship),
			PhoneNumber:  strings.TrimSpace(req.EmergencyContact.PhoneNumber),
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.dbclient.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, core.ErrDuplicateEmail) {
			fail(w, http.StatusConflict, "Email already registered")
			return
		}
		fail(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Signup failed")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":  true,
		"message": "User registered successfully",
		"token":   token,
		"user": map[string]string{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		fail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		fail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.dbclient.GetUserByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		fail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	// Identical response for unknown email and wrong password.
	storedHash := dummyHash
	if user != nil {
		storedHash = []byte(user.PasswordHash)
	}
	if bcrypt.CompareHashAndPassword(storedHash, []byte(req.Password)) != nil || user == nil {
		fail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		fail(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  true,
		"message": "Login successful",
		"token":   token,
		"user": map[string]string{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

// signupValidationMessage turns the first validation failure into the
// human-readable message the envelope carries.
func signupValidationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.StructNamespace() {
	case "signupRequest.Password":
		if fe.Tag() == "min" {
			return "Password must be at least 8 characters"
		}
		return "Password is required"
	case "signupRequest.Email":
		return "A valid email is required"
	case "signupRequest.Name":
		return "Name is required"
	case "signupRequest.EmergencyContact.PhoneNumber":
		return "Emergency contact phone number must be 10-15 digits"
	case "signupRequest.EmergencyContact.Name",
		"signupRequest.EmergencyContact.Relationship":
		return "Emergency contact must have name, relationship, and phoneNumber"
	}
	return "Missing required fields: name, email, password, emergencyContact"
}
