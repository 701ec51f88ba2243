package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/debatify/backend/internal/mailer"
	"github.com/debatify/backend/internal/models"
	"github.com/debatify/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const otpValidity = 10 * time.Minute

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	userRepository repositories.UserRepository
	otpRepository  repositories.OtpRepository
	mailSender     mailer.Sender
	firebaseAuth   *auth.Client // nil when social login is not configured
	jwtSecret      string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userRepo repositories.UserRepository, otpRepo repositories.OtpRepository, mailSender mailer.Sender, firebaseAuth *auth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		userRepository: userRepo,
		otpRepository:  otpRepo,
		mailSender:     mailSender,
		firebaseAuth:   firebaseAuth,
		jwtSecret:      jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, authMW echo.MiddlewareFunc) {
	g.POST("/signup", h.Signup)
	g.POST("/login", h.Login)
	g.POST("/verify-email", h.VerifyEmail)
	g.POST("/request-verification-otp", h.RequestVerificationOtp)
	g.POST("/request-password-reset", h.RequestPasswordReset)
	g.POST("/reset-password", h.ResetPassword)
	g.PUT("/profile/change-password", h.ChangePassword, authMW)
	if h.firebaseAuth != nil {
		g.POST("/firebase-login", h.FirebaseLogin)
	}
}

// Signup registers a new unverified user and emails a verification OTP
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	email := strings.ToLower(req.Email)

	if _, err := h.userRepository.GetUserByEmail(email); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username or email already exists")
	}
	if _, err := h.userRepository.GetUserByUsername(req.Username); err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Username or email already exists")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := &models.User{
		Username:   req.Username,
		Email:      email,
		Password:   string(hashedPassword),
		IsVerified: false,
	}
	if err := h.userRepository.CreateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.issueOtp(email, "Verify Your Email", "Your verification OTP is %s. It expires in 10 minutes."); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send verification email")
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Signup successful. OTP sent to email for verification."})
}

// Login authenticates by email or username and returns a JWT
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByIdentifier(req.Identifier)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email/username or password")
	}

	if !user.IsVerified {
		return echo.NewHTTPError(http.StatusUnauthorized, "Please verify your email first")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid email/username or password")
	}

	token, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":  fmt.Sprintf("Welcome back, %s", user.Username),
		"token":    token,
		"userId":   user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

// VerifyEmail consumes a valid OTP and marks the account verified
func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req models.VerifyEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	otp, err := h.otpRepository.FindByEmailAndCode(req.Email, req.Otp)
	if err != nil || otp.Expired(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid or expired OTP")
	}

	if err := h.userRepository.MarkVerified(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.otpRepository.DeleteByEmail(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Email verified successfully"})
}

// RequestVerificationOtp reissues a verification OTP for an unverified
// account; the new code supersedes any earlier ones
func (h *AuthHandler) RequestVerificationOtp(c echo.Context) error {
	var req struct {
		Identifier string `json:"identifier" validate:"required"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByIdentifier(req.Identifier)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}
	if user.IsVerified {
		return echo.NewHTTPError(http.StatusBadRequest, "Email already verified")
	}

	if err := h.issueOtp(user.Email, "Verify Your Email", "Your OTP for email verification is %s. It is valid for 10 minutes."); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send verification email")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email for verification"})
}

// RequestPasswordReset emails a password reset OTP
func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req struct {
		Email string `json:"email" validate:"required,email"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := h.issueOtp(user.Email, "Password Reset OTP", "Your OTP for password reset is %s. It is valid for 10 minutes."); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send reset email")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to email"})
}

// ResetPassword sets a new password after OTP verification
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req models.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	otp, err := h.otpRepository.FindByEmailAndCode(req.Email, req.Otp)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid OTP")
	}
	if otp.Expired(time.Now()) {
		return echo.NewHTTPError(http.StatusBadRequest, "Expired OTP")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	if err := h.userRepository.UpdatePassword(req.Email, string(hashedPassword)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.otpRepository.DeleteByEmail(req.Email); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successful"})
}

// ChangePassword updates the password of the authenticated user after
// checking the old one
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.ChangePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(currentUserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Incorrect old password")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user.Password = string(hashedPassword)
	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password changed successfully"})
}

// FirebaseLoginRequest defines the request body for Firebase login
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT,
// creating the account on first login
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.firebaseAuth.VerifyIDToken(context.Background(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	email, _ := token.Claims["email"].(string)
	if email == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Firebase token has no email claim")
	}
	email = strings.ToLower(email)

	user, err := h.userRepository.GetUserByEmail(email)
	if err == gorm.ErrRecordNotFound {
		username := email[:strings.Index(email, "@")]
		if name, ok := token.Claims["name"].(string); ok && name != "" {
			username = name
		}
		user = &models.User{
			Username:   username,
			Email:      email,
			IsVerified: true, // identity already verified by the provider
		}
		if err := h.userRepository.CreateUser(user); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	localToken, err := h.generateJWT(user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localToken, "userId": user.ID, "username": user.Username})
}

// issueOtp stores a fresh code for the email (superseding older ones)
// and mails it using the given subject and body template
func (h *AuthHandler) issueOtp(email, subject, bodyFormat string) error {
	code := fmt.Sprintf("%d", 100000+rand.Intn(900000))
	otp := &models.Otp{
		Email:     email,
		Code:      code,
		ExpiresAt: time.Now().Add(otpValidity),
	}
	if err := h.otpRepository.ReplaceForEmail(otp); err != nil {
		return err
	}
	return h.mailSender.Send(email, subject, fmt.Sprintf(bodyFormat, code))
}

func (h *AuthHandler) generateJWT(user *models.User) (string, error) {
	claims := &models.JwtCustomClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(7 * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
