package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"gossip/internal/service"
)

var validate = validator.New()

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// tokenResponse carries the token alongside the user record.
type tokenResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    string `json:"data"`
	User    any    `json:"user"`
}

// @Summary      Sign up
// @Description  Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body signupRequest true "Signup input"
// @Success      201  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Router       /signup [post]
func handleSignup(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := authSvc.Register(r.Context(), service.RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusCreated, user)
	}
}

// @Summary      Login
// @Description  Login with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body loginRequest true "Login input"
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  apiResponse
// @Router       /login [post]
func handleLogin(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := authSvc.Login(r.Context(), service.LoginInput{
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			Success: true,
			Message: "Token Generated",
			Data:    resp.AccessToken,
			User:    resp.User,
		})
	}
}

type otpGenerateRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type otpVerifyRequest struct {
	UserID int64  `json:"userId" validate:"required"`
	OTP    string `json:"otp" validate:"required"`
}

// @Summary      Generate TOTP secret
// @Description  Create a TOTP enrollment for the account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body otpGenerateRequest true "Account email"
// @Success      200  {object}  apiResponse
// @Router       /otp/generate [post]
func handleOTPGenerate(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpGenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		enrollment, err := authSvc.GenerateTOTP(r.Context(), req.Email)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeData(w, http.StatusOK, enrollment)
	}
}

// @Summary      Verify TOTP code
// @Description  Validate a TOTP code, enable MFA, and return a fresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body otpVerifyRequest true "User id and code"
// @Success      200  {object}  tokenResponse
// @Failure      401  {object}  apiResponse
// @Router       /otp/verify [post]
func handleOTPVerify(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req otpVerifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := authSvc.VerifyTOTP(r.Context(), req.UserID, req.OTP)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tokenResponse{
			Success: true,
			Message: "Otp Verified",
			Data:    resp.AccessToken,
			User:    resp.User,
		})
	}
}
