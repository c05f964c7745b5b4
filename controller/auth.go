package controller

import (
	"context"
	"fmt"
	"net/mail"
	"strconv"
	"strings"

	"chat-service/model"
	apperrors "chat-service/pkg/errors"
	"chat-service/utils"

	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB        *gorm.DB
	Redis     *redis.Client
	Enforcer  *casbin.Enforcer
	JWT       utils.JWTConfig
	OtpIssuer string
}

type AuthSignupInput struct {
	Username     string `json:"username"`
	Password     string `json:"password"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfilePhoto string `json:"profile_photo"`
}

type AuthLoginInput struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type AuthRenewTokenInput struct {
	RefreshToken string `json:"refresh_token"`
}

type AuthOtpSecretInput struct {
	Password string `json:"password"`
}

type AuthOtpVerifyInput struct {
	Token string `json:"token"`
}

type AuthOtpValidateInput struct {
	Token string `json:"token"`
}

type AuthOtpDisableInput struct {
	Password string `json:"password"`
	Token    string `json:"token"`
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	input := new(AuthSignupInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	input.Username = strings.ToLower(strings.TrimSpace(input.Username))
	if len(input.Username) < 3 {
		return badRequest(c, "Username must be at least 3 characters long")
	}
	if len(input.Password) < 7 {
		return badRequest(c, "Password must be at least 7 characters long")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return badRequest(c, "Must supply a valid email")
	}
	if input.FirstName == "" || input.LastName == "" {
		return badRequest(c, "First and last name are required")
	}

	if count := a.DB.
		Where(&model.User{Email: input.Email}).
		First(new(model.User)).
		RowsAffected; count > 0 {
		return fail(c, apperrors.ErrEmailTaken)
	}

	if count := a.DB.
		Where(&model.User{Username: input.Username}).
		First(new(model.User)).
		RowsAffected; count > 0 {
		return fail(c, apperrors.ErrUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), 14)
	if err != nil {
		return fail(c, err)
	}

	// Generate OTP secret
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      a.OtpIssuer,
		AccountName: input.Email,
		SecretSize:  15,
	})
	if err != nil {
		return fail(c, err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		Password:     string(hash),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		ProfilePhoto: input.ProfilePhoto,
		Role:         "user",
		Otp_secret:   key.Secret(),
	}
	if err := a.DB.Create(user).Error; err != nil {
		return fail(c, err)
	}

	// Add casbin grouping so RBAC sees the new user's role.
	a.Enforcer.AddGroupingPolicy(fmt.Sprint(user.ID), user.Role)

	return success(c, fiber.Map{
		"id": user.ID,
	})
}

func (a *AuthController) Signin(c *fiber.Ctx) error {
	input := new(AuthLoginInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel, err := new(model.User), *new(error)

	_, errParse := mail.ParseAddress(input.Login)
	if errParse == nil {
		err = a.DB.Where(&model.User{Email: input.Login}).First(&userModel).Error
	} else {
		err = a.DB.Where(&model.User{Username: strings.ToLower(input.Login)}).First(&userModel).Error
	}

	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	idStr := strconv.FormatUint(uint64(userModel.ID), 10)

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid login or password",
			"data":    nil,
		})
	}

	tokens, err := utils.GenerateTokens(a.JWT, idStr, userModel.Otp_enabled)
	if err != nil {
		return fail(c, err)
	}

	if err := a.Redis.Set(context.Background(), idStr, tokens.Refresh, 0).Err(); err != nil {
		return fail(c, err)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"2fa":     userModel.Otp_enabled,
	})
}

func (a *AuthController) TokenRenew(c *fiber.Ctx) error {
	renew := new(AuthRenewTokenInput)
	if err := c.BodyParser(renew); err != nil {
		return badRequest(c, "Review your input")
	}

	claims, err := utils.CheckAndExtractTokenMetadata(renew.RefreshToken, a.JWT.RefreshKey)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid token",
			"data":    nil,
		})
	}

	userToken, err := a.Redis.Get(context.Background(), claims.Id).Result()
	if err != nil {
		return fail(c, err)
	}

	if userToken != renew.RefreshToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Unauthorized, your refresh token was already used",
			"data":    nil,
		})
	}

	tokens, err := utils.GenerateTokens(a.JWT, claims.Id, claims.Otp)
	if err != nil {
		return fail(c, err)
	}

	// Rotate: the old refresh token is no longer valid.
	if err := a.Redis.Set(context.Background(), claims.Id, tokens.Refresh, 0).Err(); err != nil {
		return fail(c, err)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
		"2fa":     claims.Otp,
	})
}

func (a *AuthController) OtpSecret(c *fiber.Ctx) error {
	secret := new(AuthOtpSecretInput)
	if err := c.BodyParser(secret); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel := new(model.User)
	if err := a.DB.First(userModel, userID(c)).Error; err != nil {
		return fail(c, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(secret.Password)); err != nil {
		return badRequest(c, "Invalid password")
	}

	return success(c, fiber.Map{
		"secret": userModel.Otp_secret,
		"url": fmt.Sprintf("otpauth://totp/%s:%s?algorithm=SHA1&digits=6&issuer=%s&period=30&secret=%s",
			a.OtpIssuer,
			userModel.Email,
			a.OtpIssuer,
			userModel.Otp_secret,
		),
	})
}

func (a *AuthController) OtpVerify(c *fiber.Ctx) error {
	verify := new(AuthOtpVerifyInput)
	if err := c.BodyParser(verify); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel := new(model.User)
	if err := a.DB.First(userModel, userID(c)).Error; err != nil {
		return fail(c, err)
	}

	if userModel.Otp_enabled {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Verification has already been performed earlier",
			"data":    nil,
		})
	}

	if !totp.Validate(verify.Token, userModel.Otp_secret) {
		return badRequest(c, "Invalid token")
	}

	userModel.Otp_enabled = true
	a.DB.Save(userModel)

	return successMessage(c, "2FA enabled")
}

func (a *AuthController) OtpValidate(c *fiber.Ctx) error {
	validate := new(AuthOtpValidateInput)
	if err := c.BodyParser(validate); err != nil {
		return badRequest(c, "Review your input")
	}

	user := c.Locals("user").(*jwt.Token)
	claims := user.Claims.(jwt.MapClaims)

	userModel := new(model.User)
	if err := a.DB.First(userModel, claims["id"]).Error; err != nil {
		return fail(c, err)
	}

	if !userModel.Otp_enabled {
		return badRequest(c, "2FA has been disabled")
	}

	if !totp.Validate(validate.Token, userModel.Otp_secret) {
		return badRequest(c, "Invalid token")
	}

	tokens, err := utils.GenerateTokens(a.JWT, claims["id"].(string), false)
	if err != nil {
		return fail(c, err)
	}

	if err := a.Redis.Set(context.Background(), claims["id"].(string), tokens.Refresh, 0).Err(); err != nil {
		return fail(c, err)
	}

	return success(c, fiber.Map{
		"access":  tokens.Access,
		"refresh": tokens.Refresh,
	})
}

func (a *AuthController) OtpDisable(c *fiber.Ctx) error {
	disable := new(AuthOtpDisableInput)
	if err := c.BodyParser(disable); err != nil {
		return badRequest(c, "Review your input")
	}

	userModel := new(model.User)
	if err := a.DB.First(userModel, userID(c)).Error; err != nil {
		return fail(c, err)
	}

	if !userModel.Otp_enabled {
		return badRequest(c, "2FA not enabled")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userModel.Password), []byte(disable.Password)); err != nil {
		return badRequest(c, "Invalid password")
	}

	if !totp.Validate(disable.Token, userModel.Otp_secret) {
		return badRequest(c, "Invalid token")
	}

	userModel.Otp_enabled = false
	a.DB.Save(userModel)

	return successMessage(c, "2FA disabled")
}
