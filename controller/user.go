package controller

import (
	"strings"

	"chat-service/model"
	apperrors "chat-service/pkg/errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func (u *UserController) Profile(c *fiber.Ctx) error {
	userModel := new(model.User)
	if err := u.DB.First(userModel, userID(c)).Error; err != nil {
		return fail(c, err)
	}

	return success(c, fiber.Map{
		"id":       userModel.ID,
		"created":  userModel.CreatedAt.Unix(),
		"username": userModel.Username,
		"email":    userModel.Email,
		"role":     userModel.Role,
		"otp":      userModel.Otp_enabled,
		"profile":  userModel.Public(),
	})
}

func (u *UserController) FindById(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	userModel := new(model.User)
	if err := u.DB.First(userModel, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, apperrors.ErrUserNotFound)
		}
		return fail(c, err)
	}

	return success(c, userModel.Public())
}

func (u *UserController) FindByUsername(c *fiber.Ctx) error {
	username := strings.ToLower(c.Params("username"))

	userModel := new(model.User)
	if err := u.DB.Where(&model.User{Username: username}).First(userModel).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fail(c, apperrors.ErrUserNotFound)
		}
		return fail(c, err)
	}

	return success(c, userModel.Public())
}
