package controller

import (
	"chat-service/model"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AdminController struct {
	DB *gorm.DB
}

func (a *AdminController) Users(c *fiber.Ctx) error {
	var users []model.User
	if err := a.DB.Order("id").Find(&users).Error; err != nil {
		return fail(c, err)
	}

	projections := make([]fiber.Map, 0, len(users))
	for i := range users {
		projections = append(projections, fiber.Map{
			"id":       users[i].ID,
			"created":  users[i].CreatedAt.Unix(),
			"username": users[i].Username,
			"email":    users[i].Email,
			"role":     users[i].Role,
			"otp":      users[i].Otp_enabled,
		})
	}
	return success(c, projections)
}
