package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type MessageController struct {
	Messages *service.MessageService
}

type MessageSendInput struct {
	ChatId uint   `json:"chat_id"`
	Body   string `json:"body"`
}

func (m *MessageController) Send(c *fiber.Ctx) error {
	input := new(MessageSendInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	message, err := m.Messages.Append(c.Context(), userID(c), input.ChatId, input.Body)
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	return success(c, message)
}

func (m *MessageController) List(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid chat id")
	}

	limit := c.QueryInt("limit", 50)
	before := c.QueryInt("before_id", 0)

	messages, err := m.Messages.List(c.Context(), userID(c), uint(id), limit, uint(before))
	if err != nil {
		return fail(c, err)
	}
	return success(c, messages)
}
