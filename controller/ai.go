package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type AiController struct {
	Ai *service.AiService
}

type AiSendInput struct {
	ChatId uint   `json:"chat_id"`
	Prompt string `json:"prompt"`
}

func (a *AiController) NewChat(c *fiber.Ctx) error {
	chat, err := a.Ai.NewChat(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	c.Status(fiber.StatusCreated)
	return success(c, chat)
}

func (a *AiController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid chat id")
	}

	chat, err := a.Ai.Get(c.Context(), userID(c), uint(id))
	if err != nil {
		return fail(c, err)
	}
	return success(c, chat)
}

func (a *AiController) Send(c *fiber.Ctx) error {
	input := new(AiSendInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	reply, err := a.Ai.Send(c.Context(), userID(c), input.ChatId, input.Prompt)
	if err != nil {
		return fail(c, err)
	}
	return success(c, reply)
}
