package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type ChatController struct {
	Chats *service.ChatService
}

type ChatCreateInput struct {
	FriendId uint `json:"friend_id"`
}

func (h *ChatController) List(c *fiber.Ctx) error {
	chats, err := h.Chats.ListForUser(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return success(c, chats)
}

func (h *ChatController) Create(c *fiber.Ctx) error {
	input := new(ChatCreateInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	chat, created, err := h.Chats.ResolveOrCreate(c.Context(), userID(c), input.FriendId)
	if err != nil {
		return fail(c, err)
	}
	if created {
		c.Status(fiber.StatusCreated)
	}
	return success(c, chat)
}

func (h *ChatController) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid chat id")
	}

	chat, err := h.Chats.Get(c.Context(), userID(c), uint(id))
	if err != nil {
		return fail(c, err)
	}
	return success(c, chat)
}

func (h *ChatController) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid chat id")
	}

	if err := h.Chats.Remove(c.Context(), userID(c), uint(id)); err != nil {
		return fail(c, err)
	}
	return successMessage(c, "Chat deleted")
}
