package controller

import (
	"chat-service/service"

	"github.com/gofiber/fiber/v2"
)

type FriendController struct {
	Friends *service.FriendService
}

type FriendRequestInput struct {
	RequestedUser string `json:"requested_user"`
}

type FriendAcceptInput struct {
	FriendId uint `json:"friend_id"`
}

func (f *FriendController) List(c *fiber.Ctx) error {
	friends, err := f.Friends.ListFriends(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return success(c, friends)
}

func (f *FriendController) Requests(c *fiber.Ctx) error {
	requests, err := f.Friends.ListPendingIncoming(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return success(c, requests)
}

func (f *FriendController) Request(c *fiber.Ctx) error {
	input := new(FriendRequestInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}
	if input.RequestedUser == "" {
		return badRequest(c, "Requested user is required")
	}

	if _, err := f.Friends.Request(c.Context(), userID(c), input.RequestedUser); err != nil {
		return fail(c, err)
	}
	return successMessage(c, "Friend request sent to "+input.RequestedUser)
}

func (f *FriendController) Accept(c *fiber.Ctx) error {
	input := new(FriendAcceptInput)
	if err := c.BodyParser(input); err != nil {
		return badRequest(c, "Review your input")
	}

	edge, err := f.Friends.Accept(c.Context(), userID(c), input.FriendId)
	if err != nil {
		return fail(c, err)
	}
	return success(c, edge)
}

func (f *FriendController) Remove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return badRequest(c, "Invalid user id")
	}

	if err := f.Friends.Remove(c.Context(), userID(c), uint(id)); err != nil {
		return fail(c, err)
	}
	return successMessage(c, "Relationship removed")
}
