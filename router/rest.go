package router

import (
	"chat-service/controller"
	"chat-service/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

type Controllers struct {
	Auth    *controller.AuthController
	User    *controller.UserController
	Friend  *controller.FriendController
	Chat    *controller.ChatController
	Message *controller.MessageController
	Ai      *controller.AiController
	Admin   *controller.AdminController
}

func Rest(app *fiber.App, ctrl Controllers, accessKey string, enforcer *casbin.Enforcer) {
	api := app.Group("/v1", logger.New())

	authed := []fiber.Handler{middleware.JWT(accessKey), middleware.OTP()}

	// Auth
	auth := api.Group("/auth")
	auth.Post("/signup", ctrl.Auth.Signup)
	auth.Post("/signin", ctrl.Auth.Signin)
	auth.Post("/token/renew", ctrl.Auth.TokenRenew)
	auth.Post("/2fa/secret", authed[0], authed[1], ctrl.Auth.OtpSecret)
	auth.Post("/2fa/verify", authed[0], authed[1], ctrl.Auth.OtpVerify)
	auth.Post("/2fa/validate", authed[0], ctrl.Auth.OtpValidate)
	auth.Post("/2fa/disable", authed[0], authed[1], ctrl.Auth.OtpDisable)

	// User
	user := api.Group("/user", authed...)
	user.Get("/profile", ctrl.User.Profile)
	user.Get("/find/:id", ctrl.User.FindById)
	user.Get("/findbyusername/:username", ctrl.User.FindByUsername)

	// Friends
	friend := api.Group("/friend", authed...)
	friend.Get("/", ctrl.Friend.List)
	friend.Get("/request", ctrl.Friend.Requests)
	friend.Post("/request", ctrl.Friend.Request)
	friend.Put("/", ctrl.Friend.Accept)
	friend.Delete("/:id", ctrl.Friend.Remove)

	// Chats
	chat := api.Group("/chat", authed...)
	chat.Get("/", ctrl.Chat.List)
	chat.Post("/", ctrl.Chat.Create)
	chat.Get("/:id", ctrl.Chat.Get)
	chat.Get("/:id/messages", ctrl.Message.List)
	chat.Delete("/:id", ctrl.Chat.Delete)

	// Messages
	message := api.Group("/message", authed...)
	message.Post("/", ctrl.Message.Send)

	// AI assistant
	ai := api.Group("/ai", authed...)
	ai.Get("/new", ctrl.Ai.NewChat)
	ai.Get("/:id", ctrl.Ai.Get)
	ai.Post("/", ctrl.Ai.Send)

	// Admin
	admin := api.Group("/admin", authed[0], authed[1], middleware.RBAC(enforcer))
	admin.Get("/users", ctrl.Admin.Users)
}
