package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"chat-service/config"
	"chat-service/controller"
	"chat-service/database"
	"chat-service/event"
	"chat-service/fanout"
	"chat-service/router"
	"chat-service/service"
	"chat-service/socketio"
	"chat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/tmc/langchaingo/llms/openai"
)

func main() {
	log.SetPrefix("chat-service: ")

	rest := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "chat-service",
	})

	rest.Use(cors.New())

	db, err := database.PostgresConnect(database.PostgresConfig{
		Host:     config.Config("POSTGRES_HOST"),
		Port:     config.Config("POSTGRES_PORT"),
		User:     config.Config("POSTGRES_USER"),
		Password: config.Config("POSTGRES_PASSWORD"),
		DB:       config.Config("POSTGRES_DB"),
	})
	if err != nil {
		log.Fatal(err)
	}

	redisClients := database.RedisConnect(database.RedisConfig{
		Host:     config.Config("REDIS_HOST"),
		Port:     config.Config("REDIS_PORT"),
		Password: config.Config("REDIS_PASSWORD"),
	}, 0, 1)

	enforcer, err := database.Casbin(db)
	if err != nil {
		log.Fatal(err)
	}

	jwtCfg := utils.JWTConfig{
		AccessKey:     config.Config("JWT_ACCESS_KEY"),
		RefreshKey:    config.Config("JWT_REFRESH_KEY"),
		AccessExpire:  expireMinutes("JWT_ACCESS_EXPIRE"),
		RefreshExpire: expireMinutes("JWT_REFRESH_EXPIRE"),
	}

	bus, err := event.RabbitMQConnect(event.RabbitMQConfig{
		Host:     config.Config("RABBITMQ_HOST"),
		Port:     config.Config("RABBITMQ_PORT"),
		User:     config.Config("RABBITMQ_USER"),
		Password: config.Config("RABBITMQ_PASSWORD"),
	}, "chat-events")
	if err != nil {
		log.Fatal(err)
	}

	llm, err := openai.New(
		openai.WithToken(config.Config("OPENAI_API_KEY")),
		openai.WithBaseURL(config.Config("OPENAI_BASE_URL")),
		openai.WithModel(config.Config("OPENAI_MODEL")),
	)
	if err != nil {
		log.Fatal(err)
	}

	socket := socketio.Init(rest, socketio.Config{
		AccessKey: jwtCfg.AccessKey,
		Redis:     redisClients[1],
	})

	fo := fanout.New(socket, bus)

	friends := service.NewFriendService(db)
	chats := service.NewChatService(db, friends, fo)
	messages := service.NewMessageService(db, fo)
	ai := service.NewAiService(db, llm)

	router.Rest(rest, router.Controllers{
		Auth: &controller.AuthController{
			DB:        db,
			Redis:     redisClients[0],
			Enforcer:  enforcer,
			JWT:       jwtCfg,
			OtpIssuer: config.Config("OTP_ISSUER"),
		},
		User:    &controller.UserController{DB: db},
		Friend:  &controller.FriendController{Friends: friends},
		Chat:    &controller.ChatController{Chats: chats},
		Message: &controller.MessageController{Messages: messages},
		Ai:      &controller.AiController{Ai: ai},
		Admin:   &controller.AdminController{DB: db},
	}, jwtCfg.AccessKey, enforcer)
	router.Socket(socket, chats)

	go rest.Listen(fmt.Sprintf(":%s", config.Config("SERVER_PORT")))

	exit := make(chan struct{})
	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				close(exit)
				return
			}
		}
	}()

	<-exit
	socket.Close()
	bus.Close()
	os.Exit(0)
}

func expireMinutes(key string) time.Duration {
	minutes, _ := strconv.Atoi(config.Config(key))
	return time.Duration(minutes) * time.Minute
}
