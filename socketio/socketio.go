package socketio

import (
	"context"
	"strconv"
	"time"

	"chat-service/fanout"
	"chat-service/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/zishang520/socket.io-go-redis/adapter"
	r_type "github.com/zishang520/socket.io-go-redis/types"
	"github.com/zishang520/socket.io/v2/socket"
)

// Server wraps the socket.io server and implements fanout.Publisher by
// emitting to the room named after the channel. Authenticated clients join
// their own chats-<id> channel on connect; message channels are joined via
// the "subscribe" handler after a participant check.
type Server struct {
	io *socket.Server
}

type Config struct {
	AccessKey string
	Redis     *redis.Client
}

func Init(app *fiber.App, cfg Config) *Server {
	options := socket.DefaultServerOptions()
	options.SetServeClient(true)
	options.SetAllowEIO3(true)
	options.SetPingInterval(300 * time.Millisecond)
	options.SetPingTimeout(200 * time.Millisecond)
	options.SetMaxHttpBufferSize(100000000)
	options.SetConnectTimeout(1000 * time.Millisecond)
	if cfg.Redis != nil {
		options.SetAdapter(&adapter.RedisAdapterBuilder{
			Redis: r_type.NewRedisClient(context.Background(), cfg.Redis),
			Opts:  &adapter.RedisAdapterOptions{},
		})
	}

	io := socket.NewServer(nil, nil)

	io.Use(func(client *socket.Socket, next func(*socket.ExtendedError)) {
		token, auth := client.Conn().Request().Query().Get("token")

		if auth {
			claims, err := utils.CheckAndExtractTokenMetadata(token, cfg.AccessKey)

			if err == nil && !claims.Otp {
				if id, err := strconv.ParseUint(claims.Id, 10, 64); err == nil {
					client.Join(socket.Room(fanout.ChatsChannel(uint(id))))
					client.SetData(claims)
				}
			}
		}

		next(nil)
	})

	app.Get("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))
	app.Post("/socket.io/", adaptor.HTTPHandler(io.ServeHandler(options)))

	return &Server{io: io}
}

func (s *Server) IO() *socket.Server { return s.io }

// Publish emits an event to every client subscribed to the channel.
func (s *Server) Publish(channel string, event string, payload any) {
	s.io.To(socket.Room(channel)).Emit(event, payload)
}

func (s *Server) Close() {
	s.io.Close(nil)
}
