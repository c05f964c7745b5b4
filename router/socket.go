package router

import (
	"context"
	"strconv"

	"chat-service/fanout"
	"chat-service/service"
	"chat-service/socketio"
	"chat-service/utils"

	"github.com/zishang520/socket.io/v2/socket"
)

// Socket wires the realtime surface. Authenticated clients already sit in
// their chats-<id> channel (joined by the connection middleware); here they
// can pull their chat list and subscribe to per-chat message channels after
// a participant check.
func Socket(server *socketio.Server, chats *service.ChatService) {
	server.IO().On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		client.On("init", func(args ...interface{}) {
			id, ok := clientUserID(client)
			if !ok {
				client.Emit("init", []service.ChatView{})
				return
			}

			views, err := chats.ListForUser(context.Background(), id)
			if err != nil {
				client.Emit("init", []service.ChatView{})
				return
			}
			client.Emit("init", views)
		})

		client.On("subscribe", func(args ...interface{}) {
			id, ok := clientUserID(client)
			if !ok || len(args) == 0 {
				return
			}

			chatID, err := strconv.ParseUint(toString(args[0]), 10, 64)
			if err != nil {
				return
			}

			// Get enforces participation; outsiders cannot join a chat's
			// message channel.
			if _, err := chats.Get(context.Background(), id, uint(chatID)); err != nil {
				return
			}

			client.Join(socket.Room(fanout.MessagesChannel(uint(chatID), id)))
		})

		client.On("unsubscribe", func(args ...interface{}) {
			id, ok := clientUserID(client)
			if !ok || len(args) == 0 {
				return
			}

			chatID, err := strconv.ParseUint(toString(args[0]), 10, 64)
			if err != nil {
				return
			}

			client.Leave(socket.Room(fanout.MessagesChannel(uint(chatID), id)))
		})
	})
}

func clientUserID(client *socket.Socket) (uint, bool) {
	claims, ok := client.Data().(*utils.TokenMetadata)
	if !ok || claims == nil {
		return 0, false
	}
	id, err := strconv.ParseUint(claims.Id, 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func toString(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
