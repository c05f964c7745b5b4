package database

import (
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

// RedisConnect opens one client per logical database: 0 holds refresh
// tokens, 1 backs the socket.io adapter.
func RedisConnect(cfg RedisConfig, dbs ...int) map[int]*redis.Client {
	clients := make(map[int]*redis.Client, len(dbs))
	for _, db := range dbs {
		clients[db] = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       db,
		})
	}
	log.Printf("Connections opened to Redis")
	return clients
}
