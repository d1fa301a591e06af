package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"packvault/cache"
	"packvault/config"
	"packvault/db"
)

var redisFlush bool

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Ping Redis and optionally flush the cached showcase (active banner and popup).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis: %s:%s, DB: %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := db.ConnectRedis(cfg); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		fmt.Println("Redis connection OK")

		if redisFlush {
			cache.InvalidateShowcase(context.Background())
			fmt.Println("Showcase cache flushed")
		}

		if err := db.CloseRedis(); err != nil {
			log.Printf("Error closing Redis connection: %v", err)
		}
	},
}

func init() {
	redisCmd.Flags().BoolVarP(&redisFlush, "flush", "f", false, "flush the cached showcase")
	rootCmd.AddCommand(redisCmd)
}
