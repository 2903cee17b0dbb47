package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"rhythmcloud/config"
	"rhythmcloud/db"

	"github.com/spf13/cobra"
)

var mongoCmd = &cobra.Command{
	Use:   "mongo",
	Short: "Check the MongoDB connection",
	Long:  `Connect to MongoDB, verify the connection with a ping, and ensure the indexes the application relies on.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MongoDB: %s, database: %s\n", cfg.MongoURI, cfg.MongoDB)

		if err := db.ConnectMongo(cfg); err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer db.CloseMongo()
		fmt.Println("MongoDB connection OK")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.EnsureIndexes(ctx); err != nil {
			log.Fatalf("Failed to ensure indexes: %v", err)
		}
		fmt.Println("Indexes OK")
	},
}

func init() {
	rootCmd.AddCommand(mongoCmd)
}
