package cmd

import (
	"fmt"
	"log"

	"rhythmcloud/config"
	"rhythmcloud/logger"
	"rhythmcloud/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the MinIO connection",
	Long:  `Connect to the MinIO server and verify the configured bucket exists, creating it if necessary.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		logger.InitLogger(logger.Config{Level: logger.LogLevel(cfg.LogLevel)})
		fmt.Printf("MinIO: %s, bucket: %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		fmt.Println("MinIO connection OK")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
