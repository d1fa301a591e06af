package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"

	"packvault/config"
	"packvault/storage"
)

var (
	minioPrefix string
	minioStats  bool
	minioDelete bool
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the asset bucket",
	Long:  `List, summarize or delete objects in the PackVault asset bucket (covers, samples, stems).`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to connect to MinIO: %v", err)
		}
		client := storage.GetMinioClient()
		ctx := context.Background()

		objects := client.ListObjects(ctx, cfg.MinioBucket, minio.ListObjectsOptions{
			Prefix:    minioPrefix,
			Recursive: true,
		})

		if minioDelete {
			if minioPrefix == "" {
				log.Fatal("--prefix is required for delete")
			}
			var deleted int
			for object := range objects {
				if object.Err != nil {
					log.Fatalf("Failed to list objects: %v", object.Err)
				}
				if err := client.RemoveObject(ctx, cfg.MinioBucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
					log.Fatalf("Failed to delete %s: %v", object.Key, err)
				}
				deleted++
			}
			fmt.Printf("Deleted %d objects under %s\n", deleted, minioPrefix)
			return
		}

		var count int
		var totalSize int64
		for object := range objects {
			if object.Err != nil {
				log.Fatalf("Failed to list objects: %v", object.Err)
			}
			count++
			totalSize += object.Size
			if !minioStats {
				fmt.Printf("%12d  %s\n", object.Size, object.Key)
			}
		}
		fmt.Printf("%d objects, %d bytes total\n", count, totalSize)
	},
}

func init() {
	minioCmd.Flags().StringVarP(&minioPrefix, "prefix", "p", "", "object key prefix (covers/, samples/, stems/)")
	minioCmd.Flags().BoolVarP(&minioStats, "stats", "s", false, "print totals only")
	minioCmd.Flags().BoolVarP(&minioDelete, "delete", "d", false, "delete all objects under the prefix")
	rootCmd.AddCommand(minioCmd)
}
