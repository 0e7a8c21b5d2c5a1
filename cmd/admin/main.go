package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/nagarajgmcs24/fwdproject/internal/api/handler"
	"github.com/nagarajgmcs24/fwdproject/internal/attachment"
	"github.com/nagarajgmcs24/fwdproject/internal/complaint"
	"github.com/nagarajgmcs24/fwdproject/internal/config"
	"github.com/nagarajgmcs24/fwdproject/internal/models"
	"github.com/nagarajgmcs24/fwdproject/internal/storage"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const usage = `Usage: admin <command> [args]

Commands:
  set-status <complaint_id> <status>       pending|verified|in_progress|resolved|rejected
  add-update <complaint_id> <author> <text>
  reclassify <complaint_id>
  reclassify-pending                       classify complaints left pending
  issue-token <operator_name>
  delete-object <object_name|image_url>    remove a stored photo, e.g. an orphaned upload
  seed <file.json>                         {"wards": [...], "categories": [...]}`

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	command := os.Args[1]
	if command == "issue-token" {
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin issue-token <operator_name>")
			os.Exit(1)
		}
		token, err := handler.GenerateOperatorToken([]byte(cfg.JWTSecret), os.Args[2], cfg.OperatorTokenTTL)
		if err != nil {
			log.Fatalf("Error issuing token: %v", err)
		}
		fmt.Println(token)
		return
	}
	if command == "delete-object" {
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin delete-object <object_name|image_url>")
			os.Exit(1)
		}
		ctx := context.Background()
		store, err := attachment.NewS3Store(ctx, attachment.S3Options{
			Region:        cfg.S3Region,
			Endpoint:      cfg.S3Endpoint,
			PublicBaseURL: cfg.S3PublicBaseURL,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
		})
		if err != nil {
			log.Fatalf("Error configuring attachment store: %v", err)
		}
		name, err := deleteObject(ctx, store, cfg.S3Bucket, os.Args[2])
		if err != nil {
			log.Fatalf("Error deleting object: %v", err)
		}
		fmt.Printf("Deleted %s from bucket %s.\n", name, cfg.S3Bucket)
		return
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	ctx := context.Background()
	storageSvc := storage.NewStorageService(db, connectRedis(ctx, cfg), zap.NewNop())
	svc := complaint.NewService(storageSvc, nil, nil, nil, nil)

	switch command {
	case "set-status":
		if len(os.Args) != 4 {
			fmt.Println("Usage: admin set-status <complaint_id> <status>")
			os.Exit(1)
		}
		if err := svc.SetStatus(ctx, os.Args[2], os.Args[3]); err != nil {
			log.Fatalf("Error setting status: %v", err)
		}
		fmt.Printf("Complaint %s is now %s.\n", os.Args[2], os.Args[3])
	case "add-update":
		if len(os.Args) < 5 {
			fmt.Println("Usage: admin add-update <complaint_id> <author> <text>")
			os.Exit(1)
		}
		text := strings.Join(os.Args[4:], " ")
		update, err := svc.AddUpdate(ctx, os.Args[2], text, os.Args[3])
		if err != nil {
			log.Fatalf("Error adding update: %v", err)
		}
		fmt.Printf("Update %s added to complaint %s.\n", update.ID, os.Args[2])
	case "reclassify":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin reclassify <complaint_id>")
			os.Exit(1)
		}
		outcome, err := svc.Reclassify(ctx, os.Args[2])
		if err != nil {
			log.Fatalf("Error reclassifying complaint: %v", err)
		}
		fmt.Printf("Complaint %s: %s (%s)\n", os.Args[2], outcome.Status, outcome.Notes)
	case "reclassify-pending":
		n, err := svc.ReclassifyPending(ctx)
		if err != nil {
			log.Fatalf("Error reclassifying pending complaints: %v", err)
		}
		fmt.Printf("Classified %d pending complaints.\n", n)
	case "seed":
		if len(os.Args) != 3 {
			fmt.Println("Usage: admin seed <file.json>")
			os.Exit(1)
		}
		if err := storageSvc.AutoMigrate(); err != nil {
			log.Fatalf("Error running migrations: %v", err)
		}
		wards, categories, err := seedReferenceData(ctx, storageSvc, os.Args[2])
		if err != nil {
			log.Fatalf("Error seeding reference data: %v", err)
		}
		fmt.Printf("Seeded %d wards and %d categories.\n", wards, categories)
	default:
		fmt.Println("Unknown command")
		fmt.Println(usage)
		os.Exit(1)
	}
}

// connectRedis returns nil when Redis is unreachable; status changes are
// then not announced to connected portals.
func connectRedis(ctx context.Context, cfg *config.Config) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis unavailable, continuing without it: %v", err)
		rdb.Close()
		return nil
	}
	return rdb
}

// deleteObject removes the object behind ref, which may be the image URL
// logged for an orphaned upload.
func deleteObject(ctx context.Context, store attachment.Store, bucket, ref string) (string, error) {
	name, err := attachment.ObjectNameFromRef(ref)
	if err != nil {
		return "", err
	}
	if err := store.Delete(ctx, bucket, name); err != nil {
		return "", err
	}
	return name, nil
}

type referenceData struct {
	Wards      []models.Ward            `json:"wards"`
	Categories []models.ProblemCategory `json:"categories"`
}

func seedReferenceData(ctx context.Context, s *storage.Service, path string) (int, int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, 0, err
	}
	var data referenceData
	if err := json.Unmarshal(raw, &data); err != nil {
		return 0, 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := s.SaveReferenceData(ctx, data.Wards, data.Categories); err != nil {
		return 0, 0, err
	}
	return len(data.Wards), len(data.Categories), nil
}
