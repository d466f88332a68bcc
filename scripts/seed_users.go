package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/qcbd/app-beneficiary/internal/config"
	"github.com/qcbd/app-beneficiary/internal/logging"
	"github.com/qcbd/app-beneficiary/internal/models"
	"github.com/qcbd/app-beneficiary/internal/services"
	"github.com/qcbd/app-beneficiary/internal/store"
)

// seedUsers are the staff accounts every fresh deployment starts with.
// Usernames must match the identity provider's preferred_username so
// /users/me resolves them; envUsername overrides the default.
var seedUsers = []struct {
	envUsername string
	req         models.UserRequest
}{
	{
		envUsername: "SEED_ADMIN_USERNAME",
		req: models.UserRequest{
			Username: "admin",
			FullName: "System Administrator",
			Roles:    []models.Role{models.RoleAdmin},
		},
	},
	{
		envUsername: "SEED_QC_SWD_USERNAME",
		req: models.UserRequest{
			Username: "qc.swd",
			FullName: "QC Social Welfare Department",
			Roles:    []models.Role{models.RoleQcSwd},
		},
	},
}

func main() {
	fmt.Println("Seeding staff accounts...")

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize MongoDB
	if err := config.InitMongoDB(); err != nil {
		log.Fatalf("Failed to initialize MongoDB: %v", err)
	}
	defer config.CloseConnections(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	users := services.NewUserService(
		store.NewMongoUserStore(config.MongoDB.Collection(config.AppConfig.UserCollection)),
		nil, nil, config.AppConfig.MaxUploadSize, logging.Logger)

	created := 0
	for _, seed := range seedUsers {
		req := seed.req
		if username := strings.TrimSpace(os.Getenv(seed.envUsername)); username != "" {
			req.Username = username
		}

		user, err := users.Create(ctx, req)
		if errors.Is(err, models.ErrUsernameExists) {
			fmt.Printf("  - [%s] already exists, skipped\n", req.Username)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create %s: %v", req.Username, err)
		}
		created++
		fmt.Printf("  + [%s] %s %v\n", user.ID, user.FullName, user.Roles)
	}

	fmt.Printf("Seeding completed: %d of %d accounts created\n", created, len(seedUsers))
}
