package bootstrap

import (
	"context"
	"fmt"

	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/infrastructure/database"
	"clinic-booking-service/internal/repository"
	"clinic-booking-service/internal/service"
	"clinic-booking-service/internal/usecase"
	"clinic-booking-service/pkg/validator"
)

// CreateUser provisions an account straight against the database. It is how
// the first admin gets created before anyone can log in.
func CreateUser(ctx context.Context, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if err := validator.NewValidator().Validate(req); err != nil {
		return nil, fmt.Errorf("invalid user: %w", err)
	}

	db, err := database.NewPostgresConnection(cfg.DB, cfg.App)
	if err != nil {
		return nil, err
	}
	app := &App{DB: db}
	defer app.Close()

	userRepo := repository.NewUserRepository()
	auditService := service.NewAuditService(log, repository.NewAuditLogRepository())

	// Account creation never touches tokens, so no JWT service or Redis client
	authUsecase := usecase.NewAuthUsecase(db, log, userRepo, repository.NewDoctorRepository(),
		repository.NewPatientRepository(), usecase.NewCredentialVerifier(db, userRepo), auditService, nil, nil)

	return authUsecase.CreateUser(ctx, entity.Actor{Role: entity.RoleAdmin}, req)
}

// Migrate opens a migrator for the configured database
func Migrate() (*database.Migrator, error) {
	cfg, log, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return database.NewMigrator(cfg.DB, log)
}
