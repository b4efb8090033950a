package usecase

import (
	"context"
	"strings"

	"clinic-booking-service/internal/converter"
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/domain/repository"
	"clinic-booking-service/internal/service"
	"clinic-booking-service/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CredentialVerifier checks a username and password and returns the account
type CredentialVerifier interface {
	Verify(ctx context.Context, username, password string) (*entity.User, error)
}

type bcryptCredentialVerifier struct {
	db       *gorm.DB
	userRepo repository.UserRepository
}

func NewCredentialVerifier(db *gorm.DB, userRepo repository.UserRepository) CredentialVerifier {
	return &bcryptCredentialVerifier{db: db, userRepo: userRepo}
}

func (v *bcryptCredentialVerifier) Verify(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := v.userRepo.FindByUsername(ctx, v.db, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

type AuthUsecase interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, actor entity.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error)
}

type authUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	userRepo     repository.UserRepository
	doctorRepo   repository.DoctorRepository
	patientRepo  repository.PatientRepository
	verifier     CredentialVerifier
	auditService service.AuditService
	jwtService   *jwt.JWTService
	redisClient  *redis.Client
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	verifier CredentialVerifier,
	auditService service.AuditService,
	jwtService *jwt.JWTService,
	redisClient *redis.Client,
) AuthUsecase {
	return &authUsecase{
		db:           db,
		log:          log,
		userRepo:     userRepo,
		doctorRepo:   doctorRepo,
		patientRepo:  patientRepo,
		verifier:     verifier,
		auditService: auditService,
		jwtService:   jwtService,
		redisClient:  redisClient,
	}
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.verifier.Verify(ctx, req.Username, req.Password)
	if err != nil {
		if err != ErrInvalidCredentials {
			u.log.Warnf("Failed to verify credentials: %+v", err)
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	tokens, err := u.issueTokens(ctx, subjectOf(user))
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, u.db, &user.ID, entity.AuditActionUserLogin, entity.JSON{
		"username": user.Username,
		"role":     user.Role,
	}); err != nil {
		u.log.Warnf("Failed to audit login of %s: %+v", user.Username, err)
	}

	u.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User logged in")

	return tokens, nil
}

func (u *authUsecase) Logout(ctx context.Context, userID uuid.UUID, accessTokenID, refreshTokenID string) error {
	keys := []string{jwt.AccessTokenKey(userID, accessTokenID)}
	if refreshTokenID != "" {
		keys = append(keys, jwt.RefreshTokenKey(userID, refreshTokenID))
	}

	if err := u.redisClient.Del(ctx, keys...).Err(); err != nil {
		u.log.Warnf("Failed to delete tokens: %+v", err)
		return err
	}

	if err := u.auditService.LogEvent(ctx, u.db, &userID, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to audit logout of %s: %+v", userID, err)
	}

	return nil
}

func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateToken(req.RefreshToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims.TokenType != jwt.RefreshToken {
		return nil, ErrInvalidToken
	}

	// Check if refresh token exists in Redis
	refreshKey := jwt.RefreshTokenKey(claims.UserID, claims.TokenID)
	exists, err := u.redisClient.Exists(ctx, refreshKey).Result()
	if err != nil {
		u.log.Warnf("Failed to check refresh token in Redis: %+v", err)
		return nil, err
	}
	if exists == 0 {
		return nil, ErrTokenRevoked
	}

	// Re-read the account so a disabled user cannot keep rotating tokens
	user, err := u.userRepo.FindByID(ctx, u.db, claims.UserID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrAccountDisabled
	}

	// Delete old refresh token
	if err := u.redisClient.Del(ctx, refreshKey).Err(); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, subjectOf(user))
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) CreateUser(ctx context.Context, actor entity.Actor, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role, ok := entity.ParseRole(req.Role)
	if !ok {
		return nil, ErrInvalidRole
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user := &entity.User{
		Username: strings.TrimSpace(req.Username),
		Role:     role,
		IsActive: true,
	}

	switch role {
	case entity.RoleDoctor:
		if req.DoctorID == nil {
			return nil, ErrAccountLinkRequired
		}
		doctor, err := u.doctorRepo.FindByID(ctx, tx, *req.DoctorID)
		if err != nil {
			u.log.Warnf("Failed to find doctor %d: %+v", *req.DoctorID, err)
			return nil, err
		}
		if doctor == nil {
			return nil, ErrDoctorNotFound
		}
		user.DoctorID = req.DoctorID
	case entity.RolePatient:
		if req.PatientID == nil {
			return nil, ErrAccountLinkRequired
		}
		exists, err := u.patientRepo.Exists(ctx, tx, *req.PatientID)
		if err != nil {
			u.log.Warnf("Failed to check patient %d: %+v", *req.PatientID, err)
			return nil, err
		}
		if !exists {
			return nil, ErrPatientNotFound
		}
		user.PatientID = req.PatientID
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}
	user.Password = string(hashedPassword)

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "username") {
			return nil, ErrUsernameExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, actor.AuditUserID(), entity.AuditActionUserCreate,
		"user", user.ID.String(), entity.JSON{"username": user.Username, "role": user.Role}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	u.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User created")

	return converter.UserToResponse(user), nil
}

func (u *authUsecase) issueTokens(ctx context.Context, subject jwt.Subject) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(subject)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(subject)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	// Store tokens in Redis
	accessKey := jwt.AccessTokenKey(subject.UserID, accessTokenID)
	refreshKey := jwt.RefreshTokenKey(subject.UserID, refreshTokenID)

	if err := u.redisClient.Set(ctx, accessKey, "valid", u.jwtService.GetAccessExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store access token in Redis: %+v", err)
		return nil, err
	}

	if err := u.redisClient.Set(ctx, refreshKey, "valid", u.jwtService.GetRefreshExpiry()).Err(); err != nil {
		u.log.Warnf("Failed to store refresh token in Redis: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
		Role:         subject.Role,
	}, nil
}

func subjectOf(user *entity.User) jwt.Subject {
	actor := user.Actor()
	return jwt.Subject{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      string(user.Role),
		SubjectID: actor.ID,
	}
}
