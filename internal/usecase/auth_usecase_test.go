package usecase

import (
	"context"
	"testing"
	"time"

	"clinic-booking-service/config"
	"clinic-booking-service/internal/delivery/dto"
	"clinic-booking-service/internal/domain/entity"
	"clinic-booking-service/internal/repository"
	"clinic-booking-service/internal/service"
	"clinic-booking-service/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type authFixture struct {
	db         *gorm.DB
	mr         *miniredis.Miniredis
	jwtService *jwt.JWTService
	uc         AuthUsecase
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	jwtService := jwt.NewJWTService(config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: time.Hour,
	})
	userRepo := repository.NewUserRepository()

	uc := NewAuthUsecase(
		db,
		log,
		userRepo,
		repository.NewDoctorRepository(),
		repository.NewPatientRepository(),
		NewCredentialVerifier(db, userRepo),
		service.NewAuditService(log, repository.NewAuditLogRepository()),
		jwtService,
		client,
	)

	return &authFixture{db: db, mr: mr, jwtService: jwtService, uc: uc}
}

func (f *authFixture) createUser(t *testing.T, req *dto.CreateUserRequest) *dto.UserResponse {
	t.Helper()
	user, err := f.uc.CreateUser(context.Background(), adminActor, req)
	if err != nil {
		t.Fatalf("create user %s: %v", req.Username, err)
	}
	return user
}

func intPtr(v int) *int { return &v }

func TestAuth_LoginIssuesTrackedTokens(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createUser(t, &dto.CreateUserRequest{Username: "rao", Password: "secret123", Role: "doctor", DoctorID: intPtr(5)})

	tokens, err := f.uc.Login(context.Background(), &dto.LoginRequest{Username: "rao", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if tokens.Role != "doctor" {
		t.Fatalf("expected role doctor, got %q", tokens.Role)
	}

	claims, err := f.jwtService.ValidateToken(tokens.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != user.ID || claims.SubjectID != 5 || claims.TokenType != jwt.AccessToken {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !f.mr.Exists(jwt.AccessTokenKey(user.ID, claims.TokenID)) {
		t.Fatalf("expected access token to be tracked in redis")
	}

	var audits int64
	f.db.Model(&entity.AuditLog{}).Where("action = ?", entity.AuditActionUserLogin).Count(&audits)
	if audits != 1 {
		t.Fatalf("expected login audit entry, got %d", audits)
	}
}

func TestAuth_LoginRejectsBadCredentials(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, &dto.CreateUserRequest{Username: "front-desk", Password: "secret123", Role: "staff"})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "front-desk", "nope"},
		{"unknown user", "ghost", "secret123"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.uc.Login(context.Background(), &dto.LoginRequest{Username: tt.username, Password: tt.password})
			if err != ErrInvalidCredentials {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuth_LoginRejectsDisabledAccount(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createUser(t, &dto.CreateUserRequest{Username: "front-desk", Password: "secret123", Role: "staff"})
	f.db.Model(&entity.User{}).Where("id = ?", user.ID).Update("is_active", false)

	_, err := f.uc.Login(context.Background(), &dto.LoginRequest{Username: "front-desk", Password: "secret123"})
	if err != ErrAccountDisabled {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestAuth_RefreshRotatesTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.createUser(t, &dto.CreateUserRequest{Username: "asha", Password: "secret123", Role: "patient", PatientID: intPtr(1)})

	tokens, err := f.uc.Login(ctx, &dto.LoginRequest{Username: "asha", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	rotated, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Fatalf("expected a new refresh token")
	}

	claims, err := f.jwtService.ValidateToken(rotated.AccessToken)
	if err != nil {
		t.Fatalf("validate rotated token: %v", err)
	}
	if claims.SubjectID != 1 || claims.Role != "patient" {
		t.Fatalf("expected patient 1 claims, got %+v", claims)
	}

	// The old refresh token is single use
	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.RefreshToken}); err != ErrTokenRevoked {
		t.Fatalf("expected ErrTokenRevoked, got %v", err)
	}

	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: tokens.AccessToken}); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for an access token, got %v", err)
	}
	if _, err := f.uc.RefreshToken(ctx, &dto.RefreshTokenRequest{RefreshToken: "garbage"}); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestAuth_LogoutRevokesTokens(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	user := f.createUser(t, &dto.CreateUserRequest{Username: "front-desk", Password: "secret123", Role: "staff"})

	tokens, err := f.uc.Login(ctx, &dto.LoginRequest{Username: "front-desk", Password: "secret123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	access, _ := f.jwtService.ValidateToken(tokens.AccessToken)
	refresh, _ := f.jwtService.ValidateToken(tokens.RefreshToken)

	if err := f.uc.Logout(ctx, user.ID, access.TokenID, refresh.TokenID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if f.mr.Exists(jwt.AccessTokenKey(user.ID, access.TokenID)) || f.mr.Exists(jwt.RefreshTokenKey(user.ID, refresh.TokenID)) {
		t.Fatalf("expected both tokens to be revoked")
	}
}

func TestAuth_CreateUserValidatesLinks(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  *dto.CreateUserRequest
		want error
	}{
		{"doctor without link", &dto.CreateUserRequest{Username: "d1", Password: "secret123", Role: "doctor"}, ErrAccountLinkRequired},
		{"unknown doctor", &dto.CreateUserRequest{Username: "d2", Password: "secret123", Role: "doctor", DoctorID: intPtr(99)}, ErrDoctorNotFound},
		{"patient without link", &dto.CreateUserRequest{Username: "p1", Password: "secret123", Role: "patient"}, ErrAccountLinkRequired},
		{"unknown patient", &dto.CreateUserRequest{Username: "p2", Password: "secret123", Role: "patient", PatientID: intPtr(99)}, ErrPatientNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.uc.CreateUser(ctx, adminActor, tt.req); err != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	// Links are ignored for staff accounts
	staffUser := f.createUser(t, &dto.CreateUserRequest{Username: "s1", Password: "secret123", Role: "staff", DoctorID: intPtr(5)})
	if staffUser.DoctorID != nil {
		t.Fatalf("expected staff account without doctor link")
	}
}

func TestAuth_CreateUserDuplicateUsername(t *testing.T) {
	f := newAuthFixture(t)
	f.createUser(t, &dto.CreateUserRequest{Username: "front-desk", Password: "secret123", Role: "staff"})

	_, err := f.uc.CreateUser(context.Background(), adminActor, &dto.CreateUserRequest{Username: "front-desk", Password: "other123", Role: "admin"})
	if err != ErrUsernameExists {
		t.Fatalf("expected ErrUsernameExists, got %v", err)
	}
}

func TestAuth_GetCurrentUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.createUser(t, &dto.CreateUserRequest{Username: "front-desk", Password: "secret123", Role: "staff"})

	got, err := f.uc.GetCurrentUser(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get current user: %v", err)
	}
	if got.Username != "front-desk" || got.Role != "staff" {
		t.Fatalf("unexpected user %+v", got)
	}
}
