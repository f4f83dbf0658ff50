package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"tudva/backend/config"
	"tudva/backend/internal/dto"
	"tudva/backend/internal/model"
	"tudva/backend/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	entries map[string]time.Duration
	err     error
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	m.entries[jti] = ttl
	return nil
}

// ── 测试辅助 ──

func setupTestAuthService(t *testing.T) (AuthService, *mockRepos, *mockBlacklist, *jwt.Manager) {
	t.Helper()
	repo, mocks := newMockRepos()
	mgr := jwt.NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-key-for-unit-testing",
		AccessTokenTTL: 2 * time.Hour,
	})
	bl := &mockBlacklist{entries: make(map[string]time.Duration)}

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("生成密码哈希失败: %v", err)
	}
	_ = mocks.user.Create(context.Background(), &model.User{
		UserID:       "u-1",
		Name:         "测试学生",
		Email:        "student@tudva.test",
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	})

	return NewAuthService(repo, mgr, bl, zap.NewNop()), mocks, bl, mgr
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, _, _, mgr := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "Student@tudva.test",
		Password: "password123",
	})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.ExpiresIn != 7200 {
		t.Errorf("期望 ExpiresIn=7200，实际=%d", resp.ExpiresIn)
	}
	if resp.User.ID != "u-1" || resp.User.Role != model.RoleStudent {
		t.Errorf("用户信息错误: %+v", resp.User)
	}

	claims, err := mgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("返回的 Token 应可解析: %v", err)
	}
	if claims.UserID != "u-1" {
		t.Errorf("期望 UserID=u-1，实际=%s", claims.UserID)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "student@tudva.test",
		Password: "wrong",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("期望 ErrInvalidCredentials，实际: %v", err)
	}
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@tudva.test",
		Password: "password123",
	})
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("未知邮箱应返回 ErrInvalidCredentials，实际: %v", err)
	}
}

// ── Logout 测试 ──

func TestAuthService_Logout_BlacklistsUntilExpiry(t *testing.T) {
	svc, _, bl, _ := setupTestAuthService(t)

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Logout 应成功: %v", err)
	}
	ttl, ok := bl.entries["jti-1"]
	if !ok {
		t.Fatal("JTI 应加入黑名单")
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("黑名单 TTL 应不超过剩余有效期，实际 %v", ttl)
	}
}

func TestAuthService_Logout_ExpiredTokenSkipped(t *testing.T) {
	svc, _, bl, _ := setupTestAuthService(t)

	if err := svc.Logout(context.Background(), "jti-old", time.Now().Add(-time.Minute)); err != nil {
		t.Fatalf("已过期 Token 注销应直接成功: %v", err)
	}
	if len(bl.entries) != 0 {
		t.Error("已过期 Token 无需加入黑名单")
	}
}

func TestAuthService_Logout_BlacklistError(t *testing.T) {
	svc, _, bl, _ := setupTestAuthService(t)
	bl.err = errors.New("redis 不可用")

	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err == nil {
		t.Error("黑名单写入失败应返回错误")
	}
}

// ── GetCurrentUser 测试 ──

func TestAuthService_GetCurrentUser(t *testing.T) {
	svc, _, _, _ := setupTestAuthService(t)

	u, err := svc.GetCurrentUser(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("GetCurrentUser 应成功: %v", err)
	}
	if u.Email != "student@tudva.test" {
		t.Errorf("期望 Email=student@tudva.test，实际=%s", u.Email)
	}

	if _, err := svc.GetCurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
