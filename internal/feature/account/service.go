package account

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"vitrina/internal/core/auth"
	"vitrina/internal/core/config"
	"vitrina/internal/domain"
	"vitrina/internal/repo"
	"vitrina/pkg/utils"
)

var validate = validator.New()

// Account 对外返回的用户，不含密码哈希
type Account struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	DisplayName string    `json:"displayName"`
	Phone       string    `json:"phone,omitempty"`
	ProfileID   string    `json:"profileId,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func Public(u *domain.User) Account {
	return Account{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		DisplayName: u.DisplayName,
		Phone:       u.Phone,
		ProfileID:   u.ProfileID,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

type Service struct {
	st  *repo.Stores
	jwt *auth.JWTer
	l   *zap.Logger
	now func() time.Time
}

func NewService(st *repo.Stores, j *auth.JWTer, l *zap.Logger) *Service {
	return &Service{st: st, jwt: j, l: l, now: time.Now}
}

type Session struct {
	Token   string  `json:"token"`
	Account Account `json:"account"`
}

// Login 邮箱或用户名登录；账号不存在和密码错误一律返回 Unauthorized
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, domain.Unauthorized("credenciales inválidas")
	}
	var (
		u   *domain.User
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.st.UserByEmail(ctx, login)
	} else {
		u, err = s.st.Users.Get(ctx, strings.ToLower(login))
	}
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.Unauthorized("credenciales inválidas")
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.Unauthorized("credenciales inválidas")
	}
	tok, err := s.jwt.Issue(u.ID, u.Role)
	if err != nil {
		return nil, domain.Internal("issue token", err)
	}
	s.l.Info("login", zap.String("uid", u.ID), zap.String("role", u.Role))
	return &Session{Token: tok, Account: Public(u)}, nil
}

func (s *Service) Me(ctx context.Context, uid string) (*Account, error) {
	u, err := s.st.Users.Get(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		// 令牌有效但账号已删除
		return nil, domain.Unauthorized("account no longer exists")
	}
	if err != nil {
		return nil, err
	}
	a := Public(u)
	return &a, nil
}

// EnsureAdmin 启动时确保配置的管理员存在；已存在时只修正角色，不覆盖密码
func (s *Service) EnsureAdmin(ctx context.Context, c config.Admin) error {
	username := strings.ToLower(strings.TrimSpace(c.Username))
	if username == "" || c.Password == "" {
		s.l.Warn("admin bootstrap skipped: username or password not configured")
		return nil
	}
	now := s.now().UTC()
	u, err := s.st.Users.Get(ctx, username)
	switch {
	case err == nil:
		if u.Role == domain.RoleAdmin {
			return nil
		}
		u.Role = domain.RoleAdmin
		u.UpdatedAt = now
		return s.st.Users.Put(ctx, u)
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}

	hash, err := utils.HashPassword(c.Password)
	if err != nil {
		return domain.Internal("hash admin password", err)
	}
	u = &domain.User{
		ID:           username,
		Username:     username,
		Email:        strings.TrimSpace(c.Email),
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		DisplayName:  username,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.st.Users.Put(ctx, u); err != nil {
		return err
	}
	s.l.Info("admin account created", zap.String("username", username))
	return nil
}

func (s *Service) List(ctx context.Context, role string) ([]Account, error) {
	if role != "" && role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, domain.Invalid("role", "rol desconocido")
	}
	us, err := s.st.Users.List(ctx, repo.Filter{Status: role})
	if err != nil {
		return nil, err
	}
	out := make([]Account, 0, len(us))
	for i := range us {
		out = append(out, Public(&us[i]))
	}
	return out, nil
}

// UserUpdate 管理端批量编辑；空字段保持不变
type UserUpdate struct {
	ID          string `json:"id" binding:"required"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Phone       string `json:"phone"`
	Role        string `json:"role"`
}

// SaveUsers 逐条保存，单条失败不影响其它；失败的 id 汇总在 *domain.BatchError
func (s *Service) SaveUsers(ctx context.Context, in []UserUpdate) (int, error) {
	byID := make(map[string]UserUpdate, len(in))
	ids := make([]string, 0, len(in))
	for _, u := range in {
		if _, dup := byID[u.ID]; !dup {
			ids = append(ids, u.ID)
		}
		byID[u.ID] = u
	}
	saved := 0
	err := repo.Batch(ctx, ids, func(ctx context.Context, id string) error {
		if err := s.saveOne(ctx, byID[id]); err != nil {
			s.l.Warn("save user failed", zap.String("id", id), zap.Error(err))
			return err
		}
		saved++
		return nil
	})
	return saved, err
}

func (s *Service) saveOne(ctx context.Context, in UserUpdate) error {
	u, err := s.st.Users.Get(ctx, in.ID)
	if err != nil {
		return err
	}
	if in.Role != "" {
		if in.Role != domain.RoleUser && in.Role != domain.RoleAdmin {
			return domain.Invalid("role", "rol desconocido")
		}
		u.Role = in.Role
	}
	if email := strings.TrimSpace(in.Email); email != "" && !strings.EqualFold(email, u.Email) {
		if validate.Var(email, "required,email") != nil {
			return domain.Invalid("email", "correo inválido")
		}
		other, err := s.st.UserByEmail(ctx, email)
		switch {
		case err == nil && other.ID != u.ID:
			return domain.Conflict("email %s already in use", email)
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}
		u.Email = email
	}
	if v := strings.TrimSpace(in.DisplayName); v != "" {
		u.DisplayName = v
	}
	if v := strings.TrimSpace(in.Phone); v != "" {
		u.Phone = v
	}
	u.UpdatedAt = s.now().UTC()
	return s.st.Users.Put(ctx, u)
}
