package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Ombor-api/internal/application/dto"
	"github.com/jhoicas/Ombor-api/internal/domain"
	"github.com/jhoicas/Ombor-api/internal/domain/entity"
	"github.com/jhoicas/Ombor-api/internal/domain/repository"
)

// Actor quien ejecuta la operación, tal como viene en el token.
type Actor struct {
	UserID    string
	CompanyID string
	Role      string
}

// UserUseCase gestión de usuarios de la empresa (ceo y admin).
// Solo un ceo crea, asigna o modifica usuarios ceo.
type UserUseCase struct {
	repo repository.UserRepository
}

// NewUserUseCase construye el caso de uso con el puerto de persistencia.
func NewUserUseCase(repo repository.UserRepository) *UserUseCase {
	return &UserUseCase{repo: repo}
}

// Create da de alta un usuario en la empresa del actor. Rol por defecto: seller.
func (uc *UserUseCase) Create(ctx context.Context, actor Actor, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	role := in.Role
	if role == "" {
		role = entity.RoleSeller
	}
	if !entity.IsValidRole(role) {
		return nil, domain.ErrInvalidInput
	}
	if role == entity.RoleCEO && actor.Role != entity.RoleCEO {
		return nil, domain.ErrForbidden
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = username
	}
	now := time.Now()
	u := &entity.User{
		ID:           uuid.New().String(),
		CompanyID:    actor.CompanyID,
		Username:     username,
		PasswordHash: string(hash),
		Name:         name,
		PhoneNumber:  in.PhoneNumber,
		Role:         role,
		Status:       entity.UserStatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// List usuarios activos de la empresa.
func (uc *UserUseCase) List(ctx context.Context, companyID string, page dto.PageRequest) ([]dto.UserResponse, error) {
	page.Normalize()
	list, err := uc.repo.ListByCompany(ctx, companyID, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		out = append(out, *toUserResponse(u))
	}
	return out, nil
}

func (uc *UserUseCase) get(ctx context.Context, companyID, id string) (*entity.User, error) {
	u, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != companyID || u.Status != entity.UserStatusActive {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

// GetByID usuario activo de la empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, companyID, id string) (*dto.UserResponse, error) {
	u, err := uc.get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// Update aplica los campos presentes. Un password nuevo se vuelve a hashear.
func (uc *UserUseCase) Update(ctx context.Context, actor Actor, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	u, err := uc.get(ctx, actor.CompanyID, id)
	if err != nil {
		return nil, err
	}
	if u.Role == entity.RoleCEO && actor.Role != entity.RoleCEO {
		return nil, domain.ErrForbidden
	}
	if in.Role != nil {
		if !entity.IsValidRole(*in.Role) {
			return nil, domain.ErrInvalidInput
		}
		if *in.Role == entity.RoleCEO && actor.Role != entity.RoleCEO {
			return nil, domain.ErrForbidden
		}
		u.Role = *in.Role
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		u.Name = name
	}
	if in.PhoneNumber != nil {
		u.PhoneNumber = *in.PhoneNumber
	}
	if in.Password != nil {
		if len(*in.Password) < 8 {
			return nil, domain.ErrInvalidInput
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}
	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return toUserResponse(u), nil
}

// Delete desactiva el usuario: deja de listarse y ya no puede iniciar sesión.
// Nadie se desactiva a sí mismo.
func (uc *UserUseCase) Delete(ctx context.Context, actor Actor, id string) error {
	if id == actor.UserID {
		return domain.ErrConflict
	}
	u, err := uc.get(ctx, actor.CompanyID, id)
	if err != nil {
		return err
	}
	if u.Role == entity.RoleCEO && actor.Role != entity.RoleCEO {
		return domain.ErrForbidden
	}
	u.Status = entity.UserStatusInactive
	u.UpdatedAt = time.Now()
	return uc.repo.Update(ctx, u)
}

// Profile datos del usuario del token. Un usuario desactivado conserva el token
// hasta que vence, pero ya no tiene perfil.
func (uc *UserUseCase) Profile(ctx context.Context, actor Actor) (*dto.UserResponse, error) {
	u, err := uc.repo.GetByID(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil || u.CompanyID != actor.CompanyID {
		return nil, domain.ErrNotFound
	}
	if u.Status != entity.UserStatusActive {
		return nil, domain.ErrForbidden
	}
	return toUserResponse(u), nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          u.ID,
		CompanyID:   u.CompanyID,
		Username:    u.Username,
		Name:        u.Name,
		PhoneNumber: u.PhoneNumber,
		Role:        u.Role,
		Status:      u.Status,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}
