package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/auth"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

var jwtCfg = auth.JWTConfig{Secret: "secreto-de-prueba", ExpMinutes: 60, Issuer: "mayorista-api"}

type brokenUsers struct {
	repository.UserRepository
	err error
}

func (b brokenUsers) GetByEmail(context.Context, string) (*entity.User, error) { return nil, b.err }

func setup(t *testing.T) (repository.Store, string) {
	t.Helper()
	store := memory.NewDB().Store()
	company := uuid.NewString()
	require.NoError(t, store.Companies.Create(context.Background(), &entity.Company{ID: company, Name: "Distribuidora", NIT: "900123456", Status: "active"}))
	return store, company
}

func TestRegisterUser_YLogin(t *testing.T) {
	store, company := setup(t)
	uc := auth.NewAuthUseCase(store.Users, store.Companies, jwtCfg)
	ctx := context.Background()

	u, err := uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ana@tienda.co", Password: "clave-segura", CompanyID: company})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleVentas, u.Role)
	assert.Equal(t, "ana@tienda.co", u.Name)

	_, err = uc.RegisterUser(ctx, dto.RegisterRequest{Email: "ANA@tienda.co", Password: "otra-clave", CompanyID: company})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@tienda.co", Password: "clave-segura"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Token)
	assert.Equal(t, u.ID, out.User.ID)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@tienda.co", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRegisterUser_FallaDeLecturaNoSeIgnora(t *testing.T) {
	store, company := setup(t)
	dbErr := errors.New("conexión cerrada")
	uc := auth.NewAuthUseCase(brokenUsers{UserRepository: store.Users, err: dbErr}, store.Companies, jwtCfg)

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "ana@tienda.co", Password: "clave-segura", CompanyID: company})
	assert.ErrorIs(t, err, dbErr)

	u, err := store.Users.GetByEmail(context.Background(), "ana@tienda.co")
	require.NoError(t, err)
	assert.Nil(t, u, "no se crea el usuario si no se pudo verificar el email")
}

func TestRegisterUser_EmpresaInexistente(t *testing.T) {
	store, _ := setup(t)
	uc := auth.NewAuthUseCase(store.Users, store.Companies, jwtCfg)

	_, err := uc.RegisterUser(context.Background(), dto.RegisterRequest{Email: "ana@tienda.co", Password: "clave-segura", CompanyID: uuid.NewString()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
