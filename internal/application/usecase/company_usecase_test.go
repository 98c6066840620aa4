package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

func TestCompanyCreate_ActivaTodosLosModulosPorDefecto(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDB().Store()
	uc := usecase.NewCompanyUseCase(store.Companies)

	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Distribuidora Andina", NIT: "900.123.456-8"})
	require.NoError(t, err)
	assert.Equal(t, "active", out.Status)

	modules := usecase.NewModuleService(store.Companies, time.Minute)
	for _, m := range []string{entity.ModuleOrders, entity.ModuleCRM, entity.ModuleCredit, entity.ModuleStandingOrders} {
		ok, err := modules.HasActiveModule(ctx, out.ID, m)
		require.NoError(t, err)
		assert.True(t, ok, m)
	}
}

func TestCompanyCreate_SoloModulosPedidos(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDB().Store()
	uc := usecase.NewCompanyUseCase(store.Companies)

	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Solo Pedidos", NIT: "800197268", Modules: []string{entity.ModuleOrders}})
	require.NoError(t, err)

	modules := usecase.NewModuleService(store.Companies, 0)
	ok, err := modules.HasActiveModule(ctx, out.ID, entity.ModuleOrders)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = modules.HasActiveModule(ctx, out.ID, entity.ModuleCredit)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = modules.HasActiveModule(ctx, out.ID, "inventario")
	assert.Error(t, err, "módulo desconocido")
}

func TestCompanyCreate_Rechazos(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCompanyUseCase(memory.NewDB().Store().Companies)

	_, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "DV errado", NIT: "900123456-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Primera", NIT: "900123456"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateCompanyRequest{Name: "Segunda", NIT: "900123456"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestModuleService_CacheEInvalidate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDB().Store()
	uc := usecase.NewCompanyUseCase(store.Companies)
	out, err := uc.Create(ctx, dto.CreateCompanyRequest{Name: "Cache", NIT: "800197268-4", Modules: []string{entity.ModuleOrders}})
	require.NoError(t, err)

	modules := usecase.NewModuleService(store.Companies, time.Hour)
	ok, err := modules.HasActiveModule(ctx, out.ID, entity.ModuleCRM)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Companies.EnableModule(ctx, &entity.CompanyModule{ID: "m-crm", CompanyID: out.ID, ModuleName: entity.ModuleCRM}))
	ok, _ = modules.HasActiveModule(ctx, out.ID, entity.ModuleCRM)
	assert.False(t, ok, "sigue el valor cacheado")

	modules.Invalidate(out.ID)
	ok, _ = modules.HasActiveModule(ctx, out.ID, entity.ModuleCRM)
	assert.True(t, ok)
}
