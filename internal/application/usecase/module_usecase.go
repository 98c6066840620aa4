package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

// DefaultModuleCacheTTL tiempo que se recuerda la activación de un módulo.
const DefaultModuleCacheTTL = 30 * time.Second

type moduleEntry struct {
	active  bool
	expires time.Time
}

// ModuleService verifica qué módulos tiene activos una empresa (orders, crm, credit, standing_orders).
// Las respuestas se cachean por empresa y módulo durante ttl para no consultar la base en cada request.
type ModuleService struct {
	companyRepo repository.CompanyRepository
	ttl         time.Duration

	mu    sync.RWMutex
	cache map[string]moduleEntry
	now   func() time.Time
}

// NewModuleService construye el servicio de módulos. ttl <= 0 desactiva la caché.
func NewModuleService(companyRepo repository.CompanyRepository, ttl time.Duration) *ModuleService {
	return &ModuleService{
		companyRepo: companyRepo,
		ttl:         ttl,
		cache:       make(map[string]moduleEntry),
		now:         time.Now,
	}
}

// HasActiveModule informa si la empresa tiene el módulo activo y sin vencer.
// Devuelve false (sin error) si la empresa no tiene el módulo contratado.
// Devuelve error solo ante fallos de infraestructura o módulo desconocido.
func (s *ModuleService) HasActiveModule(ctx context.Context, companyID, moduleName string) (bool, error) {
	if companyID == "" || moduleName == "" {
		return false, fmt.Errorf("module: companyID y moduleName son obligatorios")
	}
	if !IsKnownModule(moduleName) {
		return false, fmt.Errorf("module: módulo desconocido %q", moduleName)
	}
	key := companyID + "/" + moduleName
	if s.ttl > 0 {
		s.mu.RLock()
		e, ok := s.cache[key]
		s.mu.RUnlock()
		if ok && s.now().Before(e.expires) {
			return e.active, nil
		}
	}
	active, err := s.companyRepo.HasActiveModule(ctx, companyID, moduleName)
	if err != nil {
		return false, err
	}
	if s.ttl > 0 {
		s.mu.Lock()
		s.cache[key] = moduleEntry{active: active, expires: s.now().Add(s.ttl)}
		s.mu.Unlock()
	}
	return active, nil
}

// Invalidate olvida la caché de la empresa (tras activar módulos).
func (s *ModuleService) Invalidate(companyID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range []string{entity.ModuleOrders, entity.ModuleCRM, entity.ModuleCredit, entity.ModuleStandingOrders} {
		delete(s.cache, companyID+"/"+m)
	}
}

// IsKnownModule informa si name es uno de los módulos de la plataforma.
func IsKnownModule(name string) bool {
	switch name {
	case entity.ModuleOrders, entity.ModuleCRM, entity.ModuleCredit, entity.ModuleStandingOrders:
		return true
	}
	return false
}
