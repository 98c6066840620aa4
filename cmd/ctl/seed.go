package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Mayorista-api/internal/application/auth"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/application/usecase"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// seedCmd crea una empresa con todos los módulos y su usuario administrador.
func seedCmd() *cobra.Command {
	var company dto.CreateCompanyRequest
	var admin dto.RegisterRequest

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Crea una empresa y su administrador",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if company.Name == "" || company.NIT == "" || admin.Email == "" || len(admin.Password) < 8 {
				return fmt.Errorf("--name, --nit, --admin-email y --admin-password (mínimo 8 caracteres) son obligatorios")
			}
			return withServices(cmd, func(ctx context.Context, s *services) error {
				created, err := usecase.NewCompanyUseCase(s.store.Companies).Create(ctx, company)
				if err != nil {
					return fmt.Errorf("crear empresa: %w", err)
				}
				admin.CompanyID = created.ID
				admin.Role = entity.RoleAdmin
				authUC := auth.NewAuthUseCase(s.store.Users, s.store.Companies, auth.JWTConfig{
					Secret: cfg.JWT.Secret, ExpMinutes: cfg.JWT.Expiration, Issuer: cfg.JWT.Issuer,
				})
				user, err := authUC.RegisterUser(ctx, admin)
				if err != nil {
					return fmt.Errorf("crear administrador: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "empresa %s (%s)\nadministrador %s (%s)\n", created.Name, created.ID, user.Email, user.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&company.Name, "name", "", "razón social")
	cmd.Flags().StringVar(&company.NIT, "nit", "", "NIT de la empresa")
	cmd.Flags().StringVar(&company.Email, "email", "", "correo de la empresa")
	cmd.Flags().StringSliceVar(&company.Modules, "modules", nil, "módulos a activar (vacío = todos)")
	cmd.Flags().StringVar(&admin.Email, "admin-email", "", "correo del administrador")
	cmd.Flags().StringVar(&admin.Password, "admin-password", "", "contraseña del administrador")
	cmd.Flags().StringVar(&admin.Name, "admin-name", "", "nombre del administrador")
	return cmd
}
