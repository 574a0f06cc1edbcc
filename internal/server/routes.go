package server

import (
	"github.com/danielgtaylor/huma/v2"

	v1 "github.com/bookmehq/bookme/internal/api/v1"
)

func registerAuthRoutes(api huma.API, authSvc v1.AuthService) {
	v1.RegisterAuthRoutes(api, authSvc)
}

func registerPlatformRoutes(api huma.API, s *Server) {
	v1.RegisterTenantRoutes(api, s.store, s.directory, s.resolver)
	v1.RegisterPrincipalRoutes(api, s.store, s.resolver)
	v1.RegisterRoleSyncRoutes(api, s.maintainer, s.resolver)
}

func registerTenantSurfaceRoutes(api huma.API, s *Server) {
	v1.RegisterMembershipRoutes(api, s.store, s.resolver)
	v1.RegisterRoleRoutes(api, s.store, s.resolver)
}

func registerProbeRoutes(api huma.API, s *Server) {
	v1.RegisterAuthzRoutes(api, s.resolver)
}
