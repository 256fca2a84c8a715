package account

// Landing routes per role.
const (
	RouteRoot             = "/"
	RouteLogin            = "/login"
	RouteManagerDashboard = "/manager/dashboard"
	RouteTrainerDashboard = "/trainer/dashboard"
	RouteClientDashboard  = "/client/dashboard"
)

// LandingRouteFor returns the default route for a role or backend account type.
// Unknown and empty values land on the root path.
// POST: Returns a non-empty path
func LandingRouteFor(role string) string {
	switch ParseRole(role) {
	case RoleManager:
		return RouteManagerDashboard
	case RoleTrainer:
		return RouteTrainerDashboard
	case RoleClient:
		return RouteClientDashboard
	default:
		return RouteRoot
	}
}
