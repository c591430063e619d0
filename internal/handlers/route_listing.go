package handlers

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"feedbackapp/internal/observability"

	"github.com/gin-gonic/gin"
)

// RouteInfo describes one registered route and who may call it.
type RouteInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Access      string `json:"access"`
	HandlerName string `json:"handler_name"`
}

// RouteListing is the body of GET /api/routes.
type RouteListing struct {
	Service     string         `json:"service"`
	GeneratedAt time.Time      `json:"generatedAt"`
	Total       int            `json:"total"`
	ByAccess    map[string]int `json:"byAccess"`
	Routes      []RouteInfo    `json:"routes"`
}

// routeAccess mirrors the role checks NewRouter attaches to each group.
// First matching prefix wins.
var routeAccess = []struct {
	prefix string
	access string
}{
	{"/api/manager/", "manager"},
	{"/api/customer/feedback", "customer"},
	{"/api/customer/", "authenticated"},
}

func accessFor(path string) string {
	for _, ra := range routeAccess {
		if strings.HasPrefix(path, ra.prefix) {
			return ra.access
		}
	}
	return "public"
}

// RouteListingHandler lists the routes registered on the engine. It is mounted in debug mode only.
type RouteListingHandler struct {
	serviceName string
	routes      []RouteInfo
}

func NewRouteListingHandler(serviceName string) *RouteListingHandler {
	return &RouteListingHandler{serviceName: serviceName, routes: []RouteInfo{}}
}

// CollectRoutes snapshots engine's routes sorted by path then method, skipping /debug/.
// Call it after every route is registered.
func (h *RouteListingHandler) CollectRoutes(engine *gin.Engine) {
	routes := []RouteInfo{}
	for _, route := range engine.Routes() {
		if strings.HasPrefix(route.Path, "/debug/") {
			continue
		}
		routes = append(routes, RouteInfo{
			Method:      route.Method,
			Path:        route.Path,
			Access:      accessFor(route.Path),
			HandlerName: route.Handler,
		})
	}

	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	h.routes = routes
}

func (h *RouteListingHandler) Routes() []RouteInfo {
	return h.routes
}

// GetRouteListingJSON handles GET /api/routes.
func (h *RouteListingHandler) GetRouteListingJSON(c *gin.Context) {
	_, span := observability.TraceHandlerFunction(c.Request.Context(), "get_route_listing_json")
	defer observability.FinishSpan(span, nil)

	byAccess := make(map[string]int)
	for _, route := range h.routes {
		byAccess[route.Access]++
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.JSON(http.StatusOK, RouteListing{
		Service:     h.serviceName,
		GeneratedAt: time.Now().UTC(),
		Total:       len(h.routes),
		ByAccess:    byAccess,
		Routes:      h.routes,
	})
}
