package pages

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/FACorreiaa/go-tripboard/internal/app/domain/itineraries"
	"github.com/FACorreiaa/go-tripboard/internal/app/handlers"
	"github.com/FACorreiaa/go-tripboard/internal/app/middleware"
	"github.com/FACorreiaa/go-tripboard/internal/app/models"
)

type LandingPage struct {
	AuthRequired bool
	OAuthError   string
	SignedIn     bool
	// Providers are the identity providers offered as sign-in buttons.
	Providers []string
}

type CountryRow struct {
	ISO2  string
	Name  string
	Count int
}

type MyItinerariesPage struct {
	Countries []CountryRow
	Error     string
}

type CountryPage struct {
	ISO2  string
	Name  string
	Trips []models.Itinerary
	Error string
}

type Handler struct {
	*handlers.BaseHandler
	itineraries itineraries.Service
	providers   []string
}

func NewHandler(service itineraries.Service, providers []string, base *handlers.BaseHandler) *Handler {
	return &Handler{BaseHandler: base, itineraries: service, providers: providers}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.StaticFS("/static", StaticFiles())
	r.GET("/", h.Landing)
	r.GET("/verify-email", h.VerifyEmail)
	r.GET("/my-itineraries", h.MyItineraries)
	r.GET("/country/:iso2", h.Country)
	r.GET("/search-page", h.SearchPage)
}

func (h *Handler) Landing(c *gin.Context) {
	h.RenderPage(c, "Tripboard", "home", LandingView(LandingPage{
		AuthRequired: c.Query("auth") == "required",
		OAuthError:   c.Query("oauth_error"),
		SignedIn:     middleware.GetUserFromContext(c) != nil,
		Providers:    h.providers,
	}))
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	h.RenderPage(c, "Verify your email", "", VerifyEmailView())
}

func (h *Handler) SearchPage(c *gin.Context) {
	h.RenderPage(c, "Search places", "search", SearchView())
}

// MyItineraries lists the countries the user has planned trips for.
func (h *Handler) MyItineraries(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	page := MyItinerariesPage{}
	counts, err := h.itineraries.CountryCounts(c.Request.Context(), user.ID)
	if err != nil {
		h.Logger.Error("Failed to load country counts", zap.Error(err))
		page.Error = handlers.Message(err)
	}
	for _, cc := range counts {
		page.Countries = append(page.Countries, CountryRow{ISO2: cc.CountryISO2, Name: CountryName(cc.CountryISO2), Count: cc.Count})
	}
	sort.SliceStable(page.Countries, func(i, j int) bool {
		return page.Countries[i].Name < page.Countries[j].Name
	})
	h.RenderPage(c, "My itineraries", "itineraries", MyItinerariesView(page))
}

// Country lists the user's itineraries for one country, newest start first.
func (h *Handler) Country(c *gin.Context) {
	user, ok := h.requireUser(c)
	if !ok {
		return
	}
	iso2 := strings.ToUpper(strings.TrimSpace(c.Param("iso2")))
	page := CountryPage{ISO2: iso2, Name: CountryName(iso2)}

	trips, err := h.itineraries.ListItineraries(c.Request.Context(), user.ID, iso2)
	if err != nil {
		h.Logger.Error("Failed to load itineraries", zap.String("country", iso2), zap.Error(err))
		page.Error = handlers.Message(err)
	} else {
		page.Trips = trips
	}
	h.RenderPage(c, page.Name, "itineraries", CountryView(page))
}

// requireUser covers pages reached without the session guard in front.
func (h *Handler) requireUser(c *gin.Context) (*models.User, bool) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/?auth=required")
		c.Abort()
		return nil, false
	}
	return user, true
}
