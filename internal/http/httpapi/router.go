package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"helium-admin/internal/http/handlers"
	"helium-admin/internal/infra"
	"helium-admin/internal/middleware"
)

// NewRouter wires the admin API. Everything except the health probe
// sits behind the admin bearer password.
func NewRouter(app *handlers.App, cfg *infra.Config, l infra.Logger) http.Handler {
	r := chi.NewRouter()

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(l),
		middleware.CORS(cfg.AllowedOrigins),
		limiter.Handler,
	)

	r.Get("/healthz", app.Health)

	admin := middleware.AdminAuth(cfg.AdminPassword, l)

	r.Route("/api", func(r chi.Router) {
		r.Use(admin)

		// Legacy dashboard paths, kept verbatim.
		r.Post("/send-bulk-email", app.SendBulkEmail)
		r.Post("/send-individual-email", app.SendIndividualEmail)
		r.Post("/create-user", app.CreateUserLegacy)
		r.Delete("/bulk-delete-user-profiles", app.BulkDeleteUserProfilesLegacy)
		r.Get("/analytics-data", app.AnalyticsData)

		r.Route("/v1", func(r chi.Router) {
			r.Route("/users", func(r chi.Router) {
				r.Get("/", app.UsersList)
				r.Post("/", app.UsersCreate)
				r.Post("/bulk-delete", app.UsersBulkDelete)
				r.Post("/fetch-emails", app.UsersFetchEmails)
				r.Get("/{user_id}", app.UserGet)
				r.Delete("/{user_id}", app.UserDelete)
			})

			r.Route("/invite-codes", func(r chi.Router) {
				r.Get("/", app.InviteCodesList)
				r.Post("/generate", app.InviteCodeGenerate)
				r.Get("/stats", app.DashboardStats)
				r.Post("/bulk-delete", app.InviteCodesBulkDelete)
				r.Post("/archive", app.InviteCodeArchive)
				r.Post("/unarchive", app.InviteCodeUnarchive)
				r.Post("/bulk-archive-used", app.InviteCodesBulkArchiveUsed)
				r.Post("/send-reminder", app.InviteCodeSendReminder)
				r.Get("/{code_id}/qr", app.InviteCodeQR)
				r.Delete("/{code_id}", app.InviteCodeDelete)
			})

			r.Route("/credits", func(r chi.Router) {
				r.Get("/balances", app.CreditBalancesList)
				r.Post("/assign", app.CreditsAssign)
				r.Get("/purchases", app.CreditPurchasesList)
			})

			r.Route("/usage-logs", func(r chi.Router) {
				r.Post("/aggregated", app.UsageAggregated)
				r.Post("/aggregated/export", app.UsageAggregatedExport)
			})

			r.Route("/waitlist", func(r chi.Router) {
				r.Get("/", app.WaitlistList)
				r.Post("/archive", app.WaitlistArchive)
			})

			r.Route("/emails", func(r chi.Router) {
				r.Post("/bulk", app.EmailsBulk)
				r.Post("/individual", app.EmailsIndividual)
				r.Get("/images", app.EmailImages)
			})
		})
	})

	return r
}
