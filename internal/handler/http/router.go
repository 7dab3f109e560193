package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment values the router needs.
type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
}

type Handlers struct {
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Worktime   WorktimeHandler
	Settlement SettlementHandler
	Leave      LeaveHandler
	Events     EventsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	employeeParam := middleware.UUIDParams("employeeID")

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource clients cannot set headers, so the stream passes ?jwt=.
		r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/employees", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Post("/", h.Employee.Create)
				r.Get("/", h.Employee.List)
			})
			r.With(employeeParam, middleware.SelfOrAdmin).Get("/{employeeID}", h.Employee.Get)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.With(middleware.AdminOnly).Post("/imports", h.Attendance.Import)
			r.Post("/manual", h.Attendance.SubmitManual)
			r.With(employeeParam, middleware.SelfOrAdmin).Get("/daily/{employeeID}/{date}", h.Attendance.GetDaily)
		})

		r.Route("/worktime", func(r chi.Router) {
			r.With(middleware.AdminOnly).Post("/recompute", h.Worktime.Recompute)
			r.With(employeeParam, middleware.SelfOrAdmin).Get("/summaries/{employeeID}/{date}", h.Worktime.GetSummary)
			r.With(employeeParam, middleware.SelfOrAdmin).Get("/monthly/{employeeID}", h.Worktime.MonthlyStats)
		})

		r.Route("/rule-configs", func(r chi.Router) {
			r.Get("/effective", h.Worktime.GetEffectiveRuleConfig)
			r.With(middleware.AdminOnly).Post("/", h.Worktime.CreateRuleConfig)
		})

		r.Route("/holidays", func(r chi.Router) {
			r.Get("/", h.Worktime.ListHolidays)
			r.With(middleware.AdminOnly).Post("/", h.Worktime.AddHoliday)
		})

		// Admin only
		r.Route("/settlement", func(r chi.Router) {
			r.Use(middleware.AdminOnly)

			r.Get("/events", h.Events.Stream)
			r.Post("/night-pay", h.Settlement.ProcessNightPay)
			r.Route("/periods", func(r chi.Router) {
				r.Post("/", h.Settlement.CreatePeriod)
				r.Get("/", h.Settlement.ListPeriods)
				r.Route("/{id}", func(r chi.Router) {
					r.Use(middleware.UUIDParams("id"))
					r.Get("/", h.Settlement.GetPeriod)
					r.Post("/activate", h.Settlement.ActivatePeriod)
					r.Post("/cancel", h.Settlement.CancelPeriod)
					r.Post("/run", h.Settlement.Run)
					r.Get("/settlements", h.Settlement.ListSettlements)
					r.Get("/export.csv", h.Settlement.ExportCSV)
					r.Get("/export.xlsx", h.Settlement.ExportXLSX)
				})
			})
		})

		r.Route("/leave/balances/{employeeID}", func(r chi.Router) {
			r.Use(employeeParam)
			r.Group(func(r chi.Router) {
				r.Use(middleware.SelfOrAdmin)
				r.Get("/", h.Leave.GetBalance)
				r.Post("/debit", h.Leave.Debit)
				r.Get("/transactions", h.Leave.ListTransactions)
			})
			r.With(middleware.AdminOnly).Post("/grant", h.Leave.Grant)
		})
	})
	return r
}
