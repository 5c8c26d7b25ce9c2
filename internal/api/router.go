package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/workhivehq/workhive/internal/auth"
	"github.com/workhivehq/workhive/internal/cache"
	"github.com/workhivehq/workhive/internal/handlers"
	"github.com/workhivehq/workhive/internal/middleware"
	"github.com/workhivehq/workhive/internal/models"
	"github.com/workhivehq/workhive/internal/services"
)

// Services bundles everything the router needs to wire the HTTP surface.
type Services struct {
	DB            *gorm.DB
	Cache         cache.Store
	JWT           *auth.JWTService
	Users         *services.UserService
	Invitations   *services.InvitationService
	Memberships   *services.MembershipService
	Roles         *services.RoleService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Meetings      *services.MeetingService
	Notifications *services.NotificationService
	Audit         *services.AuditService
}

// NewRouter builds the gin engine with all routes and middleware attached.
func NewRouter(deps Services) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
	)

	health := handlers.NewHealthHandler(deps.DB)
	authHandler := handlers.NewAuthHandler(deps.Users, deps.Invitations, deps.JWT)
	invitations := handlers.NewInvitationHandler(deps.Invitations)
	organizations := handlers.NewOrganizationHandler(deps.Memberships, deps.Roles)
	users := handlers.NewUserHandler(deps.Users)
	projects := handlers.NewProjectHandler(deps.Projects)
	tasks := handlers.NewTaskHandler(deps.Tasks)
	meetings := handlers.NewMeetingHandler(deps.Meetings)
	notifications := handlers.NewNotificationHandler(deps.Notifications)
	audit := handlers.NewAuditHandler(deps.Audit)

	router.GET("/health", health.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")

	public := api.Group("/auth")
	public.Use(middleware.RateLimit(deps.Cache, middleware.RateLimitConfig{
		Requests: 20,
		Window:   time.Minute,
		Scope:    "auth",
	}))
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	private := api.Group("")
	private.Use(
		middleware.RequireAuth(deps.JWT),
		middleware.RateLimit(deps.Cache, middleware.RateLimitConfig{
			Requests: 300,
			Window:   time.Minute,
			Scope:    "api",
		}),
	)
	{
		private.GET("/me", authHandler.Me)
		private.PUT("/me", authHandler.UpdateMe)

		private.GET("/users", users.List)
		private.GET("/users/:id", users.Get)

		inv := private.Group("/invitations")
		{
			inv.POST("", invitations.Send)
			inv.GET("/sent", invitations.ListSent)
			inv.GET("/received", invitations.ListReceived)
			inv.POST("/claim", invitations.ClaimToken)
			inv.POST("/:id/accept", invitations.AcceptInvitation)
			inv.POST("/:id/reject", invitations.RejectInvitation)
			inv.DELETE("/:id", invitations.Cancel)
		}

		req := private.Group("/requests")
		{
			req.POST("", invitations.RequestToJoin)
			req.GET("/sent", invitations.ListSentRequests)
			req.GET("/pending", invitations.ListPendingRequests)
			req.POST("/:id/accept", invitations.AcceptRequest)
			req.POST("/:id/reject", invitations.RejectRequest)
			req.DELETE("/:id", invitations.Cancel)
		}

		org := private.Group("/organization")
		org.Use(middleware.RequireRole(models.RoleBusinessOwner))
		{
			org.GET("/members", organizations.ListMembers)
			org.DELETE("/members/:id", organizations.RemoveMember)
			org.PUT("/members/:id/role", organizations.ReassignRole)
			org.GET("/audit", audit.List)
		}

		proj := private.Group("/projects")
		{
			proj.POST("", projects.Create)
			proj.GET("", projects.List)
			proj.GET("/:id", projects.Get)
			proj.PUT("/:id", projects.Update)
			proj.POST("/:id/archive", projects.Archive)
			proj.GET("/:id/members", projects.ListMembers)
			proj.POST("/:id/members", projects.AddMember)
			proj.DELETE("/:id/members/:memberId", projects.RemoveMember)
			proj.POST("/:id/tasks", tasks.Create)
			proj.GET("/:id/tasks", tasks.ListByProject)
			proj.GET("/:id/meetings", meetings.ListByProject)
		}

		task := private.Group("/tasks")
		{
			task.GET("/:id", tasks.Get)
			task.PUT("/:id", tasks.Update)
			task.PUT("/:id/status", tasks.UpdateStatus)
			task.PUT("/:id/assignee", tasks.Assign)
			task.DELETE("/:id", tasks.Delete)
		}

		meet := private.Group("/meetings")
		{
			meet.POST("", meetings.Schedule)
			meet.GET("/upcoming", meetings.ListUpcoming)
			meet.GET("/:id", meetings.Get)
			meet.POST("/:id/cancel", meetings.Cancel)
		}

		notif := private.Group("/notifications")
		{
			notif.GET("", notifications.List)
			notif.GET("/unread-count", notifications.UnreadCount)
			notif.PUT("/read-all", notifications.MarkAllRead)
			notif.PUT("/:id/read", notifications.MarkRead)
			notif.DELETE("/:id", notifications.Delete)
		}
	}

	return router
}
