package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/applicant-tracker/internal/auth"
)

type Handlers struct {
	Jobs         *JobHandler
	Forms        *FormHandler
	Applications *ApplicationHandler
}

// Register mounts the API under /api/v1. Admin routes require a bearer token
// signed with adminSecret.
func Register(r *gin.Engine, h Handlers, adminSecret string) {
	api := r.Group("/api/v1")
	{
		api.GET("/health", HealthCheck)

		api.GET("/jobs", h.Jobs.ListJobs)
		api.GET("/jobs/:id", h.Jobs.GetJob)
		api.POST("/jobs/:id/apply", h.Applications.Apply)

		api.GET("/forms/:id", h.Forms.RenderForm)
		api.POST("/forms/:id/submit", h.Applications.SubmitForm)
	}

	admin := api.Group("/admin", auth.AdminMiddleware(adminSecret))
	{
		admin.POST("/jobs/extract", h.Jobs.ParseJob)
		admin.POST("/jobs", h.Jobs.CreateJob)
		admin.GET("/jobs", h.Jobs.ListAllJobs)
		admin.PATCH("/jobs/:id/status", h.Jobs.UpdateJobStatus)

		admin.GET("/forms", h.Forms.ListForms)
		admin.POST("/forms", h.Forms.CreateForm)
		admin.GET("/forms/:id", h.Forms.GetForm)
		admin.DELETE("/forms/:id", h.Forms.DeleteForm)
		admin.POST("/forms/:id/default", h.Forms.SetDefault)
		admin.POST("/forms/:id/fields", h.Forms.InsertField)
		admin.POST("/forms/:id/fields/:fieldId/move", h.Forms.MoveField)
		admin.PATCH("/forms/:id/fields/:fieldId", h.Forms.UpdateField)
		admin.PUT("/forms/:id/fields/:fieldId/options", h.Forms.SetOptions)
		admin.DELETE("/forms/:id/fields/:fieldId", h.Forms.RemoveField)

		admin.GET("/applications", h.Applications.ListApplications)
		admin.GET("/applications/:id", h.Applications.GetApplication)
		admin.PATCH("/applications/:id/status", h.Applications.UpdateStatus)
		admin.GET("/files/*handle", h.Applications.DownloadFile)
	}
}
