package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helli-it/support-tracker/internal/auth"
	"github.com/helli-it/support-tracker/internal/service"
)

// ReportsHandler exposes the admin reporting dashboard data.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// Get GET /reports. Optional start_date/end_date bound the report in
// shamsi YYYY/MM/DD form.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	result, err := h.service.Aggregate(c.UserContext(), actor, service.ReportQuery{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
