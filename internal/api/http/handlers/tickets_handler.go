package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"github.com/helli-it/support-tracker/internal/api/dto"
	"github.com/helli-it/support-tracker/internal/auth"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/jalali"
	"github.com/helli-it/support-tracker/internal/service"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// TicketsHandler exposes the ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.service.Create(c.UserContext(), actor, service.TicketCreateInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		StudentID:    req.StudentID,
		Student:      studentInput(req.Student),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	tickets, err := h.service.List(c.UserContext(), actor, listQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	ticket, comments, err := h.service.Get(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// EditTicket PUT /tickets/:id.
func (h *TicketsHandler) EditTicket(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.EditTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.Edit(c.UserContext(), actor, c.Params("id"), service.TicketEditInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.service.UpdateStatus(c.UserContext(), actor, c.Params("id"), domain.TicketStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Reassign PATCH /tickets/:id/department.
func (h *TicketsHandler) Reassign(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.ReassignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.DepartmentID == "" {
		return apperrors.NewFieldValidationError("department_id", "department required")
	}
	ticket, err := h.service.Reassign(c.UserContext(), actor, c.Params("id"), req.DepartmentID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.service.AddComment(c.UserContext(), actor, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// DeleteTicket DELETE /tickets/:id.
func (h *TicketsHandler) DeleteTicket(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	if err := h.service.Delete(c.UserContext(), actor, c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export GET /tickets/export. Streams the filtered ticket set as a
// spreadsheet with localized headers.
func (h *TicketsHandler) Export(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	rows, err := h.service.Export(c.UserContext(), actor, listQuery(c))
	if err != nil {
		return err
	}

	file := excelize.NewFile()
	defer file.Close() //nolint:errcheck
	sheet := file.GetSheetName(0)

	for col, title := range service.ExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, title); err != nil {
			return err
		}
	}
	for i, row := range rows {
		values := []any{
			row.ID, row.Title, row.HelliCode, row.Description,
			row.StatusLabel, row.Department, row.CreatorName, row.CreatedShamsi,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.xlsx"`)
	return c.Send(buf.Bytes())
}

func listQuery(c *fiber.Ctx) service.TicketListQuery {
	return service.TicketListQuery{
		DepartmentID: c.Query("department_id"),
		CreatorID:    c.Query("creator_id"),
		Status:       c.Query("status"),
		StartDate:    c.Query("start_date"),
		EndDate:      c.Query("end_date"),
		HelliCode:    c.Query("helli_code"),
	}
}

func studentInput(req dto.StudentRequest) service.StudentInput {
	return service.StudentInput{
		HelliCode:       req.HelliCode,
		NationalID:      req.NationalID,
		StudentMobile:   req.StudentMobile,
		FirstName:       req.FirstName,
		LastName:        req.LastName,
		Gender:          req.Gender,
		Grade:           req.Grade,
		Province:        req.Province,
		ParentMobile:    req.ParentMobile,
		EmergencyMobile: req.EmergencyMobile,
	}
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		StatusLabel:   ticket.Status.Label(),
		DepartmentID:  ticket.DepartmentID,
		CreatorID:     ticket.CreatorID,
		StudentID:     ticket.StudentID,
		CreatedAt:     ticket.CreatedAt,
		CreatedShamsi: jalali.FormatDateTime(ticket.CreatedAt),
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment) dto.TicketDetailResponse {
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		Comments:      items,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        comment.ID,
		AuthorID:  comment.AuthorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt,
	}
}
