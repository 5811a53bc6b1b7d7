package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helli-it/support-tracker/internal/api/dto"
	"github.com/helli-it/support-tracker/internal/auth"
	"github.com/helli-it/support-tracker/internal/domain"
	"github.com/helli-it/support-tracker/internal/service"
	apperrors "github.com/helli-it/support-tracker/pkg/util"
)

// StudentsHandler exposes the admin student registry.
type StudentsHandler struct {
	service *service.StudentService
}

// NewStudentsHandler constructs handler.
func NewStudentsHandler(studentService *service.StudentService) *StudentsHandler {
	return &StudentsHandler{service: studentService}
}

// Resolve POST /students. Finds or creates a student by its natural
// keys.
func (h *StudentsHandler) Resolve(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	var req dto.StudentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	student, err := h.service.ResolveOrCreate(c.UserContext(), actor, "", studentInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": studentResponse(student)})
}

// Import POST /students/import. Accepts a multipart CSV file.
func (h *StudentsHandler) Import(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apperrors.NewFieldValidationError("file", "CSV file required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return apperrors.NewFieldValidationError("file", "unreadable upload")
	}
	defer file.Close() //nolint:errcheck

	result, err := h.service.ImportCSV(c.UserContext(), actor, file)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.ImportResponse{
		BatchID: result.BatchID,
		Created: result.Created,
		Updated: result.Updated,
		Failed:  result.Failed,
	}})
}

// Export GET /students/export. Streams the registry as CSV in the
// import schema.
func (h *StudentsHandler) Export(c *fiber.Ctx) error {
	actor := auth.ActorFromContext(c)
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="students.csv"`)
	return h.service.ExportCSV(c.UserContext(), actor, c.Response().BodyWriter())
}

func studentResponse(student *domain.Student) dto.StudentResponse {
	str := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}
	return dto.StudentResponse{
		ID:              student.ID,
		HelliCode:       str(student.HelliCode),
		NationalID:      str(student.NationalID),
		StudentMobile:   str(student.StudentMobile),
		FirstName:       student.FirstName,
		LastName:        student.LastName,
		Gender:          student.Gender,
		Grade:           student.Grade,
		Province:        student.Province,
		ParentMobile:    student.ParentMobile,
		EmergencyMobile: student.EmergencyMobile,
		CreatedAt:       student.CreatedAt,
	}
}
