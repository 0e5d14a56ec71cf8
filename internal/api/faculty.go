package api

import (
	"net/http"

	"github.com/Freeeeeet/faculty_chat/internal/service"
	"github.com/labstack/echo/v4"
)

type facultyHandler struct {
	directory *service.DirectoryService
	invites   *service.InviteService
	messages  *service.MessageService
}

// GET /me
func (h *facultyHandler) me(c echo.Context) error {
	teacher, school, err := h.directory.Profile(c.Request().Context(), currentTeacherID(c))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{
		Success: true,
		User: userDTO{
			ID:       teacher.ID,
			FullName: teacher.FullName,
			Email:    teacher.Email,
			SchoolID: teacher.SchoolID,
			Subject:  teacher.Subject,
		},
		School: schoolDTO{Name: school.Name},
	})
}

// GET /teachers
func (h *facultyHandler) teachers(c echo.Context) error {
	teachers, err := h.directory.SchoolTeachers(c.Request().Context(), currentTeacherID(c))
	if err != nil {
		return err
	}

	resp := teachersResponse{Success: true, Teachers: make([]teacherDTO, 0, len(teachers))}
	for _, t := range teachers {
		resp.Teachers = append(resp.Teachers, toTeacherDTO(t))
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /invites
func (h *facultyHandler) listInvites(c echo.Context) error {
	incoming, outgoing, err := h.invites.ListInvites(c.Request().Context(), currentTeacherID(c))
	if err != nil {
		return err
	}

	resp := invitesResponse{
		Success:  true,
		Incoming: make([]invitationDTO, 0, len(incoming)),
		Outgoing: make([]invitationDTO, 0, len(outgoing)),
	}
	for _, v := range incoming {
		resp.Incoming = append(resp.Incoming, toInvitationDTO(v))
	}
	for _, v := range outgoing {
		resp.Outgoing = append(resp.Outgoing, toInvitationDTO(v))
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /invites
func (h *facultyHandler) sendInvite(c echo.Context) error {
	var req sendInviteRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	invitation, err := h.invites.SendInvite(c.Request().Context(), currentTeacherID(c), req.TeacherID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, sendInviteResponse{
		Success:    true,
		Invitation: invitationRef{ID: invitation.ID},
	})
}

// POST /invites/:id/accept
func (h *facultyHandler) acceptInvite(c echo.Context) error {
	if _, err := h.invites.AcceptInvite(c.Request().Context(), currentTeacherID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// POST /invites/:id/reject
func (h *facultyHandler) rejectInvite(c echo.Context) error {
	if err := h.invites.RejectInvite(c.Request().Context(), currentTeacherID(c), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true})
}

// GET /connections
func (h *facultyHandler) connections(c echo.Context) error {
	connections, err := h.invites.ListConnections(c.Request().Context(), currentTeacherID(c))
	if err != nil {
		return err
	}

	resp := connectionsResponse{Success: true, Connections: make([]connectionDTO, 0, len(connections))}
	for _, conn := range connections {
		resp.Connections = append(resp.Connections, toConnectionDTO(conn))
	}
	return c.JSON(http.StatusOK, resp)
}

// GET /conversations/:peerId?limit=N
func (h *facultyHandler) conversation(c echo.Context) error {
	var limit int
	err := echo.QueryParamsBinder(c).Int("limit", &limit).BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "limit must be a number")
	}

	messages, err := h.messages.GetConversation(c.Request().Context(), currentTeacherID(c), c.Param("peerId"), limit)
	if err != nil {
		return err
	}

	resp := messagesResponse{Success: true, Messages: make([]messageDTO, 0, len(messages))}
	for _, m := range messages {
		resp.Messages = append(resp.Messages, toMessageDTO(m))
	}
	return c.JSON(http.StatusOK, resp)
}

// POST /conversations/:peerId/messages
func (h *facultyHandler) sendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	_, err := h.messages.SendMessage(c.Request().Context(), currentTeacherID(c), c.Param("peerId"), req.Text, req.attachment())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, successResponse{Success: true})
}
