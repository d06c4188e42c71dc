package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/phSch08/EvaP/internal/dto"
	"github.com/phSch08/EvaP/internal/handler"
	"github.com/phSch08/EvaP/internal/service"
)

type mockReviewService struct {
	lastCourseID uint
	lastOnlyOpen bool
	lastAnswerID uint
	lastReviewed string
	listResp     []dto.TextAnswerResponse
	answerResp   dto.TextAnswerResponse
	err          error
}

func (m *mockReviewService) ListTextAnswers(_ context.Context, courseID uint, onlyOpen bool) ([]dto.TextAnswerResponse, error) {
	m.lastCourseID = courseID
	m.lastOnlyOpen = onlyOpen
	return m.listResp, m.err
}

func (m *mockReviewService) CheckAnswer(_ context.Context, answerID uint) (dto.TextAnswerResponse, error) {
	m.lastAnswerID = answerID
	return m.answerResp, m.err
}

func (m *mockReviewService) HideAnswer(_ context.Context, answerID uint) (dto.TextAnswerResponse, error) {
	m.lastAnswerID = answerID
	return m.answerResp, m.err
}

func (m *mockReviewService) ReviewAnswer(_ context.Context, answerID uint, reviewed string) (dto.TextAnswerResponse, error) {
	m.lastAnswerID = answerID
	m.lastReviewed = reviewed
	return m.answerResp, m.err
}

func (m *mockReviewService) IsFullyChecked(_ context.Context, courseID uint) (bool, error) {
	m.lastCourseID = courseID
	return true, m.err
}

func (m *mockReviewService) IsFullyCheckedExcept(_ context.Context, courseID uint, _ []uint) (bool, error) {
	m.lastCourseID = courseID
	return true, m.err
}

func newReviewApp(svc *mockReviewService) *fiber.App {
	app := fiber.New()
	handler.NewReviewHandler(svc, testValidator(), testLogger()).Register(app.Group("/api/v1/staff"))
	return app
}

func TestReviewHandler_ListPassesOpenFilter(t *testing.T) {
	svc := &mockReviewService{listResp: []dto.TextAnswerResponse{{ID: 1, Answer: "too fast"}}}
	app := newReviewApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodGet, "/api/v1/staff/courses/12/textanswers?only_open=true", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(12), svc.lastCourseID)
	require.True(t, svc.lastOnlyOpen)

	var body struct {
		Data []dto.TextAnswerResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 1)

	resp, err = app.Test(jsonRequest(t, http.MethodGet, "/api/v1/staff/courses/12/textanswers", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.False(t, svc.lastOnlyOpen)
}

func TestReviewHandler_CheckAndHide(t *testing.T) {
	svc := &mockReviewService{answerResp: dto.TextAnswerResponse{ID: 5, Checked: true}}
	app := newReviewApp(svc)

	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/5/check", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastAnswerID)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/6/hide", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(6), svc.lastAnswerID)
}

func TestReviewHandler_Review(t *testing.T) {
	svc := &mockReviewService{answerResp: dto.TextAnswerResponse{ID: 5, Checked: true}}
	app := newReviewApp(svc)

	payload := dto.ReviewAnswerRequest{Reviewed: "the professor could improve"}
	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/5/review", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "the professor could improve", svc.lastReviewed)

	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/5/review", dto.ReviewAnswerRequest{}))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "an empty reviewed text fails validation")
}

func TestReviewHandler_ErrorMapping(t *testing.T) {
	app := newReviewApp(&mockReviewService{err: service.ErrAnswerNotFound})
	resp, err := app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/99/check", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	app = newReviewApp(&mockReviewService{err: service.ErrEmptyReviewedAnswer})
	payload := dto.ReviewAnswerRequest{Reviewed: "<script>alert(1)</script>"}
	resp, err = app.Test(jsonRequest(t, http.MethodPatch, "/api/v1/staff/textanswers/5/review", payload))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}
