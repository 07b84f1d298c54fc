package rest

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/questlog/questd/internal/domain"
	"github.com/questlog/questd/internal/present/rest/presenter"
	"github.com/questlog/questd/internal/usecase"
)

type Handler struct {
	account  *usecase.AccountUsecase
	deletion *usecase.DeletionUsecase
}

func NewHandler(
	account *usecase.AccountUsecase,
	deletion *usecase.DeletionUsecase,
) *Handler {
	return &Handler{
		account:  account,
		deletion: deletion,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo, requireSession echo.MiddlewareFunc) {
	e.GET("/healthz", h.handleHealth)

	api := e.Group("/api/v1", requireSession)
	api.GET("/user", h.handleGetUser)
	api.DELETE("/user", h.handleDeleteUser)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleGetUser(c echo.Context) error {
	ctx := c.Request().Context()

	requesterID, ok := ctx.Value(domain.RequesterIDCtxKey).(string)
	if !ok {
		return presenter.Unauthorized(c, "no requester identity")
	}

	account, err := h.account.Get(ctx, requesterID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "account not found")
		}
		return presenter.InternalError(c, err)
	}
	return presenter.OK(c, account)
}

type deleteUserRequest struct {
	Password string `json:"password"`
	Feedback string `json:"feedback"`
}

func (h *Handler) handleDeleteUser(c echo.Context) error {
	ctx := c.Request().Context()

	requesterID, ok := ctx.Value(domain.RequesterIDCtxKey).(string)
	if !ok {
		return presenter.Unauthorized(c, "no requester identity")
	}

	var req deleteUserRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	err := h.deletion.Delete(ctx, usecase.DeletionInput{
		AccountID: requesterID,
		Password:  req.Password,
		Feedback:  req.Feedback,
	})
	if err != nil {
		return rejectionStatus(c, err)
	}

	return presenter.OK(c, echo.Map{"status": "ok"})
}

// rejectionStatus maps the deletion error taxonomy onto HTTP statuses:
// input errors are 400, authorization errors 401/403, guard conflicts 409,
// and anything infrastructural becomes a retryable 500.
func rejectionStatus(c echo.Context, err error) error {
	var rejection domain.RejectionError
	if errors.As(err, &rejection) {
		switch rejection {
		case domain.ErrMissingCredential, domain.ErrFeedbackTooLong:
			return presenter.Rejected(c, http.StatusBadRequest, rejection.Reason, rejection.Message)
		case domain.ErrInvalidCredential:
			return presenter.Rejected(c, http.StatusUnauthorized, rejection.Reason, rejection.Message)
		case domain.ErrNotEligible:
			return presenter.Rejected(c, http.StatusForbidden, rejection.Reason, rejection.Message)
		case domain.ErrDeletionInProgress:
			return presenter.Rejected(c, http.StatusConflict, rejection.Reason, rejection.Message)
		}
	}
	if errors.Is(err, domain.ErrNotFound) {
		return presenter.NotFound(c, "account not found")
	}
	return presenter.InternalError(c, errors.New("deletion incomplete, retry"))
}
