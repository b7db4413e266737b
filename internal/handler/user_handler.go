package handler

import (
	"context"
	"net/http"

	"github.com/unihouse/api/internal/middleware"
	"github.com/unihouse/api/internal/model"
)

// UserServiceInterface は会員ハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	// Withdraw は会員を退会させ、関連データをすべて削除する。
	Withdraw(ctx context.Context, userID string) error
}

// UserHandler は会員管理のHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// Withdraw は会員退会を処理する。
// DELETE /api/members/me
func (h *UserHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	if err := h.service.Withdraw(r.Context(), userID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
