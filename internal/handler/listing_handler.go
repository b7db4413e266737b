package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/unihouse/api/internal/listing"
	"github.com/unihouse/api/internal/middleware"
	"github.com/unihouse/api/internal/model"
)

// ListingServiceInterface は掲示ハンドラーが必要とするサービスインターフェース。
type ListingServiceInterface interface {
	// Search は掲示一覧をキーワード・性別ファセット・並び順付きで返す。
	Search(ctx context.Context, userID, keyword, gender, sortMode string) ([]model.ListingWithBookmark, error)
	// Get は掲示詳細をブックマーク状態付きで返す。
	Get(ctx context.Context, userID, listingID string) (*model.ListingWithBookmark, error)
	// Create は掲示を作成する。
	Create(ctx context.Context, authorID string, input listing.CreateInput) (*model.Listing, error)
	// SetBookmark はブックマーク状態を冪等に設定する。
	SetBookmark(ctx context.Context, userID, listingID string, on bool) error
}

// ListingRecorder は掲示関連メトリクスの記録インターフェース。
type ListingRecorder interface {
	RecordListingSearch()
	RecordListingCreated()
}

// ListingHandler は掲示管理のHTTPハンドラー。
type ListingHandler struct {
	service ListingServiceInterface
	metrics ListingRecorder
}

// NewListingHandler はListingHandlerを生成する。
func NewListingHandler(service ListingServiceInterface, metrics ListingRecorder) *ListingHandler {
	return &ListingHandler{
		service: service,
		metrics: metrics,
	}
}

// --- リクエスト・レスポンス型 ---

// listingResponse は掲示のAPIレスポンス。フィールド名はアプリの表示モデルに合わせる。
type listingResponse struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Campus      string    `json:"campus"`
	Rent        int       `json:"rent"`
	Deposit     int       `json:"deposit"`
	Gender      string    `json:"gender"`
	Description string    `json:"description"`
	ImageURL    string    `json:"imageUrl"`
	Amenities   []string  `json:"amenities"`
	Distance    string    `json:"distance"`
	PostedAt    string    `json:"postedAt"`
	CreatedAt   time.Time `json:"createdAt"`
	Bookmarked  bool      `json:"bookmarked"`
}

// listingListResponse は掲示一覧のレスポンス。
type listingListResponse struct {
	Listings []listingResponse `json:"listings"`
	Total    int               `json:"total"`
}

// createListingRequest は掲示作成リクエストのボディ。
type createListingRequest struct {
	Title       string   `json:"title"`
	Campus      string   `json:"campus"`
	Rent        int      `json:"rent"`
	Deposit     int      `json:"deposit"`
	Gender      string   `json:"gender"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Amenities   []string `json:"amenities"`
	Distance    string   `json:"distance"`
}

// bookmarkRequest はブックマーク設定リクエストのボディ。
type bookmarkRequest struct {
	Bookmarked bool `json:"bookmarked"`
}

// bookmarkResponse はブックマーク設定のレスポンス。
type bookmarkResponse struct {
	ListingID  string `json:"listingId"`
	Bookmarked bool   `json:"bookmarked"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// List は掲示一覧を検索条件付きで取得する。
// GET /api/listings?q=xxx&gender=남성|여성|무관&sort=latest|price
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	query := r.URL.Query()
	keyword := query.Get("q")
	gender := query.Get("gender")
	sortMode := query.Get("sort")

	results, err := h.service.Search(r.Context(), userID, keyword, gender, sortMode)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordListingSearch()

	responses := make([]listingResponse, len(results))
	for i, l := range results {
		responses[i] = toListingResponse(l)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listingListResponse{
		Listings: responses,
		Total:    len(responses),
	})
}

// Get は掲示詳細を取得する。
// GET /api/listings/{id}
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listingID := chi.URLParam(r, "id")

	result, err := h.service.Get(r.Context(), userID, listingID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toListingResponse(*result))
}

// Create は掲示を作成する。
// POST /api/listings
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	created, err := h.service.Create(r.Context(), userID, listing.CreateInput{
		Title:       req.Title,
		Campus:      req.Campus,
		Rent:        req.Rent,
		Deposit:     req.Deposit,
		Gender:      req.Gender,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		Amenities:   req.Amenities,
		Distance:    req.Distance,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.metrics.RecordListingCreated()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toListingResponse(model.ListingWithBookmark{Listing: *created}))
}

// Bookmark はブックマーク状態を設定する。
// PUT /api/listings/{id}/bookmark
func (h *ListingHandler) Bookmark(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	listingID := chi.URLParam(r, "id")

	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestError(w)
		return
	}

	if err := h.service.SetBookmark(r.Context(), userID, listingID, req.Bookmarked); err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookmarkResponse{
		ListingID:  listingID,
		Bookmarked: req.Bookmarked,
	})
}

// toListingResponse はドメインモデルをAPIレスポンスに変換する。
func toListingResponse(l model.ListingWithBookmark) listingResponse {
	amenities := l.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return listingResponse{
		ID:          l.ID,
		AuthorID:    l.AuthorID,
		Title:       l.Title,
		Campus:      l.Campus,
		Rent:        l.Rent,
		Deposit:     l.Deposit,
		Gender:      string(l.Gender),
		Description: l.Description,
		ImageURL:    l.ImageURL,
		Amenities:   amenities,
		Distance:    l.Distance,
		PostedAt:    l.PostedAt,
		CreatedAt:   l.CreatedAt,
		Bookmarked:  l.Bookmarked,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeInvalidRequestError はリクエストボディ不正の統一レスポンスを書き込む。
func writeInvalidRequestError(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "요청 형식이 올바르지 않습니다.",
		Category: "validation",
		Action:   "입력 내용을 확인해 주세요.",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "일시적인 오류가 발생했습니다.",
		Category: "system",
		Action:   "잠시 후 다시 시도해 주세요.",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeInvalidCredentials, model.ErrCodeOAuthDenied:
		return http.StatusUnauthorized
	case model.ErrCodeEmailTaken:
		return http.StatusConflict
	case model.ErrCodeWeakPassword, model.ErrCodeUnknownProvider,
		model.ErrCodeInvalidGender, model.ErrCodeInvalidSort, model.ErrCodeInvalidListing:
		return http.StatusBadRequest
	case model.ErrCodeListingNotFound, model.ErrCodeUserNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
