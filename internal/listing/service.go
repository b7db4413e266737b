package listing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/unihouse/api/internal/model"
	"github.com/unihouse/api/internal/repository"
	"github.com/unihouse/api/internal/security"
)

// Service は掲示の検索・取得・作成・ブックマークのサービス。
type Service struct {
	listingRepo  repository.ListingRepository
	bookmarkRepo repository.BookmarkRepository
	sanitizer    security.TextSanitizerService
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	listingRepo repository.ListingRepository,
	bookmarkRepo repository.BookmarkRepository,
	sanitizer security.TextSanitizerService,
) *Service {
	return &Service{
		listingRepo:  listingRepo,
		bookmarkRepo: bookmarkRepo,
		sanitizer:    sanitizer,
	}
}

// Search は掲示一覧をキーワード・性別ファセット・並び順付きで返す。
// genderとsortは生のクエリ文字列を受け取り、空は「指定なし」として扱う。
// 閲覧ユーザーのブックマーク状態を各掲示に付与する。
func (s *Service) Search(
	ctx context.Context,
	userID, keyword, gender, sortMode string,
) ([]model.ListingWithBookmark, error) {
	g := model.Gender(gender)
	if gender != "" && !g.IsValid() {
		return nil, model.NewInvalidGenderError(gender)
	}

	mode := model.SortMode(sortMode)
	if sortMode == "" {
		mode = model.SortLatest
	}
	if !mode.IsValid() {
		return nil, model.NewInvalidSortError(sortMode)
	}

	listings, err := s.listingRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := SortListings(Filter(listings, keyword, g), mode)

	bookmarked, err := s.bookmarkRepo.ListListingIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]model.ListingWithBookmark, len(filtered))
	for i, l := range filtered {
		result[i] = model.ListingWithBookmark{
			Listing:    l,
			Bookmarked: bookmarked[l.ID],
		}
	}
	return result, nil
}

// Get は掲示詳細を閲覧ユーザーのブックマーク状態付きで返す。
func (s *Service) Get(ctx context.Context, userID, listingID string) (*model.ListingWithBookmark, error) {
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, model.NewListingNotFoundError(listingID)
	}

	bookmarked, err := s.bookmarkRepo.ListListingIDsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &model.ListingWithBookmark{
		Listing:    *l,
		Bookmarked: bookmarked[l.ID],
	}, nil
}

// CreateInput は掲示作成の入力。
type CreateInput struct {
	Title       string
	Campus      string
	Rent        int
	Deposit     int
	Gender      string
	Description string
	ImageURL    string
	Amenities   []string
	Distance    string
}

// Create は掲示を作成する。
// タイトル・キャンパス名は必須、월세は正数、보증금は非負、性別は定義済み値のみ。
// 自由入力テキストは保存前にサニタイズする。
func (s *Service) Create(ctx context.Context, authorID string, input CreateInput) (*model.Listing, error) {
	title := s.sanitizer.Sanitize(input.Title)
	campus := s.sanitizer.Sanitize(input.Campus)

	if title == "" {
		return nil, model.NewInvalidListingError("제목은 필수입니다")
	}
	if campus == "" {
		return nil, model.NewInvalidListingError("캠퍼스는 필수입니다")
	}
	if input.Rent <= 0 {
		return nil, model.NewInvalidListingError("월세는 0보다 커야 합니다")
	}
	if input.Deposit < 0 {
		return nil, model.NewInvalidListingError("보증금은 음수일 수 없습니다")
	}

	g := model.Gender(input.Gender)
	if !g.IsValid() {
		return nil, model.NewInvalidGenderError(input.Gender)
	}

	amenities := make([]string, 0, len(input.Amenities))
	for _, a := range input.Amenities {
		if cleaned := s.sanitizer.Sanitize(a); cleaned != "" {
			amenities = append(amenities, cleaned)
		}
	}

	l := &model.Listing{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		Title:       title,
		Campus:      campus,
		Rent:        input.Rent,
		Deposit:     input.Deposit,
		Gender:      g,
		Description: s.sanitizer.Sanitize(input.Description),
		ImageURL:    input.ImageURL,
		Amenities:   amenities,
		Distance:    s.sanitizer.Sanitize(input.Distance),
		PostedAt:    "방금 전",
		CreatedAt:   time.Now(),
	}

	if err := s.listingRepo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// SetBookmark はブックマーク状態を冪等に設定する。
// 対象の掲示が存在しない場合はエラーを返す。
func (s *Service) SetBookmark(ctx context.Context, userID, listingID string, on bool) error {
	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		return err
	}
	if l == nil {
		return model.NewListingNotFoundError(listingID)
	}

	return s.bookmarkRepo.Set(ctx, userID, listingID, on)
}
