package repository

import (
	"context"
	"sync"

	"github.com/unihouse/api/internal/model"
)

// SeedListings はプロトタイプ掲示板のモックデータを返す。
// デモモードの初期データおよびテストのフィクスチャとして使用する。
func SeedListings() []model.Listing {
	return []model.Listing{
		{
			ID:          "1",
			Title:       "OO대학교 도보 5분 투룸 / 남성 룸메 구함",
			Campus:      "OO대학교",
			Rent:        35,
			Deposit:     200,
			Gender:      model.GenderMale,
			Description: "조용하고 깔끔한 성격이면 좋겠음. 생활 패턴 비슷한 분 환영.",
			Amenities:   []string{"세탁기", "에어컨", "주차"},
			Distance:    "도보 5분",
			PostedAt:    "2025-08-20",
		},
		{
			ID:          "2",
			Title:       "원룸 쉐어 / 여성 룸메이트",
			Campus:      "XX대학교",
			Rent:        40,
			Deposit:     100,
			Gender:      model.GenderFemale,
			Description: "기숙사 느낌으로 함께 살 분 찾는 중. 비흡연자만.",
			Amenities:   []string{"에어컨", "엘리베이터"},
			Distance:    "도보 10분",
			PostedAt:    "2025-08-22",
		},
		{
			ID:          "3",
			Title:       "역 바로 앞 오피스텔 / 성별무관",
			Campus:      "OO대학교",
			Rent:        50,
			Deposit:     300,
			Gender:      model.GenderAny,
			Description: "역세권, 편의점/카페 근처. 자취 경력 있으면 좋음.",
			Amenities:   []string{"풀옵션", "보안"},
			Distance:    "도보 3분",
			PostedAt:    "2025-08-25",
		},
	}
}

// MemoryListingRepo はメモリ上に掲示を保持するリポジトリ。
// DBなしで起動するデモモードとテストで使用する。追加は先頭挿入で新着順を維持する。
type MemoryListingRepo struct {
	mu       sync.RWMutex
	listings []model.Listing
}

// NewMemoryListingRepo は初期データ付きのMemoryListingRepoを生成する。
func NewMemoryListingRepo(seed []model.Listing) *MemoryListingRepo {
	listings := make([]model.Listing, len(seed))
	copy(listings, seed)
	return &MemoryListingRepo{listings: listings}
}

// FindByID は指定IDの掲示を取得する。見つからない場合はnilを返す。
func (r *MemoryListingRepo) FindByID(_ context.Context, id string) (*model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.listings {
		if r.listings[i].ID == id {
			l := r.listings[i]
			return &l, nil
		}
	}
	return nil, nil
}

// ListAll は全掲示を自然順で返す。
func (r *MemoryListingRepo) ListAll(_ context.Context) ([]model.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Listing, len(r.listings))
	copy(out, r.listings)
	return out, nil
}

// Create は掲示を先頭に追加する。
func (r *MemoryListingRepo) Create(_ context.Context, listing *model.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings = append([]model.Listing{*listing}, r.listings...)
	return nil
}

// compile-time interface check
var _ ListingRepository = (*MemoryListingRepo)(nil)
