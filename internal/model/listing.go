package model

import "time"

// Gender は募集対象の性別ファセットを表す。表示文字列をそのまま値に使う。
type Gender string

const (
	GenderMale   Gender = "남성"
	GenderFemale Gender = "여성"
	GenderAny    Gender = "무관"
)

// IsValid は定義済みの性別ファセットかどうかを返す。
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderAny:
		return true
	}
	return false
}

// SortMode は一覧の並び順を表す。
type SortMode string

const (
	// SortLatest は自然順（新着順）。並び替えを行わない。
	SortLatest SortMode = "latest"
	// SortPrice は월세（月額賃料）の昇順。
	SortPrice SortMode = "price"
)

// IsValid は定義済みの並び順かどうかを返す。
func (m SortMode) IsValid() bool {
	return m == SortLatest || m == SortPrice
}

// Listing はルームメイト募集の物件掲示を表す。
// RentとDepositの単位は만원（万ウォン）。
type Listing struct {
	ID          string
	AuthorID    string
	Title       string
	Campus      string
	Rent        int
	Deposit     int
	Gender      Gender
	Description string
	ImageURL    string
	Amenities   []string
	Distance    string
	PostedAt    string
	CreatedAt   time.Time
}

// ListingWithBookmark は一覧・詳細応答用に、閲覧ユーザーのブックマーク状態を付与したListing。
type ListingWithBookmark struct {
	Listing
	Bookmarked bool
}
