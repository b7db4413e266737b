// Package listing は掲示の検索・絞り込み・作成機能を提供する。
package listing

import (
	"sort"
	"strings"

	"github.com/unihouse/api/internal/model"
)

// Filter はキーワードと性別ファセットで掲示を絞り込む純関数。
// キーワードはタイトルまたはキャンパス名に対する部分一致（大文字小文字を区別しない）。
// 空キーワードは全件にマッチする。
// 性別ファセットは空なら全件、指定ありなら完全一致のみ通過する。
func Filter(listings []model.Listing, keyword string, gender model.Gender) []model.Listing {
	lowered := strings.ToLower(strings.TrimSpace(keyword))

	result := make([]model.Listing, 0, len(listings))
	for _, l := range listings {
		if lowered != "" &&
			!strings.Contains(strings.ToLower(l.Title), lowered) &&
			!strings.Contains(strings.ToLower(l.Campus), lowered) {
			continue
		}
		if gender != "" && l.Gender != gender {
			continue
		}
		result = append(result, l)
	}
	return result
}

// SortListings は並び順モードに従って掲示を並び替えた新しいスライスを返す純関数。
// priceは월세の昇順（安定ソート、同額は元の順序を保つ）。
// latestは自然順（新着順）のまま並び替えを行わない。
func SortListings(listings []model.Listing, mode model.SortMode) []model.Listing {
	result := make([]model.Listing, len(listings))
	copy(result, listings)

	if mode == model.SortPrice {
		sort.SliceStable(result, func(i, j int) bool {
			return result[i].Rent < result[j].Rent
		})
	}
	return result
}
