package repository

import (
	"context"
	"testing"

	"github.com/unihouse/api/internal/model"
)

// 各PostgresリポジトリがインターフェースをNew関数経由でも満たすことを検証
func TestNewPostgresRepos_Initialize(t *testing.T) {
	if NewPostgresUserRepo(nil) == nil {
		t.Fatal("expected non-nil user repo")
	}
	if NewPostgresIdentityRepo(nil) == nil {
		t.Fatal("expected non-nil identity repo")
	}
	if NewPostgresSessionRepo(nil) == nil {
		t.Fatal("expected non-nil session repo")
	}
	if NewPostgresListingRepo(nil) == nil {
		t.Fatal("expected non-nil listing repo")
	}
	if NewPostgresBookmarkRepo(nil) == nil {
		t.Fatal("expected non-nil bookmark repo")
	}
}

func TestSeedListings_MatchesPrototypeBoard(t *testing.T) {
	seed := SeedListings()

	if len(seed) != 3 {
		t.Fatalf("seed length = %d, want 3", len(seed))
	}
	if seed[0].ID != "1" || seed[0].Campus != "OO대학교" {
		t.Errorf("unexpected first seed listing: %+v", seed[0])
	}
	if seed[1].Gender != model.GenderFemale {
		t.Errorf("seed[1].Gender = %q, want %q", seed[1].Gender, model.GenderFemale)
	}

	// 呼び出しごとに独立したスライスを返すこと
	seed[0].Title = "mutated"
	if SeedListings()[0].Title == "mutated" {
		t.Error("SeedListings must return a fresh copy")
	}
}

func TestMemoryListingRepo_FindByID(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepo(SeedListings())

	l, err := repo.FindByID(ctx, "2")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if l == nil {
		t.Fatal("expected listing for id 2")
	}
	if l.Campus != "XX대학교" {
		t.Errorf("campus = %q, want %q", l.Campus, "XX대학교")
	}

	missing, err := repo.FindByID(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if missing != nil {
		t.Error("expected nil for unknown id")
	}
}

func TestMemoryListingRepo_Create_PrependsNewest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryListingRepo(SeedListings())

	if err := repo.Create(ctx, &model.Listing{ID: "99", Title: "신규 매물", Campus: "OO대학교", Gender: model.GenderAny}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	all, err := repo.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("len = %d, want 4", len(all))
	}
	if all[0].ID != "99" {
		t.Errorf("newest listing should be first, got %q", all[0].ID)
	}
}

func TestMemoryBookmarkRepo_SetIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryBookmarkRepo()

	for i := 0; i < 2; i++ {
		if err := repo.Set(ctx, "user-1", "listing-1", true); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}

	ids, err := repo.ListListingIDsByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListListingIDsByUser() error = %v", err)
	}
	if len(ids) != 1 || !ids["listing-1"] {
		t.Errorf("ids = %v, want exactly listing-1", ids)
	}

	// 解除も冪等
	for i := 0; i < 2; i++ {
		if err := repo.Set(ctx, "user-1", "listing-1", false); err != nil {
			t.Fatalf("Set(off) error = %v", err)
		}
	}
	ids, _ = repo.ListListingIDsByUser(ctx, "user-1")
	if len(ids) != 0 {
		t.Errorf("ids = %v, want empty", ids)
	}
}
