package media

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/scribe-backend/internal/data/repos/repoerr"
	"github.com/yungbote/scribe-backend/internal/data/repos/testutil"
	types "github.com/yungbote/scribe-backend/internal/domain"
)

func TestImageSearchRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewImageSearchRepo(db, testutil.Logger(t))
	dbc := testutil.Ctx()

	for _, q := range []string{"forum", "aqueduct"} {
		if _, err := repo.Create(dbc, &types.ImageSearch{SessionID: "s1", Query: q, Results: datatypes.JSON(`[]`)}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if _, err := repo.Create(dbc, &types.ImageSearch{SessionID: "s2", Query: "other"}); err != nil {
		t.Fatalf("Create other: %v", err)
	}
	got, err := repo.ListBySession(dbc, "s1", 10)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 searches, got %d", len(got))
	}
}

func TestGeneratedImageRepo(t *testing.T) {
	db := testutil.DB(t)
	repo := NewGeneratedImageRepo(db, testutil.Logger(t))
	dbc := testutil.Ctx()

	img, err := repo.Create(dbc, &types.GeneratedImage{Prompt: "sunset", Style: "cinematic", Size: "1024x1024", Quality: "standard"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.GetByID(dbc, img.ID)
	if err != nil || got.Prompt != "sunset" {
		t.Fatalf("GetByID: %+v %v", got, err)
	}
	if _, err := repo.GetByID(dbc, uuid.New()); !errors.Is(err, repoerr.ErrNotFound) {
		t.Fatalf("missing: %v", err)
	}
}
