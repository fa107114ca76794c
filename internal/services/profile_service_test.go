package services

import (
	"context"
	"testing"
	"time"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
)

func newProfileFixture(t *testing.T) (*ProfileService, *store.MemStore) {
	t.Helper()
	st := store.NewMemStore()
	return NewProfileService(st, testLogger()), st
}

func seedUser(t *testing.T, st *store.MemStore, u models.User) {
	t.Helper()
	if err := st.Set(context.Background(), store.UserDoc(u.UID), userDocData(&u)); err != nil {
		t.Fatalf("seed user %s: %v", u.UID, err)
	}
}

func TestUpdateProfileRecomputesImageFromGender(t *testing.T) {
	svc, st := newProfileFixture(t)
	seedUser(t, st, models.User{
		UID:          "uid-1",
		Email:        "sam@example.com",
		FullName:     "Sam",
		Gender:       models.GenderMale,
		ProfileImage: models.MaleProfileImage,
		CreatedAt:    time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
	})

	gender := models.GenderFemale
	user, err := svc.UpdateProfile(context.Background(), "uid-1", &models.UpdateProfileRequest{Gender: &gender})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.Gender != models.GenderFemale {
		t.Errorf("gender = %q", user.Gender)
	}
	if user.ProfileImage != models.FemaleProfileImage {
		t.Errorf("profileImage = %q, want female placeholder", user.ProfileImage)
	}
	if user.FullName != "Sam" {
		t.Errorf("fullName changed to %q", user.FullName)
	}
}

func TestUpdateProfileNameOnlyKeepsImage(t *testing.T) {
	svc, st := newProfileFixture(t)
	seedUser(t, st, models.User{
		UID:          "uid-1",
		Email:        "sam@example.com",
		FullName:     "Sam",
		Gender:       models.GenderFemale,
		ProfileImage: models.FemaleProfileImage,
	})

	name := "Samantha"
	user, err := svc.UpdateProfile(context.Background(), "uid-1", &models.UpdateProfileRequest{FullName: &name})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if user.FullName != "Samantha" {
		t.Errorf("fullName = %q", user.FullName)
	}
	if user.ProfileImage != models.FemaleProfileImage || user.Gender != models.GenderFemale {
		t.Errorf("gender/image drifted: %q/%q", user.Gender, user.ProfileImage)
	}
}

func TestUpdateProfileMissingUser(t *testing.T) {
	svc, _ := newProfileFixture(t)

	name := "Nobody"
	_, err := svc.UpdateProfile(context.Background(), "ghost", &models.UpdateProfileRequest{FullName: &name})
	if apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("kind = %v, want NotFound", apperr.KindOf(err))
	}
}

func TestFindOneAndRemove(t *testing.T) {
	svc, st := newProfileFixture(t)
	seedUser(t, st, models.User{UID: "uid-1", Email: "a@example.com", FullName: "A"})
	seedUser(t, st, models.User{UID: "uid-2", Email: "b@example.com", FullName: "B"})

	user, err := svc.FindOne(context.Background(), "uid-2")
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if user.Email != "b@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	if err := svc.Remove(context.Background(), "uid-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := svc.FindOne(context.Background(), "uid-1"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("removed user still found: %v", err)
	}
	if err := svc.Remove(context.Background(), "uid-1"); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("double remove kind = %v, want NotFound", apperr.KindOf(err))
	}

	all, err := svc.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all: %v", err)
	}
	if len(all) != 1 || all[0].UID != "uid-2" {
		t.Errorf("find all = %+v", all)
	}
}

func TestUpdateMergesFields(t *testing.T) {
	svc, st := newProfileFixture(t)
	seedUser(t, st, models.User{UID: "uid-1", Email: "a@example.com", FullName: "A"})

	if err := svc.Update(context.Background(), "uid-1", map[string]interface{}{"fullName": "Updated"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	user, err := svc.FindOne(context.Background(), "uid-1")
	if err != nil {
		t.Fatalf("find one: %v", err)
	}
	if user.FullName != "Updated" || user.Email != "a@example.com" {
		t.Errorf("merge result = %+v", user)
	}

	if err := svc.Update(context.Background(), "ghost", map[string]interface{}{"fullName": "X"}); apperr.KindOf(err) != apperr.NotFound {
		t.Fatalf("ghost update kind = %v, want NotFound", apperr.KindOf(err))
	}
}
