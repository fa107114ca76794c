package services

import (
	"context"
	"errors"

	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/apperr"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/models"
	"github.com/nipun-marak/Firebase-CRUD-with-NestJS/internal/store"
	pkglog "github.com/nipun-marak/Firebase-CRUD-with-NestJS/pkg/log"
)

// ProfileService is thin CRUD over user records keyed by uid. Every mutation
// does an existence read first, then mutates; the two steps are separate
// round trips, so concurrent updates to the same record are last-write-wins.
type ProfileService struct {
	store  store.Store
	logger pkglog.Logger
}

func NewProfileService(st store.Store, logger pkglog.Logger) *ProfileService {
	return &ProfileService{store: st, logger: logger}
}

func (s *ProfileService) FindAll(ctx context.Context) ([]models.User, error) {
	docs, err := s.store.Documents(ctx, store.Users())
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch users", err)
	}

	users := make([]models.User, 0, len(docs))
	for i := range docs {
		users = append(users, *userFromDocument(&docs[i]))
	}
	return users, nil
}

func (s *ProfileService) FindOne(ctx context.Context, id string) (*models.User, error) {
	doc, err := s.store.Get(ctx, store.UserDoc(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidPath) {
			return nil, apperr.New(apperr.NotFound, "User not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "Failed to fetch user", err)
	}
	return userFromDocument(doc), nil
}

// FindByUID is FindOne under its session-facing name; user documents are
// keyed by the identity provider's uid.
func (s *ProfileService) FindByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.FindOne(ctx, uid)
}

// Update merges arbitrary fields into an existing user document.
func (s *ProfileService) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if _, err := s.FindOne(ctx, id); err != nil {
		return err
	}
	if err := s.store.Update(ctx, store.UserDoc(id), fields); err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to update user", err)
	}
	return nil
}

func (s *ProfileService) Remove(ctx context.Context, id string) error {
	if _, err := s.FindOne(ctx, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, store.UserDoc(id)); err != nil {
		return apperr.Wrap(apperr.Internal, "Failed to delete user", err)
	}
	s.logger.Info().Str("uid", id).Msg("user deleted")
	return nil
}

// UpdateProfile applies the mutable profile fields. Whenever gender changes,
// the profile image is recomputed from it, regardless of its previous value.
func (s *ProfileService) UpdateProfile(ctx context.Context, uid string, req *models.UpdateProfileRequest) (*models.User, error) {
	if _, err := s.FindOne(ctx, uid); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.FullName != nil {
		updates["fullName"] = *req.FullName
	}
	if req.Gender != nil {
		updates["gender"] = string(*req.Gender)
		updates["profileImage"] = models.ProfileImageFor(*req.Gender)
	}

	if err := s.store.Update(ctx, store.UserDoc(uid), updates); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "Failed to update user profile", err)
	}
	return s.FindOne(ctx, uid)
}

func userDocData(u *models.User) map[string]interface{} {
	return map[string]interface{}{
		"uid":          u.UID,
		"email":        u.Email,
		"fullName":     u.FullName,
		"gender":       string(u.Gender),
		"profileImage": u.ProfileImage,
		"createdAt":    u.CreatedAt,
	}
}

func userFromDocument(doc *store.Document) *models.User {
	return &models.User{
		ID:           doc.ID,
		UID:          store.StringField(doc, "uid"),
		Email:        store.StringField(doc, "email"),
		FullName:     store.StringField(doc, "fullName"),
		Gender:       models.Gender(store.StringField(doc, "gender")),
		ProfileImage: store.StringField(doc, "profileImage"),
		CreatedAt:    store.TimeField(doc, "createdAt"),
	}
}
