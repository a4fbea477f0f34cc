package firestore

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	domain "github.com/vitrinezap/api/internal/domain"
	pfirestore "github.com/vitrinezap/api/internal/platform/firestore"
	"github.com/vitrinezap/api/internal/repositories"
)

const usersCollection = "users"

// UserRepository persists storefront user profiles keyed by Firebase UID.
type UserRepository struct {
	base *pfirestore.BaseRepository[userDocument]
}

// NewUserRepository constructs a Firestore-backed user repository.
func NewUserRepository(provider *pfirestore.Provider) (*UserRepository, error) {
	if provider == nil {
		return nil, errors.New("user repository requires firestore provider")
	}
	base := pfirestore.NewBaseRepository[userDocument](provider, usersCollection, nil, nil)
	return &UserRepository{base: base}, nil
}

// FindByID loads the user profile by UID.
func (r *UserRepository) FindByID(ctx context.Context, userID string) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}

	doc, err := r.base.Get(ctx, strings.TrimSpace(userID))
	if err != nil {
		return domain.UserProfile{}, err
	}

	profile := toDomainProfile(doc.ID, doc.Data)
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = doc.CreateTime
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = doc.UpdateTime
	}
	return profile, nil
}

// UpdateProfile upserts the full profile document.
func (r *UserRepository) UpdateProfile(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, error) {
	if r == nil || r.base == nil {
		return domain.UserProfile{}, errors.New("user repository not initialised")
	}
	userID := strings.TrimSpace(profile.ID)
	if userID == "" {
		return domain.UserProfile{}, errors.New("profile id is required")
	}

	doc := fromDomainProfile(profile)
	if _, err := r.base.Set(ctx, userID, doc); err != nil {
		return domain.UserProfile{}, err
	}
	return toDomainProfile(userID, doc), nil
}

type userDocument struct {
	DisplayName string           `firestore:"displayName"`
	Phone       string           `firestore:"phone"`
	Address     *addressDocument `firestore:"address,omitempty"`
	Roles       []string         `firestore:"roles"`
	IsActive    bool             `firestore:"isActive"`
	CreatedAt   time.Time        `firestore:"createdAt"`
	UpdatedAt   time.Time        `firestore:"updatedAt"`
}

type addressDocument struct {
	PostalCode string  `firestore:"postalCode"`
	City       string  `firestore:"city"`
	Street     string  `firestore:"street"`
	Number     string  `firestore:"number"`
	District   string  `firestore:"district"`
	Complement *string `firestore:"complement,omitempty"`
}

func toDomainProfile(id string, doc userDocument) domain.UserProfile {
	profile := domain.UserProfile{
		ID:          id,
		DisplayName: strings.TrimSpace(doc.DisplayName),
		Phone:       strings.TrimSpace(doc.Phone),
		Roles:       normaliseRoles(doc.Roles),
		IsActive:    doc.IsActive,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}
	if doc.Address != nil {
		profile.Address = &domain.Address{
			PostalCode: strings.TrimSpace(doc.Address.PostalCode),
			City:       strings.TrimSpace(doc.Address.City),
			Street:     strings.TrimSpace(doc.Address.Street),
			Number:     strings.TrimSpace(doc.Address.Number),
			District:   strings.TrimSpace(doc.Address.District),
			Complement: cloneTrimmedPtr(doc.Address.Complement),
		}
	}
	return profile
}

func fromDomainProfile(profile domain.UserProfile) userDocument {
	now := time.Now().UTC()
	doc := userDocument{
		DisplayName: strings.TrimSpace(profile.DisplayName),
		Phone:       strings.TrimSpace(profile.Phone),
		Roles:       normaliseRoles(profile.Roles),
		IsActive:    profile.IsActive,
		CreatedAt:   profile.CreatedAt.UTC(),
		UpdatedAt:   profile.UpdatedAt.UTC(),
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	if doc.UpdatedAt.IsZero() {
		doc.UpdatedAt = now
	}
	if doc.Roles == nil {
		doc.Roles = []string{}
	}
	if profile.Address != nil {
		doc.Address = &addressDocument{
			PostalCode: strings.TrimSpace(profile.Address.PostalCode),
			City:       strings.TrimSpace(profile.Address.City),
			Street:     strings.TrimSpace(profile.Address.Street),
			Number:     strings.TrimSpace(profile.Address.Number),
			District:   strings.TrimSpace(profile.Address.District),
			Complement: cloneTrimmedPtr(profile.Address.Complement),
		}
	}
	return doc
}

func normaliseRoles(roles []string) []string {
	if len(roles) == 0 {
		return nil
	}
	uniq := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		trimmed := strings.ToLower(strings.TrimSpace(role))
		if trimmed == "" {
			continue
		}
		uniq[trimmed] = struct{}{}
	}
	if len(uniq) == 0 {
		return nil
	}
	normalised := make([]string, 0, len(uniq))
	for role := range uniq {
		normalised = append(normalised, role)
	}
	sort.Strings(normalised)
	return normalised
}

var _ repositories.UserRepository = (*UserRepository)(nil)
