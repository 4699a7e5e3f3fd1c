package pricerules

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	ruleRepo "github.com/mfpdev/MFP-BookingService/internal/infra/storage/pricerule"
	"github.com/mfpdev/MFP-BookingService/internal/service/pricerules/models"
)

type fakeRuleRepo struct {
	rules  map[int64]*domain.PriceRule
	nextID int64
}

func newFakeRuleRepo() *fakeRuleRepo {
	return &fakeRuleRepo{rules: map[int64]*domain.PriceRule{}, nextID: 1}
}

func (r *fakeRuleRepo) Create(_ context.Context, rule *domain.PriceRule) (*domain.PriceRule, error) {
	created := *rule
	created.ID = r.nextID
	r.nextID++
	r.rules[created.ID] = &created
	return &created, nil
}

func (r *fakeRuleRepo) GetByID(_ context.Context, id int64) (*domain.PriceRule, error) {
	rule, ok := r.rules[id]
	if !ok {
		return nil, ruleRepo.ErrRuleNotFound
	}
	copied := *rule
	return &copied, nil
}

func (r *fakeRuleRepo) GetAllByFacility(_ context.Context, facilityID int64) ([]domain.PriceRule, error) {
	var result []domain.PriceRule
	for _, rule := range r.rules {
		if rule.FacilityID == facilityID {
			result = append(result, *rule)
		}
	}
	return result, nil
}

func (r *fakeRuleRepo) Update(_ context.Context, id int64, rule *domain.PriceRule) (*domain.PriceRule, error) {
	if _, ok := r.rules[id]; !ok {
		return nil, ruleRepo.ErrRuleNotFound
	}
	updated := *rule
	updated.ID = id
	r.rules[id] = &updated
	return &updated, nil
}

func (r *fakeRuleRepo) Deactivate(_ context.Context, id int64) error {
	rule, ok := r.rules[id]
	if !ok {
		return ruleRepo.ErrRuleNotFound
	}
	rule.Active = false
	return nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestService_Create(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewService(repo, nopLogger{})

	category := "evening"
	resp, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "lag-foreninger",
		Category:   &category,
		Multiplier: 0.5,
		Priority:   10,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.ID)
	assert.True(t, resp.Active)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "evening", *resp.Category)
	assert.Nil(t, resp.DayType)
}

func TestService_Create_InvalidActorType(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), nopLogger{})

	_, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "ukjent",
		Multiplier: 1.5,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Create_InvalidMultiplier(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), nopLogger{})

	_, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "bedrift",
		Multiplier: 0,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Create_InvalidCategory(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), nopLogger{})

	category := "midnight"
	_, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "bedrift",
		Category:   &category,
		Multiplier: 1.2,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Update_PartialFields(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "privatperson",
		Multiplier: 1.0,
		Priority:   5,
	})
	require.NoError(t, err)

	multiplier := 1.25
	updated, err := svc.Update(context.Background(), created.ID, &models.UpdateRuleRequest{
		Multiplier: &multiplier,
	})
	require.NoError(t, err)

	assert.Equal(t, 1.25, updated.Multiplier)
	assert.Equal(t, "privatperson", updated.ActorType)
	assert.Equal(t, 5, updated.Priority)
}

func TestService_Update_NotFound(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), nopLogger{})

	multiplier := 1.25
	_, err := svc.Update(context.Background(), 99, &models.UpdateRuleRequest{Multiplier: &multiplier})
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestService_Deactivate(t *testing.T) {
	repo := newFakeRuleRepo()
	svc := NewService(repo, nopLogger{})

	created, err := svc.Create(context.Background(), &models.CreateRuleRequest{
		FacilityID: 1,
		ActorType:  "bedrift",
		Multiplier: 2.0,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Deactivate(context.Background(), created.ID))

	list, err := svc.GetByFacility(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, list.Rules, 1)
	assert.False(t, list.Rules[0].Active)
}

func TestService_Deactivate_NotFound(t *testing.T) {
	svc := NewService(newFakeRuleRepo(), nopLogger{})

	err := svc.Deactivate(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}
