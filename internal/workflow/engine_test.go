package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfpdev/MFP-BookingService/internal/domain"
	"github.com/mfpdev/MFP-BookingService/pkg/ptr"
)

var now = time.Date(2025, 5, 5, 12, 0, 0, 0, time.UTC)

func threeStepTemplates() []domain.ApprovalStepTemplate {
	return []domain.ApprovalStepTemplate{
		{ID: 1, FacilityID: 10, Position: 1, ApproverRole: "facility-manager", Required: true, TriggerAfterHours: ptr.Ptr(48)},
		{ID: 2, FacilityID: 10, Position: 2, ApproverRole: "booking-office", Required: true},
		{ID: 3, FacilityID: 10, Position: 3, ApproverRole: "unit-leader", Required: false},
	}
}

func TestInitialize_AutoApproval(t *testing.T) {
	autoRules := []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 10, ActorType: domain.ActorMunicipalUnit, Active: true},
	}

	wf := NewEngine().Initialize(10, domain.ActorMunicipalUnit, autoRules, threeStepTemplates(), now)

	assert.Equal(t, domain.WorkflowNotRequired, wf.Status)
	assert.True(t, wf.Status.IsTerminal())
	assert.Empty(t, wf.Steps)
	require.NotNil(t, wf.CompletedAt)
	assert.Equal(t, now, *wf.CompletedAt)
}

func TestInitialize_InactiveAutoRuleIgnored(t *testing.T) {
	autoRules := []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 10, ActorType: domain.ActorMunicipalUnit, Active: false},
	}

	wf := NewEngine().Initialize(10, domain.ActorMunicipalUnit, autoRules, threeStepTemplates(), now)
	assert.Equal(t, domain.WorkflowPending, wf.Status)
}

func TestInitialize_NoTemplatesMeansNotRequired(t *testing.T) {
	wf := NewEngine().Initialize(10, domain.ActorOrganization, nil, nil, now)
	assert.Equal(t, domain.WorkflowNotRequired, wf.Status)
}

func TestInitialize_PendingWorkflow(t *testing.T) {
	wf := NewEngine().Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	assert.Equal(t, domain.WorkflowPending, wf.Status)
	assert.Equal(t, 0, wf.CurrentStep)
	require.Len(t, wf.Steps, 3)

	// Шаги упорядочены по позиции, активирован только первый
	assert.Equal(t, "facility-manager", wf.Steps[0].ApproverRole)
	require.NotNil(t, wf.Steps[0].ActivatedAt)
	require.NotNil(t, wf.Steps[0].Deadline)
	assert.Equal(t, now.Add(48*time.Hour), *wf.Steps[0].Deadline)
	assert.Nil(t, wf.Steps[1].ActivatedAt)

	// Идентификаторы шагов уникальны
	assert.NotEqual(t, wf.Steps[0].ID, wf.Steps[1].ID)
}

func TestSubmitDecision_ApproveAllSteps(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	for i := 0; i < 3; i++ {
		step := wf.ActiveStep()
		require.NotNil(t, step)
		require.NoError(t, engine.SubmitDecision(wf, step.ID, DecisionApprove, 42, nil, now.Add(time.Hour)))
	}

	assert.Equal(t, domain.WorkflowApproved, wf.Status)
	assert.Nil(t, wf.ActiveStep())
	require.NotNil(t, wf.CompletedAt)
	for _, step := range wf.Steps {
		assert.Equal(t, domain.StepApproved, step.Status)
		require.NotNil(t, step.DecidedBy)
		assert.Equal(t, int64(42), *step.DecidedBy)
	}
}

func TestSubmitDecision_RejectFirstStepIsTerminal(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	reason := ptr.Ptr("kapasitet overskredet")
	require.NoError(t, engine.SubmitDecision(wf, wf.Steps[0].ID, DecisionReject, 42, reason, now))

	assert.Equal(t, domain.WorkflowRejected, wf.Status)
	assert.Equal(t, domain.StepRejected, wf.Steps[0].Status)
	assert.Equal(t, reason, wf.Steps[0].Notes)

	// Шаги 2-3 не выполняются
	assert.Equal(t, domain.StepSkipped, wf.Steps[1].Status)
	assert.Equal(t, domain.StepSkipped, wf.Steps[2].Status)
	assert.Nil(t, wf.Steps[1].DecidedBy)

	// Действие над терминальным процессом отклоняется
	err := engine.SubmitDecision(wf, wf.Steps[1].ID, DecisionApprove, 42, nil, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestSubmitDecision_WrongStep(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	// Решение по второму шагу, пока активен первый
	err := engine.SubmitDecision(wf, wf.Steps[1].ID, DecisionApprove, 42, nil, now)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// Неизвестный шаг
	err = engine.SubmitDecision(wf, "00000000-0000-0000-0000-000000000000", DecisionApprove, 42, nil, now)
	assert.ErrorIs(t, err, ErrStepNotFound)
}

func TestSubmitDecision_InvalidDecision(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	err := engine.SubmitDecision(wf, wf.Steps[0].ID, "defer", 42, nil, now)
	assert.ErrorIs(t, err, ErrInvalidDecision)
}

func TestSubmitDecision_ApproveActivatesNextStep(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	decidedAt := now.Add(2 * time.Hour)
	require.NoError(t, engine.SubmitDecision(wf, wf.Steps[0].ID, DecisionApprove, 42, nil, decidedAt))

	assert.Equal(t, domain.WorkflowPending, wf.Status)
	assert.Equal(t, 1, wf.CurrentStep)
	require.NotNil(t, wf.Steps[1].ActivatedAt)
	assert.Equal(t, decidedAt, *wf.Steps[1].ActivatedAt)
	// У второго шага нет TriggerAfterHours - нет и дедлайна
	assert.Nil(t, wf.Steps[1].Deadline)
}

func TestEscalate(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorOrganization, nil, threeStepTemplates(), now)

	// До дедлайна эскалации нет
	assert.Nil(t, engine.Escalate(wf, now.Add(47*time.Hour)))

	// После дедлайна шаг помечается, повторная эскалация не срабатывает
	step := engine.Escalate(wf, now.Add(49*time.Hour))
	require.NotNil(t, step)
	assert.True(t, step.Escalated)
	assert.Equal(t, wf.Steps[0].ID, step.ID)
	assert.Nil(t, engine.Escalate(wf, now.Add(50*time.Hour)))

	// Эскалация не меняет исход согласования
	assert.Equal(t, domain.WorkflowPending, wf.Status)
	require.NoError(t, engine.SubmitDecision(wf, wf.Steps[0].ID, DecisionApprove, 42, nil, now.Add(51*time.Hour)))
	assert.Equal(t, 1, wf.CurrentStep)
}

func TestEscalate_TerminalWorkflow(t *testing.T) {
	engine := NewEngine()
	wf := engine.Initialize(10, domain.ActorMunicipalUnit, []domain.AutoApprovalRule{
		{ID: 1, FacilityID: 10, ActorType: domain.ActorMunicipalUnit, Active: true},
	}, threeStepTemplates(), now)

	assert.Nil(t, engine.Escalate(wf, now.Add(100*time.Hour)))
}
