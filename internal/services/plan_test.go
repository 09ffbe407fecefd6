package services

import (
	"context"
	"testing"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"
)

func date(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func goPlan() models.PlanInput {
	return models.PlanInput{
		Topic:     "Go",
		Resources: "the tour",
		Timeline:  "four weeks",
		StartDate: date("2026-01-01"),
		EndDate:   date("2026-02-01"),
		Tasks: []models.TaskInput{
			{Description: "syntax", DueDate: date("2026-01-08")},
			{Description: "concurrency"},
		},
	}
}

func TestCreatePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")

	plan, err := f.plans.CreatePlan(ctx, alice, goPlan())
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if plan.UserID != alice || plan.AuthorName != "alice" || plan.Topic != "Go" || plan.Extended {
		t.Fatalf("unexpected plan %+v", plan)
	}
	if len(plan.Tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(plan.Tasks))
	}
	for i, task := range plan.Tasks {
		if task.PlanID != plan.ID || task.Position != i || task.Completed || task.CompletedAt != nil {
			t.Fatalf("unexpected task %d: %+v", i, task)
		}
	}

	_, err = f.plans.CreatePlan(ctx, "", goPlan())
	requireKind(t, err, apperr.Unauthorized)

	_, err = f.plans.CreatePlan(ctx, "ghost", goPlan())
	requireKind(t, err, apperr.NotFound)
}

func TestListPlans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	for _, owner := range []string{alice, bob, alice} {
		if _, err := f.plans.CreatePlan(ctx, owner, goPlan()); err != nil {
			t.Fatalf("create plan: %v", err)
		}
	}

	all, err := f.plans.ListPlans(ctx, bob)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(all) != 3 || all[0].UserID != alice || all[1].UserID != bob {
		t.Fatalf("expected newest first, got %+v", all)
	}

	mine, err := f.plans.ListMyPlans(ctx, alice)
	if err != nil {
		t.Fatalf("list my plans: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 plans for alice, got %d", len(mine))
	}

	_, err = f.plans.ListPlans(ctx, "")
	requireKind(t, err, apperr.Unauthorized)
}

func TestUpdatePlanKeepsKnownTasks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	plan, err := f.plans.CreatePlan(ctx, alice, goPlan())
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	done, err := f.plans.CompleteTask(ctx, plan.Tasks[0].ID, alice)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}

	input := goPlan()
	input.Topic = "Go, properly"
	input.Tasks = []models.TaskInput{
		{ID: plan.Tasks[0].ID, Description: "syntax", Completed: true},
		{Description: "generics", Completed: true},
	}

	_, err = f.plans.UpdatePlan(ctx, plan.ID, bob, input)
	requireKind(t, err, apperr.Forbidden)

	updated, err := f.plans.UpdatePlan(ctx, plan.ID, alice, input)
	if err != nil {
		t.Fatalf("update plan: %v", err)
	}
	if updated.Topic != "Go, properly" || len(updated.Tasks) != 2 {
		t.Fatalf("unexpected plan %+v", updated)
	}

	kept := updated.Tasks[0]
	if kept.ID != plan.Tasks[0].ID || kept.CompletedAt == nil || !kept.CompletedAt.Equal(*done.CompletedAt) {
		t.Fatalf("existing task should keep its identity and completion time: %+v", kept)
	}
	added := updated.Tasks[1]
	if added.ID == plan.Tasks[1].ID || added.CompletedAt == nil || added.Position != 1 {
		t.Fatalf("unexpected new task %+v", added)
	}

	stored, err := f.plans.ListMyPlans(ctx, alice)
	if err != nil {
		t.Fatalf("list my plans: %v", err)
	}
	if len(stored) != 1 || len(stored[0].Tasks) != 2 || stored[0].Tasks[1].Description != "generics" {
		t.Fatalf("update not persisted: %+v", stored)
	}

	_, err = f.plans.UpdatePlan(ctx, "missing", alice, input)
	requireKind(t, err, apperr.NotFound)
}

func TestDeletePlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	plan, err := f.plans.CreatePlan(ctx, alice, goPlan())
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	requireKind(t, f.plans.DeletePlan(ctx, plan.ID, bob), apperr.Forbidden)
	requireKind(t, f.plans.DeletePlan(ctx, plan.ID, ""), apperr.Unauthorized)

	if err := f.plans.DeletePlan(ctx, plan.ID, alice); err != nil {
		t.Fatalf("delete plan: %v", err)
	}
	requireKind(t, f.plans.DeletePlan(ctx, plan.ID, alice), apperr.NotFound)

	_, err = f.plans.CompleteTask(ctx, plan.Tasks[0].ID, alice)
	requireKind(t, err, apperr.NotFound)
}

func TestExtendPlan(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	plan, err := f.plans.CreatePlan(ctx, alice, goPlan())
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	tests := []struct {
		name      string
		requester string
		endDate   string
		kind      apperr.Kind
	}{
		{"stranger", bob, "2026-03-01", apperr.Forbidden},
		{"same end date", alice, "2026-02-01", apperr.InvalidArgument},
		{"earlier end date", alice, "2026-01-15", apperr.InvalidArgument},
		{"later end date", alice, "2026-03-01", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			extended, err := f.plans.ExtendPlan(ctx, plan.ID, tt.requester, *date(tt.endDate))
			if tt.kind != "" {
				requireKind(t, err, tt.kind)
				return
			}
			if err != nil {
				t.Fatalf("extend plan: %v", err)
			}
			if !extended.Extended || !extended.EndDate.Equal(*date(tt.endDate)) {
				t.Fatalf("unexpected plan %+v", extended)
			}
		})
	}

	stored, err := f.plans.ListMyPlans(ctx, alice)
	if err != nil {
		t.Fatalf("list my plans: %v", err)
	}
	if !stored[0].Extended || !stored[0].EndDate.Equal(*date("2026-03-01")) {
		t.Fatalf("extension not persisted: %+v", stored[0])
	}
}

func TestCompleteTask(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")

	plan, err := f.plans.CreatePlan(ctx, alice, goPlan())
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	taskID := plan.Tasks[1].ID

	_, err = f.plans.CompleteTask(ctx, taskID, bob)
	requireKind(t, err, apperr.Forbidden)

	first, err := f.plans.CompleteTask(ctx, taskID, alice)
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if !first.Completed || first.CompletedAt == nil {
		t.Fatalf("unexpected task %+v", first)
	}

	again, err := f.plans.CompleteTask(ctx, taskID, alice)
	if err != nil {
		t.Fatalf("complete task again: %v", err)
	}
	if !again.CompletedAt.Equal(*first.CompletedAt) {
		t.Fatalf("completion time moved from %v to %v", first.CompletedAt, again.CompletedAt)
	}

	_, err = f.plans.CompleteTask(ctx, "missing", alice)
	requireKind(t, err, apperr.NotFound)
}
