package repository

import (
	"context"
	"fmt"
	"time"

	"skillshare-backend/internal/apperr"
	"skillshare-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const planSelect = `
	SELECT lp.id, lp.user_id, u.name, lp.topic, lp.resources, lp.timeline,
	       lp.start_date, lp.end_date, lp.extended, lp.created_at
	FROM learning_plans lp
	JOIN users u ON u.id = lp.user_id
`

const taskColumns = `id, plan_id, description, completed, due_date, completed_at, position`

// PlanRepository handles database operations for learning plans and their tasks
type PlanRepository struct {
	db *pgxpool.Pool
}

// NewPlanRepository creates a new learning plan repository
func NewPlanRepository(db *pgxpool.Pool) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts a plan together with its tasks
func (r *PlanRepository) Create(ctx context.Context, plan *models.LearningPlan) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO learning_plans (id, user_id, topic, resources, timeline, start_date, end_date, extended, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`
		_, err := tx.Exec(ctx, query,
			plan.ID, plan.UserID, plan.Topic, plan.Resources, plan.Timeline,
			plan.StartDate, plan.EndDate, plan.Extended, plan.CreatedAt,
		)
		if err != nil {
			return err
		}
		return insertTasks(ctx, tx, plan.Tasks)
	})
	return classify(err, "create learning plan")
}

// GetByID retrieves a plan with its tasks
func (r *PlanRepository) GetByID(ctx context.Context, id string) (*models.LearningPlan, error) {
	plans, err := r.queryPlans(ctx, planSelect+` WHERE lp.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, apperr.New(apperr.NotFound, "learning plan %s not found", id)
	}
	return plans[0], nil
}

// List retrieves every plan, newest first
func (r *PlanRepository) List(ctx context.Context) ([]*models.LearningPlan, error) {
	return r.queryPlans(ctx, planSelect+` ORDER BY lp.created_at DESC, lp.id DESC`)
}

// ListByUser retrieves a user's plans, newest first
func (r *PlanRepository) ListByUser(ctx context.Context, userID string) ([]*models.LearningPlan, error) {
	return r.queryPlans(ctx, planSelect+` WHERE lp.user_id = $1 ORDER BY lp.created_at DESC, lp.id DESC`, userID)
}

// OwnerID returns the user a plan belongs to
func (r *PlanRepository) OwnerID(ctx context.Context, planID string) (string, error) {
	var ownerID string
	err := r.db.QueryRow(ctx, `SELECT user_id FROM learning_plans WHERE id = $1`, planID).Scan(&ownerID)
	if err != nil {
		return "", classify(err, "get learning plan %s", planID)
	}
	return ownerID, nil
}

// Replace overwrites a plan's fields and its whole task list
func (r *PlanRepository) Replace(ctx context.Context, plan *models.LearningPlan) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			UPDATE learning_plans
			SET topic = $1, resources = $2, timeline = $3, start_date = $4, end_date = $5
			WHERE id = $6
		`
		result, err := tx.Exec(ctx, query,
			plan.Topic, plan.Resources, plan.Timeline, plan.StartDate, plan.EndDate, plan.ID,
		)
		if err != nil {
			return err
		}
		if result.RowsAffected() == 0 {
			return apperr.New(apperr.NotFound, "learning plan %s not found", plan.ID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM plan_tasks WHERE plan_id = $1`, plan.ID); err != nil {
			return err
		}
		return insertTasks(ctx, tx, plan.Tasks)
	})
	return classify(err, "update learning plan")
}

// Delete removes a plan; its tasks go with it
func (r *PlanRepository) Delete(ctx context.Context, planID string) error {
	result, err := r.db.Exec(ctx, `DELETE FROM learning_plans WHERE id = $1`, planID)
	if err != nil {
		return classify(err, "delete learning plan")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "learning plan %s not found", planID)
	}
	return nil
}

// Extend moves a plan's end date and marks it extended
func (r *PlanRepository) Extend(ctx context.Context, planID string, endDate time.Time) error {
	result, err := r.db.Exec(ctx, `UPDATE learning_plans SET end_date = $1, extended = TRUE WHERE id = $2`, endDate, planID)
	if err != nil {
		return classify(err, "extend learning plan")
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "learning plan %s not found", planID)
	}
	return nil
}

// TaskOwnerID returns the owner of the plan a task belongs to
func (r *PlanRepository) TaskOwnerID(ctx context.Context, taskID string) (string, error) {
	query := `
		SELECT lp.user_id
		FROM plan_tasks t
		JOIN learning_plans lp ON lp.id = t.plan_id
		WHERE t.id = $1
	`
	var ownerID string
	if err := r.db.QueryRow(ctx, query, taskID).Scan(&ownerID); err != nil {
		return "", classify(err, "get task %s", taskID)
	}
	return ownerID, nil
}

// CompleteTask marks a task done. A task completed earlier keeps its
// original completion time.
func (r *PlanRepository) CompleteTask(ctx context.Context, taskID string, at time.Time) (*models.PlanTask, error) {
	query := `
		UPDATE plan_tasks
		SET completed = TRUE, completed_at = COALESCE(completed_at, $1)
		WHERE id = $2
		RETURNING ` + taskColumns
	task, err := scanTask(r.db.QueryRow(ctx, query, at, taskID))
	if err != nil {
		return nil, classify(err, "complete task %s", taskID)
	}
	return task, nil
}

func (r *PlanRepository) queryPlans(ctx context.Context, query string, args ...any) ([]*models.LearningPlan, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get learning plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.LearningPlan
	byID := make(map[string]*models.LearningPlan)
	var ids []string
	for rows.Next() {
		var p models.LearningPlan
		err := rows.Scan(
			&p.ID, &p.UserID, &p.AuthorName, &p.Topic, &p.Resources, &p.Timeline,
			&p.StartDate, &p.EndDate, &p.Extended, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan learning plan: %w", err)
		}
		p.Tasks = []*models.PlanTask{}
		plans = append(plans, &p)
		byID[p.ID] = &p
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating learning plans: %w", err)
	}
	if len(ids) == 0 {
		return plans, nil
	}

	taskRows, err := r.db.Query(ctx, `SELECT `+taskColumns+` FROM plan_tasks WHERE plan_id = ANY($1) ORDER BY position, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %w", err)
	}
	defer taskRows.Close()

	for taskRows.Next() {
		task, err := scanTask(taskRows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		byID[task.PlanID].Tasks = append(byID[task.PlanID].Tasks, task)
	}
	if err := taskRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}
	return plans, nil
}

func insertTasks(ctx context.Context, q querier, tasks []*models.PlanTask) error {
	for _, t := range tasks {
		query := `INSERT INTO plan_tasks (` + taskColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
		_, err := q.Exec(ctx, query, t.ID, t.PlanID, t.Description, t.Completed, t.DueDate, t.CompletedAt, t.Position)
		if err != nil {
			return err
		}
	}
	return nil
}

func scanTask(row pgx.Row) (*models.PlanTask, error) {
	var t models.PlanTask
	err := row.Scan(&t.ID, &t.PlanID, &t.Description, &t.Completed, &t.DueDate, &t.CompletedAt, &t.Position)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
