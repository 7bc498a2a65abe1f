// Package jobs hosts the background task definitions and the Asynq runtime
// around them.
package jobs

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeOrdersSync pulls invoiced orders from the commerce platform.
	TaskTypeOrdersSync = "orders:sync"
)

// OrdersSyncPayload scopes one sync run. A zero From/To pair means the
// handler derives the window from its configured lookback at execution time.
type OrdersSyncPayload struct {
	RunID uuid.UUID `json:"run_id"`
	From  time.Time `json:"from"`
	To    time.Time `json:"to"`
}

// NewOrdersSyncTask constructs an Asynq task for an order sync run.
func NewOrdersSyncTask(payload OrdersSyncPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeOrdersSync, body, asynq.Queue(QueueDefault)), nil
}
