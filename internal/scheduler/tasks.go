package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskFollowUpEmail = "callbacks.followup.email"

type FollowUpEmailPayload struct {
	CallbackID      string `json:"callbackId"`
	EstablishmentID string `json:"establishmentId"`
}

func NewFollowUpEmailTask(payload FollowUpEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskFollowUpEmail, data), nil
}

func ParseFollowUpEmailPayload(task *asynq.Task) (FollowUpEmailPayload, error) {
	var payload FollowUpEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return FollowUpEmailPayload{}, err
	}
	return payload, nil
}
