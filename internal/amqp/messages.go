package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Action is what happened to an entity.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Entity names match the REST resource names.
const (
	EntityUser         = "usuario"
	EntityCategory     = "categoria"
	EntityMovementType = "tipomovimentacao"
	EntityMovement     = "movimentacao"
)

// ChangeEvent announces a committed change. It carries only the identity of
// the row; consumers read the current state back from the database.
type ChangeEvent struct {
	Entity    string    `json:"entity"`
	Action    Action    `json:"action"`
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewChangeEvent(entity string, action Action, id int64) ChangeEvent {
	return ChangeEvent{
		Entity:    entity,
		Action:    action,
		ID:        id,
		Timestamp: time.Now().UTC(),
	}
}

// RoutingKey is the key the event is published with, e.g. "movimentacao.created".
func (e ChangeEvent) RoutingKey() string {
	return e.Entity + "." + string(e.Action)
}

func (e ChangeEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func ChangeEventFromJSON(data []byte) (ChangeEvent, error) {
	var e ChangeEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return e, err
	}
	switch e.Action {
	case ActionCreated, ActionUpdated, ActionDeleted:
	default:
		return e, fmt.Errorf("unknown action %q", e.Action)
	}
	if e.Entity == "" || e.ID <= 0 {
		return e, fmt.Errorf("event missing entity or id")
	}
	return e, nil
}
