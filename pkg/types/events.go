package types

// Event is a lifecycle transition the dispatcher fans out as
// notifications. Events are emitted only after the transition is
// durable.
type Event interface {
	EventName() string
}

type FoodAvailable struct {
	Item *FoodItem
}

func (FoodAvailable) EventName() string { return "food_available" }

type TaskAccepted struct {
	Task *Task
	Item *FoodItem
}

func (TaskAccepted) EventName() string { return "task_accepted" }

type TaskCompleted struct {
	Task *Task
	Item *FoodItem
}

func (TaskCompleted) EventName() string { return "task_completed" }
