package emit

import "testing"

func TestNullEmitter_DiscardsEvents(t *testing.T) {
	emitter := NewNullEmitter()

	// Must accept any event without panicking, including nil meta.
	emitter.Emit(Event{})
	emitter.Emit(Event{
		ScenarioID: "what-if-1",
		Msg:        "scenario_start",
		Meta:       map[string]interface{}{"patches": 3},
	})
}

func TestNullEmitter_ImplementsEmitter(t *testing.T) {
	var _ Emitter = NewNullEmitter()
}
