package constants

// Analytics event names, emitted only after the remote write succeeds.
const (
	EventTodoCreated     = "todo_created"
	EventTodoEdited      = "todo_edited"
	EventTodoCompleted   = "todo_completed"
	EventTodoUncompleted = "todo_uncompleted"
	EventTodoDeleted     = "todo_deleted"
	EventJournalSaved    = "journal_saved"
	EventJournalDeleted  = "journal_deleted"
	EventHealthConnected = "health_connected"
	EventSettingsChanged = "settings_changed"
)
