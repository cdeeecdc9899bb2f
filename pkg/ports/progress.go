package ports

// ProgressReporter receives step-completion notifications for a named
// processing stage. It is an external collaborator; the pipeline only
// calls it, it never depends on its rendering.
type ProgressReporter interface {
	// Init announces a stage with a display title and a total step count.
	Init(stage, title string, total int)

	// Step records the completion of one step of the current stage.
	Step()

	// Finish closes the current stage, releasing any display resources.
	Finish()
}
