package run

// noModelsError signals a run request with an empty model list.
type noModelsError struct{}

func (noModelsError) Error() string { return "no models selected" }

// ErrNoModels constructs the empty-model-list configuration error.
func ErrNoModels() error { return noModelsError{} }

// IsNoModels reports whether err indicates an empty model list.
func IsNoModels(err error) bool {
	_, ok := err.(noModelsError)
	return ok
}

// runInProgressError signals that a comparison is already executing.
type runInProgressError struct{}

func (runInProgressError) Error() string { return "a run is already in progress" }

// ErrRunInProgress constructs the concurrent-run error.
func ErrRunInProgress() error { return runInProgressError{} }

// IsRunInProgress reports whether err indicates an active run.
func IsRunInProgress(err error) bool {
	_, ok := err.(runInProgressError)
	return ok
}

// noJudgeModelError signals an evaluation request without a judge model.
type noJudgeModelError struct{}

func (noJudgeModelError) Error() string { return "no evaluation model selected" }

// ErrNoJudgeModel constructs the missing-judge configuration error.
func ErrNoJudgeModel() error { return noJudgeModelError{} }

// IsNoJudgeModel reports whether err indicates a missing judge model.
func IsNoJudgeModel(err error) bool {
	_, ok := err.(noJudgeModelError)
	return ok
}

// noResultsError signals an evaluation or export with nothing to work on.
type noResultsError struct{}

func (noResultsError) Error() string { return "no completed results" }

// ErrNoResults constructs the empty-results error.
func ErrNoResults() error { return noResultsError{} }

// IsNoResults reports whether err indicates an empty result set.
func IsNoResults(err error) bool {
	_, ok := err.(noResultsError)
	return ok
}

// invalidTemperatureError signals a sampling temperature outside [0, 2].
type invalidTemperatureError struct{}

func (invalidTemperatureError) Error() string { return "temperature must be in [0.0, 2.0]" }

// ErrInvalidTemperature constructs the out-of-range temperature error.
func ErrInvalidTemperature() error { return invalidTemperatureError{} }

// IsInvalidTemperature reports whether err indicates a bad temperature.
func IsInvalidTemperature(err error) bool {
	_, ok := err.(invalidTemperatureError)
	return ok
}
