package domain

// PredictionStatus is the lifecycle vocabulary of the hosted prediction
// gateway. The set is owned by the remote service; unknown values are
// passed through untouched.
type PredictionStatus string

const (
	PredictionStatusQueued     PredictionStatus = "queued"
	PredictionStatusStarting   PredictionStatus = "starting"
	PredictionStatusProcessing PredictionStatus = "processing"
	PredictionStatusSucceeded  PredictionStatus = "succeeded"
	PredictionStatusFailed     PredictionStatus = "failed"
	PredictionStatusCanceled   PredictionStatus = "canceled"
)

// Terminal reports whether the prediction has reached a final state and
// will no longer change on subsequent polls.
func (s PredictionStatus) Terminal() bool {
	switch s {
	case PredictionStatusSucceeded, PredictionStatusFailed, PredictionStatusCanceled:
		return true
	}
	return false
}
