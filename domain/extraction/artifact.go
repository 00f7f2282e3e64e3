package extraction

// ResolvedFile is an output file chosen by the artifact resolver
type ResolvedFile struct {
	Path      string
	Extension string
	MediaType string
}

// Artifact is the final audio payload ready for the response
type Artifact struct {
	Data      []byte
	MediaType string
	Filename  string
	Backend   string
}

// Outcome is the tagged result of one extraction request: exactly one of
// Artifact or Failure is set
type Outcome struct {
	Artifact *Artifact
	Failure  *Error
}

// Succeeded reports whether the outcome carries an artifact
func (o Outcome) Succeeded() bool {
	return o.Artifact != nil
}

// OutcomeOf folds a service result into an Outcome. Errors that are not *Error
// are classified as ExtractionFailed.
func OutcomeOf(artifact *Artifact, err error) Outcome {
	if err != nil {
		return Outcome{Failure: AsError(err)}
	}
	return Outcome{Artifact: artifact}
}
