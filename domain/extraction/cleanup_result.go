package extraction

// CleanupResult contains information about scratch files removed at request end
type CleanupResult struct {
	Removed []string
	Failed  []CleanupFailure
}

// CleanupFailure records a file that could not be removed
type CleanupFailure struct {
	Path string
	Err  error
}

// Clean returns true if every removal succeeded
func (r CleanupResult) Clean() bool {
	return len(r.Failed) == 0
}
