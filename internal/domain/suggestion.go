package domain

// SuggestionOutcome tells the caller why a suggestion request did or did not
// change a song. Every outcome except Suggested leaves storage untouched.
type SuggestionOutcome string

const (
	SuggestionSuggested       SuggestionOutcome = "suggested"
	SuggestionInvalidRequest  SuggestionOutcome = "invalid_request"
	SuggestionNotConfigured   SuggestionOutcome = "not_configured"
	SuggestionQuotaExceeded   SuggestionOutcome = "quota_exceeded"
	SuggestionSongNotFound    SuggestionOutcome = "song_not_found"
	SuggestionEmptyResponse   SuggestionOutcome = "empty_response"
	SuggestionUpstreamFailure SuggestionOutcome = "upstream_failure"
	SuggestionInFlight        SuggestionOutcome = "in_flight"
)

func (o SuggestionOutcome) String() string {
	return string(o)
}

// SuggestionResult is what a suggestion request produced.
type SuggestionResult struct {
	TjNumber string
	Outcome  SuggestionOutcome
	Title    string
	Provider string
	Usage    int
	Quota    int
}

func (r SuggestionResult) Applied() bool {
	return r.Outcome == SuggestionSuggested
}
