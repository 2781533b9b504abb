// Package command turns raw inbound SMS text into typed commands, resolving
// waypoint-code collisions through short-lived per-sender disambiguation
// sessions.
package command

import "github.com/ridgecast/forecast-sms/internal/domain"

// Kind is the command family a message maps to. String-typed so it can feed
// metric labels directly.
type Kind string

const (
	KindForecast Kind = "forecast"
	KindSummary  Kind = "summary"
	KindList     Kind = "list"
	KindHelp     Kind = "help"
)

// keywords is the fixed table of recognized command words, matched against
// the first token after uppercasing.
var keywords = map[string]Kind{
	"WX":    KindForecast,
	"FC":    KindForecast,
	"SUM":   KindSummary,
	"ROUTE": KindSummary,
	"LIST":  KindList,
	"CODES": KindList,
	"HELP":  KindHelp,
	"?":     KindHelp,
}

// TargetKind says how a forecast command names its location.
type TargetKind string

const (
	TargetNone TargetKind = "none"
	TargetCode TargetKind = "code"
	TargetGPS  TargetKind = "gps"
)

// Target is the resolved location of a forecast command. Code is set for
// waypoint targets, Lat/Lon for ad-hoc GPS targets.
type Target struct {
	Kind TargetKind
	Code string
	Lat  float64
	Lon  float64
}

// Command is a fully resolved inbound command.
type Command struct {
	Kind   Kind
	Target Target
	Raw    string
}

// Outcome classifies a parse attempt. Every inbound message maps to exactly
// one outcome; none of them are fatal.
type Outcome string

const (
	OutcomeResolved            Outcome = "resolved"
	OutcomeNeedsDisambiguation Outcome = "needs_disambiguation"
	OutcomeUnknownCommand      Outcome = "unknown_command"
	OutcomeUnknownCode         Outcome = "unknown_code"
	OutcomeMissingTarget       Outcome = "missing_target"
	OutcomeInvalidCoordinate   Outcome = "invalid_coordinate"
)

// Candidate is one possible completion of an ambiguous code prefix.
// Distinguisher is the part of the code beyond the typed prefix, offered to
// the sender as the minimal follow-up reply.
type Candidate struct {
	Code          string
	Distinguisher string
}

// Result is the typed outcome of parsing one inbound message.
type Result struct {
	Outcome Outcome

	// Command is valid only when Outcome is OutcomeResolved.
	Command Command

	// Prefix and Candidates are set when Outcome is
	// OutcomeNeedsDisambiguation.
	Prefix     string
	Candidates []Candidate

	// Err carries the typed error for unknown-code and invalid-coordinate
	// outcomes. Used for logging and to build the corrective reply; never
	// propagated as a failure.
	Err error
}

func candidatesFor(prefix string, codes []string) []Candidate {
	out := make([]Candidate, len(codes))
	for i, c := range codes {
		out[i] = Candidate{Code: c, Distinguisher: c[len(prefix):]}
	}
	return out
}

func candidateCodes(cands []Candidate) []string {
	codes := make([]string, len(cands))
	for i, c := range cands {
		codes[i] = c.Code
	}
	return codes
}

// resolvedResult builds the common success case.
func resolvedResult(kind Kind, target Target, raw string) Result {
	return Result{
		Outcome: OutcomeResolved,
		Command: Command{Kind: kind, Target: target, Raw: raw},
	}
}

func unknownCodeResult(code string, route domain.Route) Result {
	return Result{
		Outcome: OutcomeUnknownCode,
		Err:     &domain.UnknownCodeError{Code: code, ValidCodes: route.Codes()},
	}
}
