package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ridgecast/forecast-sms/internal/domain"
)

// Parser resolves inbound text against a sender's route. The session store
// is injected; the parser itself is stateless and safe for concurrent use
// across senders.
type Parser struct {
	sessions *SessionStore
}

func NewParser(sessions *SessionStore) *Parser {
	return &Parser{sessions: sessions}
}

// Parse interprets one inbound message. When the sender has a live
// disambiguation session the text is read as the extended-code follow-up,
// unless it starts with a command keyword, which abandons the session and
// starts over.
func (p *Parser) Parse(sender, text string, route domain.Route) Result {
	tokens := strings.Fields(strings.ToUpper(strings.TrimSpace(text)))

	if sess, ok := p.sessions.Get(sender); ok {
		if len(tokens) > 0 {
			if _, isKeyword := keywords[tokens[0]]; isKeyword {
				p.sessions.End(sender)
				return p.parseFresh(sender, tokens, text, route)
			}
		}
		return p.parseFollowUp(sender, sess, tokens, text)
	}
	return p.parseFresh(sender, tokens, text, route)
}

func (p *Parser) parseFresh(sender string, tokens []string, raw string, route domain.Route) Result {
	if len(tokens) == 0 {
		return Result{Outcome: OutcomeUnknownCommand}
	}

	kind, ok := keywords[tokens[0]]
	if !ok {
		// Bare target shorthand: a lone code or coordinate pair reads as a
		// forecast request.
		return p.parseForecastTarget(sender, tokens, raw, route)
	}

	rest := tokens[1:]
	switch kind {
	case KindForecast:
		if len(rest) == 0 {
			return Result{Outcome: OutcomeMissingTarget}
		}
		return p.parseForecastTarget(sender, rest, raw, route)
	case KindSummary, KindList, KindHelp:
		return resolvedResult(kind, Target{Kind: TargetNone}, raw)
	}
	return Result{Outcome: OutcomeUnknownCommand}
}

func (p *Parser) parseForecastTarget(sender string, tokens []string, raw string, route domain.Route) Result {
	if lat, lon, shaped, err := parseCoordinates(tokens); shaped {
		if err != nil {
			return Result{Outcome: OutcomeInvalidCoordinate, Err: err}
		}
		return resolvedResult(KindForecast, Target{Kind: TargetGPS, Lat: lat, Lon: lon}, raw)
	}

	if len(tokens) != 1 {
		return Result{Outcome: OutcomeUnknownCommand}
	}
	return p.resolveCode(sender, tokens[0], raw, route)
}

func (p *Parser) resolveCode(sender, code, raw string, route domain.Route) Result {
	matches := route.CodesWithPrefix(code)
	switch len(matches) {
	case 0:
		return unknownCodeResult(code, route)
	case 1:
		return resolvedResult(KindForecast, Target{Kind: TargetCode, Code: matches[0]}, raw)
	default:
		cands := candidatesFor(code, matches)
		p.sessions.Begin(sender, KindForecast, code, cands)
		return Result{Outcome: OutcomeNeedsDisambiguation, Prefix: code, Candidates: cands}
	}
}

// parseFollowUp matches the reply against the pending candidates, accepting
// either a full code or just the distinguishing suffix. A miss keeps the
// session alive so the sender can try again within the timeout.
func (p *Parser) parseFollowUp(sender string, sess Session, tokens []string, raw string) Result {
	attempted := strings.Join(tokens, " ")
	if len(tokens) == 1 {
		tok := tokens[0]
		for _, c := range sess.Candidates {
			if tok == c.Code || sess.Prefix+tok == c.Code {
				p.sessions.End(sender)
				return resolvedResult(sess.Kind, Target{Kind: TargetCode, Code: c.Code}, raw)
			}
		}
	}
	return Result{
		Outcome: OutcomeUnknownCode,
		Err:     &domain.UnknownCodeError{Code: attempted, ValidCodes: candidateCodes(sess.Candidates)},
	}
}

// parseCoordinates reads a coordinate pair in any of the accepted shapes:
// comma-separated, space-separated, or cardinal-suffixed decimal. shaped
// reports whether the tokens look like coordinates at all; only shaped input
// can yield an error.
func parseCoordinates(tokens []string) (lat, lon float64, shaped bool, err error) {
	joined := strings.ReplaceAll(strings.Join(tokens, " "), ",", " ")
	parts := strings.Fields(joined)
	if len(parts) != 2 || !numberShaped(parts[0]) || !numberShaped(parts[1]) {
		return 0, 0, false, nil
	}

	lat, err = parseCoordinatePart(parts[0], "N", "S")
	if err != nil {
		return 0, 0, true, err
	}
	lon, err = parseCoordinatePart(parts[1], "E", "W")
	if err != nil {
		return 0, 0, true, err
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return 0, 0, true, fmt.Errorf("%w: %.4f, %.4f", domain.ErrInvalidCoordinate, lat, lon)
	}
	return lat, lon, true, nil
}

func numberShaped(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '+', '-', '.':
		return len(s) > 1
	}
	return s[0] >= '0' && s[0] <= '9'
}

// parseCoordinatePart parses one decimal with an optional trailing cardinal.
// The positive/negative letters are axis-specific, so a longitude letter on
// the latitude part fails the float parse and is rejected.
func parseCoordinatePart(s, positive, negative string) (float64, error) {
	sign := 1.0
	switch {
	case strings.HasSuffix(s, positive):
		s = strings.TrimSuffix(s, positive)
	case strings.HasSuffix(s, negative):
		sign = -1
		s = strings.TrimSuffix(s, negative)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", domain.ErrInvalidCoordinate, s)
	}
	return sign * v, nil
}
