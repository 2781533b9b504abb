package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ridgecast/forecast-sms/internal/command"
	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/sms"
)

// Corrective reply documents. All content here is plain ASCII and inside the
// default budgets, so these always compile.

var helpRows = []string{
	"WX CODE - waypoint forecast",
	"WX LAT,LON - GPS forecast",
	"SUM - route summary",
	"LIST - waypoint codes",
}

func helpDoc() sms.Document {
	return sms.Document{
		Title:  "Forecast by SMS",
		Header: "Commands",
		Rows:   helpRows,
	}
}

func unknownCommandDoc() sms.Document {
	return sms.Document{
		Title:  "Unknown command",
		Header: "Commands",
		Rows:   helpRows,
	}
}

func notRegisteredDoc() sms.Document {
	return sms.Document{
		Title:  "Not registered",
		Header: "Not registered",
		Rows: []string{
			"This number has no route",
			"subscription. Contact your",
			"route operator.",
		},
	}
}

func missingTargetDoc() sms.Document {
	return sms.Document{
		Title:  "Missing waypoint",
		Header: "Missing waypoint",
		Rows: []string{
			"Add a code or GPS position:",
			"WX BEARPK",
			"WX 37.85,-119.55",
		},
	}
}

func invalidCoordinateDoc() sms.Document {
	return sms.Document{
		Title:  "Invalid coordinates",
		Header: "Invalid coordinates",
		Rows: []string{
			"Use LAT,LON in decimal degrees:",
			"WX 37.85,-119.55",
		},
	}
}

func outOfRegionDoc() sms.Document {
	return sms.Document{
		Title:  "Outside forecast area",
		Header: "Outside forecast area",
		Rows: []string{
			"That position is outside the",
			"supported forecast grid.",
		},
	}
}

func unavailableDoc() sms.Document {
	return sms.Document{
		Title:  "Forecast unavailable",
		Header: "Forecast unavailable",
		Rows: []string{
			"No current data for that spot.",
			"Try again in a few minutes.",
		},
	}
}

func fallbackDoc() sms.Document {
	return sms.Document{
		Title:  "Service error",
		Header: "Service error",
		Rows: []string{
			"Could not build that reply.",
			"Try again later.",
		},
	}
}

// disambiguationDoc lists the candidate codes and the shortest follow-up
// replies that pick one.
func (r *SMSResponder) disambiguationDoc(result command.Result) sms.Document {
	codes := make([]string, len(result.Candidates))
	suffixes := make([]string, len(result.Candidates))
	for i, c := range result.Candidates {
		codes[i] = c.Code
		suffixes[i] = c.Distinguisher
	}

	rows := sms.WrapCodes(codes, r.cfg.LineChars)
	rows = append(rows, sms.Fit("Reply "+strings.Join(suffixes, " or "), r.cfg.LineChars))

	title := sms.Fit(fmt.Sprintf("%s matches %d codes", result.Prefix, len(codes)), r.cfg.LineChars)
	return sms.Document{Title: title, Header: title, Rows: rows}
}

// unknownCodeDoc names the rejected code and lists the valid ones.
func (r *SMSResponder) unknownCodeDoc(result command.Result) sms.Document {
	title := "Unknown code"
	var codes []string

	var e *domain.UnknownCodeError
	if errors.As(result.Err, &e) {
		title = sms.Fit(fmt.Sprintf("Unknown code %s", e.Code), r.cfg.LineChars)
		codes = e.ValidCodes
	}

	rows := sms.WrapCodes(codes, r.cfg.LineChars)
	rows = append(rows, "Text LIST for all codes")
	return sms.Document{Title: title, Header: title, Rows: rows}
}
