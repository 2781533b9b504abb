package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ridgecast/forecast-sms/internal/command"
	"github.com/ridgecast/forecast-sms/internal/config"
	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/observability"
	"github.com/ridgecast/forecast-sms/internal/sms"
)

// titleNameWidth bounds the location name inside a title line so the date
// and light window always fit the line budget.
const titleNameWidth = 24

// SMSResponder implements Responder: it parses the inbound command, resolves
// forecast data for the target, and compiles the reply. Every syntactically
// valid inbound message produces a reply; user mistakes get corrective
// replies, not errors.
type SMSResponder struct {
	cfg       *config.Config
	region    domain.Region
	parser    *command.Parser
	sessions  *command.SessionStore
	registry  domain.Registry
	forecasts domain.ForecastSource
	terrain   domain.TerrainSource
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// NewResponder creates an SMSResponder for the configured region.
func NewResponder(cfg *config.Config, registry domain.Registry, forecasts domain.ForecastSource, terrain domain.TerrainSource, logger *slog.Logger, metrics *observability.Metrics) (*SMSResponder, error) {
	region, ok := domain.RegionByName(cfg.Region)
	if !ok {
		return nil, fmt.Errorf("unknown region %q", cfg.Region)
	}

	sessions := command.NewSessionStore(cfg.SessionCapacity, cfg.SessionTTL)

	return &SMSResponder{
		cfg:       cfg,
		region:    region,
		parser:    command.NewParser(sessions),
		sessions:  sessions,
		registry:  registry,
		forecasts: forecasts,
		terrain:   terrain,
		logger:    logger,
		metrics:   metrics,
	}, nil
}

// Respond handles one inbound message end to end.
func (r *SMSResponder) Respond(ctx context.Context, raw domain.RawMessage) (domain.OutboundMessage, error) {
	var msg domain.InboundMessage
	if err := json.Unmarshal(raw.Value, &msg); err != nil {
		return domain.OutboundMessage{}, fmt.Errorf("unmarshal inbound message: %w", err)
	}
	if msg.From == "" || msg.MessageID == "" {
		return domain.OutboundMessage{}, errors.New("inbound message missing from or message_id")
	}

	route, sub, err := r.registry.RouteForSender(ctx, msg.From)
	if errors.Is(err, domain.ErrUnknownSender) {
		r.logger.Info("reply to unregistered sender", "message_id", msg.MessageID)
		return r.reply(msg, sub, notRegisteredDoc())
	}
	if err != nil {
		return domain.OutboundMessage{}, fmt.Errorf("resolve sender route: %w", err)
	}

	result := r.parser.Parse(msg.From, msg.Text, route)
	r.observeParse(result)

	doc, err := r.buildDocument(ctx, route, sub, result)
	if err != nil {
		return domain.OutboundMessage{}, err
	}

	return r.reply(msg, sub, doc)
}

func (r *SMSResponder) observeParse(result command.Result) {
	kind := string(result.Command.Kind)
	if kind == "" {
		kind = "none"
	}
	r.metrics.CommandsParsed.WithLabelValues(kind, string(result.Outcome)).Inc()
	r.metrics.SessionsActive.Set(float64(r.sessions.Len()))
}

// buildDocument maps a parse result to reply content. Only infrastructure
// failures surface as errors.
func (r *SMSResponder) buildDocument(ctx context.Context, route domain.Route, sub domain.Subscription, result command.Result) (sms.Document, error) {
	switch result.Outcome {
	case command.OutcomeResolved:
		switch result.Command.Kind {
		case command.KindForecast:
			return r.forecastDoc(ctx, route, sub, result.Command.Target)
		case command.KindSummary:
			return r.summaryDoc(ctx, route, sub)
		case command.KindList:
			return r.listDoc(route), nil
		case command.KindHelp:
			return helpDoc(), nil
		default:
			return sms.Document{}, fmt.Errorf("unhandled command kind %q", result.Command.Kind)
		}
	case command.OutcomeNeedsDisambiguation:
		return r.disambiguationDoc(result), nil
	case command.OutcomeUnknownCommand:
		return unknownCommandDoc(), nil
	case command.OutcomeUnknownCode:
		return r.unknownCodeDoc(result), nil
	case command.OutcomeMissingTarget:
		return missingTargetDoc(), nil
	case command.OutcomeInvalidCoordinate:
		return invalidCoordinateDoc(), nil
	default:
		return sms.Document{}, fmt.Errorf("unhandled parse outcome %q", result.Outcome)
	}
}

// forecastDoc renders the hourly table for one waypoint or GPS target.
func (r *SMSResponder) forecastDoc(ctx context.Context, route domain.Route, sub domain.Subscription, target command.Target) (sms.Document, error) {
	var (
		name       string
		tag        string
		lat, lon   float64
		targetElev float64
		haveElev   bool
	)

	switch target.Kind {
	case command.TargetCode:
		wp, ok := route.WaypointByCode(target.Code)
		if !ok {
			return sms.Document{}, fmt.Errorf("resolved code %q missing from route %s", target.Code, route.Code)
		}
		name, tag = wp.Name, wp.Code
		lat, lon = wp.Lat, wp.Lon
		targetElev, haveElev = wp.ElevationM, true

	case command.TargetGPS:
		lat, lon = target.Lat, target.Lon
		name = fmt.Sprintf("%.2f,%.2f", lat, lon)
		tag = name
		if !r.region.Contains(lat, lon) {
			return outOfRegionDoc(), nil
		}
		elev, err := r.terrain.ElevationM(ctx, lat, lon)
		if err != nil {
			// The cell's model elevation is a workable stand-in; skipping
			// the adjustment beats refusing the forecast.
			r.logger.Warn("terrain lookup failed, using cell elevation", "error", err)
		} else {
			targetElev, haveElev = elev, true
		}

	default:
		return sms.Document{}, fmt.Errorf("unhandled target kind %q", target.Kind)
	}

	cell, err := r.region.Resolve(lat, lon)
	if err != nil {
		if errors.Is(err, domain.ErrCoordinateOutOfRange) {
			return outOfRegionDoc(), nil
		}
		return sms.Document{}, fmt.Errorf("resolve grid cell: %w", err)
	}

	series, err := r.forecasts.Series(ctx, r.region.Name, cell)
	if err != nil {
		r.metrics.CellFetchFailures.Inc()
		r.logger.Warn("cell fetch failed", "cell", cell.String(), "error", err)
		return unavailableDoc(), nil
	}
	if len(series.Samples) == 0 {
		return unavailableDoc(), nil
	}
	if !haveElev {
		targetElev = series.ElevationM
	}

	enriched := domain.EnrichSeries(series, targetElev, r.thresholdsFor(sub.Tier))
	if len(enriched) > r.cfg.ForecastRows {
		enriched = enriched[:r.cfg.ForecastRows]
	}

	loc := r.routeLocation(route)
	date := enriched[0].ValidAt.In(loc)
	light := domain.ComputeLightHours(route.RefLat, route.RefLon, date, loc)

	rows := make([]string, len(enriched))
	for i, e := range enriched {
		rows[i] = sms.ForecastRow(e, loc)
	}

	return sms.Document{
		Title:  sms.TitleLine(sms.Fit(name, titleNameWidth), date, light),
		Header: tag + " " + date.Format("2Jan"),
		Rows:   rows,
	}, nil
}

// summaryDoc renders one row per weather zone across the whole route.
func (r *SMSResponder) summaryDoc(ctx context.Context, route domain.Route, sub domain.Subscription) (sms.Document, error) {
	if len(route.Waypoints) == 0 {
		return unavailableDoc(), nil
	}

	seriesByCell := r.fetchCells(ctx, route)

	thresholds := r.thresholdsFor(sub.Tier)
	members := make([]domain.WaypointSeries, 0, len(route.Waypoints))
	unavailable := 0
	for _, wp := range route.Waypoints {
		cell, err := r.region.Resolve(wp.Lat, wp.Lon)
		if err != nil {
			r.logger.Warn("waypoint outside region grid", "code", wp.Code, "error", err)
			unavailable++
			continue
		}
		cs, ok := seriesByCell[cell]
		if !ok || len(cs.Samples) == 0 {
			unavailable++
			continue
		}
		members = append(members, domain.WaypointSeries{
			Waypoint: wp,
			Samples:  domain.EnrichSeries(cs, wp.ElevationM, thresholds),
		})
	}

	if len(members) == 0 {
		return unavailableDoc(), nil
	}

	zones := domain.GroupZones(members, domain.ZoneThresholds{
		TempC:    r.cfg.ZoneTempC,
		PrecipMM: r.cfg.ZonePrecipMM,
		WindKmh:  r.cfg.ZoneWindKmh,
	})

	rows := make([]string, 0, len(zones)+1)
	for _, z := range zones {
		rows = append(rows, sms.SummaryRow(z))
	}
	if unavailable > 0 {
		rows = append(rows, sms.UnavailableNotice(unavailable))
	}

	loc := r.routeLocation(route)
	date := members[0].Samples[0].ValidAt.In(loc)
	light := domain.ComputeLightHours(route.RefLat, route.RefLon, date, loc)

	return sms.Document{
		Title:  sms.TitleLine(sms.Fit(route.Name, titleNameWidth), date, light),
		Header: route.Code + " " + date.Format("2Jan"),
		Rows:   rows,
	}, nil
}

// fetchCells fetches each distinct grid cell of the route once, with bounded
// concurrency. Failed cells are simply absent from the result; the summary
// reports them as unavailable locations.
func (r *SMSResponder) fetchCells(ctx context.Context, route domain.Route) map[domain.GridCell]domain.CellSeries {
	cells := make([]domain.GridCell, 0, len(route.Waypoints))
	seen := make(map[domain.GridCell]bool, len(route.Waypoints))
	for _, wp := range route.Waypoints {
		cell, err := r.region.Resolve(wp.Lat, wp.Lon)
		if err != nil || seen[cell] {
			continue
		}
		seen[cell] = true
		cells = append(cells, cell)
	}

	results := make([]domain.CellSeries, len(cells))
	fetched := make([]bool, len(cells))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.FetchConcurrency)
	for i, cell := range cells {
		g.Go(func() error {
			cs, err := r.forecasts.Series(gctx, r.region.Name, cell)
			if err != nil {
				r.metrics.CellFetchFailures.Inc()
				r.logger.Warn("cell fetch failed", "cell", cell.String(), "error", err)
				return nil
			}
			results[i] = cs
			fetched[i] = true
			return nil
		})
	}
	// Errors are swallowed per cell; Wait only orders the writes above.
	_ = g.Wait()

	out := make(map[domain.GridCell]domain.CellSeries, len(cells))
	for i, cell := range cells {
		if fetched[i] {
			out[cell] = results[i]
		}
	}
	return out
}

func (r *SMSResponder) listDoc(route domain.Route) sms.Document {
	return sms.Document{
		Title:  sms.Fit(sms.Transliterate(route.Name)+" codes", r.cfg.LineChars),
		Header: route.Code + " codes",
		Rows:   sms.WrapCodes(route.Codes(), r.cfg.LineChars),
	}
}

func (r *SMSResponder) thresholdsFor(tier domain.ExperienceTier) domain.Thresholds {
	return domain.Thresholds{
		LapseRate:          r.cfg.LapseRate,
		CAPEPossible:       r.cfg.CAPEPossible,
		CAPELikely:         r.cfg.CAPELikely,
		BlindCloudCoverPct: r.cfg.BlindCloudCoverPct,
		WindDangerKmh:      r.cfg.WindDangerKmh(string(tier)),
		WindSevereKmh:      r.cfg.WindSevereKmh,
		PrecipRainMM:       r.cfg.PrecipRainMM,
		PrecipSnowCM:       r.cfg.PrecipSnowCM,
	}
}

// routeLocation loads the route's time zone, falling back to UTC when the
// reference data carries an unknown name.
func (r *SMSResponder) routeLocation(route domain.Route) *time.Location {
	loc, err := time.LoadLocation(route.Timezone)
	if err != nil {
		r.logger.Warn("invalid route timezone, using UTC", "route", route.Code, "timezone", route.Timezone)
		return time.UTC
	}
	return loc
}

// reply compiles the document and wraps it in the outbound envelope. A
// document that fails to compile is a defect in reference data or layout;
// the sender still gets the static fallback rather than silence.
func (r *SMSResponder) reply(msg domain.InboundMessage, sub domain.Subscription, doc sms.Document) (domain.OutboundMessage, error) {
	m, err := sms.Compile(doc, r.budget())
	if err != nil {
		r.logger.Error("reply failed to compile", "error", err, "title", doc.Title)
		m, err = sms.Compile(fallbackDoc(), r.budget())
		if err != nil {
			return domain.OutboundMessage{}, fmt.Errorf("compile fallback reply: %w", err)
		}
	}

	rate := r.cfg.CostFor(sub.BillingRegion)

	return domain.OutboundMessage{
		ReplyID:        domain.NewReplyID(msg.From, msg.MessageID),
		To:             msg.From,
		InReplyTo:      msg.MessageID,
		Segments:       m.Segments,
		CharacterCount: m.CharacterCount,
		SegmentCount:   m.SegmentCount,
		CostBasis: domain.CostBasis{
			Currency: rate.Currency,
			Amount:   rate.Amount * float64(m.SegmentCount),
		},
		CompiledAt: domain.Now().UTC(),
	}, nil
}

func (r *SMSResponder) budget() sms.Budget {
	return sms.Budget{
		LineChars:            r.cfg.LineChars,
		SingleSegmentSeptets: r.cfg.SingleSegmentSeptets,
		ConcatSegmentSeptets: r.cfg.ConcatSegmentSeptets,
	}
}
