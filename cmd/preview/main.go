// Command preview renders a compiled SMS reply for one inbound command
// without Kafka or Postgres. It wires the production responder over built-in
// demo reference data, so rendering, segmentation, and character budgets
// match the live service exactly.
//
// Usage:
//
//	go run ./cmd/preview -text "WX BEARPK"
//	go run ./cmd/preview -text "SUM" -tier cautious
//	go run ./cmd/preview -text "WX LAKEV"
//	go run ./cmd/preview -text "WX 37.93,-119.52" -gps-elev 2500
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/ridgecast/forecast-sms/internal/adapter/forecaststore"
	"github.com/ridgecast/forecast-sms/internal/adapter/registry"
	"github.com/ridgecast/forecast-sms/internal/config"
	"github.com/ridgecast/forecast-sms/internal/domain"
	"github.com/ridgecast/forecast-sms/internal/observability"
	"github.com/ridgecast/forecast-sms/internal/pipeline"
	"github.com/ridgecast/forecast-sms/internal/sms"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	text := flag.String("text", "", "inbound command text (required)")
	from := flag.String("from", "+15550001111", "sender phone number")
	tier := flag.String("tier", "standard", "subscriber tier: cautious, standard, expert")
	billing := flag.String("billing", "us", "subscriber billing region")
	at := flag.String("at", "", "fixed date (YYYY-MM-DD) for reproducible output; empty uses today")
	gpsElev := flag.Float64("gps-elev", 2500, "elevation returned for GPS terrain lookups, meters")
	flag.Parse()

	if *text == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -text")
	}

	day := time.Now().UTC()
	if *at != "" {
		parsed, err := time.Parse("2006-01-02", *at)
		if err != nil {
			return fmt.Errorf("parse -at: %w", err)
		}
		day = parsed
		// Fix the clock so reply timestamps are reproducible.
		domain.SetClock(clockwork.NewFakeClockAt(day.Add(15 * time.Hour)))
		defer domain.SetClock(nil)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Region = "sierra"

	route := demoRoute()

	reg := registry.NewMemory()
	reg.AddRoute(route)
	reg.Subscribe(domain.Subscription{
		Phone:         *from,
		RouteID:       route.ID,
		Tier:          domain.ExperienceTier(*tier),
		BillingRegion: *billing,
	})

	store, err := demoForecasts(route, day)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	metrics := observability.NewMetricsForTesting()

	responder, err := pipeline.NewResponder(cfg, reg, store, staticTerrain{elev: *gpsElev}, logger, metrics)
	if err != nil {
		return fmt.Errorf("build responder: %w", err)
	}

	payload, err := json.Marshal(domain.InboundMessage{
		MessageID:  "preview-1",
		From:       *from,
		To:         "preview",
		Text:       *text,
		ReceivedAt: domain.Now().UTC(),
	})
	if err != nil {
		return err
	}

	out, err := responder.Respond(context.Background(), domain.RawMessage{Value: payload})
	if err != nil {
		return fmt.Errorf("respond: %w", err)
	}

	fmt.Printf("reply %s to %s (in reply to %s)\n", out.ReplyID, out.To, out.InReplyTo)
	fmt.Printf("%d segment(s), %d chars, cost %s %.4f\n",
		out.SegmentCount, out.CharacterCount, out.CostBasis.Currency, out.CostBasis.Amount)

	for i, seg := range out.Segments {
		septets, err := sms.Septets(seg)
		if err != nil {
			return fmt.Errorf("segment %d not GSM-7 clean: %w", i+1, err)
		}
		fmt.Printf("\n--- segment %d/%d (%d septets) ---\n%s\n", i+1, out.SegmentCount, septets, seg)
	}
	return nil
}

// staticTerrain answers every GPS elevation lookup with one fixed value.
type staticTerrain struct {
	elev float64
}

func (s staticTerrain) ElevationM(context.Context, float64, float64) (float64, error) {
	return s.elev, nil
}

// demoRoute is a five-waypoint Sierra route. LAKEVE and LAKEVU share a code
// prefix so disambiguation can be previewed, and share a grid cell so the
// summary groups them.
func demoRoute() domain.Route {
	return domain.Route{
		ID:       1,
		Code:     "JMTN",
		Name:     "John Muir Trail North",
		RefLat:   37.85,
		RefLon:   -119.55,
		Timezone: "America/Los_Angeles",
		Region:   "sierra",
		Waypoints: []domain.Waypoint{
			{ID: 1, Code: "TRAILH", Name: "Happy Isles Trailhead", Kind: domain.WaypointPOI, Lat: 37.852, Lon: -119.558, ElevationM: 1230},
			{ID: 2, Code: "LAKEVE", Name: "Lake Vernon East", Kind: domain.WaypointCamp, Lat: 37.872, Lon: -119.548, ElevationM: 2005},
			{ID: 3, Code: "LAKEVU", Name: "Lake Vernon Upper", Kind: domain.WaypointCamp, Lat: 37.892, Lon: -119.538, ElevationM: 2080},
			{ID: 4, Code: "BEARPK", Name: "Bear Peak", Kind: domain.WaypointPeak, Lat: 37.952, Lon: -119.508, ElevationM: 3210},
			{ID: 5, Code: "RIDGE3", Name: "Ridge Camp 3", Kind: domain.WaypointCamp, Lat: 37.932, Lon: -119.518, ElevationM: 2950},
		},
	}
}

// demoForecasts stores a synthetic series for each waypoint cell. Conditions
// derive from elevation so the preview shows realistic contrasts: warm calm
// valley, windy exposed peak with afternoon convection.
func demoForecasts(route domain.Route, day time.Time) (*forecaststore.Memory, error) {
	region, ok := domain.RegionByName(route.Region)
	if !ok {
		return nil, fmt.Errorf("unknown region %q", route.Region)
	}

	store := forecaststore.NewMemory()
	// 14:00 UTC is 07:00 in the route's Pacific time zone, so every sample
	// lands on the requested local day.
	base := time.Date(day.Year(), day.Month(), day.Day(), 14, 0, 0, 0, time.UTC)

	for _, wp := range route.Waypoints {
		cell, err := region.Resolve(wp.Lat, wp.Lon)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", wp.Code, err)
		}

		cellElev := wp.ElevationM - 150
		lo := 20 - 0.0065*cellElev
		exposed := wp.ElevationM > 2800

		samples := make([]domain.ForecastSample, 12)
		for i := range samples {
			s := domain.ForecastSample{
				ValidAt:        base.Add(time.Duration(i) * time.Hour),
				Temp:           domain.TempRange{Lo: lo, Hi: lo + 9},
				RainProbPct:    float64(min(10+i*5, 60)),
				Precip:         domain.MMRange{Lo: 0, Hi: 0.3},
				PrecipType:     domain.PrecipRain,
				WindAvgKmh:     15,
				WindGustKmh:    25,
				WindDirection:  "SW",
				CloudCoverPct:  float64(min(20+i*6, 85)),
				SourceProvider: "demo-model",
			}
			if exposed {
				s.WindAvgKmh = 30
				s.WindGustKmh = 65
			}
			// Afternoon convection over the high terrain.
			if i >= 6 && wp.ElevationM > 1800 {
				s.CAPEJPerKg = 450
				cloudBase := 900.0
				s.CloudBaseAGLM = &cloudBase
			}
			samples[i] = s
		}

		store.Put(route.Region, domain.CellSeries{Cell: cell, ElevationM: cellElev, Samples: samples})
	}
	return store, nil
}
