package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/wcharczuk/go-chart/v2"

	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
	"github.com/jvonk/covidmap/viewmodel"
)

const (
	logPrefix = "exporter"

	// fixed export resolution
	frameWidth  = 3840
	frameHeight = 2160
)

// Exporter walks every reporting date of the US dataset and writes one
// frame per date: the full figure description as JSON plus a raster
// rendering. Files are named by ISO date.
type Exporter struct {
	ds     *store.DataSet
	metric schema.Metric
	outDir string
}

// New - exporter writing frames for one metric into outDir
func New(ds *store.DataSet, metric schema.Metric, outDir string) *Exporter {
	return &Exporter{ds: ds, metric: metric, outDir: outDir}
}

// Run produces every frame. A straight-line batch job: no concurrency, one
// frame at a time, fails on the first unwritable file.
func (e *Exporter) Run() error {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return err
	}

	byDate := func(records []schema.TimeSeriesRecord, date time.Time) []schema.TimeSeriesRecord {
		matched := make([]schema.TimeSeriesRecord, 0)
		for _, r := range records {
			if r.Date.Equal(date) {
				matched = append(matched, r)
			}
		}
		return matched
	}

	dates := e.ds.Dates()
	for _, date := range dates {
		states := byDate(e.ds.States, date)
		counties := byDate(e.ds.Counties, date)
		if len(states) == 0 && len(counties) == 0 {
			continue
		}

		figure := viewmodel.BuildFrameFigure(states, counties, e.metric, date)
		name := date.Format("2006-01-02")

		if err := e.writeFigureJSON(figure, name); err != nil {
			return fmt.Errorf("frame %s: %w", name, err)
		}
		if err := e.renderPNG(counties, date, name); err != nil {
			return fmt.Errorf("frame %s: %w", name, err)
		}

		log.WithFields(log.Fields{"prefix": logPrefix, "frame": name, "states": len(states), "counties": len(counties)}).Info("frame written")
	}

	log.WithFields(log.Fields{"prefix": logPrefix, "frames": len(dates)}).Info("export complete")
	return nil
}

func (e *Exporter) writeFigureJSON(figure schema.Figure, name string) error {
	payload, err := json.MarshalIndent(figure, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(e.outDir, name+".json"), payload, 0o644)
}

// renderPNG rasters the county markers of one date. The raster is a rough
// preview; the JSON figure next to it carries the full styled frame.
func (e *Exporter) renderPNG(counties []schema.TimeSeriesRecord, date time.Time, name string) error {
	xs := make([]float64, 0, len(counties))
	ys := make([]float64, 0, len(counties))
	for _, r := range counties {
		if _, ok := r.Value(e.metric); !ok {
			continue
		}
		xs = append(xs, r.Long)
		ys = append(ys, r.Lat)
	}
	if len(xs) == 0 {
		return nil
	}

	graph := chart.Chart{
		Title:  date.Format("2006-01-02"),
		Width:  frameWidth,
		Height: frameHeight,
		// fixed continental-US viewport so every frame shares one frame of
		// reference regardless of which counties reported that day
		XAxis: chart.XAxis{
			Range: &chart.ContinuousRange{Min: -180, Max: -65},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 15, Max: 72},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Style: chart.Style{
					StrokeWidth: 0,
					DotWidth:    4,
				},
				XValues: xs,
				YValues: ys,
			},
		},
	}

	f, err := os.Create(filepath.Join(e.outDir, name+".png"))
	if err != nil {
		return err
	}
	defer f.Close()

	return graph.Render(chart.PNG, f)
}
