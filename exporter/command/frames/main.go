package main

import (
	"context"
	"flag"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/jvonk/covidmap/exporter"
	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/pipeline"
	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
)

const logPrefix = "frames"

func init() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covidmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

func initLog() {
	logLevel, err := log.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		log.SetLevel(log.InfoLevel)
	} else {
		log.SetLevel(logLevel)
	}

	log.SetOutput(os.Stdout)

	log.SetFormatter(&prefixed.TextFormatter{
		ForceFormatting: true,
		FullTimestamp:   true,
	})
}

func main() {
	var outDir string
	var metricName string
	flag.StringVar(&outDir, "o", "frames", "output directory for rendered frames")
	flag.StringVar(&metricName, "m", string(schema.MetricConfirmed), "metric to render")
	flag.Parse()

	initLog()

	client := jhu.NewClient(jhu.ClientConfig{
		BaseURL:     viper.GetString("source.base_url"),
		GeometryURL: viper.GetString("source.geometry_url"),
		Timeout:     viper.GetDuration("source.timeout"),
		Attempts:    viper.GetInt("source.attempts"),
		Backoff:     viper.GetDuration("source.backoff"),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	tables, err := client.LoadAll(ctx)
	if err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Fatal("load source tables")
	}

	result, err := pipeline.Build(tables)
	if err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Fatal("build dataset")
	}

	ds := store.NewDataSet(result, nil)
	if err := exporter.New(ds, schema.Metric(metricName), outDir).Run(); err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "error": err}).Fatal("export frames")
	}
}
