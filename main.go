package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jvonk/covidmap/api"
	"github.com/jvonk/covidmap/external/jhu"
	"github.com/jvonk/covidmap/pipeline"
	"github.com/jvonk/covidmap/schema"
	"github.com/jvonk/covidmap/store"
)

var server *api.Server

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

func loadConfig(file string) {
	// Config from file
	viper.SetConfigType("yaml")
	if file != "" {
		viper.SetConfigFile(file)
	}

	viper.AddConfigPath("/.config/")
	viper.AddConfigPath(".")
	err := viper.ReadInConfig()
	if err != nil {
		fmt.Println("No config file. Read config from env.")
		viper.AllowEmptyEnv(false)
	}

	// Config from env if possible
	viper.AutomaticEnv()
	viper.SetEnvPrefix("covidmap")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// loadSources fetches the raw tables and geometry from the origin; when the
// fetch fails and a snapshot store is available, the last-known-good copy is
// used instead. A fresh fetch refreshes the snapshot best effort.
func loadSources(ctx context.Context, client *jhu.Client, snapshots store.SnapshotStore) (map[jhu.SourceID]*jhu.RawTable, *schema.GeographyAsset, error) {
	tables, err := client.LoadAll(ctx)
	if err != nil {
		log.WithField("prefix", "init").Errorf("source fetch failed: %s", err)
		if snapshots == nil {
			return nil, nil, err
		}

		log.WithField("prefix", "init").Warn("falling back to source snapshot")
		tables, err = snapshots.LoadTables()
		if err != nil {
			return nil, nil, err
		}
		geometry, err := snapshots.LoadGeometry()
		if err != nil {
			return nil, nil, err
		}
		return tables, geometry, nil
	}

	geometry, err := client.LoadGeometry(ctx)
	if err != nil {
		return nil, nil, err
	}

	if snapshots != nil {
		if err := snapshots.SaveTables(tables); err != nil {
			log.WithField("prefix", "init").Warnf("snapshot save failed: %s", err)
		}
		if err := snapshots.SaveGeometry(geometry); err != nil {
			log.WithField("prefix", "init").Warnf("geometry snapshot save failed: %s", err)
		}
	}
	return tables, geometry, nil
}

func main() {
	var configFile string

	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Info("Server is preparing to shutdown")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if server != nil {
			log.Info("Shutdown dashboard api server")
			if err := server.Shutdown(ctx); err != nil {
				log.Error("Server Shutdown:", err)
			}
		}

		os.Exit(1)
	}()

	flag.StringVar(&configFile, "c", "./config.yaml", "[optional] path of configuration file")
	flag.Parse()

	loadConfig(configFile)

	initLog()

	// Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              viper.GetString("sentry.dsn"),
		AttachStacktrace: true,
		Environment:      viper.GetString("sentry.environment"),
	}); err != nil {
		log.Error(err)
	}
	log.WithField("prefix", "init").Info("Initialized sentry")

	// optional snapshot store for last-known-good sources
	var snapshots store.SnapshotStore
	if conn := viper.GetString("mongo.conn"); conn != "" {
		opts := options.Client().ApplyURI(conn)
		mongoClient, err := mongo.NewClient(opts)
		if nil != err {
			log.Panicf("create mongo client with error: %s", err)
		}
		if err := mongoClient.Connect(context.Background()); nil != err {
			log.Panicf("connect mongo database with error: %s", err)
		}
		snapshots = store.NewMongoSnapshotStore(mongoClient, viper.GetString("mongo.database"))
		log.WithField("prefix", "init").Info("Initialized snapshot store")
	}

	client := jhu.NewClient(jhu.ClientConfig{
		BaseURL:     viper.GetString("source.base_url"),
		GeometryURL: viper.GetString("source.geometry_url"),
		Timeout:     viper.GetDuration("source.timeout"),
		Attempts:    viper.GetInt("source.attempts"),
		Backoff:     viper.GetDuration("source.backoff"),
	})

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 15*time.Minute)
	tables, geometry, err := loadSources(loadCtx, client, snapshots)
	cancelLoad()

	if err != nil {
		// data endpoints degrade to a visible banner instead of the whole
		// dashboard refusing to start
		log.WithField("prefix", "init").Errorf("no source data available: %s", err)
		server = api.NewDegradedServer("COVID-19 source data is currently unavailable")
	} else {
		result, err := pipeline.Build(tables)
		if err != nil {
			log.Panicf("build dataset with error: %s", err)
		}

		ds := store.NewDataSet(result, geometry)
		log.WithField("prefix", "init").Infof("dataset ready, latest reporting date %s", ds.LatestDate().Format("2006-01-02"))

		var cache store.SeriesCache
		if addr := viper.GetString("cache.redis_addr"); addr != "" {
			cache = store.NewRedisSeriesCache(addr)
			log.WithField("prefix", "init").Info("Initialized redis series cache")
		}

		server = api.NewServer(store.NewQuery(ds, cache))
	}
	log.WithField("prefix", "init").Info("Initialized http server")

	log.Fatal(server.Run(":" + viper.GetString("server.port")))
}
