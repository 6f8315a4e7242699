// conf/defaults.go default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig(v *viper.Viper) {
	v.SetDefault("debug", false)

	v.SetDefault("main.name", "artid")
	v.SetDefault("main.log.level", "info")
	v.SetDefault("main.log.console", true)
	v.SetDefault("main.log.file", true)
	v.SetDefault("main.log.path", "logs/artid.log")
	v.SetDefault("main.log.maxsize", 10)
	v.SetDefault("main.log.maxbackups", 5)
	v.SetDefault("main.log.maxage", 28)
	v.SetDefault("main.log.compress", false)

	v.SetDefault("database.url", DefaultDatabaseURL)
	v.SetDefault("database.driver", DefaultDatabaseDriver)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "artwork_db")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.debug", false)
	v.SetDefault("database.slowquerythreshold", 200*time.Millisecond)
	v.SetDefault("database.connmaxidletime", 5*time.Minute)

	v.SetDefault("paths.datadir", "data")
	v.SetDefault("paths.rawdatadir", "data/raw")
	v.SetDefault("paths.processeddatadir", "data/processed")
	v.SetDefault("paths.annotationsdir", "data/annotations")
	v.SetDefault("paths.modelsdir", "models")
	v.SetDefault("paths.logsdir", "logs")

	v.SetDefault("model.detection.modelname", "yolov8x")
	v.SetDefault("model.detection.confidencethreshold", 0.25)
	v.SetDefault("model.detection.nmsthreshold", 0.45)
	v.SetDefault("model.detection.maxdetections", 100)

	v.SetDefault("model.featureextraction.modelname", "clip-vit-large-patch14")
	v.SetDefault("model.featureextraction.batchsize", 32)
	v.SetDefault("model.featureextraction.embeddingdim", 768)

	v.SetDefault("model.matching.similaritythreshold", 0.85)
	v.SetDefault("model.matching.topk", 10)
	v.SetDefault("model.matching.indextype", "IVF1024,Flat")
	v.SetDefault("model.matching.nprobe", 10)

	v.SetDefault("processing.usegpu", true)
	v.SetDefault("processing.device", "")
	v.SetDefault("processing.imagewidth", 1024)
	v.SetDefault("processing.imageheight", 1024)
	v.SetDefault("processing.batchsize", 16)
	v.SetDefault("processing.numworkers", 0)

	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.environment", "production")
	v.SetDefault("sentry.debug", false)
}
