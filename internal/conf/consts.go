// conf/consts.go hard coded constants
package conf

const (
	DefaultDatabaseURL    = "sqlite:///artwork_db.sqlite"
	DefaultDatabaseDriver = "postgresql"

	ConfigFileName = "config.yaml"
	appDirName     = "artid"
)
