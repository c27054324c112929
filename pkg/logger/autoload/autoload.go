// Package autoload initializes the global logger from the environment when
// imported for side effect.
package autoload

import (
	"github.com/kelseyhightower/envconfig"

	logx "pieline/pkg/logger"
)

func init() {
	conf := *logx.DefaultConfig
	_ = envconfig.Process("LOG", &conf)
	logx.Init(conf)
}
