// Package autoload configures the global logger from the LOG_* env vars
// as an import side effect.
package autoload

import (
	configx "github.com/pattadon/foodcourt-agent/pkg/config"
	logx "github.com/pattadon/foodcourt-agent/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOG"))
}
