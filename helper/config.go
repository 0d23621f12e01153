package helper

import (
	"fmt"

	"github.com/spf13/viper"
)

// CfgFile is the resolved path of the config file, set during command init.
var CfgFile string

// CurrentConfig returns a config value scoped to the currently selected
// platform remote, e.g. CurrentConfig("token") reads "<remote>.token".
func CurrentConfig(key string) string {
	remote := viper.GetString("remote")
	return viper.GetString(fmt.Sprintf("%s.%s", remote, key))
}
