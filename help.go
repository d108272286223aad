package runtcp

import (
	"github.com/asecurityteam/runhttp"
	"github.com/asecurityteam/settings/v2"
)

// Help generates example environment variable output for the TCP
// runtime and for the runhttp runtime used by the HTTP build mode.
func Help() string {
	grp, _ := settings.GroupFromComponent(&Component{})
	rtGrp, _ := settings.GroupFromComponent(runhttp.NewComponent())
	return settings.ExampleEnvGroups([]settings.Group{&settings.SettingGroup{
		NameValue:   "RUNTCP",
		GroupValues: []settings.Group{grp, rtGrp},
	}})
}
