package app

import (
	"github.com/vk/mapboot/internal/module"
	"github.com/vk/mapboot/modules/livesync"
	"github.com/vk/mapboot/modules/locale"
	"github.com/vk/mapboot/modules/maplink"
	"github.com/vk/mapboot/modules/mapview"
)

// coreModules is the definitive list of modules compiled into the
// mapboot binary. Live sync only joins when a server is configured.
func coreModules(appConfig *Config) []module.Module {
	mods := []module.Module{
		mapview.New(),
		maplink.New(),
		locale.New(),
	}
	if appConfig.SyncURL != "" {
		mods = append(mods, livesync.New(appConfig.SyncURL, "/"))
	}
	return mods
}
