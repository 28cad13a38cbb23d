package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// WatchLogLevel watches path for changes, via viper's fsnotify-backed
// file watcher, and invokes onChange with the newly-configured logging
// level whenever the file is rewritten. A no-op when path is empty.
// There is no way to stop viper's watch once started.
func WatchLogLevel(path string, onChange func(level string)) error {
	if path == "" {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	v.OnConfigChange(func(_ fsnotify.Event) {
		if level := v.GetString("logging.level"); level != "" {
			onChange(level)
		}
	})
	v.WatchConfig()

	return nil
}
