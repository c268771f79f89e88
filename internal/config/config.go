package config

import (
	"github.com/spf13/viper"
)

// Setting keys, shared by flags, environment variables (SECOPS_<KEY>) and
// the contexts file.
const (
	KeyLocation    = "location"
	KeyProject     = "project"
	KeyCustomerID  = "customerid"
	KeyFeedID      = "feedid"
	KeyForwarderID = "forwarderid"
	KeyLogType     = "logtype"
)

// EnvPrefix is the prefix of every environment variable read by viper.
const EnvPrefix = "SECOPS"

// Keys lists every setting key in display order.
var Keys = []string{KeyLocation, KeyProject, KeyCustomerID, KeyFeedID, KeyForwarderID, KeyLogType}

// Settings are the identifiers of a Chronicle instance and the resources used
// within it. They are free-form: nothing is validated or escaped.
type Settings struct {
	Location    string
	Project     string
	CustomerID  string
	FeedID      string
	ForwarderID string
	LogType     string
}

// FromViper reads Settings from v. Viper resolves each key as
// flag > environment > default, and saved contexts are installed as defaults.
func FromViper(v *viper.Viper) Settings {
	return Settings{
		Location:    v.GetString(KeyLocation),
		Project:     v.GetString(KeyProject),
		CustomerID:  v.GetString(KeyCustomerID),
		FeedID:      v.GetString(KeyFeedID),
		ForwarderID: v.GetString(KeyForwarderID),
		LogType:     v.GetString(KeyLogType),
	}
}

// ApplyContext installs ctx values as viper defaults, the lowest priority source.
func ApplyContext(v *viper.Viper, ctx *Context) {
	if ctx == nil {
		return
	}
	for key, val := range ctx.Settings().Map() {
		if val != "" {
			v.SetDefault(key, val)
		}
	}
}

// Map returns the settings keyed by their setting key.
func (s Settings) Map() map[string]string {
	return map[string]string{
		KeyLocation:    s.Location,
		KeyProject:     s.Project,
		KeyCustomerID:  s.CustomerID,
		KeyFeedID:      s.FeedID,
		KeyForwarderID: s.ForwarderID,
		KeyLogType:     s.LogType,
	}
}

// Missing returns the keys (in Keys order) whose value is empty.
func (s Settings) Missing(keys ...string) []string {
	if len(keys) == 0 {
		keys = Keys
	}
	m := s.Map()
	var missing []string
	for _, k := range keys {
		if m[k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}
