package chronicle

// APIVersion is the only Chronicle API version this client speaks.
const APIVersion = "v1alpha"

// DefaultBaseURL returns the regional Chronicle endpoint for location.
func DefaultBaseURL(location string) string {
	return "https://" + location + "-chronicle.googleapis.com"
}

// Target identifies a Chronicle instance. Values are interpolated into URL
// paths verbatim: nothing is escaped, so a "/" or "?" in a value changes
// the resulting path or query.
type Target struct {
	Location   string
	Project    string
	CustomerID string
}

// InstanceName is the resource name of the instance.
func (t Target) InstanceName() string {
	return "projects/" + t.Project +
		"/locations/" + t.Location +
		"/instances/" + t.CustomerID
}

// ForwarderName is the resource name attached to imported logs.
func (t Target) ForwarderName(forwarderID string) string {
	return t.InstanceName() + "/forwarders/" + forwarderID
}

// FeedURL returns the GET endpoint for a feed.
func (c *Client) FeedURL(feedID string) string {
	return c.baseURL + "/" + APIVersion + "/" + c.target.InstanceName() + "/feeds/" + feedID
}

// ImportURL returns the logs:import endpoint for a log type.
func (c *Client) ImportURL(logType string) string {
	return c.baseURL + "/" + APIVersion + "/" + c.target.InstanceName() +
		"/logTypes/" + logType + "/logs:import"
}
