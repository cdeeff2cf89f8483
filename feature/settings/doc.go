// Package settings is the administrator write path of the policy store.
//
// It serves the settings HTTP API and is shared with the /settings command and
// the settings CLI. A View lists every switch and donor role alias of a
// community together with whether it is accessible: verified-only entries are
// locked until the community is verified, and locked switches cannot be
// changed.
package settings
