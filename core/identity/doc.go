// Package identity is a client for the external identity service that holds
// canonical player profiles.
//
// Only the profile lookup is used:
//
//	GET {base_url}{profile_path}?discord_id={id}
//	{"status": true, "data": {"nick": "Steve", ...}}
//
// Any answer other than a 200 with status=true and a data object is reported
// as ErrUnavailable.
package identity
