// package services implements the Spotify-facing half of the companion:
// the Web API client, the OAuth token lifecycle, retry policy, and the
// polling service that the update loop drives.
package services
