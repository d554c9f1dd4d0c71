// Package config manages spotfetch settings.
//
// Settings are layered, lowest priority first:
//
//  1. DefaultSettings()
//  2. An optional YAML settings file
//  3. SPOTFETCH_* environment variables
//  4. SPOTIFY_CLIENT_ID / SPOTIFY_CLIENT_SECRET for credentials
//
// A .env file in the working directory is loaded into the environment before
// layering, so credentials can live next to the songs file the way the
// original spotify_client_data.txt did.
//
// Example:
//
//	settings, err := config.Load("spotfetch.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	config.SetupLogger(settings)
package config
