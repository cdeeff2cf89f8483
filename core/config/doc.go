// Package config provides configuration management for guild-sync.
//
// It utilizes Viper for loading configuration from environment variables,
// the .env file and an optional config.yaml.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP port, API key, shutdown timeout
//   - Database: policy store connection (mysql or sqlite)
//   - Storage: S3/MinIO settings of the sweep report archive
//   - Log: Logging level and format
//   - Bot: Discord token and command registration
//   - Identity: identity service endpoint
//   - Sync: mutation timeout, sweep workers, settings command name
//   - Donor: donor community id and role alias table
//
// Scalar values can be set through the environment (DONOR_GUILD_ID,
// SYNC_SWEEP_WORKERS, ...). The donor role table is a list and is read from
// config.yaml:
//
//	donor:
//	  guild_id: "828683007635488809"
//	  player_role: player
//	  roles:
//	    - alias: player
//	      name: Player
//	      role_id: "841098135376101377"
//	    - alias: fusion
//	      name: Fusion
//	      role_id: "1049993283209363576"
//	      verified_only: true
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Server.Port)
package config
