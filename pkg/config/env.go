package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvServerAddr     = "DRONESTRIKE_SERVER_ADDR"
	EnvServerCodec    = "DRONESTRIKE_SERVER_CODEC"
	EnvMaxClients     = "DRONESTRIKE_MAX_CLIENTS"
	EnvReadTimeout    = "DRONESTRIKE_READ_TIMEOUT"
	EnvWriteTimeout   = "DRONESTRIKE_WRITE_TIMEOUT"
	EnvTickRate       = "DRONESTRIKE_TICK_RATE"
	EnvMaxStep        = "DRONESTRIKE_MAX_STEP"
	EnvResultDelay    = "DRONESTRIKE_RESULT_DELAY"
	EnvAudioEnabled   = "DRONESTRIKE_AUDIO_ENABLED"
	EnvAudioVolume    = "DRONESTRIKE_AUDIO_VOLUME"
	EnvPartsFile      = "DRONESTRIKE_PARTS_FILE"
	EnvLevelsFile     = "DRONESTRIKE_LEVELS_FILE"
	EnvBuildFile      = "DRONESTRIKE_BUILD_FILE"
	EnvViewportWidth  = "DRONESTRIKE_VIEWPORT_WIDTH"
	EnvViewportHeight = "DRONESTRIKE_VIEWPORT_HEIGHT"
)

// ApplyEnvironmentOverrides replaces config values with any DRONESTRIKE_*
// variables that are set. Unparseable values are ignored.
func ApplyEnvironmentOverrides(c *SimConfig) {
	c.Server.Address = getEnvOrDefault(EnvServerAddr, c.Server.Address)
	c.Server.Codec = getEnvOrDefault(EnvServerCodec, c.Server.Codec)
	c.Server.MaxClients = getEnvAsIntOrDefault(EnvMaxClients, c.Server.MaxClients)
	c.Server.ReadTimeout = Duration(getEnvAsDurationOrDefault(EnvReadTimeout, c.Server.ReadTimeout.Std()))
	c.Server.WriteTimeout = Duration(getEnvAsDurationOrDefault(EnvWriteTimeout, c.Server.WriteTimeout.Std()))

	c.Driver.TickRate = getEnvAsIntOrDefault(EnvTickRate, c.Driver.TickRate)
	c.Driver.MaxStep = getEnvAsFloatOrDefault(EnvMaxStep, c.Driver.MaxStep)
	c.Driver.ResultDelay = getEnvAsFloatOrDefault(EnvResultDelay, c.Driver.ResultDelay)

	c.Audio.Enabled = getEnvAsBoolOrDefault(EnvAudioEnabled, c.Audio.Enabled)
	c.Audio.Volume = getEnvAsFloatOrDefault(EnvAudioVolume, c.Audio.Volume)

	c.Data.PartsFile = getEnvOrDefault(EnvPartsFile, c.Data.PartsFile)
	c.Data.LevelsFile = getEnvOrDefault(EnvLevelsFile, c.Data.LevelsFile)
	c.Data.BuildFile = getEnvOrDefault(EnvBuildFile, c.Data.BuildFile)

	c.Viewport.Width = getEnvAsFloatOrDefault(EnvViewportWidth, c.Viewport.Width)
	c.Viewport.Height = getEnvAsFloatOrDefault(EnvViewportHeight, c.Viewport.Height)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvAsDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
