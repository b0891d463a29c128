// =============================================================================
// 📦 Dallevision 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Archive:   DefaultArchiveConfig(),
		Retry:     DefaultRetryConfig(),
		Database:  DefaultDatabaseConfig(),
		Redis:     DefaultRedisConfig(),
		Generator: DefaultGeneratorConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8000,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultArchiveConfig 返回默认归档配置
func DefaultArchiveConfig() ArchiveConfig {
	return ArchiveConfig{
		StagingDir:     "./images/current",
		RootDir:        "./images",
		CycleInterval:  30 * time.Second,
		VerifyAttempts: 10,
		VerifyDelay:    5 * time.Second,
		VerifyStrict:   true,
		Location:       "",
	}
}

// DefaultRetryConfig 返回默认重试配置
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		Delay:       3 * time.Second,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:              "mysql",
		Host:                "localhost",
		Port:                3306,
		User:                "dallevision",
		Password:            "",
		Name:                "dallevision",
		SSLMode:             "disable",
		MaxOpenConns:        10,
		MaxIdleConns:        2,
		ConnMaxLifetime:     5 * time.Minute,
		ConnMaxIdleTime:     time.Minute,
		HealthCheckInterval: 30 * time.Second,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Enabled:      false,
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		LeaseKey:     "dallevision:cycle:lease",
		LeaseTTL:     5 * time.Minute,
	}
}

// DefaultGeneratorConfig 返回默认内容生成配置
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Enabled:           false,
		BaseURL:           "https://api.openai.com",
		ChatModel:         "gpt-3.5-turbo",
		ImageModel:        "dall-e-2",
		ImageSize:         "512x512",
		PromptFile:        "./prompt.txt",
		StoryPromptFile:   "./storyPrompt.txt",
		StylesFile:        "./lists/stylesFantasy.txt",
		Timeout:           2 * time.Minute,
		RequestsPerMinute: 30,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "dallevision",
		SampleRate:   0.1,
	}
}
